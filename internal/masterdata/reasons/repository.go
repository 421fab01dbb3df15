package reasons

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/stockroom-ims/stockroom/internal/masterdata/shared"
	"github.com/stockroom-ims/stockroom/internal/platform/db"
	internalShared "github.com/stockroom-ims/stockroom/internal/shared"
)

const table = "reasons"

var columns = []string{"id", "name", "description", "COALESCE(type, '') AS type"}

// Repository persists reasons.
type Repository interface {
	List(ctx context.Context, search string) ([]Reason, error)
	ForType(ctx context.Context, dir Type) ([]Reason, error)
	Get(ctx context.Context, id string) (Reason, error)
	FindByName(ctx context.Context, name string) (Reason, error)
	NameTaken(ctx context.Context, name, excludeID string) (bool, error)
	Create(ctx context.Context, r Reason) error
	// CreateIfAbsent inserts r unless its name is taken and reports whether
	// a row was written. A name clash leaves any surrounding transaction
	// usable.
	CreateIfAbsent(ctx context.Context, r Reason) (bool, error)
	Update(ctx context.Context, r Reason) error
	Delete(ctx context.Context, id string) error
}

type repository struct {
	tx *db.TxManager
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(tx *db.TxManager) Repository {
	return &repository{tx: tx}
}

func (r *repository) List(ctx context.Context, search string) ([]Reason, error) {
	q := shared.Builder().Select(columns...).From(table)
	if search != "" {
		q = q.Where(squirrel.ILike{"name": shared.SearchPattern(search)})
	}
	return r.selectMany(ctx, q.OrderBy("name ASC"))
}

func (r *repository) ForType(ctx context.Context, dir Type) ([]Reason, error) {
	q := shared.Builder().Select(columns...).From(table).
		Where(squirrel.Or{
			squirrel.Eq{"type": nil},
			squirrel.Eq{"type": []string{string(dir), string(TypeBoth)}},
		}).
		OrderBy("name ASC")
	return r.selectMany(ctx, q)
}

func (r *repository) Get(ctx context.Context, id string) (Reason, error) {
	return r.selectOne(ctx, squirrel.Eq{"id": id}, id)
}

func (r *repository) FindByName(ctx context.Context, name string) (Reason, error) {
	return r.selectOne(ctx, squirrel.Expr("lower(name) = lower(?)", name), name)
}

func (r *repository) NameTaken(ctx context.Context, name, excludeID string) (bool, error) {
	return shared.NameTaken(ctx, r.tx.Querier(ctx), table, name, excludeID)
}

func (r *repository) Create(ctx context.Context, reason Reason) error {
	sql, args, err := shared.Builder().Insert(table).
		Columns("id", "name", "description", "type").
		Values(reason.ID, reason.Name, reason.Description, nullableType(reason.Type)).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.tx.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		if db.IsUniqueViolation(err) {
			return &internalShared.DuplicateNameError{Kind: "reason"}
		}
		return fmt.Errorf("insert reason: %w", err)
	}
	return nil
}

func (r *repository) CreateIfAbsent(ctx context.Context, reason Reason) (bool, error) {
	sql, args, err := shared.Builder().Insert(table).
		Columns("id", "name", "description", "type").
		Values(reason.ID, reason.Name, reason.Description, nullableType(reason.Type)).
		Suffix("ON CONFLICT DO NOTHING").
		ToSql()
	if err != nil {
		return false, err
	}
	tag, err := r.tx.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("insert reason: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *repository) Update(ctx context.Context, reason Reason) error {
	sql, args, err := shared.Builder().Update(table).
		Set("name", reason.Name).
		Set("description", reason.Description).
		Set("type", nullableType(reason.Type)).
		Where(squirrel.Eq{"id": reason.ID}).
		ToSql()
	if err != nil {
		return err
	}
	tag, err := r.tx.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return &internalShared.DuplicateNameError{Kind: "reason"}
		}
		return fmt.Errorf("update reason: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("reason %s: %w", reason.ID, internalShared.ErrNotFound)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	sql, args, err := shared.Builder().Delete(table).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	tag, err := r.tx.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete reason: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("reason %s: %w", id, internalShared.ErrNotFound)
	}
	return nil
}

func (r *repository) selectMany(ctx context.Context, q squirrel.SelectBuilder) ([]Reason, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	var items []Reason
	if err := pgxscan.Select(ctx, r.tx.Querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list reasons: %w", err)
	}
	return items, nil
}

func (r *repository) selectOne(ctx context.Context, pred squirrel.Sqlizer, key string) (Reason, error) {
	sql, args, err := shared.Builder().Select(columns...).From(table).Where(pred).Limit(1).ToSql()
	if err != nil {
		return Reason{}, err
	}
	var reason Reason
	if err := pgxscan.Get(ctx, r.tx.Querier(ctx), &reason, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return Reason{}, fmt.Errorf("reason %s: %w", key, internalShared.ErrNotFound)
		}
		return Reason{}, fmt.Errorf("get reason: %w", err)
	}
	return reason, nil
}

func nullableType(t Type) any {
	if t == "" {
		return nil
	}
	return string(t)
}
