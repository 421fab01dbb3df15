package categories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/stockroom-ims/stockroom/internal/masterdata/shared"
	"github.com/stockroom-ims/stockroom/internal/platform/db"
	internalShared "github.com/stockroom-ims/stockroom/internal/shared"
)

const table = "categories"

var columns = []string{
	"id", "name", "description", "is_active",
	"created_by", "created_at", "last_modified_by", "last_modified_at",
}

// Repository persists categories.
type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Category, int, error)
	ListActive(ctx context.Context) ([]Category, error)
	Get(ctx context.Context, id string) (Category, error)
	NameTaken(ctx context.Context, name, excludeID string) (bool, error)
	Create(ctx context.Context, c Category) error
	Update(ctx context.Context, c Category) error
}

type repository struct {
	tx *db.TxManager
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(tx *db.TxManager) Repository {
	return &repository{tx: tx}
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Category, int, error) {
	q := shared.ApplyFilters(shared.Builder().Select(columns...).From(table), "", filters)

	countSQL, countArgs, err := shared.Builder().Select("COUNT(*)").FromSelect(q, "sub").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}
	querier := r.tx.Querier(ctx)
	var total int
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count categories: %w", err)
	}

	q = q.OrderBy("name ASC")
	if filters.Limit > 0 {
		q = q.Limit(uint64(filters.Limit)).Offset(uint64(filters.Offset()))
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list: %w", err)
	}
	var items []Category
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}
	return items, total, nil
}

func (r *repository) ListActive(ctx context.Context) ([]Category, error) {
	sql, args, err := shared.Builder().Select("id", "name").From(table).
		Where(squirrel.Eq{"is_active": true}).OrderBy("name ASC").ToSql()
	if err != nil {
		return nil, err
	}
	var items []Category
	if err := pgxscan.Select(ctx, r.tx.Querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list active categories: %w", err)
	}
	return items, nil
}

func (r *repository) Get(ctx context.Context, id string) (Category, error) {
	sql, args, err := shared.Builder().Select(columns...).From(table).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return Category{}, err
	}
	var c Category
	if err := pgxscan.Get(ctx, r.tx.Querier(ctx), &c, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return Category{}, fmt.Errorf("category %s: %w", id, internalShared.ErrNotFound)
		}
		return Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (r *repository) NameTaken(ctx context.Context, name, excludeID string) (bool, error) {
	return shared.NameTaken(ctx, r.tx.Querier(ctx), table, name, excludeID)
}

func (r *repository) Create(ctx context.Context, c Category) error {
	sql, args, err := shared.Builder().Insert(table).Columns(columns...).
		Values(c.ID, c.Name, c.Description, c.IsActive, c.CreatedBy, c.CreatedAt, c.LastModifiedBy, c.LastModifiedAt).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.tx.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		if db.IsUniqueViolation(err) {
			return &internalShared.DuplicateNameError{Kind: "category"}
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *repository) Update(ctx context.Context, c Category) error {
	sql, args, err := shared.Builder().Update(table).
		Set("name", c.Name).
		Set("description", c.Description).
		Set("is_active", c.IsActive).
		Set("last_modified_by", c.LastModifiedBy).
		Set("last_modified_at", c.LastModifiedAt).
		Where(squirrel.Eq{"id": c.ID}).
		ToSql()
	if err != nil {
		return err
	}
	tag, err := r.tx.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return &internalShared.DuplicateNameError{Kind: "category"}
		}
		return fmt.Errorf("update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("category %s: %w", c.ID, internalShared.ErrNotFound)
	}
	return nil
}
