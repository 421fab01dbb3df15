package suppliers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/stockroom-ims/stockroom/internal/masterdata/shared"
	"github.com/stockroom-ims/stockroom/internal/platform/db"
	internalShared "github.com/stockroom-ims/stockroom/internal/shared"
)

const table = "suppliers"

var columns = []string{
	"id", "name", "company_contact_num", "address", "contact_persons", "is_active",
	"created_by", "created_at", "last_modified_by", "last_modified_at",
}

// Repository persists suppliers.
type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Supplier, int, error)
	ListActive(ctx context.Context) ([]Supplier, error)
	Get(ctx context.Context, id string) (Supplier, error)
	NameTaken(ctx context.Context, name, excludeID string) (bool, error)
	Create(ctx context.Context, s Supplier) error
	Update(ctx context.Context, s Supplier) error
}

// row mirrors the table; jsonb columns arrive as raw documents.
type row struct {
	ID                string    `db:"id"`
	Name              string    `db:"name"`
	CompanyContactNum string    `db:"company_contact_num"`
	Address           []byte    `db:"address"`
	ContactPersons    []byte    `db:"contact_persons"`
	IsActive          bool      `db:"is_active"`
	CreatedBy         string    `db:"created_by"`
	CreatedAt         time.Time `db:"created_at"`
	LastModifiedBy    string    `db:"last_modified_by"`
	LastModifiedAt    time.Time `db:"last_modified_at"`
}

func (r row) supplier() (Supplier, error) {
	s := Supplier{
		ID:                r.ID,
		Name:              r.Name,
		CompanyContactNum: r.CompanyContactNum,
		IsActive:          r.IsActive,
		Audit: internalShared.Audit{
			CreatedBy:      r.CreatedBy,
			CreatedAt:      r.CreatedAt,
			LastModifiedBy: r.LastModifiedBy,
			LastModifiedAt: r.LastModifiedAt,
		},
	}
	if len(r.Address) > 0 {
		if err := json.Unmarshal(r.Address, &s.Address); err != nil {
			return Supplier{}, fmt.Errorf("decode supplier %s address: %w", r.ID, err)
		}
	}
	if len(r.ContactPersons) > 0 {
		if err := json.Unmarshal(r.ContactPersons, &s.ContactPersons); err != nil {
			return Supplier{}, fmt.Errorf("decode supplier %s contacts: %w", r.ID, err)
		}
	}
	return s, nil
}

type repository struct {
	tx *db.TxManager
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(tx *db.TxManager) Repository {
	return &repository{tx: tx}
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Supplier, int, error) {
	q := shared.ApplyFilters(shared.Builder().Select(columns...).From(table), "", filters)

	countSQL, countArgs, err := shared.Builder().Select("COUNT(*)").FromSelect(q, "sub").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}
	var total int
	if err := r.tx.Querier(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count suppliers: %w", err)
	}

	q = q.OrderBy("name ASC")
	if filters.Limit > 0 {
		q = q.Limit(uint64(filters.Limit)).Offset(uint64(filters.Offset()))
	}
	items, err := r.selectMany(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repository) ListActive(ctx context.Context) ([]Supplier, error) {
	q := shared.Builder().Select(columns...).From(table).
		Where(squirrel.Eq{"is_active": true}).OrderBy("name ASC")
	return r.selectMany(ctx, q)
}

func (r *repository) Get(ctx context.Context, id string) (Supplier, error) {
	sql, args, err := shared.Builder().Select(columns...).From(table).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return Supplier{}, err
	}
	var rec row
	if err := pgxscan.Get(ctx, r.tx.Querier(ctx), &rec, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return Supplier{}, fmt.Errorf("supplier %s: %w", id, internalShared.ErrNotFound)
		}
		return Supplier{}, fmt.Errorf("get supplier: %w", err)
	}
	return rec.supplier()
}

func (r *repository) NameTaken(ctx context.Context, name, excludeID string) (bool, error) {
	return shared.NameTaken(ctx, r.tx.Querier(ctx), table, name, excludeID)
}

func (r *repository) Create(ctx context.Context, s Supplier) error {
	address, contacts, err := encodeDocuments(s)
	if err != nil {
		return err
	}
	sql, args, err := shared.Builder().Insert(table).Columns(columns...).
		Values(s.ID, s.Name, s.CompanyContactNum, address, contacts, s.IsActive,
			s.CreatedBy, s.CreatedAt, s.LastModifiedBy, s.LastModifiedAt).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.tx.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		if db.IsUniqueViolation(err) {
			return &internalShared.DuplicateNameError{Kind: "supplier"}
		}
		return fmt.Errorf("insert supplier: %w", err)
	}
	return nil
}

func (r *repository) Update(ctx context.Context, s Supplier) error {
	address, contacts, err := encodeDocuments(s)
	if err != nil {
		return err
	}
	sql, args, err := shared.Builder().Update(table).
		Set("name", s.Name).
		Set("company_contact_num", s.CompanyContactNum).
		Set("address", address).
		Set("contact_persons", contacts).
		Set("is_active", s.IsActive).
		Set("last_modified_by", s.LastModifiedBy).
		Set("last_modified_at", s.LastModifiedAt).
		Where(squirrel.Eq{"id": s.ID}).
		ToSql()
	if err != nil {
		return err
	}
	tag, err := r.tx.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return &internalShared.DuplicateNameError{Kind: "supplier"}
		}
		return fmt.Errorf("update supplier: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("supplier %s: %w", s.ID, internalShared.ErrNotFound)
	}
	return nil
}

func (r *repository) selectMany(ctx context.Context, q squirrel.SelectBuilder) ([]Supplier, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}
	var rows []row
	if err := pgxscan.Select(ctx, r.tx.Querier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	items := make([]Supplier, 0, len(rows))
	for _, rec := range rows {
		s, err := rec.supplier()
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, nil
}

func encodeDocuments(s Supplier) (string, string, error) {
	address, err := json.Marshal(s.Address)
	if err != nil {
		return "", "", fmt.Errorf("encode address: %w", err)
	}
	contacts := s.ContactPersons
	if contacts == nil {
		contacts = []ContactPerson{}
	}
	encoded, err := json.Marshal(contacts)
	if err != nil {
		return "", "", fmt.Errorf("encode contacts: %w", err)
	}
	return string(address), string(encoded), nil
}
