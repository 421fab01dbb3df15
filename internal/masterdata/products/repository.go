package products

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/stockroom-ims/stockroom/internal/masterdata/shared"
	"github.com/stockroom-ims/stockroom/internal/platform/db"
	internalShared "github.com/stockroom-ims/stockroom/internal/shared"
)

const table = "products"

var (
	insertColumns = []string{
		"id", "name", "quantity", "price", "category_id", "supplier_id", "is_active", "version",
		"created_by", "created_at", "last_modified_by", "last_modified_at",
	}
	selectColumns = []string{
		"p.id", "p.name", "p.quantity", "p.price", "p.category_id", "p.supplier_id", "p.is_active", "p.version",
		"p.created_by", "p.created_at", "p.last_modified_by", "p.last_modified_at",
		"COALESCE(c.name, '') AS category_name",
		"COALESCE(s.name, '') AS supplier_name",
	}
)

// Repository persists products.
type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error)
	ListActive(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id string) (Product, error)
	NameTaken(ctx context.Context, name, excludeID string) (bool, error)
	Create(ctx context.Context, p Product) error
	Update(ctx context.Context, p Product) error
}

type repository struct {
	tx *db.TxManager
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(tx *db.TxManager) Repository {
	return &repository{tx: tx}
}

func joined() squirrel.SelectBuilder {
	return shared.Builder().Select(selectColumns...).
		From(table + " p").
		LeftJoin("categories c ON c.id = p.category_id").
		LeftJoin("suppliers s ON s.id = p.supplier_id")
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	q := shared.ApplyFilters(joined(), "p", filters)

	countSQL, countArgs, err := shared.Builder().Select("COUNT(*)").FromSelect(q, "sub").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}
	querier := r.tx.Querier(ctx)
	var total int
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	q = q.OrderBy("p.name ASC")
	if filters.Limit > 0 {
		q = q.Limit(uint64(filters.Limit)).Offset(uint64(filters.Offset()))
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list: %w", err)
	}
	var items []Product
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return items, total, nil
}

func (r *repository) ListActive(ctx context.Context) ([]Product, error) {
	sql, args, err := joined().Where(squirrel.Eq{"p.is_active": true}).OrderBy("p.name ASC").ToSql()
	if err != nil {
		return nil, err
	}
	var items []Product
	if err := pgxscan.Select(ctx, r.tx.Querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list active products: %w", err)
	}
	return items, nil
}

func (r *repository) Get(ctx context.Context, id string) (Product, error) {
	sql, args, err := joined().Where(squirrel.Eq{"p.id": id}).ToSql()
	if err != nil {
		return Product{}, err
	}
	var p Product
	if err := pgxscan.Get(ctx, r.tx.Querier(ctx), &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return Product{}, fmt.Errorf("product %s: %w", id, internalShared.ErrNotFound)
		}
		return Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *repository) NameTaken(ctx context.Context, name, excludeID string) (bool, error) {
	return shared.NameTaken(ctx, r.tx.Querier(ctx), table, name, excludeID)
}

func (r *repository) Create(ctx context.Context, p Product) error {
	sql, args, err := shared.Builder().Insert(table).Columns(insertColumns...).
		Values(p.ID, p.Name, p.Quantity, p.Price, p.CategoryID, p.SupplierID, p.IsActive, p.Version,
			p.CreatedBy, p.CreatedAt, p.LastModifiedBy, p.LastModifiedAt).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.tx.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		if db.IsUniqueViolation(err) {
			return &internalShared.DuplicateNameError{Kind: "product"}
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// Update writes the catalog fields. Quantity and version belong to the
// stock ledger and are left alone.
func (r *repository) Update(ctx context.Context, p Product) error {
	sql, args, err := shared.Builder().Update(table).
		Set("name", p.Name).
		Set("price", p.Price).
		Set("category_id", p.CategoryID).
		Set("supplier_id", p.SupplierID).
		Set("is_active", p.IsActive).
		Set("last_modified_by", p.LastModifiedBy).
		Set("last_modified_at", p.LastModifiedAt).
		Where(squirrel.Eq{"id": p.ID}).
		ToSql()
	if err != nil {
		return err
	}
	tag, err := r.tx.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return &internalShared.DuplicateNameError{Kind: "product"}
		}
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %s: %w", p.ID, internalShared.ErrNotFound)
	}
	return nil
}
