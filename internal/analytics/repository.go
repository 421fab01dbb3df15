package analytics

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/stockroom-ims/stockroom/internal/platform/db"
)

// Repository reads the raw rows the aggregator folds.
type Repository interface {
	Products(ctx context.Context) ([]ProductRow, error)
	CountCategories(ctx context.Context) (int, error)
	CountSuppliers(ctx context.Context) (int, error)
	Outflows(ctx context.Context) ([]OutflowRow, error)
}

type pgRepository struct {
	tx *db.TxManager
}

// NewRepository constructs the PostgreSQL reader.
func NewRepository(tx *db.TxManager) Repository {
	return &pgRepository{tx: tx}
}

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *pgRepository) Products(ctx context.Context) ([]ProductRow, error) {
	sql, args, err := builder().Select("id", "name", "quantity", "price", "category_id").From("products").ToSql()
	if err != nil {
		return nil, err
	}
	var rows []ProductRow
	if err := pgxscan.Select(ctx, r.tx.Querier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("analytics products: %w", err)
	}
	return rows, nil
}

func (r *pgRepository) CountCategories(ctx context.Context) (int, error) {
	return r.count(ctx, "categories")
}

func (r *pgRepository) CountSuppliers(ctx context.Context) (int, error) {
	return r.count(ctx, "suppliers")
}

func (r *pgRepository) count(ctx context.Context, table string) (int, error) {
	sql, args, err := builder().Select("COUNT(*)").From(table).ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	if err := r.tx.Querier(ctx).QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// Outflows lists stock out movements oldest first. Product and reason
// names are NULL when the reference no longer resolves.
func (r *pgRepository) Outflows(ctx context.Context) ([]OutflowRow, error) {
	sql, args, err := builder().
		Select("m.product_id", "p.name AS product_name", "r.name AS reason_name", "m.quantity_change", "m.created_at").
		From("stock_movements m").
		LeftJoin("products p ON p.id = m.product_id").
		LeftJoin("reasons r ON r.id = m.reason_id").
		Where(squirrel.Lt{"m.quantity_change": 0}).
		OrderBy("m.created_at ASC", "m.seq ASC").
		ToSql()
	if err != nil {
		return nil, err
	}
	var rows []OutflowRow
	if err := pgxscan.Select(ctx, r.tx.Querier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("analytics outflows: %w", err)
	}
	return rows, nil
}
