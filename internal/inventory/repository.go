package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/stockroom-ims/stockroom/internal/platform/db"
)

// TxRepository exposes the writes made inside one ledger transaction.
type TxRepository interface {
	GetProduct(ctx context.Context, id string) (ProductState, error)
	UpdateQuantity(ctx context.Context, p ProductState, newQty int, actor string, at time.Time) error
	InsertMovement(ctx context.Context, m Movement) error
}

// Repository persists ledger data in PostgreSQL.
type Repository struct {
	tx *db.TxManager
}

// NewRepository constructs Repository.
func NewRepository(tx *db.TxManager) *Repository {
	return &Repository{tx: tx}
}

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

type txRepo struct {
	q db.Querier
}

// WithTx runs fn inside a repeatable-read transaction, joining one already
// carried by ctx.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return r.tx.WithTx(ctx, func(ctx context.Context) error {
		return fn(ctx, &txRepo{q: r.tx.Querier(ctx)})
	})
}

func (r *Repository) GetProduct(ctx context.Context, id string) (ProductState, error) {
	return (&txRepo{q: r.tx.Querier(ctx)}).GetProduct(ctx, id)
}

func (t *txRepo) GetProduct(ctx context.Context, id string) (ProductState, error) {
	sql, args, err := builder().Select("id", "name", "quantity", "version").
		From("products").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return ProductState{}, err
	}
	var p ProductState
	if err := pgxscan.Get(ctx, t.q, &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return ProductState{}, ErrProductNotFound
		}
		return ProductState{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// UpdateQuantity writes newQty only when the row still carries p.Version.
func (t *txRepo) UpdateQuantity(ctx context.Context, p ProductState, newQty int, actor string, at time.Time) error {
	sql, args, err := builder().Update("products").
		Set("quantity", newQty).
		Set("version", squirrel.Expr("version + 1")).
		Set("last_modified_by", actor).
		Set("last_modified_at", at).
		Where(squirrel.Eq{"id": p.ID, "version": p.Version}).
		ToSql()
	if err != nil {
		return err
	}
	tag, err := t.q.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConcurrentUpdate
	}
	return nil
}

func (t *txRepo) InsertMovement(ctx context.Context, m Movement) error {
	sql, args, err := builder().Insert("stock_movements").
		Columns("id", "product_id", "reason_id", "quantity_change", "remarks", "created_by", "created_at").
		Values(m.ID, m.ProductID, m.ReasonID, m.QuantityChange, m.Remarks, m.CreatedBy, m.CreatedAt).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := t.q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// History lists the product's movements newest first. Reasons that are
// unset or no longer exist resolve to Uncategorized.
func (r *Repository) History(ctx context.Context, productID string) ([]HistoryEntry, error) {
	sql, args, err := builder().
		Select("m.id", "m.product_id", "m.reason_id", "m.quantity_change", "m.remarks", "m.created_by", "m.created_at").
		Column("COALESCE(r.name, ?) AS reason_name", UncategorizedReason).
		From("stock_movements m").
		LeftJoin("reasons r ON r.id = m.reason_id").
		Where(squirrel.Eq{"m.product_id": productID}).
		OrderBy("m.created_at DESC", "m.seq DESC").
		ToSql()
	if err != nil {
		return nil, err
	}
	var entries []HistoryEntry
	if err := pgxscan.Select(ctx, r.tx.Querier(ctx), &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("movement history: %w", err)
	}
	return entries, nil
}

// Discrepancies compares cached quantities with ledger sums. An empty
// productID checks every product.
func (r *Repository) Discrepancies(ctx context.Context, productID string) ([]Discrepancy, error) {
	q := builder().
		Select("p.id AS product_id", "p.name", "p.quantity AS cached", "COALESCE(SUM(m.quantity_change), 0) AS ledger").
		From("products p").
		LeftJoin("stock_movements m ON m.product_id = p.id").
		GroupBy("p.id", "p.name", "p.quantity").
		Having("p.quantity <> COALESCE(SUM(m.quantity_change), 0)").
		OrderBy("p.name ASC")
	if productID != "" {
		q = q.Where(squirrel.Eq{"p.id": productID})
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	var out []Discrepancy
	if err := pgxscan.Select(ctx, r.tx.Querier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("reconcile ledger: %w", err)
	}
	return out, nil
}
