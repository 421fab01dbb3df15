package locations

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/stockroom-ims/stockroom/internal/platform/db"
)

// Repository reads the address reference tables.
type Repository interface {
	Regions(ctx context.Context) ([]Region, error)
	Provinces(ctx context.Context, regionID int) ([]Province, error)
	Municipalities(ctx context.Context, provinceID int) ([]Municipality, error)
	Barangays(ctx context.Context, municipalityID int) ([]Barangay, error)
}

type repository struct {
	tx *db.TxManager
	sq squirrel.StatementBuilderType
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(tx *db.TxManager) Repository {
	return &repository{tx: tx, sq: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)}
}

func (r *repository) Regions(ctx context.Context) ([]Region, error) {
	var out []Region
	q := r.sq.Select("region_id", "region_name", "region_description").From("regions").OrderBy("region_name")
	if err := r.selectAll(ctx, &out, q, "regions"); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) Provinces(ctx context.Context, regionID int) ([]Province, error) {
	var out []Province
	q := r.sq.Select("province_id", "region_id", "province_name").From("provinces").
		Where(squirrel.Eq{"region_id": regionID}).OrderBy("province_name")
	if err := r.selectAll(ctx, &out, q, "provinces"); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) Municipalities(ctx context.Context, provinceID int) ([]Municipality, error) {
	var out []Municipality
	q := r.sq.Select("municipality_id", "province_id", "municipality_name").From("municipalities").
		Where(squirrel.Eq{"province_id": provinceID}).OrderBy("municipality_name")
	if err := r.selectAll(ctx, &out, q, "municipalities"); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) Barangays(ctx context.Context, municipalityID int) ([]Barangay, error) {
	var out []Barangay
	q := r.sq.Select("barangay_id", "municipality_id", "barangay_name").From("barangays").
		Where(squirrel.Eq{"municipality_id": municipalityID}).OrderBy("barangay_name")
	if err := r.selectAll(ctx, &out, q, "barangays"); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) selectAll(ctx context.Context, dst any, q squirrel.SelectBuilder, what string) error {
	sql, args, err := q.ToSql()
	if err != nil {
		return err
	}
	if err := pgxscan.Select(ctx, r.tx.Querier(ctx), dst, sql, args...); err != nil {
		return fmt.Errorf("list %s: %w", what, err)
	}
	return nil
}
