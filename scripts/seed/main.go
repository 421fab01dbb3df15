package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockroom-ims/stockroom/internal/app"
	"github.com/stockroom-ims/stockroom/internal/auth"
	"github.com/stockroom-ims/stockroom/internal/inventory"
	"github.com/stockroom-ims/stockroom/internal/masterdata/categories"
	"github.com/stockroom-ims/stockroom/internal/masterdata/products"
	"github.com/stockroom-ims/stockroom/internal/masterdata/reasons"
	mdshared "github.com/stockroom-ims/stockroom/internal/masterdata/shared"
	"github.com/stockroom-ims/stockroom/internal/masterdata/suppliers"
	"github.com/stockroom-ims/stockroom/internal/platform/db"
	"github.com/stockroom-ims/stockroom/internal/shared"
)

type services struct {
	auth       *auth.Service
	reasons    *reasons.Service
	categories *categories.Service
	suppliers  *suppliers.Service
	products   *products.Service
}

func main() {
	withSamples := flag.Bool("samples", true, "seed sample categories, suppliers and products")
	flag.Parse()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)
	ctx := context.Background()

	pool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{MaxConns: 2})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()
	txm := db.NewTxManager(pool)

	reasonService := reasons.NewService(reasons.NewRepository(txm))
	inventoryService := inventory.NewService(inventory.NewRepository(txm), reasonService, inventory.ServiceConfig{Logger: logger})
	svc := services{
		auth:       auth.NewService(auth.NewRepository(txm), shared.UTCNow),
		reasons:    reasonService,
		categories: categories.NewService(categories.NewRepository(txm), shared.UTCNow),
		suppliers:  suppliers.NewService(suppliers.NewRepository(txm), shared.UTCNow),
		products:   products.NewService(products.NewRepository(txm), txm, inventoryService, shared.UTCNow),
	}

	steps := []struct {
		name string
		run  func(context.Context) error
	}{
		{"admin", func(ctx context.Context) error { return svc.auth.EnsureDefaultAdmin(ctx, logger) }},
		{"reasons", svc.seedReasons},
		{"locations", func(ctx context.Context) error { return seedLocations(ctx, pool) }},
	}
	if *withSamples {
		steps = append(steps, struct {
			name string
			run  func(context.Context) error
		}{"catalog", svc.seedCatalog})
	}

	for _, step := range steps {
		logger.Info("seeding", slog.String("step", step.name))
		if err := step.run(ctx); err != nil {
			logger.Error("seed failed", slog.String("step", step.name), slog.Any("error", err))
			os.Exit(1)
		}
	}
	logger.Info("seed complete")
}

func (s services) seedReasons(ctx context.Context) error {
	defaults := []struct {
		name, description string
		typ               reasons.Type
	}{
		{inventory.OpeningReasonName, inventory.OpeningReasonDescription, reasons.TypeIn},
		{"Purchase", "Goods received from a supplier.", reasons.TypeIn},
		{"Customer Return", "Goods returned by a customer.", reasons.TypeIn},
		{"Sale", "Goods sold to a customer.", reasons.TypeOut},
		{"Damaged", "Goods written off as damaged or expired.", reasons.TypeOut},
		{"Adjustment", "Manual correction after a physical count.", reasons.TypeBoth},
	}
	for _, d := range defaults {
		if _, err := s.reasons.Ensure(ctx, d.name, d.description, d.typ); err != nil {
			return err
		}
	}
	return nil
}

func (s services) seedCatalog(ctx context.Context) error {
	actor := shared.SystemActor

	categoryIDs := map[string]string{}
	for _, in := range []categories.Input{
		{Name: "Beverages", Description: "Bottled and canned drinks."},
		{Name: "Canned Goods", Description: "Shelf-stable canned food."},
		{Name: "Household", Description: "Cleaning and household supplies."},
	} {
		c, err := s.categories.Create(ctx, actor, in)
		if errors.Is(err, shared.ErrDuplicate) {
			c, err = s.findCategory(ctx, in.Name)
		}
		if err != nil {
			return err
		}
		categoryIDs[in.Name] = c.ID
	}

	supplierIDs := map[string]string{}
	for _, in := range []suppliers.Input{
		{
			Name:              "Luzon Trading Corp.",
			CompanyContactNum: "+63 2 123 4567",
			Address:           suppliers.Address{Region: "NCR", City: "Quezon City", StreetAddress: "12 Mabini St.", PostalCode: "1100"},
			ContactPersons:    []suppliers.ContactPerson{{Name: "Ana Cruz", Email: "ana@luzontrading.ph", Phone: "09171234567"}},
		},
		{
			Name:              "Visayas Supply Co.",
			CompanyContactNum: "09181234567",
			Address:           suppliers.Address{Region: "Region VII", City: "Cebu City", StreetAddress: "45 Colon St.", PostalCode: "6000"},
			ContactPersons:    []suppliers.ContactPerson{{Name: "Ben Reyes", Email: "ben@visayassupply.ph", Phone: "+639191234567"}},
		},
	} {
		sup, err := s.suppliers.Create(ctx, actor, in)
		if errors.Is(err, shared.ErrDuplicate) {
			sup, err = s.findSupplier(ctx, in.Name)
		}
		if err != nil {
			return err
		}
		supplierIDs[in.Name] = sup.ID
	}

	for _, in := range []products.Input{
		{Name: "Bottled Water 500ml", Quantity: "120", Price: "15.00", CategoryID: categoryIDs["Beverages"], SupplierID: supplierIDs["Luzon Trading Corp."]},
		{Name: "Iced Tea 1L", Quantity: "48", Price: "45.50", CategoryID: categoryIDs["Beverages"], SupplierID: supplierIDs["Luzon Trading Corp."]},
		{Name: "Corned Beef 150g", Quantity: "8", Price: "38.75", CategoryID: categoryIDs["Canned Goods"], SupplierID: supplierIDs["Visayas Supply Co."]},
		{Name: "Sardines 155g", Quantity: "0", Price: "22.00", CategoryID: categoryIDs["Canned Goods"], SupplierID: supplierIDs["Visayas Supply Co."]},
		{Name: "Dishwashing Liquid 250ml", Quantity: "30", Price: "49.00", CategoryID: categoryIDs["Household"], SupplierID: supplierIDs["Visayas Supply Co."]},
	} {
		if _, err := s.products.Create(ctx, actor, in); err != nil && !errors.Is(err, shared.ErrDuplicate) {
			return err
		}
	}
	return nil
}

func (s services) findCategory(ctx context.Context, name string) (categories.Category, error) {
	list, _, err := s.categories.List(ctx, mdshared.ListFilters{Search: name, Limit: 50})
	if err != nil {
		return categories.Category{}, err
	}
	for _, c := range list {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return categories.Category{}, shared.ErrNotFound
}

func (s services) findSupplier(ctx context.Context, name string) (suppliers.Supplier, error) {
	list, _, err := s.suppliers.List(ctx, mdshared.ListFilters{Search: name, Limit: 50})
	if err != nil {
		return suppliers.Supplier{}, err
	}
	for _, sup := range list {
		if strings.EqualFold(sup.Name, name) {
			return sup, nil
		}
	}
	return suppliers.Supplier{}, shared.ErrNotFound
}

// seedLocations loads a small slice of the Philippine address hierarchy. The
// full dataset is imported separately.
func seedLocations(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`INSERT INTO regions (region_id, region_name, region_description) VALUES
			(13, 'NCR', 'National Capital Region'),
			(7, 'Region VII', 'Central Visayas')
		ON CONFLICT (region_id) DO NOTHING`,
		`INSERT INTO provinces (province_id, region_id, province_name) VALUES
			(1374, 13, 'Metro Manila'),
			(722, 7, 'Cebu')
		ON CONFLICT (province_id) DO NOTHING`,
		`INSERT INTO municipalities (municipality_id, province_id, municipality_name) VALUES
			(137404, 1374, 'Quezon City'),
			(137501, 1374, 'Manila'),
			(72217, 722, 'Cebu City')
		ON CONFLICT (municipality_id) DO NOTHING`,
		`INSERT INTO barangays (barangay_id, municipality_id, barangay_name) VALUES
			(137404001, 137404, 'Bagong Pag-asa'),
			(137404002, 137404, 'Commonwealth'),
			(137501001, 137501, 'Ermita'),
			(72217001, 72217, 'Lahug')
		ON CONFLICT (barangay_id) DO NOTHING`,
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
