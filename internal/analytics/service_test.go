package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	products   []ProductRow
	outflows   []OutflowRow
	categories int
	suppliers  int
	err        error
}

func (m *memoryRepo) Products(ctx context.Context) ([]ProductRow, error) {
	return m.products, m.err
}

func (m *memoryRepo) CountCategories(ctx context.Context) (int, error) {
	return m.categories, nil
}

func (m *memoryRepo) CountSuppliers(ctx context.Context) (int, error) {
	return m.suppliers, nil
}

func (m *memoryRepo) Outflows(ctx context.Context) ([]OutflowRow, error) {
	return m.outflows, nil
}

func ptr(s string) *string { return &s }

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func out(product string, name, reason *string, qty int, at time.Time) OutflowRow {
	return OutflowRow{ProductID: product, ProductName: name, ReasonName: reason, QuantityChange: -qty, CreatedAt: at}
}

func TestSnapshotCountsAndValue(t *testing.T) {
	repo := &memoryRepo{
		products: []ProductRow{
			{ID: "p1", Name: "Rice", Quantity: 9, Price: decimal.RequireFromString("50.25"), CategoryID: "c1"},
			{ID: "p2", Name: "Oil", Quantity: 10, Price: decimal.RequireFromString("120"), CategoryID: "c1"},
			{ID: "p3", Name: "Soap", Quantity: 0, Price: decimal.RequireFromString("15.5"), CategoryID: "c2"},
		},
		categories: 4,
		suppliers:  2,
	}
	snap, err := NewService(repo, clock, 0).Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, snap.TotalProducts)
	assert.Equal(t, 4, snap.CategoryCount)
	assert.Equal(t, 2, snap.CategoriesInUse)
	assert.Equal(t, 2, snap.SupplierCount)
	assert.Equal(t, 2, snap.LowStockCount)
	assert.Equal(t, 10, snap.LowStockThreshold)
	assert.Equal(t, "1652.25", snap.EstimatedInventoryValue.StringFixed(2))
}

func TestStockOutThisMonthUsesCalendarMonth(t *testing.T) {
	repo := &memoryRepo{outflows: []OutflowRow{
		out("p1", ptr("Rice"), ptr("Sale"), 2, time.Date(2024, 5, 31, 23, 59, 0, 0, time.UTC)),
		out("p1", ptr("Rice"), ptr("Sale"), 3, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)),
		out("p2", ptr("Oil"), ptr("Damaged"), 4, time.Date(2024, 6, 14, 9, 0, 0, 0, time.UTC)),
	}}
	snap, err := NewService(repo, clock, 10).Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, snap.TotalStockOutThisMonth)
}

func TestTopProductsOnlyCountSales(t *testing.T) {
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	repo := &memoryRepo{outflows: []OutflowRow{
		out("p1", ptr("Rice"), ptr("sale"), 5, day),
		out("p2", ptr("Oil"), ptr("Stock Out"), 5, day.Add(time.Hour)),
		out("p3", nil, ptr("Sale"), 9, day.Add(2*time.Hour)),
		out("p4", ptr("Soap"), ptr("Damaged"), 50, day.Add(3*time.Hour)),
		out("p5", ptr("Milk"), nil, 40, day.Add(4*time.Hour)),
		out("p6", ptr("Tea"), ptr("Sale"), 1, day.Add(5*time.Hour)),
		out("p7", ptr("Salt"), ptr("Sale"), 1, day.Add(6*time.Hour)),
		out("p8", ptr("Eggs"), ptr("Sale"), 1, day.Add(7*time.Hour)),
	}}
	snap, err := NewService(repo, clock, 10).Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.TopProducts, 5)
	assert.Equal(t, ProductOutflow{ProductID: "p3", Name: UnknownProduct, Quantity: 9}, snap.TopProducts[0])
	assert.Equal(t, "Rice", snap.TopProducts[1].Name)
	assert.Equal(t, "Oil", snap.TopProducts[2].Name)
	assert.Equal(t, "Tea", snap.TopProducts[3].Name)
	assert.Equal(t, "Salt", snap.TopProducts[4].Name)
}

func TestReasonBreakdown(t *testing.T) {
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	repo := &memoryRepo{outflows: []OutflowRow{
		out("p1", ptr("Rice"), ptr("Sale"), 1, day),
		out("p1", ptr("Rice"), ptr("Sale"), 1, day),
		out("p1", ptr("Rice"), nil, 1, day),
		out("p2", ptr("Oil"), ptr("Damaged"), 1, day),
		out("p2", ptr("Oil"), ptr("Expired"), 1, day),
		out("p2", ptr("Oil"), ptr("Expired"), 1, day),
	}}
	snap, err := NewService(repo, clock, 10).Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []ReasonCount{
		{Reason: "Expired", Count: 2},
		{Reason: "Sale", Count: 2},
		{Reason: "Damaged", Count: 1},
		{Reason: Uncategorized, Count: 1},
	}, snap.ReasonBreakdown)
}

func TestOutflowTrend(t *testing.T) {
	repo := &memoryRepo{outflows: []OutflowRow{
		out("p1", ptr("Rice"), ptr("Sale"), 8, time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)),
		out("p1", ptr("Rice"), ptr("Sale"), 2, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)),
		out("p1", ptr("Rice"), ptr("Sale"), 5, time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)),
	}}
	snap, err := NewService(repo, clock, 10).Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.OutflowTrend, 6)
	assert.Equal(t, MonthOutflow{Month: "2024-01", Quantity: 2}, snap.OutflowTrend[0])
	assert.Equal(t, MonthOutflow{Month: "2024-06", Quantity: 5}, snap.OutflowTrend[5])
}

func TestSnapshotPropagatesErrors(t *testing.T) {
	boom := errors.New("db down")
	_, err := NewService(&memoryRepo{err: boom}, clock, 10).Snapshot(context.Background())
	require.ErrorIs(t, err, boom)
}

func TestEmptyStore(t *testing.T) {
	snap, err := NewService(&memoryRepo{}, clock, 10).Snapshot(context.Background())
	require.NoError(t, err)
	assert.Zero(t, snap.TotalProducts)
	assert.True(t, snap.EstimatedInventoryValue.IsZero())
	assert.Empty(t, snap.TopProducts)
	assert.Empty(t, snap.ReasonBreakdown)
}
