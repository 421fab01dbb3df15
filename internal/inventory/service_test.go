package inventory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockroom-ims/stockroom/internal/masterdata/reasons"
	"github.com/stockroom-ims/stockroom/internal/shared"
)

type memoryRepo struct {
	products  map[string]ProductState
	movements []Movement
	reasons   map[string]reasons.Reason
	// interfere runs before each guarded update; returning true bumps the
	// product version as if another writer won the race.
	interfere func() bool
}

type memoryTx struct {
	repo      *memoryRepo
	products  map[string]ProductState
	movements []Movement
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{products: make(map[string]ProductState), reasons: make(map[string]reasons.Reason)}
}

func (r *memoryRepo) addProduct(name string, qty int) string {
	id := uuid.NewString()
	r.products[id] = ProductState{ID: id, Name: name, Quantity: qty, Version: 1}
	if qty > 0 {
		r.movements = append(r.movements, Movement{ID: uuid.NewString(), ProductID: id, QuantityChange: qty, CreatedAt: time.Unix(0, 0)})
	}
	return id
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx := &memoryTx{repo: r, products: make(map[string]ProductState, len(r.products))}
	for k, v := range r.products {
		tx.products[k] = v
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	r.products = tx.products
	r.movements = append(r.movements, tx.movements...)
	return nil
}

func (r *memoryRepo) GetProduct(ctx context.Context, id string) (ProductState, error) {
	p, ok := r.products[id]
	if !ok {
		return ProductState{}, ErrProductNotFound
	}
	return p, nil
}

func (r *memoryRepo) History(ctx context.Context, productID string) ([]HistoryEntry, error) {
	var out []HistoryEntry
	for i := len(r.movements) - 1; i >= 0; i-- {
		m := r.movements[i]
		if m.ProductID != productID {
			continue
		}
		name := UncategorizedReason
		if m.ReasonID != nil {
			if reason, ok := r.reasons[*m.ReasonID]; ok {
				name = reason.Name
			}
		}
		out = append(out, HistoryEntry{Movement: m, ReasonName: name})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryRepo) Discrepancies(ctx context.Context, productID string) ([]Discrepancy, error) {
	sums := make(map[string]int)
	for _, m := range r.movements {
		sums[m.ProductID] += m.QuantityChange
	}
	var out []Discrepancy
	for id, p := range r.products {
		if productID != "" && id != productID {
			continue
		}
		if p.Quantity != sums[id] {
			out = append(out, Discrepancy{ProductID: id, Name: p.Name, Cached: p.Quantity, Ledger: sums[id]})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (tx *memoryTx) GetProduct(ctx context.Context, id string) (ProductState, error) {
	p, ok := tx.products[id]
	if !ok {
		return ProductState{}, ErrProductNotFound
	}
	return p, nil
}

func (tx *memoryTx) UpdateQuantity(ctx context.Context, p ProductState, newQty int, actor string, at time.Time) error {
	if tx.repo.interfere != nil && tx.repo.interfere() {
		cur := tx.repo.products[p.ID]
		cur.Version++
		tx.repo.products[p.ID] = cur
		tx.products[p.ID] = cur
	}
	cur := tx.products[p.ID]
	if cur.Version != p.Version {
		return ErrConcurrentUpdate
	}
	cur.Quantity = newQty
	cur.Version++
	tx.products[p.ID] = cur
	return nil
}

func (tx *memoryTx) InsertMovement(ctx context.Context, m Movement) error {
	tx.movements = append(tx.movements, m)
	return nil
}

type catalog struct {
	repo *memoryRepo
}

func (c catalog) ForDirection(ctx context.Context, dir reasons.Type) ([]reasons.Reason, error) {
	var out []reasons.Reason
	for _, r := range c.repo.reasons {
		if r.AppliesTo(dir) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (c catalog) Lookup(ctx context.Context, id string) (reasons.Reason, bool, error) {
	r, ok := c.repo.reasons[id]
	return r, ok, nil
}

func (c catalog) Ensure(ctx context.Context, name, description string, typ reasons.Type) (reasons.Reason, error) {
	for _, r := range c.repo.reasons {
		if strings.EqualFold(r.Name, name) {
			return r, nil
		}
	}
	r := reasons.Reason{ID: uuid.NewString(), Name: name, Description: description, Type: typ}
	c.repo.reasons[r.ID] = r
	return r, nil
}

func (r *memoryRepo) addReason(name string, typ reasons.Type) string {
	id := uuid.NewString()
	r.reasons[id] = reasons.Reason{ID: id, Name: name, Type: typ}
	return id
}

type countingRecorder map[string]int

func (c countingRecorder) ObserveStockMovement(direction string) { c[direction]++ }

func steppingClock() shared.Clock {
	current := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	return func() time.Time {
		current = current.Add(time.Minute)
		return current
	}
}

var clerk = shared.Actor{ID: "u1", Name: "Ana Cruz"}

func newTestService(repo *memoryRepo, rec countingRecorder) *Service {
	return NewService(repo, catalog{repo: repo}, ServiceConfig{
		RetryInitial: time.Millisecond,
		RetryMax:     2 * time.Millisecond,
		Clock:        steppingClock(),
		Metrics:      rec,
	})
}

func TestStockInAndOutKeepQuantityEqualToLedgerSum(t *testing.T) {
	repo := newMemoryRepo()
	rec := countingRecorder{}
	svc := newTestService(repo, rec)
	ctx := context.Background()
	id := repo.addProduct("Rice", 10)
	sale := repo.addReason("Sale", reasons.TypeOut)
	delivery := repo.addReason("Delivery", reasons.TypeIn)

	res, err := svc.StockIn(ctx, clerk, StockInput{ProductID: id, ReasonID: delivery, Quantity: 5, Remarks: "PO-12"})
	require.NoError(t, err)
	assert.Equal(t, 15, res.NewQuantity)
	assert.Equal(t, 5, res.Movement.QuantityChange)
	assert.Equal(t, "Rice", res.ProductName)

	res, err = svc.StockOut(ctx, clerk, StockInput{ProductID: id, ReasonID: sale, Quantity: 12})
	require.NoError(t, err)
	assert.Equal(t, 3, res.NewQuantity)
	assert.Equal(t, -12, res.Movement.QuantityChange)
	assert.Equal(t, DirectionOut, res.Movement.Direction())
	assert.Equal(t, "Ana Cruz", res.Movement.CreatedBy)

	drift, err := svc.ReconcileAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, drift)
	assert.Equal(t, countingRecorder{"In": 1, "Out": 1}, rec)
}

func TestStockOutBeyondStockReportsCurrentQuantity(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, countingRecorder{})
	id := repo.addProduct("Oil", 4)

	_, err := svc.StockOut(context.Background(), clerk, StockInput{ProductID: id, Quantity: 5})
	require.ErrorIs(t, err, ErrInsufficientStock)
	var insufficient *InsufficientStockError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, 4, insufficient.Current)
	assert.Equal(t, "Not enough stock. Current quantity: 4", err.Error())
	assert.Equal(t, 4, repo.products[id].Quantity)
	assert.Len(t, repo.movements, 1)
}

func TestStockOutOfEntireQuantityLeavesZero(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, countingRecorder{})
	id := repo.addProduct("Salt", 7)

	res, err := svc.StockOut(context.Background(), clerk, StockInput{ProductID: id, Quantity: 7})
	require.NoError(t, err)
	assert.Zero(t, res.NewQuantity)
}

func TestNonPositiveQuantityRejected(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, countingRecorder{})
	id := repo.addProduct("Tea", 1)

	_, err := svc.StockIn(context.Background(), clerk, StockInput{ProductID: id, Quantity: 0})
	require.ErrorIs(t, err, ErrInvalidQuantity)
	assert.Equal(t, "Quantity to add must be greater than 0.", err.Error())

	_, err = svc.StockOut(context.Background(), clerk, StockInput{ProductID: id, Quantity: -3})
	require.ErrorIs(t, err, ErrInvalidQuantity)
	assert.Equal(t, "Quantity to remove must be greater than 0.", err.Error())
	assert.Len(t, repo.movements, 1)
}

func TestQuantityBoundedByStockColumn(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, countingRecorder{})
	id := repo.addProduct("Soy Sauce", 10)

	_, err := svc.StockIn(context.Background(), clerk, StockInput{ProductID: id, Quantity: shared.MaxQuantity + 1})
	require.ErrorIs(t, err, ErrInvalidQuantity)
	assert.Equal(t, "Quantity cannot exceed 2147483647.", err.Error())

	_, err = svc.StockIn(context.Background(), clerk, StockInput{ProductID: id, Quantity: shared.MaxQuantity - 5})
	require.ErrorIs(t, err, ErrInvalidQuantity)
	var capacity *CapacityError
	require.True(t, errors.As(err, &capacity))
	assert.Equal(t, 10, capacity.Current)
	assert.Equal(t, 10, repo.products[id].Quantity)
	assert.Len(t, repo.movements, 1)

	res, err := svc.StockIn(context.Background(), clerk, StockInput{ProductID: id, Quantity: shared.MaxQuantity - 10})
	require.NoError(t, err)
	assert.Equal(t, shared.MaxQuantity, res.NewQuantity)
}

func TestUnknownProduct(t *testing.T) {
	svc := newTestService(newMemoryRepo(), countingRecorder{})
	_, err := svc.StockIn(context.Background(), clerk, StockInput{ProductID: uuid.NewString(), Quantity: 1})
	require.ErrorIs(t, err, ErrProductNotFound)

	_, err = svc.StockIn(context.Background(), clerk, StockInput{ProductID: "not-a-uuid", Quantity: 1})
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestReasonMustApplyToDirection(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, countingRecorder{})
	id := repo.addProduct("Milk", 3)
	sale := repo.addReason("Sale", reasons.TypeOut)

	_, err := svc.StockIn(context.Background(), clerk, StockInput{ProductID: id, ReasonID: sale, Quantity: 1})
	require.ErrorIs(t, err, ErrInvalidReason)
	_, err = svc.StockIn(context.Background(), clerk, StockInput{ProductID: id, ReasonID: uuid.NewString(), Quantity: 1})
	require.ErrorIs(t, err, ErrInvalidReason)
}

func TestConflictIsRetried(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, countingRecorder{})
	id := repo.addProduct("Bread", 10)

	conflicts := 2
	repo.interfere = func() bool {
		if conflicts > 0 {
			conflicts--
			return true
		}
		return false
	}
	res, err := svc.StockOut(context.Background(), clerk, StockInput{ProductID: id, Quantity: 4})
	require.NoError(t, err)
	assert.Equal(t, 6, res.NewQuantity)
	assert.Len(t, repo.movements, 2)
}

func TestConflictGivesUpAfterMaxAttempts(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, countingRecorder{})
	id := repo.addProduct("Eggs", 10)

	calls := 0
	repo.interfere = func() bool {
		calls++
		return true
	}
	_, err := svc.StockIn(context.Background(), clerk, StockInput{ProductID: id, Quantity: 1})
	require.ErrorIs(t, err, ErrConcurrentUpdate)
	assert.Equal(t, 3, calls)
	assert.Len(t, repo.movements, 1)
}

func TestHistoryNewestFirstWithDanglingReason(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, countingRecorder{})
	ctx := context.Background()
	id := repo.addProduct("Juice", 0)
	promo := repo.addReason("Promo", reasons.TypeOut)
	restock := repo.addReason("Restock", reasons.TypeBoth)

	_, err := svc.StockIn(ctx, clerk, StockInput{ProductID: id, ReasonID: restock, Quantity: 8})
	require.NoError(t, err)
	_, err = svc.StockOut(ctx, clerk, StockInput{ProductID: id, ReasonID: promo, Quantity: 2})
	require.NoError(t, err)
	delete(repo.reasons, promo)

	history, err := svc.History(ctx, id)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, -2, history[0].QuantityChange)
	assert.Equal(t, UncategorizedReason, history[0].ReasonName)
	assert.Equal(t, "Restock", history[1].ReasonName)

	again, err := svc.History(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, history, again)
}

func TestPostOpeningUsesInitialStockReason(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, countingRecorder{})
	ctx := context.Background()
	id := uuid.NewString()
	repo.products[id] = ProductState{ID: id, Name: "Noodles", Quantity: 12, Version: 1}

	require.NoError(t, svc.PostOpening(ctx, clerk, id, 12))
	history, err := svc.History(ctx, id)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, OpeningReasonName, history[0].ReasonName)
	assert.Equal(t, OpeningRemarks, history[0].Remarks)
	assert.Equal(t, 12, history[0].QuantityChange)

	second := uuid.NewString()
	repo.products[second] = ProductState{ID: second, Name: "Vinegar", Quantity: 1, Version: 1}
	require.NoError(t, svc.PostOpening(ctx, clerk, second, 1))
	assert.Len(t, repo.reasons, 1)

	require.ErrorIs(t, svc.PostOpening(ctx, clerk, second, 0), ErrInvalidQuantity)
}

func TestReconcileReportsDrift(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, countingRecorder{})
	ctx := context.Background()
	id := repo.addProduct("Sardines", 20)
	repo.addProduct("Corned Beef", 5)

	p := repo.products[id]
	p.Quantity = 17
	repo.products[id] = p

	drift, err := svc.ReconcileAll(ctx)
	require.NoError(t, err)
	require.Len(t, drift, 1)
	assert.Equal(t, Discrepancy{ProductID: id, Name: "Sardines", Cached: 17, Ledger: 20}, drift[0])
	assert.Equal(t, -3, drift[0].Drift())

	one, err := svc.Reconcile(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, drift, one)
}

func TestEligibleReasons(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, countingRecorder{})
	repo.addReason("Sale", reasons.TypeOut)
	repo.addReason("Delivery", reasons.TypeIn)
	repo.addReason("Count", "")

	in, err := svc.EligibleReasons(context.Background(), DirectionIn)
	require.NoError(t, err)
	require.Len(t, in, 2)
	assert.Equal(t, "Count", in[0].Name)
	assert.Equal(t, "Delivery", in[1].Name)
}
