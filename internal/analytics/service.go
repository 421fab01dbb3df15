package analytics

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/stockroom-ims/stockroom/internal/shared"
)

// Service derives dashboard snapshots. Nothing is cached; every call reads
// the current catalog and ledger.
type Service struct {
	repo      Repository
	now       shared.Clock
	threshold int
}

// NewService wires a Repository. Products below lowStockThreshold count as
// low stock; a non-positive threshold falls back to 10.
func NewService(repo Repository, clock shared.Clock, lowStockThreshold int) *Service {
	if clock == nil {
		clock = shared.UTCNow
	}
	if lowStockThreshold <= 0 {
		lowStockThreshold = 10
	}
	return &Service{repo: repo, now: clock, threshold: lowStockThreshold}
}

// Snapshot reads catalog and ledger rows concurrently and folds them.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	var (
		products   []ProductRow
		outflows   []OutflowRow
		categories int
		suppliers  int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = s.repo.Products(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.repo.CountCategories(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		suppliers, err = s.repo.CountSuppliers(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		outflows, err = s.repo.Outflows(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}

	now := s.now().UTC()
	snap := Snapshot{
		TotalProducts:     len(products),
		CategoryCount:     categories,
		SupplierCount:     suppliers,
		LowStockThreshold: s.threshold,
		GeneratedAt:       now,
	}
	foldProducts(&snap, products, s.threshold)
	snap.TotalStockOutThisMonth = stockOutSince(outflows, monthStart(now))
	snap.TopProducts = topProducts(outflows, topProductsLimit)
	snap.ReasonBreakdown = reasonBreakdown(outflows)
	snap.OutflowTrend = outflowTrend(outflows, now, trendMonths)
	return snap, nil
}

func foldProducts(snap *Snapshot, products []ProductRow, threshold int) {
	inUse := make(map[string]struct{})
	value := decimal.Zero
	for _, p := range products {
		if p.CategoryID != "" {
			inUse[p.CategoryID] = struct{}{}
		}
		if p.Quantity < threshold {
			snap.LowStockCount++
		}
		value = value.Add(p.Price.Mul(decimal.NewFromInt(int64(p.Quantity))))
	}
	snap.CategoriesInUse = len(inUse)
	snap.EstimatedInventoryValue = value
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func stockOutSince(rows []OutflowRow, from time.Time) int {
	to := from.AddDate(0, 1, 0)
	total := 0
	for _, r := range rows {
		at := r.CreatedAt.UTC()
		if !at.Before(from) && at.Before(to) {
			total += r.Quantity()
		}
	}
	return total
}

func isSale(reason *string) bool {
	if reason == nil {
		return false
	}
	for _, name := range saleReasonNames {
		if strings.EqualFold(*reason, name) {
			return true
		}
	}
	return false
}

// topProducts ranks products by quantity sold. Ties keep the order in which
// products first appear in the ledger.
func topProducts(rows []OutflowRow, limit int) []ProductOutflow {
	index := make(map[string]int)
	var out []ProductOutflow
	for _, r := range rows {
		if !isSale(r.ReasonName) {
			continue
		}
		i, ok := index[r.ProductID]
		if !ok {
			name := UnknownProduct
			if r.ProductName != nil {
				name = *r.ProductName
			}
			i = len(out)
			index[r.ProductID] = i
			out = append(out, ProductOutflow{ProductID: r.ProductID, Name: name})
		}
		out[i].Quantity += r.Quantity()
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Quantity > out[j].Quantity })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func reasonBreakdown(rows []OutflowRow) []ReasonCount {
	counts := make(map[string]int)
	for _, r := range rows {
		name := Uncategorized
		if r.ReasonName != nil {
			name = *r.ReasonName
		}
		counts[name]++
	}
	out := make([]ReasonCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, ReasonCount{Reason: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Reason < out[j].Reason
	})
	return out
}

// outflowTrend buckets stock out quantities into the last n calendar
// months, oldest first, ending with the month of now.
func outflowTrend(rows []OutflowRow, now time.Time, n int) []MonthOutflow {
	first := monthStart(now).AddDate(0, -(n - 1), 0)
	points := make([]MonthOutflow, n)
	for i := range points {
		points[i].Month = first.AddDate(0, i, 0).Format("2006-01")
	}
	for _, r := range rows {
		at := r.CreatedAt.UTC()
		if at.Before(first) {
			continue
		}
		i := (at.Year()-first.Year())*12 + int(at.Month()) - int(first.Month())
		if i >= 0 && i < n {
			points[i].Quantity += r.Quantity()
		}
	}
	return points
}
