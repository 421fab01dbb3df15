package analytics

import (
	"time"

	"github.com/shopspring/decimal"
)

// Top-selling movements are those whose reason carries one of these names.
var saleReasonNames = []string{"Sale", "Stock Out"}

const (
	// UnknownProduct labels movements whose product no longer resolves.
	UnknownProduct = "Unknown Product"
	// Uncategorized labels movements whose reason no longer resolves.
	Uncategorized = "Uncategorized"

	topProductsLimit = 5
	trendMonths      = 6
)

// Snapshot is the dashboard summary derived from the catalog and ledger.
type Snapshot struct {
	TotalProducts           int
	CategoryCount           int
	CategoriesInUse         int
	SupplierCount           int
	LowStockCount           int
	LowStockThreshold       int
	EstimatedInventoryValue decimal.Decimal
	TotalStockOutThisMonth  int
	TopProducts             []ProductOutflow
	ReasonBreakdown         []ReasonCount
	OutflowTrend            []MonthOutflow
	GeneratedAt             time.Time
}

// ProductOutflow is the quantity sold for one product.
type ProductOutflow struct {
	ProductID string
	Name      string
	Quantity  int
}

// ReasonCount is the number of stock out movements citing a reason.
type ReasonCount struct {
	Reason string
	Count  int
}

// MonthOutflow is the quantity removed during one calendar month.
type MonthOutflow struct {
	Month    string
	Quantity int
}

// ProductRow is the catalog data the aggregator needs per product.
type ProductRow struct {
	ID         string          `db:"id"`
	Name       string          `db:"name"`
	Quantity   int             `db:"quantity"`
	Price      decimal.Decimal `db:"price"`
	CategoryID string          `db:"category_id"`
}

// OutflowRow is a stock out movement with optional product and reason
// names. Rows arrive in ledger order.
type OutflowRow struct {
	ProductID      string    `db:"product_id"`
	ProductName    *string   `db:"product_name"`
	ReasonName     *string   `db:"reason_name"`
	QuantityChange int       `db:"quantity_change"`
	CreatedAt      time.Time `db:"created_at"`
}

// Quantity is the absolute amount removed.
func (r OutflowRow) Quantity() int {
	if r.QuantityChange < 0 {
		return -r.QuantityChange
	}
	return r.QuantityChange
}
