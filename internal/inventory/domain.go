package inventory

import (
	"errors"
	"fmt"
	"time"
)

// Direction tells whether a movement adds or removes stock.
type Direction string

const (
	DirectionIn  Direction = "In"
	DirectionOut Direction = "Out"
)

// UncategorizedReason labels movements whose reason is unset or deleted.
const UncategorizedReason = "Uncategorized"

// Opening entry posted when a product is created with stock.
const (
	OpeningReasonName        = "Initial Stock"
	OpeningReasonDescription = "System generated reason for new products"
	OpeningRemarks           = "Product created"
)

// Movement is one immutable ledger entry. QuantityChange is positive for
// stock in and negative for stock out.
type Movement struct {
	ID             string    `db:"id"`
	ProductID      string    `db:"product_id"`
	ReasonID       *string   `db:"reason_id"`
	QuantityChange int       `db:"quantity_change"`
	Remarks        string    `db:"remarks"`
	CreatedBy      string    `db:"created_by"`
	CreatedAt      time.Time `db:"created_at"`
}

// Direction derives the movement direction from its sign.
func (m Movement) Direction() Direction {
	if m.QuantityChange < 0 {
		return DirectionOut
	}
	return DirectionIn
}

// HistoryEntry is a movement with its reason resolved for display.
type HistoryEntry struct {
	Movement
	ReasonName string `db:"reason_name"`
}

// ProductState is the slice of a product the ledger reads and guards.
type ProductState struct {
	ID       string `db:"id"`
	Name     string `db:"name"`
	Quantity int    `db:"quantity"`
	Version  int64  `db:"version"`
}

// StockInput is a request to move stock.
type StockInput struct {
	ProductID string
	ReasonID  string
	Quantity  int
	Remarks   string
}

// Result reports a posted movement.
type Result struct {
	Movement    Movement
	ProductName string
	NewQuantity int
}

// Discrepancy is a product whose cached quantity differs from its ledger sum.
type Discrepancy struct {
	ProductID string `db:"product_id"`
	Name      string `db:"name"`
	Cached    int    `db:"cached"`
	Ledger    int    `db:"ledger"`
}

// Drift is the correction needed to bring the cache back to the ledger.
func (d Discrepancy) Drift() int {
	return d.Cached - d.Ledger
}

var (
	// ErrInvalidQuantity indicates a movement quantity out of range.
	ErrInvalidQuantity = errors.New("inventory: quantity must be greater than 0")
	// ErrProductNotFound indicates the product does not exist.
	ErrProductNotFound = errors.New("Product not found.")
	// ErrInsufficientStock indicates stock out beyond the current quantity.
	ErrInsufficientStock = errors.New("inventory: insufficient stock")
	// ErrInvalidReason indicates a reason that does not apply to the direction.
	ErrInvalidReason = errors.New("inventory: reason not allowed for direction")
	// ErrConcurrentUpdate indicates the product changed between read and write.
	ErrConcurrentUpdate = errors.New("inventory: product was modified concurrently")
)

// QuantityError rejects a movement quantity for one direction: one that is
// not positive, or one above Limit when Limit is set.
type QuantityError struct {
	Direction Direction
	Limit     int
}

func (e *QuantityError) Error() string {
	if e.Limit > 0 {
		return fmt.Sprintf("Quantity cannot exceed %d.", e.Limit)
	}
	if e.Direction == DirectionOut {
		return "Quantity to remove must be greater than 0."
	}
	return "Quantity to add must be greater than 0."
}

func (e *QuantityError) Unwrap() error { return ErrInvalidQuantity }

// InsufficientStockError carries the quantity on hand when a stock out fails.
type InsufficientStockError struct {
	Current int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Not enough stock. Current quantity: %d", e.Current)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// CapacityError rejects a stock in that would push the quantity on hand past
// Limit.
type CapacityError struct {
	Current int
	Limit   int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("Stock on hand cannot exceed %d. Current quantity: %d", e.Limit, e.Current)
}

func (e *CapacityError) Unwrap() error { return ErrInvalidQuantity }
