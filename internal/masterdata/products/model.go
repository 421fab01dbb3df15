package products

import (
	"strings"

	"github.com/shopspring/decimal"

	internalShared "github.com/stockroom-ims/stockroom/internal/shared"
)

// Product is a stocked item. Quantity is the cached ledger balance and only
// the stock ledger changes it after creation.
type Product struct {
	ID           string          `db:"id"`
	Name         string          `db:"name"`
	Quantity     int             `db:"quantity"`
	Price        decimal.Decimal `db:"price"`
	CategoryID   string          `db:"category_id"`
	SupplierID   string          `db:"supplier_id"`
	IsActive     bool            `db:"is_active"`
	Version      int64           `db:"version"`
	CategoryName string          `db:"category_name"`
	SupplierName string          `db:"supplier_name"`
	internalShared.Audit
}

// Value is price times quantity.
func (p Product) Value() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

// Input carries raw form values. Quantity is read on create only.
type Input struct {
	Name       string
	Quantity   string
	Price      string
	CategoryID string
	SupplierID string
	IsActive   bool
}

func (in Input) trimmed() Input {
	return Input{
		Name:       strings.TrimSpace(in.Name),
		Quantity:   strings.TrimSpace(in.Quantity),
		Price:      strings.TrimSpace(in.Price),
		CategoryID: strings.TrimSpace(in.CategoryID),
		SupplierID: strings.TrimSpace(in.SupplierID),
		IsActive:   in.IsActive,
	}
}

// FromProduct fills an edit form.
func FromProduct(p Product) Input {
	return Input{
		Name:       p.Name,
		Price:      p.Price.StringFixed(2),
		CategoryID: p.CategoryID,
		SupplierID: p.SupplierID,
		IsActive:   p.IsActive,
	}
}
