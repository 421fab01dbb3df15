package products

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	internalShared "github.com/stockroom-ims/stockroom/internal/shared"
)

var minPrice = decimal.RequireFromString("0.01")

type parsed struct {
	quantity int
	price    decimal.Decimal
}

// validate checks in and returns the parsed numbers. Quantity is checked only
// when withQuantity is set.
func validate(in Input, withQuantity bool) (parsed, error) {
	var out parsed
	errs := internalShared.FieldErrors{}
	if in.Name == "" {
		errs.Add("name", "The Product Name field is required.")
	} else if len(in.Name) > 150 {
		errs.Add("name", "Product Name must be at most 150 characters.")
	}
	if withQuantity {
		switch q, err := strconv.Atoi(in.Quantity); {
		case in.Quantity == "":
			out.quantity = 0
		case q > internalShared.MaxQuantity:
			errs.Add("quantity", fmt.Sprintf("Quantity cannot exceed %d.", internalShared.MaxQuantity))
		case q < 0:
			errs.Add("quantity", "Quantity cannot be negative.")
		case err != nil:
			errs.Add("quantity", "Quantity must be a whole number.")
		default:
			out.quantity = q
		}
	}
	if price, err := decimal.NewFromString(in.Price); err != nil {
		errs.Add("price", "Price must be greater than 0.")
	} else if price.LessThan(minPrice) {
		errs.Add("price", "Price must be greater than 0.")
	} else {
		out.price = price.Round(2)
	}
	if err := uuid.Validate(in.CategoryID); err != nil {
		errs.Add("categoryId", "The Category field is required.")
	}
	if err := uuid.Validate(in.SupplierID); err != nil {
		errs.Add("supplierId", "The Supplier field is required.")
	}
	return out, errs.Err()
}
