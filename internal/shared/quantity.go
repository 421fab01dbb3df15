package shared

import "math"

// MaxQuantity is the largest stock level a product row can hold.
const MaxQuantity = math.MaxInt32
