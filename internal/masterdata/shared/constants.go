package shared

const (
	// DefaultPage is the first listing page.
	DefaultPage = 1
	// DefaultLimit is the listing page size.
	DefaultLimit = 20
	// MaxLimit caps user supplied page sizes.
	MaxLimit = 100

	// StatusActive and StatusInactive are the values of the status filter.
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)
