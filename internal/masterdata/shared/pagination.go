package shared

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ListFilters represents standard list page filters. Every supplied filter
// narrows the result; empty ones are ignored.
type ListFilters struct {
	Page   int
	Limit  int
	Search string
	Status string

	// Product specific filters
	CategoryID string
	SupplierID string
}

// ParseListFilters reads filters from a query string.
func ParseListFilters(q url.Values) ListFilters {
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = DefaultPage
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	status := strings.TrimSpace(q.Get("status"))
	if status != StatusActive && status != StatusInactive {
		status = ""
	}
	return ListFilters{
		Page:       page,
		Limit:      limit,
		Search:     strings.TrimSpace(q.Get("search")),
		Status:     status,
		CategoryID: filterID(q.Get("category")),
		SupplierID: filterID(q.Get("supplier")),
	}
}

// filterID keeps a reference filter only when it is a well-formed id; a
// malformed one is dropped so the listing stays unfiltered.
func filterID(raw string) string {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return id.String()
}

// IsActive converts the status filter to a tri-state.
func (f ListFilters) IsActive() *bool {
	switch f.Status {
	case StatusActive:
		v := true
		return &v
	case StatusInactive:
		v := false
		return &v
	}
	return nil
}

// Offset returns the row offset of the requested page.
func (f ListFilters) Offset() int {
	if f.Page < 1 || f.Limit < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}
