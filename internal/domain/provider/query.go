package provider

import "github.com/cityhealth/directory/internal/domain/search/filter"

// Order selects the server-side sort.
type Order int

const (
	// ByRating sorts by rating descending, ties by ID ascending. Supports cursors.
	ByRating Order = iota
	// ByPopularity sorts by rating, then views, descending. No cursors.
	ByPopularity
)

// ListQuery is a single page request against the provider collection.
type ListQuery struct {
	Filter filter.Expression
	Order  Order
	Limit  int
	// After is the opaque cursor of the last record of the previous page.
	After string
}

// ListResult is one page of providers in server order.
type ListResult struct {
	Providers  []Provider
	HasMore    bool
	NextCursor string
}
