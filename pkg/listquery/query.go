// Package listquery owns the pagination, sort, filter and search state of a
// tabular list view. It turns that state into backend query parameters and
// drives a caller-supplied fetch function, keeping only the newest result.
package listquery

import "math"

// Direction is a sort order.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Valid reports whether d is asc or desc.
func (d Direction) Valid() bool {
	return d == Asc || d == Desc
}

// Sort selects the ordering of a list. An empty Key means server default.
type Sort struct {
	Key       string    `json:"key"`
	Direction Direction `json:"direction"`
}

// Defaults applied by NewQuery.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
	DefaultSortKey  = "createdAt"
)

// Query is the UI-owned state of a list view.
type Query struct {
	Search   string  `json:"search"`
	Filters  Filters `json:"filters"`
	Page     int     `json:"page"`
	PageSize int     `json:"pageSize"`
	Sort     Sort    `json:"sort"`
}

// Partial overrides the defaults when a query is created. Zero fields keep
// the default; Sort is a pointer so callers can ask for no sort at all.
type Partial struct {
	Search   string
	Filters  Filters
	Page     int
	PageSize int
	Sort     *Sort
}

// DefaultQuery returns the query a list view starts with.
func DefaultQuery() Query {
	return Query{
		Filters:  Filters{},
		Page:     DefaultPage,
		PageSize: DefaultPageSize,
		Sort:     Sort{Key: DefaultSortKey, Direction: Desc},
	}
}

// NewQuery returns DefaultQuery with the fields set in p applied.
func NewQuery(p Partial) Query {
	q := DefaultQuery()
	if p.Search != "" {
		q.Search = p.Search
	}
	if p.Filters != nil {
		q.Filters = p.Filters.Clone()
	}
	if p.Page >= 1 {
		q.Page = p.Page
	}
	if p.PageSize >= 1 {
		q.PageSize = p.PageSize
	}
	if p.Sort != nil {
		q.Sort = *p.Sort
	}
	return q
}

// Clone returns a deep copy of q.
func (q Query) Clone() Query {
	q.Filters = q.Filters.Clone()
	return q
}

// Equal reports whether q and o describe the same list request.
func (q Query) Equal(o Query) bool {
	return q.Search == o.Search &&
		q.Page == o.Page &&
		q.PageSize == o.PageSize &&
		q.Sort == o.Sort &&
		q.Filters.Equal(o.Filters)
}

// Offset is the number of records before the current page. It saturates at
// math.MaxInt instead of wrapping.
func (q Query) Offset() int {
	if q.Page < 1 || q.PageSize < 1 {
		return 0
	}
	if q.Page-1 > math.MaxInt/q.PageSize {
		return math.MaxInt
	}
	return (q.Page - 1) * q.PageSize
}

// Result is one page of records plus the server-side total.
type Result[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"totalCount"`
}
