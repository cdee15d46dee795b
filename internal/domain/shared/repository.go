package shared

import (
	"time"
)

// Pagination bounds
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// ExportLimit caps unpaginated report exports
	ExportLimit = 10000
)

// Filter represents the query options every list page accepts
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	// DateFrom and DateTo are calendar dates; DateTo is inclusive.
	DateFrom *time.Time
	DateTo   *time.Time
	Filters  map[string]any

	unpaged bool
}

// DefaultFilter returns a filter with default values
func DefaultFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: DefaultPageSize,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  make(map[string]any),
	}
}

// Normalize clamps page and page size into their valid ranges
func (f Filter) Normalize() Filter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	limit := MaxPageSize
	if f.unpaged {
		limit = ExportLimit
	}
	if f.PageSize > limit {
		f.PageSize = limit
	}
	if f.OrderDir != "asc" {
		f.OrderDir = "desc"
	}
	if f.Filters == nil {
		f.Filters = make(map[string]any)
	}
	return f
}

// Offset returns the row offset of the current page
func (f Filter) Offset() int {
	n := f.Normalize()
	return (n.Page - 1) * n.PageSize
}

// Limit returns the normalized page size
func (f Filter) Limit() int {
	return f.Normalize().PageSize
}

// Unpaged returns a copy that fetches every matching row up to ExportLimit
func (f Filter) Unpaged() Filter {
	f.Page = 1
	f.PageSize = ExportLimit
	f.unpaged = true
	return f
}

// IsUnpaged reports whether the filter is an export filter
func (f Filter) IsUnpaged() bool {
	return f.unpaged
}

// DateToExclusive returns the first instant after the inclusive DateTo day
func (f Filter) DateToExclusive() *time.Time {
	if f.DateTo == nil {
		return nil
	}
	end := time.Date(f.DateTo.Year(), f.DateTo.Month(), f.DateTo.Day(), 0, 0, 0, 0, f.DateTo.Location()).AddDate(0, 0, 1)
	return &end
}

// String returns a string filter value, or "" when absent
func (f Filter) String(key string) string {
	if v, ok := f.Filters[key].(string); ok {
		return v
	}
	return ""
}

// Paginated represents a paginated result
type Paginated[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginated creates a new paginated result. Total pages is at least 1 so
// an empty result still renders as "page 1 of 1", and a requested page past
// the end is reported as the last page.
func NewPaginated[T any](items []T, total int64, page, pageSize int) Paginated[T] {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	totalPages := int(total / int64(pageSize))
	if total%int64(pageSize) > 0 {
		totalPages++
	}
	if totalPages == 0 {
		totalPages = 1
	}
	page = min(page, totalPages)
	if items == nil {
		items = []T{}
	}
	return Paginated[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// HasPrev reports whether a previous page exists
func (p Paginated[T]) HasPrev() bool {
	return p.Page > 1
}

// HasNext reports whether a next page exists
func (p Paginated[T]) HasNext() bool {
	return p.Page < p.TotalPages
}

// FirstItem is the 1-based index of the first row on this page, or 0 if the page is empty
func (p Paginated[T]) FirstItem() int64 {
	if len(p.Items) == 0 {
		return 0
	}
	return int64(p.Page-1)*int64(p.PageSize) + 1
}

// LastItem is the 1-based index of the last row on this page
func (p Paginated[T]) LastItem() int64 {
	if len(p.Items) == 0 {
		return 0
	}
	return p.FirstItem() + int64(len(p.Items)) - 1
}
