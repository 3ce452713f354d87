package records

import (
	"github.com/agencyos/backend/internal/domain/brand"
)

// ListQuery is a derived-view request. Filters maps facet fields to the
// accepted values.
type ListQuery struct {
	Search   string              `json:"search,omitempty"`
	Filters  map[string][]string `json:"filters,omitempty"`
	Sort     string              `json:"sort,omitempty"`
	Order    string              `json:"order,omitempty"`
	Page     int                 `json:"page,omitempty"`
	PageSize int                 `json:"page_size,omitempty"`
	Group    string              `json:"group,omitempty"`
}

// Descending reports whether the sort runs high to low.
func (q ListQuery) Descending() bool {
	return q.Order == "desc"
}

// GroupView is one kanban column
type GroupView[T any] struct {
	Status   string `json:"status"`
	Count    int    `json:"count"`
	Progress int    `json:"progress"`
	Records  []T    `json:"records"`
}

// ListResult is one page of a derived view
type ListResult[T any] struct {
	Items      []T            `json:"items"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
	Facets     map[string]int `json:"facets"`
	Groups     []GroupView[T] `json:"groups,omitempty"`
}

// Detail is the selected record with what the detail panel shows next to it
type Detail[T any] struct {
	Record     T             `json:"record"`
	Brands     []brand.Brand `json:"brands"`
	Progress   int           `json:"progress"`
	NextStatus string        `json:"next_status,omitempty"`
	Statuses   []string      `json:"statuses"`
}

// Descriptor is the catalogue entry of a module
type Descriptor struct {
	Name     string   `json:"name"`
	Kind     string   `json:"kind"`
	Stages   []string `json:"stages"`
	Statuses []string `json:"statuses"`
	Facets   []string `json:"facets"`
	Sorts    []string `json:"sorts"`
	Columns  []string `json:"columns"`
}

// Summary counts a module's records
type Summary struct {
	Module   string         `json:"module"`
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
	ByBrand  map[string]int `json:"by_brand,omitempty"`
}

// Table is a derived view flattened for export
type Table struct {
	Module string
	Header []string
	Rows   [][]string
}

// Page is the paging of a list result without its record type
type Page struct {
	Total      int64
	Page       int
	PageSize   int
	TotalPages int
	Facets     map[string]int
}

// Paged is implemented by every ListResult
type Paged interface {
	Paging() Page
	// Payload is the kanban columns when grouped, the page items otherwise.
	Payload() any
}

func (r *ListResult[T]) Paging() Page {
	return Page{Total: r.Total, Page: r.Page, PageSize: r.PageSize, TotalPages: r.TotalPages, Facets: r.Facets}
}

func (r *ListResult[T]) Payload() any {
	if r.Groups != nil {
		return r.Groups
	}
	return r.Items
}
