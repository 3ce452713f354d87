package listing

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agencyos/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Field names every schema understands.
const (
	FieldSearch = "search"
	FieldStatus = "status"
	FieldBrand  = "brand"
)

// Column is one exported field of a record.
type Column[T any] struct {
	Name  string
	Value func(T) string
}

// Schema describes one module's records: how they are searched, faceted,
// sorted, validated and exported.
type Schema[T Record[T]] struct {
	Name      string
	Kind      string
	IDPrefix  string
	Lifecycle Lifecycle

	SearchFields func(T) []string
	Brands       func(T) []string
	Facets       map[string]func(T) []string
	// Matchers build predicates whose values are patterns rather than literals.
	Matchers map[string]func(values []string) Predicate[T]
	Sorts    map[string]Comparator[T]

	// Required returns the names of required fields left empty.
	Required func(T) []string
	// Normalize runs on create and update after the required check.
	Normalize func(T) (T, error)
	// Carry copies fields an update may omit from the current record.
	Carry func(current, next T) T

	Columns []Column[T]
}

// Facet returns the value extractor behind a facet filter.
func (s *Schema[T]) Facet(field string) (func(T) []string, bool) {
	switch field {
	case FieldStatus:
		return func(r T) []string { return []string{r.RecordStatus()} }, true
	case FieldBrand:
		if s.Brands != nil {
			return s.Brands, true
		}
	}
	f, ok := s.Facets[field]
	return f, ok
}

// FacetNames lists every filterable field, search excluded.
func (s *Schema[T]) FacetNames() []string {
	names := []string{FieldStatus}
	if s.Brands != nil {
		names = append(names, FieldBrand)
	}
	extra := make([]string, 0, len(s.Facets))
	for name := range s.Facets {
		extra = append(extra, name)
	}
	for name := range s.Matchers {
		extra = append(extra, name)
	}
	sort.Strings(extra)
	return append(names, extra...)
}

// SortNames lists the sortable fields.
func (s *Schema[T]) SortNames() []string {
	names := make([]string, 0, len(s.Sorts)+1)
	for name := range s.Sorts {
		names = append(names, name)
	}
	if _, ok := s.Sorts[FieldStatus]; !ok {
		names = append(names, FieldStatus)
	}
	sort.Strings(names)
	return names
}

// Predicate builds the filter for field. Unknown fields and empty values give nil.
func (s *Schema[T]) Predicate(field string, values ...string) Predicate[T] {
	if field == FieldSearch {
		return Search(strings.Join(values, " "), s.SearchFields)
	}
	if m, ok := s.Matchers[field]; ok {
		return m(values)
	}
	get, ok := s.Facet(field)
	if !ok {
		return nil
	}
	return AnyOf(values, get)
}

// Sort resolves a named sort field. Status sorts by stage order.
func (s *Schema[T]) Sort(field string, desc bool) (*Sort[T], error) {
	if cmp, ok := s.Sorts[field]; ok {
		return &Sort[T]{Field: field, Desc: desc, Compare: cmp}, nil
	}
	if field == FieldStatus {
		cmp := Ranked(s.Lifecycle.Statuses(), func(r T) string { return r.RecordStatus() })
		return &Sort[T]{Field: field, Desc: desc, Compare: cmp}, nil
	}
	return nil, shared.NewDomainError(shared.ErrInvalidInput.Code,
		fmt.Sprintf("cannot sort %s by %q; allowed: %s", s.Name, field, strings.Join(s.SortNames(), ", ")))
}

// Missing returns the required fields r leaves empty.
func (s *Schema[T]) Missing(r T) []string {
	if s.Required == nil {
		return nil
	}
	return s.Required(r)
}

// NewID returns an id with the schema prefix that taken reports as free.
func (s *Schema[T]) NewID(taken func(string) bool) string {
	prefix := s.IDPrefix
	if prefix == "" {
		prefix = s.Kind
	}
	for {
		id := prefix + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
		if taken == nil || !taken(id) {
			return id
		}
	}
}

// Row renders r through the export columns.
func (s *Schema[T]) Row(r T) []string {
	row := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		row[i] = c.Value(r)
	}
	return row
}

// Header returns the export column names.
func (s *Schema[T]) Header() []string {
	header := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		header[i] = c.Name
	}
	return header
}

// RequireText returns the names whose value is blank, in argument order.
// Arguments alternate name, value.
func RequireText(pairs ...string) []string {
	var missing []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			missing = append(missing, pairs[i])
		}
	}
	return missing
}
