package listing

import "strings"

// Predicate reports whether a record belongs in a derived view.
type Predicate[T any] func(T) bool

// Filters is the active predicate set of a list, keyed by field. Predicates are
// combined by conjunction.
type Filters[T any] struct {
	fields []string
	preds  map[string]Predicate[T]
}

// NewFilters returns an empty filter set.
func NewFilters[T any]() *Filters[T] {
	return &Filters[T]{preds: make(map[string]Predicate[T])}
}

// Set replaces the predicate for field. A nil predicate clears it.
func (f *Filters[T]) Set(field string, p Predicate[T]) {
	if p == nil {
		f.Clear(field)
		return
	}
	if _, ok := f.preds[field]; !ok {
		f.fields = append(f.fields, field)
	}
	f.preds[field] = p
}

// Clear removes the predicate for field.
func (f *Filters[T]) Clear(field string) {
	if _, ok := f.preds[field]; !ok {
		return
	}
	delete(f.preds, field)
	for i, name := range f.fields {
		if name == field {
			f.fields = append(f.fields[:i:i], f.fields[i+1:]...)
			break
		}
	}
}

// Reset removes every predicate.
func (f *Filters[T]) Reset() {
	f.fields = nil
	f.preds = make(map[string]Predicate[T])
}

// Len returns the number of active predicates.
func (f *Filters[T]) Len() int {
	if f == nil {
		return 0
	}
	return len(f.fields)
}

// Fields lists the filtered fields in the order they were first set.
func (f *Filters[T]) Fields() []string {
	out := make([]string, len(f.fields))
	copy(out, f.fields)
	return out
}

// Match reports whether r satisfies every active predicate.
func (f *Filters[T]) Match(r T) bool {
	if f == nil {
		return true
	}
	for _, field := range f.fields {
		if !f.preds[field](r) {
			return false
		}
	}
	return true
}

// Search matches records where any of the searched fields contains query,
// ignoring case. An empty query yields a nil predicate.
func Search[T any](query string, fields func(T) []string) Predicate[T] {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || fields == nil {
		return nil
	}
	return func(r T) bool {
		for _, v := range fields(r) {
			if strings.Contains(strings.ToLower(v), q) {
				return true
			}
		}
		return false
	}
}

// AnyOf matches records that carry at least one of the wanted values. It covers
// enum equality (one value per record) and tag membership (many). Empty wanted
// values yield a nil predicate.
func AnyOf[T any](wanted []string, values func(T) []string) Predicate[T] {
	want := make(map[string]struct{}, len(wanted))
	for _, w := range wanted {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			want[w] = struct{}{}
		}
	}
	if len(want) == 0 || values == nil {
		return nil
	}
	return func(r T) bool {
		for _, v := range values(r) {
			if _, ok := want[strings.ToLower(v)]; ok {
				return true
			}
		}
		return false
	}
}
