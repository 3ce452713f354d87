package listing

import (
	"cmp"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Comparator orders two records, returning a negative, zero or positive int.
type Comparator[T any] func(a, b T) int

// Sort is an explicit ordering by a named field.
type Sort[T any] struct {
	Field   string
	Desc    bool
	Compare Comparator[T]
}

// Strings compares a string field with locale-aware collation, so date strings
// in YYYY-MM-DD form and names with accents sort the way people read them.
func Strings[T any](get func(T) string) Comparator[T] {
	var mu sync.Mutex
	c := collate.New(language.English, collate.IgnoreCase, collate.Numeric)
	return func(a, b T) int {
		mu.Lock()
		defer mu.Unlock()
		return c.CompareString(get(a), get(b))
	}
}

// Decimals compares a monetary or other decimal field numerically.
func Decimals[T any](get func(T) decimal.Decimal) Comparator[T] {
	return func(a, b T) int {
		return get(a).Cmp(get(b))
	}
}

// Numbers compares an integer or float field.
func Numbers[T any, N cmp.Ordered](get func(T) N) Comparator[T] {
	return func(a, b T) int {
		return cmp.Compare(get(a), get(b))
	}
}

// Ranked compares a field by its position in order. Values outside order sort last.
func Ranked[T any](order []string, get func(T) string) Comparator[T] {
	rank := make(map[string]int, len(order))
	for i, v := range order {
		rank[v] = i
	}
	pos := func(v string) int {
		if i, ok := rank[v]; ok {
			return i
		}
		return len(order)
	}
	return func(a, b T) int {
		return cmp.Compare(pos(get(a)), pos(get(b)))
	}
}
