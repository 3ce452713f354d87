package listing

import "slices"

// Derive returns the records matching every active filter. Without a sort the
// original order is kept; with one the sort is stable. records is not modified.
func Derive[T any](records []T, filters *Filters[T], order *Sort[T]) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		if filters.Match(r) {
			out = append(out, r)
		}
	}
	if order == nil || order.Compare == nil {
		return out
	}
	slices.SortStableFunc(out, func(a, b T) int {
		c := order.Compare(a, b)
		if order.Desc {
			return -c
		}
		return c
	})
	return out
}

// Group is one column of a grouped view.
type Group[T any] struct {
	Key     string
	Records []T
}

// GroupBy splits records into groups in the given key order, keeping each
// group's records in their incoming order. Every ordered key gets a group even
// when empty; keys outside order follow in first-seen order.
func GroupBy[T any](records []T, key func(T) string, order []string) []Group[T] {
	groups := make([]Group[T], 0, len(order))
	index := make(map[string]int, len(order))
	for _, k := range order {
		index[k] = len(groups)
		groups = append(groups, Group[T]{Key: k})
	}
	for _, r := range records {
		k := key(r)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group[T]{Key: k})
		}
		groups[i].Records = append(groups[i].Records, r)
	}
	return groups
}

// CountBy tallies records per key.
func CountBy[T any](records []T, key func(T) []string) map[string]int {
	counts := make(map[string]int)
	for _, r := range records {
		for _, k := range key(r) {
			counts[k]++
		}
	}
	return counts
}
