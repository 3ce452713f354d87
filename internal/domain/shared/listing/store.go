package listing

import (
	"fmt"
	"slices"
	"sync"

	"github.com/agencyos/backend/internal/domain/shared"
)

// Store is one module's ordered record collection. The backing slice is never
// written in place: every mutation builds a new slice and swaps it in, so a
// slice handed out by All stays valid and unchanged.
type Store[T Record[T]] struct {
	mu      sync.RWMutex
	seed    []T
	records []T
	index   map[string]int
}

// NewStore seeds a store. Duplicate ids in the seed are rejected.
func NewStore[T Record[T]](seed []T) (*Store[T], error) {
	index, err := buildIndex(seed)
	if err != nil {
		return nil, err
	}
	s := &Store[T]{
		seed:    slices.Clone(seed),
		records: slices.Clone(seed),
		index:   index,
	}
	return s, nil
}

// All returns the current collection in insertion order. The slice is shared
// with the store and must be treated as read-only; writers swap in a new one.
func (s *Store[T]) All() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records
}

// Len returns the collection size.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Get finds a record by id.
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		var zero T
		return zero, false
	}
	return s.records[i], true
}

// Has reports whether id is taken.
func (s *Store[T]) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[id]
	return ok
}

// Append adds r at the end of the collection.
func (s *Store[T]) Append(r T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := r.RecordID()
	if _, ok := s.index[id]; ok {
		return shared.NewDomainError(shared.ErrAlreadyExists.Code, fmt.Sprintf("record %s already exists", id))
	}
	next := make([]T, len(s.records), len(s.records)+1)
	copy(next, s.records)
	s.records = append(next, r)
	s.index[id] = len(s.records) - 1
	return nil
}

// Replace maps the record with the given id through fn and swaps in a new
// collection in which only that position differs. fn must keep the id.
func (s *Store[T]) Replace(id string, fn func(T) (T, error)) (before, after T, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return before, after, shared.NewNotFoundError("record", id)
	}
	before = s.records[i]
	after, err = fn(before)
	if err != nil {
		return before, after, err
	}
	if after.RecordID() != id {
		return before, after, shared.NewDomainError(shared.ErrInvalidInput.Code, "record id cannot change")
	}
	next := slices.Clone(s.records)
	next[i] = after
	s.records = next
	return before, after, nil
}

// Load swaps in a whole collection, e.g. a persisted snapshot.
func (s *Store[T]) Load(records []T) error {
	index, err := buildIndex(records)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = slices.Clone(records)
	s.index = index
	return nil
}

// Reset restores the seed collection.
func (s *Store[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = slices.Clone(s.seed)
	s.index, _ = buildIndex(s.seed)
}

// Reseed replaces the seed and restores it.
func (s *Store[T]) Reseed(seed []T) error {
	index, err := buildIndex(seed)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seed = slices.Clone(seed)
	s.records = slices.Clone(seed)
	s.index = index
	return nil
}

func buildIndex[T Record[T]](records []T) (map[string]int, error) {
	index := make(map[string]int, len(records))
	for i, r := range records {
		id := r.RecordID()
		if id == "" {
			return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, fmt.Sprintf("record at position %d has no id", i))
		}
		if _, dup := index[id]; dup {
			return nil, shared.NewDomainError(shared.ErrAlreadyExists.Code, fmt.Sprintf("duplicate record id %s", id))
		}
		index[id] = i
	}
	return index, nil
}
