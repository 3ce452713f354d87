// Package memory holds process-local repositories used when no database is
// configured.
package memory

import (
	"context"
	"sync"

	"github.com/agencyos/backend/internal/domain/activity"
)

// ActivityRepository keeps the most recent entries in a ring buffer
type ActivityRepository struct {
	mu      sync.RWMutex
	entries []activity.Entry
	next    int
	full    bool
}

// NewActivityRepository keeps at most limit entries; older ones are dropped.
func NewActivityRepository(limit int) *ActivityRepository {
	if limit <= 0 {
		limit = 1000
	}
	return &ActivityRepository{entries: make([]activity.Entry, limit)}
}

// Append stores entry, evicting the oldest one when full
func (r *ActivityRepository) Append(_ context.Context, entry activity.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[r.next] = entry
	r.next = (r.next + 1) % len(r.entries)
	if r.next == 0 {
		r.full = true
	}
	return nil
}

// Find walks the buffer newest first
func (r *ActivityRepository) Find(_ context.Context, q activity.Query) ([]activity.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	size := r.next
	if r.full {
		size = len(r.entries)
	}

	var out []activity.Entry
	for i := 0; i < size; i++ {
		idx := (r.next - 1 - i + len(r.entries)) % len(r.entries)
		e := r.entries[idx]
		if !q.Matches(e) {
			continue
		}
		out = append(out, e)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

// Len returns the number of retained entries
func (r *ActivityRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.full {
		return len(r.entries)
	}
	return r.next
}

var _ activity.Repository = (*ActivityRepository)(nil)
