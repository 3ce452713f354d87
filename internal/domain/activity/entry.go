package activity

import (
	"context"
	"time"
)

// Entry is one line of the activity log
type Entry struct {
	ID         string    `json:"id"`
	Module     string    `json:"module"`
	RecordID   string    `json:"record_id,omitempty"`
	Kind       Kind      `json:"kind"`
	FromStatus string    `json:"from_status,omitempty"`
	ToStatus   string    `json:"to_status,omitempty"`
	Patch      string    `json:"patch,omitempty"`
	Actor      string    `json:"actor,omitempty"`
	At         time.Time `json:"at"`
}

// Query narrows the log. Zero values match everything.
type Query struct {
	Module   string
	RecordID string
	Limit    int
}

// Matches reports whether e passes the query filters.
func (q Query) Matches(e Entry) bool {
	if q.Module != "" && e.Module != q.Module {
		return false
	}
	if q.RecordID != "" && e.RecordID != q.RecordID {
		return false
	}
	return true
}

// Repository keeps activity entries
type Repository interface {
	Append(ctx context.Context, entry Entry) error
	// Find returns matching entries newest first.
	Find(ctx context.Context, q Query) ([]Entry, error)
}
