package shared

import (
	"context"
	"time"
)

// DefaultIdempotencyTTL is how long a create request key is remembered when
// nothing else is configured.
const DefaultIdempotencyTTL = 24 * time.Hour

// IdempotencyStore remembers create request keys that were already served.
type IdempotencyStore interface {
	// MarkProcessed records key for ttl. It returns false when key was already
	// recorded, so exactly one concurrent caller wins.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
	IsProcessed(ctx context.Context, key string) (bool, error)
	Close() error
}
