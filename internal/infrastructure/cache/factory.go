package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/agencyos/backend/internal/domain/shared"
	"github.com/agencyos/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const memorySweepInterval = 5 * time.Minute

// NewIdempotencyStore returns a Redis store when Redis is enabled and
// reachable. Otherwise it returns an in-memory store, unless strict is set,
// in which case an unreachable Redis is an error.
func NewIdempotencyStore(ctx context.Context, cfg config.RedisConfig, strict bool, log *zap.Logger) (shared.IdempotencyStore, error) {
	if !cfg.Enabled {
		log.Info("Using in-memory idempotency store")
		return NewMemoryIdempotencyStore(memorySweepInterval), nil
	}

	client, err := NewRedisClient(ctx, cfg)
	if err == nil {
		log.Info("Using Redis idempotency store", zap.String("addr", cfg.Addr()))
		return NewRedisIdempotencyStore(client, ""), nil
	}
	if strict {
		return nil, fmt.Errorf("redis required for idempotency but unavailable: %w", err)
	}

	log.Warn("Redis unavailable, falling back to in-memory idempotency store; keys are not shared between replicas",
		zap.Error(err),
	)
	return NewMemoryIdempotencyStore(memorySweepInterval), nil
}
