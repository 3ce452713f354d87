// Package storage writes export files to object storage: an S3-compatible
// bucket in deployments, process memory otherwise.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	infraconfig "github.com/agencyos/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ErrObjectNotFound is returned when a key holds no object
var ErrObjectNotFound = errors.New("object not found")

// Object is a stored file
type Object struct {
	Key         string
	ContentType string
	Data        []byte
}

// ObjectStore is the storage the export service writes to.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) (*Object, error)
	Exists(ctx context.Context, key string) (bool, error)
	// DownloadURL returns a time-limited link to key.
	DownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
}

// New builds the store selected by cfg.Driver. downloadBase is the route the
// memory store links to.
func New(ctx context.Context, cfg *infraconfig.StorageConfig, downloadBase string, logger *zap.Logger) (ObjectStore, error) {
	switch cfg.Driver {
	case "s3":
		s, err := NewS3ObjectStore(ctx, cfg, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return s, nil
	case "", "memory":
		return NewMemoryObjectStore(downloadBase), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func requireKey(key string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	return nil
}
