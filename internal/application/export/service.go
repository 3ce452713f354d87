// Package export writes derived views of a module as CSV files to object
// storage and hands back a download link.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/agencyos/backend/internal/application/records"
	"github.com/agencyos/backend/internal/infrastructure/storage"
	"github.com/agencyos/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	ContentTypeCSV = "text/csv; charset=utf-8"
	DefaultExpiry  = 15 * time.Minute
	keyTimeLayout  = "20060102T150405Z"
)

// Modules resolves a module by name
type Modules interface {
	Get(name string) (records.Module, error)
}

// Result describes a written export
type Result struct {
	Module    string    `json:"module"`
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
	Rows      int       `json:"rows"`
	Bytes     int       `json:"bytes"`
}

// Service exports module views
type Service struct {
	modules Modules
	store   storage.ObjectStore
	prefix  string
	expiry  time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithPrefix sets the key prefix exports are written under
func WithPrefix(prefix string) Option {
	return func(s *Service) { s.prefix = strings.Trim(prefix, "/") }
}

// WithExpiry sets how long download links stay valid
func WithExpiry(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.expiry = d
		}
	}
}

// WithClock replaces the clock used to name export files
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new export Service
func NewService(modules Modules, store storage.ObjectStore, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		modules: modules,
		store:   store,
		prefix:  "exports",
		expiry:  DefaultExpiry,
		logger:  logger.With(zap.String("service", "export")),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Export writes the derived view of module selected by q, ignoring paging.
func (s *Service) Export(ctx context.Context, module string, q records.ListQuery) (*Result, error) {
	m, err := s.modules.Get(module)
	if err != nil {
		return nil, err
	}
	ctx, span := telemetry.StartSpan(ctx, "export.write", attribute.String("module", module))
	defer span.End()

	table, err := m.Table(ctx, q)
	if err != nil {
		return nil, err
	}
	data, err := Encode(table)
	if err != nil {
		return nil, err
	}

	key := s.key(table.Module)
	if err := s.store.Put(ctx, key, data, ContentTypeCSV); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("store export %s: %w", key, err)
	}
	url, expires, err := s.store.DownloadURL(ctx, key, s.expiry)
	if err != nil {
		return nil, fmt.Errorf("sign export %s: %w", key, err)
	}

	s.logger.Info("export written",
		zap.String("module", table.Module),
		zap.String("key", key),
		zap.Int("rows", len(table.Rows)))

	return &Result{
		Module:    table.Module,
		Key:       key,
		URL:       url,
		ExpiresAt: expires,
		Rows:      len(table.Rows),
		Bytes:     len(data),
	}, nil
}

// Download reads back an export. Only keys under the export prefix are served.
func (s *Service) Download(ctx context.Context, key string) (*storage.Object, error) {
	key = strings.TrimPrefix(key, "/")
	if key == "" || path.Clean(key) != key || strings.HasPrefix(key, "../") {
		return nil, storage.ErrObjectNotFound
	}
	if s.prefix != "" && !strings.HasPrefix(key, s.prefix+"/") {
		return nil, storage.ErrObjectNotFound
	}
	return s.store.Get(ctx, key)
}

func (s *Service) key(module string) string {
	name := s.now().UTC().Format(keyTimeLayout) + ".csv"
	if s.prefix == "" {
		return path.Join(module, name)
	}
	return path.Join(s.prefix, module, name)
}

// Encode renders a table as CSV with a header row.
func Encode(t *records.Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.Header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	if err := w.WriteAll(t.Rows); err != nil {
		return nil, fmt.Errorf("write csv rows: %w", err)
	}
	return buf.Bytes(), nil
}
