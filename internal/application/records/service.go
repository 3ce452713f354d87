// Package records is the application service behind every record module: it
// turns list queries into derived views and runs create, update and status
// changes against a module store, then publishes the change and persists a
// snapshot when persistence is on.
package records

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/agencyos/backend/internal/domain/activity"
	"github.com/agencyos/backend/internal/domain/brand"
	"github.com/agencyos/backend/internal/domain/shared"
	"github.com/agencyos/backend/internal/domain/shared/listing"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// Deps are the collaborators shared by every module service. All are optional.
type Deps struct {
	Events         shared.EventPublisher
	Idempotency    shared.IdempotencyStore
	IdempotencyTTL time.Duration
	Snapshots      shared.SnapshotRepository
	Logger         *zap.Logger
}

// Service runs one module
type Service[T listing.Record[T]] struct {
	schema *listing.Schema[T]
	store  *listing.Store[T]
	deps   Deps
	logger *zap.Logger

	// serialises mutations so snapshots are written in mutation order
	mu sync.Mutex
}

// NewService creates a module service over store
func NewService[T listing.Record[T]](schema *listing.Schema[T], store *listing.Store[T], deps Deps) *Service[T] {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.IdempotencyTTL <= 0 {
		deps.IdempotencyTTL = shared.DefaultIdempotencyTTL
	}
	return &Service[T]{
		schema: schema,
		store:  store,
		deps:   deps,
		logger: logger.With(zap.String("module", schema.Name)),
	}
}

// NewSeeded normalises seed and creates a service over a store holding it.
func NewSeeded[T listing.Record[T]](schema *listing.Schema[T], seed []T, deps Deps) (*Service[T], error) {
	seed, err := normalizeSeed(schema, seed)
	if err != nil {
		return nil, err
	}
	store, err := listing.NewStore(seed)
	if err != nil {
		return nil, fmt.Errorf("seed %s: %w", schema.Name, err)
	}
	return NewService(schema, store, deps), nil
}

// Name returns the module name
func (s *Service[T]) Name() string { return s.schema.Name }

// Schema returns the module schema
func (s *Service[T]) Schema() *listing.Schema[T] { return s.schema }

// Records returns a copy of the current collection
func (s *Service[T]) Records() []T { return slices.Clone(s.store.All()) }

// Describe returns the catalogue entry for the module
func (s *Service[T]) Describe() Descriptor {
	return Descriptor{
		Name:     s.schema.Name,
		Kind:     s.schema.Kind,
		Stages:   s.schema.Lifecycle.Order,
		Statuses: s.schema.Lifecycle.Statuses(),
		Facets:   s.schema.FacetNames(),
		Sorts:    s.schema.SortNames(),
		Columns:  s.schema.Header(),
	}
}

// Controller builds a controller with the query's filters and sort applied.
func (s *Service[T]) Controller(q ListQuery) (*listing.Controller[T], error) {
	ctrl := listing.NewController(s.schema, s.store)
	ctrl.SetFilter(listing.FieldSearch, q.Search)
	for field, values := range q.Filters {
		ctrl.SetFilter(field, values...)
	}
	if err := ctrl.SortBy(q.Sort, q.Descending()); err != nil {
		return nil, err
	}
	return ctrl, nil
}

// List returns a page of the derived view
func (s *Service[T]) List(ctx context.Context, q ListQuery) (*ListResult[T], error) {
	ctrl, err := s.Controller(q)
	if err != nil {
		return nil, err
	}
	view := ctrl.View()

	if q.PageSize <= 0 {
		q.PageSize = defaultPageSize
	}
	if q.PageSize > maxPageSize {
		q.PageSize = maxPageSize
	}
	page := shared.Paginate(view, q.Page, q.PageSize)

	result := &ListResult[T]{
		Items:      page.Items,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
		Facets:     listing.CountBy(view, statusOf[T]),
	}
	if q.Group == listing.FieldStatus {
		for _, g := range listing.GroupBy(view, func(r T) string { return r.RecordStatus() }, s.schema.Lifecycle.Statuses()) {
			result.Groups = append(result.Groups, GroupView[T]{
				Status:   g.Key,
				Count:    len(g.Records),
				Progress: s.schema.Lifecycle.Progress(g.Key),
				Records:  g.Records,
			})
		}
	}
	return result, nil
}

// Get selects one record
func (s *Service[T]) Get(ctx context.Context, id string) (*Detail[T], error) {
	r, err := listing.NewController(s.schema, s.store).Select(id)
	if err != nil {
		return nil, err
	}
	return s.detail(r), nil
}

// Create validates and appends a record. A non-empty idempotency key that was
// already served is rejected.
func (s *Service[T]) Create(ctx context.Context, r T, idempotencyKey string) (*Detail[T], error) {
	key := ""
	if idempotencyKey != "" && s.deps.Idempotency != nil {
		key = s.schema.Name + ":" + idempotencyKey
		seen, err := s.deps.Idempotency.IsProcessed(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("check idempotency key: %w", err)
		}
		if seen {
			return nil, shared.ErrDuplicateRequest
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	created, err := listing.NewController(s.schema, s.store).Create(r)
	if err != nil {
		s.logger.Info("create rejected", zap.Error(err))
		return nil, err
	}
	if key != "" {
		if fresh, err := s.deps.Idempotency.MarkProcessed(ctx, key, s.deps.IdempotencyTTL); err != nil {
			s.logger.Warn("failed to record idempotency key", zap.Error(err))
		} else if !fresh {
			s.logger.Warn("idempotency key served concurrently", zap.String("key", idempotencyKey))
		}
	}

	s.logger.Info("record created", zap.String("id", created.RecordID()))
	event := s.changeEvent(ctx, activity.EventTypeRecordCreated, created.RecordID())
	event.ToStatus = created.RecordStatus()
	event.After = s.marshal(created)
	s.afterMutation(ctx, event)
	return s.detail(created), nil
}

// Update replaces a record
func (s *Service[T]) Update(ctx context.Context, id string, r T) (*Detail[T], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before, after, err := listing.NewController(s.schema, s.store).Update(id, r)
	if err != nil {
		return nil, err
	}
	event := s.changeEvent(ctx, activity.EventTypeRecordUpdated, id)
	event.FromStatus = before.RecordStatus()
	event.ToStatus = after.RecordStatus()
	event.Before = s.marshal(before)
	event.After = s.marshal(after)
	s.afterMutation(ctx, event)
	return s.detail(after), nil
}

// Transition sets any status of the module's enum on a record
func (s *Service[T]) Transition(ctx context.Context, id, status string) (*Detail[T], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before, after, err := listing.NewController(s.schema, s.store).Transition(id, status)
	if err != nil {
		return nil, err
	}
	s.transitioned(ctx, before, after)
	return s.detail(after), nil
}

// Advance moves a record to its next stage
func (s *Service[T]) Advance(ctx context.Context, id string) (*Detail[T], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before, after, err := listing.NewController(s.schema, s.store).Advance(id)
	if err != nil {
		return nil, err
	}
	s.transitioned(ctx, before, after)
	return s.detail(after), nil
}

// Reset restores the seed collection and returns its size
func (s *Service[T]) Reset(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.store.Reset()
	s.logger.Info("records reset to seed", zap.Int("count", s.store.Len()))
	s.afterMutation(ctx, s.changeEvent(ctx, activity.EventTypeRecordsReset, ""))
	return s.store.Len(), nil
}

// Reseed swaps in a new seed, as when seed files change on disk. Each record
// goes through the schema's normalisation first.
func (s *Service[T]) Reseed(ctx context.Context, seed []T) error {
	seed, err := s.normalize(seed)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Reseed(seed); err != nil {
		return err
	}
	s.logger.Info("seed reloaded", zap.Int("count", len(seed)))
	s.afterMutation(ctx, s.changeEvent(ctx, activity.EventTypeRecordsReset, ""))
	return nil
}

// Restore loads the latest snapshot when one exists. It reports whether it did.
func (s *Service[T]) Restore(ctx context.Context) (bool, error) {
	if s.deps.Snapshots == nil {
		return false, nil
	}
	payload, ok, err := s.deps.Snapshots.Load(ctx, s.schema.Name)
	if err != nil || !ok {
		return false, err
	}
	var records []T
	if err := json.Unmarshal(payload, &records); err != nil {
		return false, fmt.Errorf("decode %s snapshot: %w", s.schema.Name, err)
	}
	records, err = normalizeSeed(s.schema, records)
	if err != nil {
		return false, fmt.Errorf("normalize %s snapshot: %w", s.schema.Name, err)
	}
	for _, r := range records {
		if !s.schema.Lifecycle.Valid(r.RecordStatus()) {
			return false, shared.NewDomainError(shared.ErrInvalidState.Code,
				fmt.Sprintf("%s snapshot record %s has unknown status %q", s.schema.Name, r.RecordID(), r.RecordStatus()))
		}
	}
	if err := s.store.Load(records); err != nil {
		return false, fmt.Errorf("load %s snapshot: %w", s.schema.Name, err)
	}
	s.logger.Info("restored snapshot", zap.Int("count", len(records)))
	return true, nil
}

// Summarize counts the collection by status and brand
func (s *Service[T]) Summarize() Summary {
	all := s.store.All()
	sum := Summary{
		Module:   s.schema.Name,
		Total:    len(all),
		ByStatus: listing.CountBy(all, statusOf[T]),
	}
	if s.schema.Brands != nil {
		sum.ByBrand = listing.CountBy(all, func(r T) []string {
			var ids []string
			for _, id := range s.schema.Brands(r) {
				if id != "" {
					ids = append(ids, id)
				}
			}
			return ids
		})
	}
	return sum
}

// Table flattens the derived view for export, ignoring pagination
func (s *Service[T]) Table(ctx context.Context, q ListQuery) (*Table, error) {
	ctrl, err := s.Controller(q)
	if err != nil {
		return nil, err
	}
	view := ctrl.View()
	rows := make([][]string, len(view))
	for i, r := range view {
		rows[i] = s.schema.Row(r)
	}
	return &Table{Module: s.schema.Name, Header: s.schema.Header(), Rows: rows}, nil
}

func (s *Service[T]) normalize(seed []T) ([]T, error) {
	return normalizeSeed(s.schema, seed)
}

func normalizeSeed[T listing.Record[T]](schema *listing.Schema[T], seed []T) ([]T, error) {
	if schema.Normalize == nil {
		return seed, nil
	}
	out := make([]T, len(seed))
	for i, r := range seed {
		n, err := schema.Normalize(r)
		if err != nil {
			return nil, fmt.Errorf("normalize %s seed record %s: %w", schema.Name, r.RecordID(), err)
		}
		out[i] = n
	}
	return out, nil
}

func (s *Service[T]) detail(r T) *Detail[T] {
	d := &Detail[T]{
		Record:   r,
		Progress: s.schema.Lifecycle.Progress(r.RecordStatus()),
		Statuses: s.schema.Lifecycle.Statuses(),
		Brands:   []brand.Brand{},
	}
	if s.schema.Brands != nil {
		d.Brands = brand.Resolve(s.schema.Brands(r)...)
	}
	if next, ok := s.schema.Lifecycle.Next(r.RecordStatus()); ok && next != r.RecordStatus() {
		d.NextStatus = next
	}
	return d
}

func (s *Service[T]) transitioned(ctx context.Context, before, after T) {
	s.logger.Info("record transitioned",
		zap.String("id", after.RecordID()),
		zap.String("from", before.RecordStatus()),
		zap.String("to", after.RecordStatus()),
	)
	event := s.changeEvent(ctx, activity.EventTypeRecordTransitioned, after.RecordID())
	event.FromStatus = before.RecordStatus()
	event.ToStatus = after.RecordStatus()
	event.Before = s.marshal(before)
	event.After = s.marshal(after)
	s.afterMutation(ctx, event)
}

func (s *Service[T]) changeEvent(ctx context.Context, eventType, id string) *activity.RecordChanged {
	event := activity.NewRecordChanged(eventType, s.schema.Name, id)
	event.Actor = ActorFrom(ctx)
	return event
}

// afterMutation persists the collection and publishes the change. Both are
// best effort: the in-memory collection is authoritative.
func (s *Service[T]) afterMutation(ctx context.Context, event *activity.RecordChanged) {
	if s.deps.Snapshots != nil {
		payload, err := json.Marshal(s.store.All())
		if err == nil {
			err = s.deps.Snapshots.Save(ctx, s.schema.Name, payload)
		}
		if err != nil {
			s.logger.Error("failed to save snapshot", zap.Error(err))
		}
	}
	if s.deps.Events != nil {
		if err := s.deps.Events.Publish(ctx, event); err != nil {
			s.logger.Error("failed to publish change", zap.String("event_type", event.Type), zap.Error(err))
		}
	}
}

func (s *Service[T]) marshal(r T) json.RawMessage {
	data, err := json.Marshal(r)
	if err != nil {
		s.logger.Warn("failed to encode record", zap.Error(err))
		return nil
	}
	return data
}

func statusOf[T listing.Record[T]](r T) []string {
	return []string{r.RecordStatus()}
}
