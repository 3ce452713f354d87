package records

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/agencyos/backend/internal/domain/shared"
	"github.com/agencyos/backend/internal/domain/shared/listing"
)

// Module is a record service with its record type erased, so transports can
// serve every module through one handler. Payloads are record JSON.
type Module interface {
	Describe() Descriptor
	List(ctx context.Context, q ListQuery) (any, error)
	Get(ctx context.Context, id string) (any, error)
	Create(ctx context.Context, payload []byte, idempotencyKey string) (any, error)
	Update(ctx context.Context, id string, payload []byte) (any, error)
	Transition(ctx context.Context, id, status string) (any, error)
	Advance(ctx context.Context, id string) (any, error)
	Reset(ctx context.Context) (int, error)
	Restore(ctx context.Context) (bool, error)
	// Reseed replaces the seed with a JSON array of records.
	Reseed(ctx context.Context, payload []byte) error
	Summarize() Summary
	Table(ctx context.Context, q ListQuery) (*Table, error)
}

// AsModule erases the record type of s
func AsModule[T listing.Record[T]](s *Service[T]) Module {
	return erased[T]{s}
}

type erased[T listing.Record[T]] struct {
	svc *Service[T]
}

func (m erased[T]) Describe() Descriptor { return m.svc.Describe() }

func (m erased[T]) List(ctx context.Context, q ListQuery) (any, error) {
	return m.svc.List(ctx, q)
}

func (m erased[T]) Get(ctx context.Context, id string) (any, error) {
	return m.svc.Get(ctx, id)
}

func (m erased[T]) Create(ctx context.Context, payload []byte, idempotencyKey string) (any, error) {
	r, err := decodeRecord[T](payload)
	if err != nil {
		return nil, err
	}
	return m.svc.Create(ctx, r, idempotencyKey)
}

func (m erased[T]) Update(ctx context.Context, id string, payload []byte) (any, error) {
	r, err := decodeRecord[T](payload)
	if err != nil {
		return nil, err
	}
	return m.svc.Update(ctx, id, r)
}

func (m erased[T]) Transition(ctx context.Context, id, status string) (any, error) {
	return m.svc.Transition(ctx, id, status)
}

func (m erased[T]) Advance(ctx context.Context, id string) (any, error) {
	return m.svc.Advance(ctx, id)
}

func (m erased[T]) Reset(ctx context.Context) (int, error) { return m.svc.Reset(ctx) }

func (m erased[T]) Restore(ctx context.Context) (bool, error) { return m.svc.Restore(ctx) }

func (m erased[T]) Reseed(ctx context.Context, payload []byte) error {
	var seed []T
	if err := json.Unmarshal(payload, &seed); err != nil {
		return fmt.Errorf("decode %s seed: %w", m.svc.Name(), err)
	}
	return m.svc.Reseed(ctx, seed)
}

func (m erased[T]) Summarize() Summary { return m.svc.Summarize() }

func (m erased[T]) Table(ctx context.Context, q ListQuery) (*Table, error) {
	return m.svc.Table(ctx, q)
}

func decodeRecord[T any](payload []byte) (T, error) {
	var r T
	if err := json.Unmarshal(payload, &r); err != nil {
		return r, shared.NewDomainError(shared.ErrInvalidInput.Code, "invalid record body: "+err.Error())
	}
	return r, nil
}

// Registry indexes the modules by name
type Registry struct {
	modules map[string]Module
	order   []string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]Module)}
}

// Register adds a module; a later module with the same name replaces it
func (r *Registry) Register(m Module) {
	name := m.Describe().Name
	if _, ok := r.modules[name]; !ok {
		r.order = append(r.order, name)
	}
	r.modules[name] = m
}

// Get finds a module by name
func (r *Registry) Get(name string) (Module, error) {
	m, ok := r.modules[name]
	if !ok {
		return nil, shared.NewNotFoundError("module", name)
	}
	return m, nil
}

// Names lists modules in registration order
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Modules lists modules in registration order
func (r *Registry) Modules() []Module {
	out := make([]Module, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.modules[name])
	}
	return out
}

// Describe returns every catalogue entry sorted by name
func (r *Registry) Describe() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, m := range r.Modules() {
		out = append(out, m.Describe())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Restore hydrates every module from its snapshot
func (r *Registry) Restore(ctx context.Context) (int, error) {
	restored := 0
	for _, m := range r.Modules() {
		ok, err := m.Restore(ctx)
		if err != nil {
			return restored, err
		}
		if ok {
			restored++
		}
	}
	return restored, nil
}
