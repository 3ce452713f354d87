package listing

import (
	"fmt"

	"github.com/agencyos/backend/internal/domain/shared"
)

// Controller is the list, detail and mutation surface over one Store. Filter,
// sort and selection state belong to the controller; the records belong to the
// store and may be shared by many controllers.
type Controller[T Record[T]] struct {
	schema   *Schema[T]
	store    *Store[T]
	filters  *Filters[T]
	order    *Sort[T]
	selected string
}

// NewController returns a controller with no filters, no sort and nothing selected.
func NewController[T Record[T]](schema *Schema[T], store *Store[T]) *Controller[T] {
	return &Controller[T]{
		schema:  schema,
		store:   store,
		filters: NewFilters[T](),
	}
}

// Schema returns the module schema.
func (c *Controller[T]) Schema() *Schema[T] { return c.schema }

// SetFilter replaces the predicate for field. Empty values clear it; unknown
// fields are ignored.
func (c *Controller[T]) SetFilter(field string, values ...string) {
	c.filters.Set(field, c.schema.Predicate(field, values...))
}

// ClearFilters drops every predicate.
func (c *Controller[T]) ClearFilters() {
	c.filters.Reset()
}

// Filters returns the names of the active filters.
func (c *Controller[T]) Filters() []string {
	return c.filters.Fields()
}

// SortBy orders the view by field. An empty field restores insertion order.
func (c *Controller[T]) SortBy(field string, desc bool) error {
	if field == "" {
		c.order = nil
		return nil
	}
	order, err := c.schema.Sort(field, desc)
	if err != nil {
		return err
	}
	c.order = order
	return nil
}

// View derives the visible records from the current collection.
func (c *Controller[T]) View() []T {
	return Derive(c.store.All(), c.filters, c.order)
}

// Groups splits the view into status columns in stage order.
func (c *Controller[T]) Groups() []Group[T] {
	return GroupBy(c.View(), func(r T) string { return r.RecordStatus() }, c.schema.Lifecycle.Statuses())
}

// Select opens the detail of one record.
func (c *Controller[T]) Select(id string) (T, error) {
	r, ok := c.store.Get(id)
	if !ok {
		return r, shared.NewNotFoundError(c.schema.Kind, id)
	}
	c.selected = id
	return r, nil
}

// Deselect closes the detail.
func (c *Controller[T]) Deselect() {
	c.selected = ""
}

// Selected returns the current state of the selected record.
func (c *Controller[T]) Selected() (T, bool) {
	if c.selected == "" {
		var zero T
		return zero, false
	}
	return c.store.Get(c.selected)
}

// Create validates r, gives it a fresh id and appends it. A record missing
// required fields leaves the collection untouched.
func (c *Controller[T]) Create(r T) (T, error) {
	if missing := c.schema.Missing(r); len(missing) > 0 {
		return r, shared.NewRequiredFieldError(missing...)
	}
	r, err := c.prepare(r, "")
	if err != nil {
		return r, err
	}
	r = r.WithID(c.schema.NewID(c.store.Has))
	if err := c.store.Append(r); err != nil {
		return r, err
	}
	return r, nil
}

// Update replaces the record stored under id with r.
func (c *Controller[T]) Update(id string, r T) (before, after T, err error) {
	if missing := c.schema.Missing(r); len(missing) > 0 {
		return before, r, shared.NewRequiredFieldError(missing...)
	}
	return c.store.Replace(id, func(current T) (T, error) {
		next := r.WithID(id)
		if c.schema.Carry != nil {
			next = c.schema.Carry(current, next)
		}
		return c.prepare(next, current.RecordStatus())
	})
}

// Transition sets the status of one record. Any status of the module's enum
// may follow any other.
func (c *Controller[T]) Transition(id, status string) (before, after T, err error) {
	if !c.schema.Lifecycle.Valid(status) {
		return before, after, c.invalidStatus(status)
	}
	return c.store.Replace(id, func(current T) (T, error) {
		return current.WithStatus(status), nil
	})
}

// Advance moves a record to the next stage of the progression.
func (c *Controller[T]) Advance(id string) (before, after T, err error) {
	return c.store.Replace(id, func(current T) (T, error) {
		next, ok := c.schema.Lifecycle.Next(current.RecordStatus())
		if !ok {
			return current, shared.NewDomainError(shared.ErrInvalidState.Code,
				fmt.Sprintf("%s %s has no next stage from %q", c.schema.Kind, id, current.RecordStatus()))
		}
		return current.WithStatus(next), nil
	})
}

// Reset restores the seed collection and clears the selection.
func (c *Controller[T]) Reset() {
	c.store.Reset()
	c.selected = ""
}

func (c *Controller[T]) prepare(r T, fallbackStatus string) (T, error) {
	if r.RecordStatus() == "" {
		if fallbackStatus == "" {
			fallbackStatus = c.defaultStatus()
		}
		r = r.WithStatus(fallbackStatus)
	}
	if !c.schema.Lifecycle.Valid(r.RecordStatus()) {
		return r, c.invalidStatus(r.RecordStatus())
	}
	if c.schema.Normalize != nil {
		return c.schema.Normalize(r)
	}
	return r, nil
}

func (c *Controller[T]) defaultStatus() string {
	if statuses := c.schema.Lifecycle.Statuses(); len(statuses) > 0 {
		return statuses[0]
	}
	return ""
}

func (c *Controller[T]) invalidStatus(status string) error {
	return shared.NewDomainError(shared.ErrInvalidState.Code,
		fmt.Sprintf("unknown %s status %q", c.schema.Kind, status))
}
