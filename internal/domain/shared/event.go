package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is something that happened to a module's records
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	// Origin names the module and record the event came from. recordID is
	// empty for events about a whole collection.
	Origin() (module, recordID string)
}

// EventHeader carries the fields every record event shares. Embed it to
// satisfy DomainEvent.
type EventHeader struct {
	ID       uuid.UUID `json:"id"`
	Type     string    `json:"type"`
	At       time.Time `json:"occurred_at"`
	Module   string    `json:"module"`
	RecordID string    `json:"record_id,omitempty"`
}

func (h *EventHeader) EventID() uuid.UUID    { return h.ID }
func (h *EventHeader) EventType() string     { return h.Type }
func (h *EventHeader) OccurredAt() time.Time { return h.At }

func (h *EventHeader) Origin() (string, string) { return h.Module, h.RecordID }

// NewEventHeader stamps a fresh id and the current time.
func NewEventHeader(eventType, module, recordID string) EventHeader {
	return EventHeader{
		ID:       uuid.New(),
		Type:     eventType,
		At:       time.Now(),
		Module:   module,
		RecordID: recordID,
	}
}
