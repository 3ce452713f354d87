// Package activity records what happened to records: the change events raised
// by every module and the entries of the activity log built from them.
package activity

import (
	"encoding/json"

	"github.com/agencyos/backend/internal/domain/shared"
)

// Event types
const (
	EventTypeRecordCreated      = "record.created"
	EventTypeRecordUpdated      = "record.updated"
	EventTypeRecordTransitioned = "record.transitioned"
	EventTypeRecordsReset       = "records.reset"
)

// Kind is the short form of an event type used in the log and on the wire
type Kind string

const (
	KindCreated      Kind = "created"
	KindUpdated      Kind = "updated"
	KindTransitioned Kind = "transitioned"
	KindReset        Kind = "reset"
)

// KindOf maps an event type to its kind.
func KindOf(eventType string) Kind {
	switch eventType {
	case EventTypeRecordCreated:
		return KindCreated
	case EventTypeRecordUpdated:
		return KindUpdated
	case EventTypeRecordTransitioned:
		return KindTransitioned
	case EventTypeRecordsReset:
		return KindReset
	}
	return Kind(eventType)
}

// RecordChanged is raised for every mutation of a module collection.
// Before and After hold the record JSON; a reset carries neither.
type RecordChanged struct {
	shared.EventHeader
	FromStatus string          `json:"from_status,omitempty"`
	ToStatus   string          `json:"to_status,omitempty"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
	Actor      string          `json:"actor,omitempty"`
}

// NewRecordChanged builds a change event. recordID is empty for a reset.
func NewRecordChanged(eventType, module, recordID string) *RecordChanged {
	return &RecordChanged{EventHeader: shared.NewEventHeader(eventType, module, recordID)}
}

// Kind returns the event kind.
func (e *RecordChanged) Kind() Kind {
	return KindOf(e.Type)
}
