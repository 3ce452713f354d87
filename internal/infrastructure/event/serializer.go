package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/agencyos/backend/internal/domain/activity"
	"github.com/agencyos/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// EnvelopeVersion is bumped when the envelope layout changes incompatibly
const EnvelopeVersion = 1

// Envelope is the wire form of a record event
type Envelope struct {
	Version    int             `json:"v"`
	ID         uuid.UUID       `json:"id"`
	Type       string          `json:"type"`
	Module     string          `json:"module"`
	RecordID   string          `json:"record_id,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// Encode wraps ev in an envelope and marshals it
func Encode(ev shared.DomainEvent) ([]byte, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", ev.EventType(), err)
	}
	module, recordID := ev.Origin()
	return json.Marshal(Envelope{
		Version:    EnvelopeVersion,
		ID:         ev.EventID(),
		Type:       ev.EventType(),
		Module:     module,
		RecordID:   recordID,
		OccurredAt: ev.OccurredAt().UTC(),
		Payload:    payload,
	})
}

// Decode parses an envelope and its record change payload
func Decode(data []byte) (Envelope, *activity.RecordChanged, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, nil, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Version != EnvelopeVersion {
		return env, nil, fmt.Errorf("unsupported envelope version %d", env.Version)
	}
	var change activity.RecordChanged
	if err := json.Unmarshal(env.Payload, &change); err != nil {
		return env, nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
	}
	return env, &change, nil
}
