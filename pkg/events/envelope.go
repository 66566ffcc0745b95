package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Envelope is the wire form of a DomainEvent: metadata plus the event's own
// JSON encoding under Data.
type Envelope struct {
	EventID       uuid.UUID       `json:"event_id"`
	EventType     string          `json:"event_type"`
	AggregateID   uuid.UUID       `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Data          json.RawMessage `json:"data"`
}

// Seal encodes event into an Envelope.
func Seal(event DomainEvent) (Envelope, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", event.EventType(), err)
	}
	return Envelope{
		EventID:       event.EventID(),
		EventType:     event.EventType(),
		AggregateID:   event.AggregateID(),
		AggregateType: event.AggregateType(),
		OccurredAt:    event.OccurredAt(),
		Data:          data,
	}, nil
}

// Headers returns the envelope metadata as message headers.
func (e Envelope) Headers() map[string]string {
	return map[string]string{
		"event_id":       e.EventID.String(),
		"event_type":     e.EventType,
		"aggregate_id":   e.AggregateID.String(),
		"aggregate_type": e.AggregateType,
		"occurred_at":    e.OccurredAt.Format(time.RFC3339Nano),
	}
}
