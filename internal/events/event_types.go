package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/ticket-synth/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventBatchGenerated EventType = "batch_generated"
	EventBatchFailed    EventType = "batch_failed"
)

// Actor encapsulates who requested the generation.
type Actor struct {
	Type     domain.SubjectType `json:"type"`
	ClientID string             `json:"client_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	BatchID   string      `json:"batch_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// BatchGeneratedPayload carries the full batch to subscribers.
type BatchGeneratedPayload struct {
	Batch   domain.Batch `json:"batch"`
	Profile string       `json:"profile,omitempty"`
}

// BatchFailedPayload describes a rejected generation.
type BatchFailedPayload struct {
	Count int    `json:"count"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(eventType EventType, batchID string, actor Actor, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		BatchID:   batchID,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}
