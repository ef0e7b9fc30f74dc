package dto

import (
	"time"

	"github.com/spec-kit/ticket-synth/internal/domain"
)

// GenerateRequest payload for batch generation. Omitted fields keep the
// server defaults.
type GenerateRequest struct {
	Count     int     `json:"count"`
	Profile   *string `json:"profile"`
	Seed      *int64  `json:"seed"`
	MaxRounds *int    `json:"max_rounds"`
}

// BatchResponse returns a generated batch.
type BatchResponse struct {
	ID          string           `json:"id"`
	Seed        int64            `json:"seed"`
	GeneratedAt time.Time        `json:"generated_at"`
	Tickets     []TicketResponse `json:"tickets"`
}

// TicketResponse bundles a ticket with its thread and labor.
type TicketResponse struct {
	domain.Ticket
	Rounds      int                          `json:"rounds"`
	Messages    []domain.ConversationMessage `json:"messages"`
	TimeEntries []domain.TimeEntry           `json:"time_entries"`
}

// BotGenerateResponse carries chat-ready message chunks.
type BotGenerateResponse struct {
	BatchID  string   `json:"batch_id,omitempty"`
	Messages []string `json:"messages"`
}

// ProfilesResponse lists the registered probability profiles.
type ProfilesResponse struct {
	Default  string   `json:"default,omitempty"`
	Profiles []string `json:"profiles"`
}
