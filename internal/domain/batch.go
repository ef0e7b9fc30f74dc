package domain

import "time"

// Batch groups the tickets produced by a single generation request. Tickets,
// Conversations and TimeEntries share indexes so callers can zip them.
type Batch struct {
	ID            string         `json:"id"`
	Seed          int64          `json:"seed"`
	GeneratedAt   time.Time      `json:"generated_at"`
	Tickets       []Ticket       `json:"tickets"`
	Conversations []Conversation `json:"conversations"`
	TimeEntries   [][]TimeEntry  `json:"time_entries"`
}

// MessageCount totals the messages across every conversation.
func (b Batch) MessageCount() int {
	total := 0
	for _, c := range b.Conversations {
		total += len(c.Messages)
	}
	return total
}
