package domain

import "time"

// TimeEntry records technician labor logged against a ticket.
type TimeEntry struct {
	TicketID        string    `json:"ticket_id"`
	Customer        string    `json:"customer"`
	Sequence        int       `json:"sequence"`
	Tech            string    `json:"tech"`
	DurationMinutes int       `json:"duration_minutes"`
	Visibility      string    `json:"visibility"`
	BillableStatus  string    `json:"billable_status"`
	LaborType       string    `json:"labor_type"`
	CreatedAt       time.Time `json:"created_at"`
	Notes           string    `json:"notes"`
}
