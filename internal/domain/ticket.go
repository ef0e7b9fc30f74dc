package domain

import "time"

// Ticket is one synthesized helpdesk request. Tickets are never mutated after
// composition.
type Ticket struct {
	ID          string    `json:"id"`
	Number      int       `json:"number"`
	Customer    string    `json:"customer"`
	Contact     string    `json:"contact"`
	Tech        string    `json:"tech"`
	Subject     string    `json:"subject"`
	Description string    `json:"description"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	IssueType   string    `json:"issue_type"`
	Profile     string    `json:"profile,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
