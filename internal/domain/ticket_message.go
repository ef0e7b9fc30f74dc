package domain

import "time"

// SenderRole indicates which side of the thread wrote a message.
type SenderRole string

const (
	SenderCustomer SenderRole = "customer"
	SenderTech     SenderRole = "tech"
)

// ConversationMessage is one entry in a ticket thread.
type ConversationMessage struct {
	TicketID   string     `json:"ticket_id"`
	Customer   string     `json:"customer"`
	SenderRole SenderRole `json:"sender_role"`
	SenderName string     `json:"sender_name"`
	Body       string     `json:"body"`
	Timestamp  time.Time  `json:"timestamp"`
}

// Conversation is the ordered thread for one ticket.
type Conversation struct {
	TicketID string                `json:"ticket_id"`
	Rounds   int                   `json:"rounds"`
	Messages []ConversationMessage `json:"messages"`
}

// Last returns the final message of the thread.
func (c Conversation) Last() (ConversationMessage, bool) {
	if len(c.Messages) == 0 {
		return ConversationMessage{}, false
	}
	return c.Messages[len(c.Messages)-1], true
}
