package export

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spec-kit/ticket-synth/internal/domain"
)

// ReadTickets loads tickets from a file written by CSVWriter.
func ReadTickets(path string) ([]domain.Ticket, error) {
	records, err := readRecords(path)
	if err != nil {
		return nil, err
	}
	tickets := make([]domain.Ticket, 0, len(records))
	for i, r := range records {
		t := domain.Ticket{
			ID:          r.get("Ticket ID"),
			Customer:    r.get("Customer"),
			Contact:     r.get("Contact"),
			Tech:        r.get("Assigned Tech"),
			Subject:     r.get("Subject"),
			Description: r.get("Description"),
			Priority:    r.get("Priority"),
			Status:      r.get("Status"),
			IssueType:   r.get("Issue Type"),
			Profile:     r.get("Profile"),
		}
		if v := r.get("Ticket Number"); v != "" {
			if t.Number, err = strconv.Atoi(v); err != nil {
				return nil, fmt.Errorf("export: %s row %d: ticket number %q: %w", path, i+2, v, err)
			}
		}
		if v := r.get("Created At"); v != "" {
			if t.CreatedAt, err = time.Parse(TimestampLayout, v); err != nil {
				return nil, fmt.Errorf("export: %s row %d: created at %q: %w", path, i+2, v, err)
			}
		}
		tickets = append(tickets, t)
	}
	return tickets, nil
}

// ReadConversations loads messages from a file written by CSVWriter.
func ReadConversations(path string) ([]domain.ConversationMessage, error) {
	records, err := readRecords(path)
	if err != nil {
		return nil, err
	}
	messages := make([]domain.ConversationMessage, 0, len(records))
	for i, r := range records {
		m := domain.ConversationMessage{
			TicketID:   r.get("Ticket ID"),
			Customer:   r.get("Customer"),
			SenderRole: domain.SenderRole(r.get("Sender Role")),
			SenderName: r.get("Sender Name"),
			Body:       r.get("Body"),
		}
		if v := r.get("Timestamp"); v != "" {
			if m.Timestamp, err = time.Parse(TimestampLayout, v); err != nil {
				return nil, fmt.Errorf("export: %s row %d: timestamp %q: %w", path, i+2, v, err)
			}
		}
		messages = append(messages, m)
	}
	return messages, nil
}

// ReadTimeEntries loads time entries from a file written by CSVWriter.
func ReadTimeEntries(path string) ([]domain.TimeEntry, error) {
	records, err := readRecords(path)
	if err != nil {
		return nil, err
	}
	entries := make([]domain.TimeEntry, 0, len(records))
	for i, r := range records {
		e := domain.TimeEntry{
			TicketID:       r.get("Ticket ID"),
			Customer:       r.get("Customer"),
			Tech:           r.get("Tech"),
			Visibility:     r.get("Visibility"),
			BillableStatus: r.get("Billable Status"),
			LaborType:      r.get("Labor Type"),
			Notes:          r.get("Notes"),
		}
		if v := r.get("Entry Sequence"); v != "" {
			if e.Sequence, err = strconv.Atoi(v); err != nil {
				return nil, fmt.Errorf("export: %s row %d: sequence %q: %w", path, i+2, v, err)
			}
		}
		if v := r.get("Duration Minutes"); v != "" {
			if e.DurationMinutes, err = strconv.Atoi(v); err != nil {
				return nil, fmt.Errorf("export: %s row %d: duration %q: %w", path, i+2, v, err)
			}
		}
		if v := r.get("Created At"); v != "" {
			if e.CreatedAt, err = time.Parse(TimestampLayout, v); err != nil {
				return nil, fmt.Errorf("export: %s row %d: created at %q: %w", path, i+2, v, err)
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}
