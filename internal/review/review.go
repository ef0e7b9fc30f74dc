// Package review picks one generated ticket and prints it with its thread and
// time entries.
package review

import (
	"fmt"
	"io"
	"strings"

	"github.com/spec-kit/ticket-synth/internal/domain"
)

const timeLayout = "January 02, 2006 03:04 PM"

// Item is a ticket with everything logged against it.
type Item struct {
	Ticket      domain.Ticket
	Messages    []domain.ConversationMessage
	TimeEntries []domain.TimeEntry
}

// Candidates joins the three datasets on ticket id. Tickets without any
// message are skipped. Order follows tickets.
func Candidates(tickets []domain.Ticket, messages []domain.ConversationMessage, entries []domain.TimeEntry) []Item {
	byTicket := map[string][]domain.ConversationMessage{}
	for _, m := range messages {
		if m.TicketID != "" {
			byTicket[m.TicketID] = append(byTicket[m.TicketID], m)
		}
	}
	entriesByTicket := map[string][]domain.TimeEntry{}
	for _, e := range entries {
		if e.TicketID != "" {
			entriesByTicket[e.TicketID] = append(entriesByTicket[e.TicketID], e)
		}
	}

	var items []Item
	seen := map[string]bool{}
	for _, t := range tickets {
		thread, ok := byTicket[t.ID]
		if !ok || seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		items = append(items, Item{Ticket: t, Messages: thread, TimeEntries: entriesByTicket[t.ID]})
	}
	return items
}

// Render writes item as a readable report.
func Render(w io.Writer, item Item) error {
	var b strings.Builder
	t := item.Ticket
	fmt.Fprintf(&b, "Ticket #%d (%s)\n", t.Number, t.ID)
	fields := [][2]string{
		{"Customer", t.Customer},
		{"Contact", t.Contact},
		{"Subject", t.Subject},
		{"Status", t.Status},
		{"Description", t.Description},
		{"Issue Type", t.IssueType},
		{"Assigned Tech", t.Tech},
		{"Priority", t.Priority},
		{"Profile", t.Profile},
		{"Created", formatTime(t)},
	}
	for _, f := range fields {
		if f[1] != "" {
			fmt.Fprintf(&b, "  %-14s %s\n", f[0]+":", f[1])
		}
	}

	fmt.Fprintf(&b, "\nMessages (%d):\n", len(item.Messages))
	for _, m := range item.Messages {
		fmt.Fprintf(&b, "  [%s] %s (%s): %s\n", m.Timestamp.Format(timeLayout), m.SenderName, m.SenderRole, m.Body)
	}

	fmt.Fprintf(&b, "\nTime Entries (%d):\n", len(item.TimeEntries))
	if len(item.TimeEntries) == 0 {
		b.WriteString("  none\n")
	}
	for _, e := range item.TimeEntries {
		fmt.Fprintf(&b, "  #%d %s, %d minutes, %s, %s, %s, %s\n",
			e.Sequence, e.Tech, e.DurationMinutes, e.LaborType, e.BillableStatus, e.Visibility,
			e.CreatedAt.Format(timeLayout))
		if e.Notes != "" {
			fmt.Fprintf(&b, "     %s\n", e.Notes)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func formatTime(t domain.Ticket) string {
	if t.CreatedAt.IsZero() {
		return ""
	}
	return t.CreatedAt.Format(timeLayout)
}
