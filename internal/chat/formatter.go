// Package chat renders generated batches as chat-sized messages for the bot.
package chat

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spec-kit/ticket-synth/internal/domain"
)

// DefaultMaxLength is the per-message limit of the chat platform.
const DefaultMaxLength = 2000

const (
	timeLayout = "2006-01-02 15:04"
	ellipsis   = "..."
)

// Formatter splits rendered batches into messages no longer than MaxLength
// characters.
type Formatter struct {
	MaxLength int
}

// NewFormatter returns a formatter with the platform default limit.
func NewFormatter() *Formatter {
	return &Formatter{MaxLength: DefaultMaxLength}
}

// Format renders every ticket and its thread. Ticket blocks are kept whole
// when they fit in one message.
func (f *Formatter) Format(batch domain.Batch) []string {
	limit := f.limit()
	var (
		out     []string
		current strings.Builder
	)
	flush := func() {
		if current.Len() > 0 {
			out = append(out, strings.TrimRight(current.String(), "\n"))
			current.Reset()
		}
	}

	for i, t := range batch.Tickets {
		var conv domain.Conversation
		if i < len(batch.Conversations) {
			conv = batch.Conversations[i]
		}
		block := renderTicket(t, conv)
		if utf8.RuneCountInString(block) <= limit {
			if utf8.RuneCountInString(current.String())+utf8.RuneCountInString(block)+1 > limit {
				flush()
			}
			current.WriteString(block)
			current.WriteString("\n")
			continue
		}
		flush()
		for _, line := range strings.Split(block, "\n") {
			line = truncate(line, limit)
			if utf8.RuneCountInString(current.String())+utf8.RuneCountInString(line)+1 > limit {
				flush()
			}
			current.WriteString(line)
			current.WriteString("\n")
		}
		flush()
	}
	flush()
	return out
}

// Error renders a user visible failure without leaking internals.
func (f *Formatter) Error(err error) string {
	return truncate(fmt.Sprintf("Ticket generation failed: %v", err), f.limit())
}

func (f *Formatter) limit() int {
	if f == nil || f.MaxLength <= len(ellipsis) {
		return DefaultMaxLength
	}
	return f.MaxLength
}

func renderTicket(t domain.Ticket, conv domain.Conversation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Ticket #%d** %s (%s)\n", t.Number, t.Subject, t.Customer)
	fmt.Fprintf(&b, "Contact: %s | Tech: %s | Priority: %s | Status: %s | Type: %s\n",
		t.Contact, t.Tech, t.Priority, t.Status, t.IssueType)
	fmt.Fprintf(&b, "Created: %s\n", t.CreatedAt.Format(timeLayout))
	fmt.Fprintf(&b, "%s\n", t.Description)
	for _, m := range conv.Messages {
		fmt.Fprintf(&b, "> [%s] %s (%s): %s\n", m.SenderRole, m.SenderName, m.Timestamp.Format(timeLayout), m.Body)
	}
	return strings.TrimRight(b.String(), "\n")
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-len(ellipsis)]) + ellipsis
}
