package chat

import (
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-synth/internal/domain"
)

func batchOf(n int, body string) domain.Batch {
	created := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)
	var b domain.Batch
	for i := 0; i < n; i++ {
		t := domain.Ticket{ID: "t", Number: 1000 + i, Customer: "Acme", Tech: "Alice", Subject: "VPN down", CreatedAt: created}
		b.Tickets = append(b.Tickets, t)
		b.Conversations = append(b.Conversations, domain.Conversation{
			TicketID: t.ID,
			Messages: []domain.ConversationMessage{
				{SenderRole: domain.SenderCustomer, SenderName: "Acme", Body: body, Timestamp: created},
				{SenderRole: domain.SenderTech, SenderName: "Alice", Body: "On it", Timestamp: created.Add(time.Hour)},
			},
		})
	}
	return b
}

func TestFormatSingleTicket(t *testing.T) {
	msgs := NewFormatter().Format(batchOf(1, "HELP: it broke"))
	require.Len(t, msgs, 1)
	assert.True(t, strings.HasPrefix(msgs[0], "**Ticket #1000** VPN down (Acme)"))
	assert.Contains(t, msgs[0], "> [customer] Acme (2024-03-01 09:00): HELP: it broke")
	assert.Contains(t, msgs[0], "> [tech] Alice (2024-03-01 10:00): On it")
}

func TestFormatRespectsLimit(t *testing.T) {
	f := &Formatter{MaxLength: 300}
	msgs := f.Format(batchOf(10, strings.Repeat("word ", 20)))
	require.Greater(t, len(msgs), 1)
	for _, m := range msgs {
		assert.LessOrEqual(t, utf8.RuneCountInString(m), 300)
	}
	assert.Contains(t, strings.Join(msgs, "\n"), "**Ticket #1009**")
}

func TestFormatSplitsOversizedTicket(t *testing.T) {
	f := &Formatter{MaxLength: 120}
	msgs := f.Format(batchOf(1, strings.Repeat("x", 500)))
	require.NotEmpty(t, msgs)
	for _, m := range msgs {
		assert.LessOrEqual(t, utf8.RuneCountInString(m), 120)
	}
	assert.Contains(t, strings.Join(msgs, "\n"), "...")
}

func TestFormatError(t *testing.T) {
	assert.Equal(t, "Ticket generation failed: boom", NewFormatter().Error(errors.New("boom")))
}
