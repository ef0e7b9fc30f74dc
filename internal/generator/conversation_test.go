package generator

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-synth/internal/domain"
)

func composeThread(t *testing.T, c *Composer, maxRounds int) (domain.Ticket, domain.Conversation) {
	t.Helper()
	ticket, err := c.ComposeTicket(nil)
	require.NoError(t, err)
	conv, err := c.ComposeConversation(ticket, nil, maxRounds)
	require.NoError(t, err)
	return ticket, conv
}

func TestConversationShape(t *testing.T) {
	cfg := testConfig()
	c := newTestComposer(t, helpdeskSource(), cfg, nil)
	roundsSeen := map[int]bool{}

	for i := 0; i < 500; i++ {
		ticket, conv := composeThread(t, c, cfg.MaxConversationRounds)
		roundsSeen[conv.Rounds] = true

		require.True(t, conv.Rounds >= 0 && conv.Rounds <= cfg.MaxConversationRounds)
		require.Len(t, conv.Messages, 1+2*conv.Rounds)
		assert.Equal(t, ticket.CreatedAt, conv.Messages[0].Timestamp)

		for j, msg := range conv.Messages {
			assert.Equal(t, ticket.ID, msg.TicketID)
			if j%2 == 0 {
				assert.Equal(t, domain.SenderCustomer, msg.SenderRole)
				assert.Equal(t, ticket.Customer, msg.SenderName)
			} else {
				assert.Equal(t, domain.SenderTech, msg.SenderRole)
				assert.Equal(t, ticket.Tech, msg.SenderName)
			}
			if j > 0 {
				gap := msg.Timestamp.Sub(conv.Messages[j-1].Timestamp)
				assert.True(t, gap >= cfg.MessageGapMin && gap <= cfg.MessageGapMax, "gap %s", gap)
			}
		}
	}
	for r := 0; r <= cfg.MaxConversationRounds; r++ {
		assert.True(t, roundsSeen[r], "rounds=%d never drawn", r)
	}
}

func TestConversationRoundsClampedToLimit(t *testing.T) {
	cfg := testConfig()
	cfg.FixedRounds = true
	cfg.MaxRoundsLimit = 3
	c := newTestComposer(t, helpdeskSource(), cfg, nil)

	_, conv := composeThread(t, c, 1<<40)
	assert.Equal(t, 3, conv.Rounds)
	assert.Len(t, conv.Messages, 7)
}

func TestConversationPhraseBanks(t *testing.T) {
	c := newTestComposer(t, helpdeskSource(), testConfig(), nil)
	complaints := []string{"My printer is broken", "My laptop is broken", "Nothing works"}
	followups := []string{"Still broken", "Printer is fine now", "Laptop is fine now"}
	responses := []string{"Have you tried turning it off?", "Escalating now"}

	for i := 0; i < 100; i++ {
		_, conv := composeThread(t, c, 3)
		first := conv.Messages[0].Body
		greeting, complaint, ok := strings.Cut(first, ": ")
		require.True(t, ok, first)
		assert.Contains(t, defaultGreetings, greeting)
		assert.Contains(t, complaints, complaint)

		for j, msg := range conv.Messages[1:] {
			if j%2 == 0 {
				assert.Contains(t, responses, msg.Body)
			} else {
				assert.Contains(t, followups, msg.Body)
			}
		}
	}
}

func TestConversationFixedRounds(t *testing.T) {
	cfg := testConfig()
	cfg.FixedRounds = true
	c := newTestComposer(t, helpdeskSource(), cfg, nil)

	for i := 0; i < 20; i++ {
		_, conv := composeThread(t, c, 2)
		assert.Equal(t, 2, conv.Rounds)
		assert.Len(t, conv.Messages, 5)
	}
}

func TestConversationZeroRounds(t *testing.T) {
	c := newTestComposer(t, helpdeskSource(), testConfig(), nil)
	_, conv := composeThread(t, c, 0)
	assert.Equal(t, 0, conv.Rounds)
	assert.Len(t, conv.Messages, 1)
}

func TestInterpolateLeavesUnknownBanks(t *testing.T) {
	c := newTestComposer(t, helpdeskSource(), testConfig(), nil)
	out, err := c.interpolate("The #gadget# and the #device#")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "The #gadget# and the "))
	assert.NotContains(t, out, "#device#")
}

func TestStrictlyIncreasingWithMinimalGap(t *testing.T) {
	cfg := testConfig()
	cfg.MessageGapMin = time.Nanosecond
	cfg.MessageGapMax = time.Nanosecond
	c := newTestComposer(t, helpdeskSource(), cfg, nil)

	_, conv := composeThread(t, c, 4)
	for j := 1; j < len(conv.Messages); j++ {
		assert.True(t, conv.Messages[j].Timestamp.After(conv.Messages[j-1].Timestamp))
	}
}
