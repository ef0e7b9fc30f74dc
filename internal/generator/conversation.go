package generator

import (
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-synth/internal/catalog"
	"github.com/spec-kit/ticket-synth/internal/domain"
	"github.com/spec-kit/ticket-synth/internal/profile"
)

var defaultGreetings = []string{"HELP", "URGENT", "Attention"}

// turn is a conversation state: who speaks and which phrase bank they use.
type turn struct {
	role  domain.SenderRole
	table string
}

var (
	turnInitial  = turn{role: domain.SenderCustomer, table: catalog.TableInitialComplaints}
	turnResponse = turn{role: domain.SenderTech, table: catalog.TableHelpdeskResponses}
	turnFollowup = turn{role: domain.SenderCustomer, table: catalog.TableCustomerFollowups}
)

// next advances the thread: the initial complaint and every follow-up are
// answered by the tech, and every tech response is followed up by the customer.
func (t turn) next() turn {
	if t.role == domain.SenderTech {
		return turnFollowup
	}
	return turnResponse
}

// ComposeConversation builds the thread for ticket. The round count is drawn
// once in [0, maxRounds] and the thread holds 1 + 2*rounds messages.
// maxRounds is clamped to the configured rounds limit.
func (c *Composer) ComposeConversation(ticket domain.Ticket, p *profile.Profile, maxRounds int) (domain.Conversation, error) {
	if maxRounds < 0 {
		maxRounds = 0
	}
	if limit := c.cfg.MaxRoundsLimit; limit > 0 && maxRounds > limit {
		maxRounds = limit
	}
	rounds := maxRounds
	if !c.cfg.FixedRounds {
		rounds = c.rng.IntBetween(0, maxRounds)
	}

	total := 1 + 2*rounds
	conv := domain.Conversation{
		TicketID: ticket.ID,
		Rounds:   rounds,
		Messages: make([]domain.ConversationMessage, 0, total),
	}

	state := turnInitial
	ts := ticket.CreatedAt
	for i := 0; i < total; i++ {
		if i > 0 {
			state = state.next()
			ts = ts.Add(c.rng.DurationBetween(c.cfg.MessageGapMin, c.cfg.MessageGapMax))
		}
		body, err := c.messageBody(state, p)
		if err != nil {
			return domain.Conversation{}, err
		}
		sender := ticket.Customer
		if state.role == domain.SenderTech {
			sender = ticket.Tech
		}
		conv.Messages = append(conv.Messages, domain.ConversationMessage{
			TicketID:   ticket.ID,
			Customer:   ticket.Customer,
			SenderRole: state.role,
			SenderName: sender,
			Body:       body,
			Timestamp:  ts,
		})
	}

	c.logger.Debug("conversation composed",
		zap.String("ticket_id", ticket.ID),
		zap.Int("rounds", rounds),
		zap.Int("messages", len(conv.Messages)),
	)
	return conv, nil
}

func (c *Composer) messageBody(state turn, p *profile.Profile) (string, error) {
	phrase, err := c.pickKey(state.table, p)
	if err != nil {
		return "", err
	}
	body, err := c.interpolate(phrase)
	if err != nil {
		return "", err
	}
	if state != turnInitial {
		return body, nil
	}
	greetings, err := c.optionalKeys(catalog.TableGreetings, defaultGreetings)
	if err != nil {
		return "", err
	}
	return greetings[c.rng.Intn(len(greetings))] + ": " + body, nil
}
