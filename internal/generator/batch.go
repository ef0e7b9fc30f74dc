package generator

import (
	"context"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-synth/internal/config"
	"github.com/spec-kit/ticket-synth/internal/domain"
	"github.com/spec-kit/ticket-synth/internal/sampler"
)

const (
	batchIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	batchIDLength   = 12
)

// GenerateBatch produces n tickets with their conversations and time entries
// under cfg. The collections share indexes. Any failure discards the whole
// batch.
func (e *Engine) GenerateBatch(ctx context.Context, n int, cfg config.GeneratorConfig) (domain.Batch, error) {
	if err := cfg.Validate(); err != nil {
		return domain.Batch{}, &ConfigError{Err: err}
	}
	if n <= 0 || n > cfg.MaxTicketsPerRequest {
		return domain.Batch{}, &InvalidCountError{Count: n, Max: cfg.MaxTicketsPerRequest}
	}
	base, err := e.registry.Get(cfg.ActiveProfile)
	if err != nil {
		return domain.Batch{}, &ConfigError{Err: err}
	}

	id, err := gonanoid.Generate(batchIDAlphabet, batchIDLength)
	if err != nil {
		return domain.Batch{}, fmt.Errorf("batch id: %w", err)
	}

	rng := sampler.New(cfg.Seed)
	log := e.logger.With(zap.String("batch_id", id), zap.Int64("seed", rng.Seed()))
	comp := NewComposer(e.tables, rng, e.registry, cfg, e.clock, log)

	started := time.Now()
	batch := domain.Batch{
		ID:            id,
		Seed:          rng.Seed(),
		GeneratedAt:   e.clock.Now(),
		Tickets:       make([]domain.Ticket, 0, n),
		Conversations: make([]domain.Conversation, 0, n),
		TimeEntries:   make([][]domain.TimeEntry, 0, n),
	}
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return domain.Batch{}, err
		}
		ticket, err := comp.ComposeTicket(base)
		if err != nil {
			return domain.Batch{}, fmt.Errorf("compose ticket %d: %w", i+1, err)
		}
		active := comp.profileFor(base, ticket.Tech, ticket.Customer)
		conv, err := comp.ComposeConversation(ticket, active, cfg.MaxConversationRounds)
		if err != nil {
			return domain.Batch{}, fmt.Errorf("compose conversation %d: %w", i+1, err)
		}
		entries, err := comp.ComposeTimeEntries(ticket, conv)
		if err != nil {
			return domain.Batch{}, fmt.Errorf("compose time entries %d: %w", i+1, err)
		}
		batch.Tickets = append(batch.Tickets, ticket)
		batch.Conversations = append(batch.Conversations, conv)
		batch.TimeEntries = append(batch.TimeEntries, entries)
	}

	log.Info("batch generated",
		zap.Int("tickets", len(batch.Tickets)),
		zap.Int("messages", batch.MessageCount()),
		zap.String("profile", cfg.ActiveProfile),
		zap.Duration("elapsed", time.Since(started)),
	)
	return batch, nil
}
