package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-synth/internal/config"
	"github.com/spec-kit/ticket-synth/internal/domain"
	"github.com/spec-kit/ticket-synth/internal/events"
	"github.com/spec-kit/ticket-synth/internal/observability"
	apperrors "github.com/spec-kit/ticket-synth/pkg/util"
)

// BatchGenerator is the engine capability the service drives.
type BatchGenerator interface {
	Config() config.GeneratorConfig
	GenerateBatch(ctx context.Context, n int, cfg config.GeneratorConfig) (domain.Batch, error)
}

// GenerateInput describes one generation request. Nil overrides keep the
// engine defaults.
type GenerateInput struct {
	Count     int
	Profile   *string
	Seed      *int64
	MaxRounds *int
	Actor     events.Actor
}

// GenerationService runs generation requests and announces their outcome.
type GenerationService struct {
	engine     BatchGenerator
	archive    *ArchiveService
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// GenerationDependencies bundles collaborators for the generation service.
type GenerationDependencies struct {
	Engine     BatchGenerator
	Archive    *ArchiveService
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewGenerationService constructs the service.
func NewGenerationService(deps GenerationDependencies) *GenerationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GenerationService{
		engine:     deps.Engine,
		archive:    deps.Archive,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
	}
}

// MaxTickets returns the per-request ticket cap.
func (s *GenerationService) MaxTickets() int {
	return s.engine.Config().MaxTicketsPerRequest
}

// MaxRoundsLimit returns the largest max_rounds a request may ask for.
func (s *GenerationService) MaxRoundsLimit() int {
	return s.engine.Config().MaxRoundsLimit
}

// Generate produces a batch for input. Event publication failures are logged
// and never fail the request. A request without a seed always draws a fresh
// one; the configured GENERATOR_SEED is not applied here.
func (s *GenerationService) Generate(ctx context.Context, input GenerateInput) (domain.Batch, error) {
	cfg := s.engine.Config()
	cfg.Seed = 0
	if input.Profile != nil {
		cfg.ActiveProfile = *input.Profile
	}
	if input.Seed != nil {
		cfg.Seed = *input.Seed
	}
	if input.MaxRounds != nil {
		cfg.MaxConversationRounds = *input.MaxRounds
	}

	started := time.Now()
	batch, err := s.engine.GenerateBatch(ctx, input.Count, cfg)
	if err != nil {
		code := apperrors.ToDomainError(err).Code
		s.metrics.RecordGenerationFailure(code)
		s.publishEvent(ctx, events.NewEvent(events.EventBatchFailed, "", input.Actor, events.BatchFailedPayload{
			Count: input.Count,
			Code:  code,
			Error: err.Error(),
		}))
		return domain.Batch{}, err
	}

	s.metrics.RecordBatch(len(batch.Tickets), batch.MessageCount(), time.Since(started))
	s.publishEvent(ctx, events.NewEvent(events.EventBatchGenerated, batch.ID, input.Actor, events.BatchGeneratedPayload{
		Batch:   batch,
		Profile: cfg.ActiveProfile,
	}))
	return batch, nil
}

// Get returns a previously generated batch from the archive.
func (s *GenerationService) Get(ctx context.Context, id string) (domain.Batch, error) {
	if s.archive == nil {
		return domain.Batch{}, apperrors.NewNotFound("batch", map[string]any{"id": id})
	}
	return s.archive.Lookup(ctx, id)
}

func (s *GenerationService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.String("batch_id", event.BatchID),
			zap.Error(err))
	}
}
