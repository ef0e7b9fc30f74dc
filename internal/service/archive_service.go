package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-synth/internal/domain"
	"github.com/spec-kit/ticket-synth/internal/events"
	"github.com/spec-kit/ticket-synth/internal/repository"
	apperrors "github.com/spec-kit/ticket-synth/pkg/util"
)

// BatchStore is a short-lived batch store such as the Redis cache.
type BatchStore interface {
	Save(ctx context.Context, batch domain.Batch) error
	Get(ctx context.Context, id string) (domain.Batch, error)
}

// ArchiveService keeps generated batches retrievable by id.
type ArchiveService struct {
	dispatcher events.Dispatcher
	cache      BatchStore
	batches    repository.BatchRepository
	logger     *zap.Logger
}

// ArchiveDependencies bundles the optional archive backends.
type ArchiveDependencies struct {
	Dispatcher events.Dispatcher
	Cache      BatchStore
	BatchRepo  repository.BatchRepository
	Logger     *zap.Logger
}

// NewArchiveService creates the service.
func NewArchiveService(deps ArchiveDependencies) *ArchiveService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArchiveService{
		dispatcher: deps.Dispatcher,
		cache:      deps.Cache,
		batches:    deps.BatchRepo,
		logger:     logger,
	}
}

// Enabled reports whether any backend is configured.
func (a *ArchiveService) Enabled() bool {
	return a.cache != nil || a.batches != nil
}

// RegisterHandlers subscribes to events.
func (a *ArchiveService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventBatchGenerated, a.handleBatchGenerated)
	a.dispatcher.Subscribe(events.EventBatchFailed, a.handleBatchFailed)
}

// Lookup returns batch id, preferring the cache over Postgres.
func (a *ArchiveService) Lookup(ctx context.Context, id string) (domain.Batch, error) {
	if a.cache != nil {
		batch, err := a.cache.Get(ctx, id)
		if err == nil {
			return batch, nil
		}
		a.logger.Debug("batch cache miss", zap.String("batch_id", id), zap.Error(err))
	}
	if a.batches == nil {
		return domain.Batch{}, apperrors.NewNotFound("batch", map[string]any{"id": id})
	}

	batch, err := a.batches.GetBatch(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Batch{}, apperrors.NewNotFound("batch", map[string]any{"id": id})
	}
	if err != nil {
		return domain.Batch{}, err
	}
	if a.cache != nil {
		if err := a.cache.Save(ctx, batch); err != nil {
			a.logger.Warn("batch cache refill failed", zap.String("batch_id", id), zap.Error(err))
		}
	}
	return batch, nil
}

func (a *ArchiveService) handleBatchGenerated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.BatchGeneratedPayload)
	if !ok {
		return fmt.Errorf("batch_generated: unexpected payload %T", event.Payload)
	}
	a.logger.Info("BatchGenerated",
		zap.String("batch_id", event.BatchID),
		zap.String("client_id", event.Actor.ClientID),
		zap.Int("tickets", len(payload.Batch.Tickets)))

	var errs []error
	if a.cache != nil {
		if err := a.cache.Save(ctx, payload.Batch); err != nil {
			errs = append(errs, fmt.Errorf("cache batch %s: %w", event.BatchID, err))
		}
	}
	if a.batches != nil {
		if err := a.batches.SaveBatch(ctx, payload.Batch); err != nil {
			errs = append(errs, fmt.Errorf("store batch %s: %w", event.BatchID, err))
		}
	}
	return errors.Join(errs...)
}

func (a *ArchiveService) handleBatchFailed(_ context.Context, event events.Event) error {
	a.logger.Warn("BatchFailed",
		zap.String("client_id", event.Actor.ClientID),
		zap.Any("payload", event.Payload))
	return nil
}
