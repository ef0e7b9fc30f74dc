package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/ticket-synth/internal/auth"
	"github.com/spec-kit/ticket-synth/internal/config"
	"github.com/spec-kit/ticket-synth/internal/domain"
	"github.com/spec-kit/ticket-synth/internal/events"
	"github.com/spec-kit/ticket-synth/internal/generator"
	"github.com/spec-kit/ticket-synth/internal/observability"
	apperrors "github.com/spec-kit/ticket-synth/pkg/util"
)

type fakeEngine struct {
	cfg  config.GeneratorConfig
	got  []config.GeneratorConfig
	fail error
}

func (f *fakeEngine) Config() config.GeneratorConfig { return f.cfg }

func (f *fakeEngine) GenerateBatch(_ context.Context, n int, cfg config.GeneratorConfig) (domain.Batch, error) {
	f.got = append(f.got, cfg)
	if f.fail != nil {
		return domain.Batch{}, f.fail
	}
	if n <= 0 || n > cfg.MaxTicketsPerRequest {
		return domain.Batch{}, &generator.InvalidCountError{Count: n, Max: cfg.MaxTicketsPerRequest}
	}
	return testBatch("b1", n), nil
}

func testBatch(id string, n int) domain.Batch {
	batch := domain.Batch{ID: id, Seed: 7, GeneratedAt: time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)}
	for i := 0; i < n; i++ {
		batch.Tickets = append(batch.Tickets, domain.Ticket{Customer: "Acme", Subject: "Printer jam"})
		batch.Conversations = append(batch.Conversations, domain.Conversation{Messages: []domain.ConversationMessage{{Body: "hi"}}})
		batch.TimeEntries = append(batch.TimeEntries, nil)
	}
	return batch
}

type memoryStore struct {
	mu      sync.Mutex
	batches map[string]domain.Batch
	saves   int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{batches: map[string]domain.Batch{}}
}

func (m *memoryStore) Save(_ context.Context, batch domain.Batch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	m.batches[batch.ID] = batch
	return nil
}

func (m *memoryStore) Get(_ context.Context, id string) (domain.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.batches[id]
	if !ok {
		return domain.Batch{}, redis.Nil
	}
	return b, nil
}

type memoryRepo struct {
	store   *memoryStore
	saveErr error
}

func (r *memoryRepo) SaveBatch(ctx context.Context, batch domain.Batch) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	return r.store.Save(ctx, batch)
}

func (r *memoryRepo) GetBatch(ctx context.Context, id string) (domain.Batch, error) {
	b, err := r.store.Get(ctx, id)
	if errors.Is(err, redis.Nil) {
		return domain.Batch{}, pgx.ErrNoRows
	}
	return b, err
}

func generatorConfig() config.GeneratorConfig {
	cfg := config.DefaultGenerator()
	cfg.MaxTicketsPerRequest = 5
	return cfg
}

func TestGenerateAppliesOverrides(t *testing.T) {
	engine := &fakeEngine{cfg: generatorConfig()}
	svc := NewGenerationService(GenerationDependencies{Engine: engine})

	profile, seed, rounds := "hardware", int64(99), 0
	batch, err := svc.Generate(context.Background(), GenerateInput{Count: 2, Profile: &profile, Seed: &seed, MaxRounds: &rounds})
	require.NoError(t, err)
	assert.Len(t, batch.Tickets, 2)

	require.Len(t, engine.got, 1)
	assert.Equal(t, "hardware", engine.got[0].ActiveProfile)
	assert.Equal(t, int64(99), engine.got[0].Seed)
	assert.Equal(t, 0, engine.got[0].MaxConversationRounds)
	assert.Equal(t, 5, svc.MaxTickets())
	assert.Equal(t, 50, svc.MaxRoundsLimit())
}

func TestGenerateIgnoresConfiguredSeed(t *testing.T) {
	cfg := generatorConfig()
	cfg.Seed = 42
	engine := &fakeEngine{cfg: cfg}
	svc := NewGenerationService(GenerationDependencies{Engine: engine})

	for i := 0; i < 2; i++ {
		_, err := svc.Generate(context.Background(), GenerateInput{Count: 1})
		require.NoError(t, err)
	}
	seed := int64(7)
	_, err := svc.Generate(context.Background(), GenerateInput{Count: 1, Seed: &seed})
	require.NoError(t, err)

	require.Len(t, engine.got, 3)
	assert.Zero(t, engine.got[0].Seed)
	assert.Zero(t, engine.got[1].Seed)
	assert.Equal(t, int64(7), engine.got[2].Seed)
}

func TestGenerateArchivesBatch(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	cache, repoStore := newMemoryStore(), newMemoryStore()
	archive := NewArchiveService(ArchiveDependencies{
		Dispatcher: dispatcher,
		Cache:      cache,
		BatchRepo:  &memoryRepo{store: repoStore},
	})
	archive.RegisterHandlers()
	metrics := observability.NewMetrics()

	svc := NewGenerationService(GenerationDependencies{
		Engine:     &fakeEngine{cfg: generatorConfig()},
		Archive:    archive,
		Dispatcher: dispatcher,
		Metrics:    metrics,
	})

	batch, err := svc.Generate(context.Background(), GenerateInput{Count: 3, Actor: events.Actor{Type: domain.SubjectTypeBot, ClientID: "bot"}})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.saves)
	assert.Equal(t, 1, repoStore.saves)

	got, err := svc.Get(context.Background(), batch.ID)
	require.NoError(t, err)
	assert.Equal(t, batch.ID, got.ID)

	snap := metrics.Snapshot()
	assert.Equal(t, int64(1), snap.Batches)
	assert.Equal(t, int64(3), snap.Tickets)
	assert.Equal(t, int64(3), snap.Messages)
}

func TestGenerateFailureIsRecordedAndPublished(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	var failed []events.BatchFailedPayload
	dispatcher.Subscribe(events.EventBatchFailed, func(_ context.Context, e events.Event) error {
		failed = append(failed, e.Payload.(events.BatchFailedPayload))
		return nil
	})
	metrics := observability.NewMetrics()
	svc := NewGenerationService(GenerationDependencies{
		Engine:     &fakeEngine{cfg: generatorConfig()},
		Dispatcher: dispatcher,
		Metrics:    metrics,
	})

	_, err := svc.Generate(context.Background(), GenerateInput{Count: 50})
	var invalid *generator.InvalidCountError
	require.ErrorAs(t, err, &invalid)

	require.Len(t, failed, 1)
	assert.Equal(t, "INVALID_COUNT", failed[0].Code)
	assert.Equal(t, 50, failed[0].Count)
	assert.Equal(t, int64(1), metrics.Snapshot().GenerationFailures["INVALID_COUNT"])
}

func TestGenerateSurvivesArchiveFailure(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	archive := NewArchiveService(ArchiveDependencies{
		Dispatcher: dispatcher,
		BatchRepo:  &memoryRepo{store: newMemoryStore(), saveErr: errors.New("connection refused")},
	})
	archive.RegisterHandlers()
	svc := NewGenerationService(GenerationDependencies{
		Engine:     &fakeEngine{cfg: generatorConfig()},
		Archive:    archive,
		Dispatcher: dispatcher,
	})

	batch, err := svc.Generate(context.Background(), GenerateInput{Count: 1})
	require.NoError(t, err)
	assert.Len(t, batch.Tickets, 1)
}

func TestLookupFallsBackToRepositoryAndRefillsCache(t *testing.T) {
	cache, repoStore := newMemoryStore(), newMemoryStore()
	require.NoError(t, repoStore.Save(context.Background(), testBatch("stored", 1)))
	archive := NewArchiveService(ArchiveDependencies{Cache: cache, BatchRepo: &memoryRepo{store: repoStore}})

	got, err := archive.Lookup(context.Background(), "stored")
	require.NoError(t, err)
	assert.Equal(t, "stored", got.ID)
	assert.Equal(t, 1, cache.saves)
}

func TestLookupNotFound(t *testing.T) {
	ctx := context.Background()
	cases := map[string]*ArchiveService{
		"no backends": NewArchiveService(ArchiveDependencies{}),
		"cache only":  NewArchiveService(ArchiveDependencies{Cache: newMemoryStore()}),
		"repository":  NewArchiveService(ArchiveDependencies{BatchRepo: &memoryRepo{store: newMemoryStore()}}),
	}
	for name, archive := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := archive.Lookup(ctx, "missing")
			assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
		})
	}

	svc := NewGenerationService(GenerationDependencies{Engine: &fakeEngine{cfg: generatorConfig()}})
	_, err := svc.Get(ctx, "missing")
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}

func TestIssueBotToken(t *testing.T) {
	hash, err := auth.HashAPIKey("s3cret", bcrypt.MinCost)
	require.NoError(t, err)
	svc := NewAuthService(config.AuthConfig{
		JWTSecret:             "secret",
		AccessTokenTTLMinutes: 10,
		BotClientID:           "discord-bot",
		BotAPIKeyHash:         hash,
	})
	ctx := context.Background()

	token, meta, err := svc.IssueBotToken(ctx, "discord-bot", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, domain.SubjectTypeBot, meta.Subject)
	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.True(t, claims.HasScope(auth.ScopeGenerate))

	_, _, err = svc.IssueBotToken(ctx, "discord-bot", "wrong")
	assert.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code)
	_, _, err = svc.IssueBotToken(ctx, "other-bot", "s3cret")
	assert.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code)

	disabled := NewAuthService(config.AuthConfig{JWTSecret: "secret"})
	_, _, err = disabled.IssueBotToken(ctx, "discord-bot", "s3cret")
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}
