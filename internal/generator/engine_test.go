package generator

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-synth/internal/catalog"
	"github.com/spec-kit/ticket-synth/internal/domain"
	"github.com/spec-kit/ticket-synth/internal/profile"
)

func TestGenerateBatchRejectsInvalidCounts(t *testing.T) {
	cfg := testConfig()
	e := newTestEngine(t, helpdeskSource(), cfg, nil)

	for _, n := range []int{0, -1, cfg.MaxTicketsPerRequest + 1} {
		_, err := e.Generate(context.Background(), n)
		var invalid *InvalidCountError
		require.True(t, errors.As(err, &invalid), "n=%d err=%v", n, err)
		assert.Equal(t, n, invalid.Count)
		assert.Equal(t, cfg.MaxTicketsPerRequest, invalid.Max)
	}

	batch, err := e.Generate(context.Background(), cfg.MaxTicketsPerRequest)
	require.NoError(t, err)
	assert.Len(t, batch.Tickets, cfg.MaxTicketsPerRequest)
}

func TestGenerateBatchSingleRowCatalogIsDeterministic(t *testing.T) {
	cfg := testConfig()
	cfg.MaxConversationRounds = 0
	e := newTestEngine(t, singleRowSource(), cfg, nil)

	first, err := e.Generate(context.Background(), 1)
	require.NoError(t, err)
	second, err := e.Generate(context.Background(), 1)
	require.NoError(t, err)

	require.Len(t, first.Tickets, 1)
	require.Len(t, first.Conversations, 1)
	ticket := first.Tickets[0]
	assert.Equal(t, "Acme Corp", ticket.Customer)
	assert.Equal(t, "Wile Coyote", ticket.Contact)
	assert.Equal(t, "Alice", ticket.Tech)
	assert.Equal(t, "Printer jam", ticket.Subject)
	assert.Equal(t, "Paper everywhere.", ticket.Description)
	assert.Equal(t, "High", ticket.Priority)
	assert.Equal(t, "New", ticket.Status)
	assert.Equal(t, "Hardware", ticket.IssueType)

	conv := first.Conversations[0]
	require.Len(t, conv.Messages, 1)
	assert.Equal(t, "HELP: The printer ate my report", conv.Messages[0].Body)
	assert.Equal(t, ticket.CreatedAt, conv.Messages[0].Timestamp)

	assert.Equal(t, first.Tickets, second.Tickets)
	assert.Equal(t, first.Conversations, second.Conversations)
	assert.Equal(t, first.TimeEntries, second.TimeEntries)
	assert.Equal(t, int64(42), first.Seed)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestGenerateBatchInvariants(t *testing.T) {
	cfg := testConfig()
	cfg.Seed = 0
	e := newTestEngine(t, helpdeskSource(), cfg, nil)

	batch, err := e.Generate(context.Background(), 20)
	require.NoError(t, err)
	require.Len(t, batch.Tickets, 20)
	require.Len(t, batch.Conversations, 20)
	require.Len(t, batch.TimeEntries, 20)
	assert.NotZero(t, batch.Seed)

	windowStart := testNow.AddDate(0, 0, -cfg.DaysAgo)
	for i, ticket := range batch.Tickets {
		conv := batch.Conversations[i]
		assert.Equal(t, ticket.ID, conv.TicketID)
		assert.False(t, ticket.CreatedAt.Before(windowStart))
		assert.False(t, ticket.CreatedAt.After(testNow))
		assert.Len(t, conv.Messages, 1+2*conv.Rounds)
		for _, entry := range batch.TimeEntries[i] {
			assert.Equal(t, ticket.ID, entry.TicketID)
		}
	}
}

func TestGenerateBatchPerCallConfig(t *testing.T) {
	reg, err := profile.Parse([]byte(`
profiles:
  outage:
    tables:
      priorities:
        High: 1
        __default__: 0
`), 1)
	require.NoError(t, err)
	e := newTestEngine(t, helpdeskSource(), testConfig(), reg)

	cfg := e.Config()
	cfg.ActiveProfile = "outage"
	batch, err := e.GenerateBatch(context.Background(), 10, cfg)
	require.NoError(t, err)
	for _, ticket := range batch.Tickets {
		assert.Equal(t, "High", ticket.Priority)
	}

	cfg.ActiveProfile = "missing"
	_, err = e.GenerateBatch(context.Background(), 1, cfg)
	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.True(t, errors.Is(err, profile.ErrUnknownProfile))
}

func TestGenerateBatchDiscardsPartialResults(t *testing.T) {
	src := helpdeskSource()
	src[catalog.TableHelpdeskResponses] = [][]string{{"phrase"}}
	cfg := testConfig()
	cfg.FixedRounds = true
	e := newTestEngine(t, src, cfg, nil)

	batch, err := e.Generate(context.Background(), 5)
	var empty *catalog.EmptyTableError
	require.True(t, errors.As(err, &empty))
	assert.Equal(t, catalog.TableHelpdeskResponses, empty.Table)
	assert.Equal(t, domain.Batch{}, batch)
}

func TestGenerateBatchHonoursCancellation(t *testing.T) {
	e := newTestEngine(t, helpdeskSource(), testConfig(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Generate(ctx, 3)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateConcurrentCallsUseIndependentStreams(t *testing.T) {
	cfg := testConfig()
	cfg.Seed = 0
	e := newTestEngine(t, helpdeskSource(), cfg, nil)

	const callers = 8
	batches := make([]domain.Batch, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b, err := e.Generate(context.Background(), 5)
			assert.NoError(t, err)
			batches[i] = b
		}(i)
	}
	wg.Wait()

	seeds := map[int64]bool{}
	for _, b := range batches {
		seeds[b.Seed] = true
	}
	assert.Len(t, seeds, callers)
}

func TestNewEngineValidatesProfiles(t *testing.T) {
	reg, err := profile.Parse([]byte(`
profiles:
  stale:
    tables:
      priorities:
        Blocker: 5
`), 1)
	require.NoError(t, err)

	_, err = NewEngine(catalog.New(helpdeskSource()), reg, testConfig(), nil, nil)
	var validation *profile.ValidationError
	require.True(t, errors.As(err, &validation))
	assert.Equal(t, "Blocker", validation.Key)

	cfg := testConfig()
	cfg.DaysAgo = -3
	_, err = NewEngine(catalog.New(helpdeskSource()), nil, cfg, nil, nil)
	var cfgErr *ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestLoadBundledData(t *testing.T) {
	cfg := testConfig()
	cfg.DataDir = "../../data/generatorData"
	cfg.ProfilesFile = "../../data/probability_profiles.yaml"

	e, err := Load(cfg, FixedClock(testNow), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"backlog", "balanced", "hardware"}, e.Profiles().Names())

	batch, err := e.Generate(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, batch.Tickets, 10)
	for i, ticket := range batch.Tickets {
		switch {
		case ticket.Tech == "Jordan Lee":
			assert.Equal(t, "hardware", ticket.Profile)
		case ticket.Customer == "Initech":
			assert.Equal(t, "backlog", ticket.Profile)
		default:
			assert.Equal(t, "balanced", ticket.Profile)
		}
		first := batch.Conversations[i].Messages[0]
		assert.NotContains(t, first.Body, "#")
		assert.Regexp(t, `^(HELP|URGENT|Attention): `, first.Body)
	}
}

func TestLoadMissingDataDir(t *testing.T) {
	cfg := testConfig()
	cfg.DataDir = t.TempDir()
	_, err := Load(cfg, nil, nil)
	var missing *catalog.MissingTableError
	assert.ErrorAs(t, err, &missing)
}
