package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-synth/internal/domain"
)

func TestDispatcherDeliversToEveryHandler(t *testing.T) {
	d := NewInMemoryDispatcher()
	var calls []string
	d.Subscribe(EventBatchGenerated, func(_ context.Context, e Event) error {
		calls = append(calls, "first:"+e.BatchID)
		return errors.New("cache down")
	})
	d.Subscribe(EventBatchGenerated, func(_ context.Context, e Event) error {
		calls = append(calls, "second:"+e.BatchID)
		return nil
	})
	d.Subscribe(EventBatchFailed, func(context.Context, Event) error {
		calls = append(calls, "failed")
		return nil
	})

	event := NewEvent(EventBatchGenerated, "b1", Actor{Type: domain.SubjectTypeBot}, BatchGeneratedPayload{})
	err := d.Publish(context.Background(), event)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache down")
	assert.Equal(t, []string{"first:b1", "second:b1"}, calls)
	assert.NotEmpty(t, event.ID)
}

func TestDispatcherIsolatesPanics(t *testing.T) {
	d := NewInMemoryDispatcher()
	delivered := false
	d.Subscribe(EventBatchFailed, func(context.Context, Event) error {
		panic("nil payload")
	})
	d.Subscribe(EventBatchFailed, func(context.Context, Event) error {
		delivered = true
		return nil
	})

	err := d.Publish(context.Background(), NewEvent(EventBatchFailed, "", Actor{}, nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic: nil payload")
	assert.True(t, delivered)
}
