package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/ticket-synth/internal/domain"
)

const batchKeyPrefix = "ticket-synth:batch:"

// BatchCache keeps recently generated batches in Redis for a limited time.
type BatchCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewBatchCache returns nil when r has no client.
func NewBatchCache(r *Redis, ttl time.Duration) *BatchCache {
	if !r.Enabled() {
		return nil
	}
	return &BatchCache{client: r.Client, ttl: ttl}
}

// BatchKey is the Redis key holding batch id.
func BatchKey(id string) string {
	return batchKeyPrefix + id
}

// Save stores batch under its id.
func (c *BatchCache) Save(ctx context.Context, batch domain.Batch) error {
	payload, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("encode batch %s: %w", batch.ID, err)
	}
	return c.client.Set(ctx, BatchKey(batch.ID), payload, c.ttl).Err()
}

// Get loads a cached batch. A miss returns redis.Nil.
func (c *BatchCache) Get(ctx context.Context, id string) (domain.Batch, error) {
	payload, err := c.client.Get(ctx, BatchKey(id)).Bytes()
	if err != nil {
		return domain.Batch{}, err
	}
	var batch domain.Batch
	if err := json.Unmarshal(payload, &batch); err != nil {
		return domain.Batch{}, fmt.Errorf("decode batch %s: %w", id, err)
	}
	return batch, nil
}
