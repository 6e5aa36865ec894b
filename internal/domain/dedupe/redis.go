package dedupe

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "wellcheck:submission:"

// RedisDeduper shares submission IDs across service instances using SETNX
// with an expiry.
type RedisDeduper struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewRedisDeduper creates a Redis-backed deduper.
func NewRedisDeduper(client redis.Cmdable, opts ...RedisOption) *RedisDeduper {
	d := &RedisDeduper{
		client: client,
		prefix: defaultKeyPrefix,
		ttl:    defaultTTL,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SeenAndRecord implements Deduper.
func (d *RedisDeduper) SeenAndRecord(ctx context.Context, id string) (bool, error) {
	ok, err := d.client.SetNX(ctx, d.prefix+id, time.Now().Unix(), d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return !ok, nil
}

// Unrecord implements Deduper.
func (d *RedisDeduper) Unrecord(ctx context.Context, id string) error {
	if err := d.client.Del(ctx, d.prefix+id).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
