package dedupe

import "time"

// Option applies a configuration option to the InMemoryDeduper.
type Option func(*InMemoryDeduper)

// WithMaxSize bounds the number of IDs kept in memory. Zero or negative
// disables the bound.
func WithMaxSize(maxSize int) Option {
	return func(d *InMemoryDeduper) {
		d.maxSize = maxSize
	}
}

// WithTTL sets how long an ID is remembered. Zero or negative keeps IDs until
// they are evicted by size.
func WithTTL(ttl time.Duration) Option {
	return func(d *InMemoryDeduper) {
		d.ttl = ttl
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(d *InMemoryDeduper) {
		if now != nil {
			d.now = now
		}
	}
}

// RedisOption applies a configuration option to the RedisDeduper.
type RedisOption func(*RedisDeduper)

// WithKeyPrefix sets the Redis key prefix.
func WithKeyPrefix(prefix string) RedisOption {
	return func(d *RedisDeduper) {
		if prefix != "" {
			d.prefix = prefix
		}
	}
}

// WithRedisTTL sets the key expiry.
func WithRedisTTL(ttl time.Duration) RedisOption {
	return func(d *RedisDeduper) {
		if ttl > 0 {
			d.ttl = ttl
		}
	}
}
