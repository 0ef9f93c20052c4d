package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Counter counts hits per key inside a decay window that starts with the
// first hit.
type Counter interface {
	// Increment adds a hit and returns the hits in the window and the time
	// left until it resets.
	Increment(ctx context.Context, key string, decay time.Duration) (int64, time.Duration, error)
	// Hits returns the current hits and the time left.
	Hits(ctx context.Context, key string) (int64, time.Duration, error)
	Reset(ctx context.Context, key string) error
}

// MemoryCounter is a Counter for a single process.
type MemoryCounter struct {
	store *Memory[int64]
}

// NewMemoryCounter creates a MemoryCounter.
func NewMemoryCounter(opts ...MemoryOption) *MemoryCounter {
	return &MemoryCounter{store: NewMemory[int64](opts...)}
}

func (c *MemoryCounter) Increment(_ context.Context, key string, decay time.Duration) (int64, time.Duration, error) {
	n, expires, err := c.store.Update(key, decay, func(cur int64, _ bool) int64 { return cur + 1 })
	if err != nil {
		return 0, 0, err
	}
	return n, c.left(expires), nil
}

func (c *MemoryCounter) Hits(_ context.Context, key string) (int64, time.Duration, error) {
	n, expires, ok := c.store.Peek(key)
	if !ok {
		return 0, 0, nil
	}
	return n, c.left(expires), nil
}

func (c *MemoryCounter) Reset(ctx context.Context, key string) error {
	return c.store.Forget(ctx, key)
}

// Close stops the underlying sweeper.
func (c *MemoryCounter) Close() error { return c.store.Close() }

func (c *MemoryCounter) left(expires time.Time) time.Duration {
	if expires.IsZero() {
		return 0
	}
	return max(expires.Sub(c.store.now()), 0)
}

// incrementScript starts the window on the first hit only.
var incrementScript = redis.NewScript(`
local hits = redis.call("INCR", KEYS[1])
if hits == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {hits, redis.call("PTTL", KEYS[1])}
`)

// RedisCounter is a Counter shared by every process using the same Redis.
type RedisCounter struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisCounter creates a RedisCounter storing keys under prefix.
func NewRedisCounter(client redis.UniversalClient, prefix string) *RedisCounter {
	return &RedisCounter{client: client, prefix: prefix}
}

func (c *RedisCounter) Increment(ctx context.Context, key string, decay time.Duration) (int64, time.Duration, error) {
	res, err := incrementScript.Run(ctx, c.client, []string{c.key(key)}, decay.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, 0, err
	}
	return res[0], ttlFromMillis(res[1]), nil
}

func (c *RedisCounter) Hits(ctx context.Context, key string) (int64, time.Duration, error) {
	pipe := c.client.Pipeline()
	get := pipe.Get(ctx, c.key(key))
	ttl := pipe.PTTL(ctx, c.key(key))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return 0, 0, err
	}
	n, err := get.Int64()
	if err != nil {
		return 0, 0, nil
	}
	return n, max(ttl.Val(), 0), nil
}

func (c *RedisCounter) Reset(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.key(key)).Err()
}

func (c *RedisCounter) key(k string) string {
	if c.prefix == "" {
		return k
	}
	return c.prefix + ":" + k
}

func ttlFromMillis(ms int64) time.Duration {
	if ms < 0 {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}

// Limit is the outcome of a rate limiter attempt.
type Limit struct {
	Allowed    bool
	Max        int64
	Remaining  int64
	RetryAfter time.Duration
}

// RateLimiter allows at most n hits per key in a decay window.
type RateLimiter struct {
	counter Counter
}

// NewRateLimiter creates a RateLimiter over counter.
func NewRateLimiter(counter Counter) *RateLimiter {
	return &RateLimiter{counter: counter}
}

// Attempt records a hit on key and reports whether it is within maxHits.
func (l *RateLimiter) Attempt(ctx context.Context, key string, maxHits int64, decay time.Duration) (Limit, error) {
	hits, left, err := l.counter.Increment(ctx, key, decay)
	if err != nil {
		return Limit{}, err
	}
	lim := Limit{Allowed: hits <= maxHits, Max: maxHits, Remaining: max(maxHits-hits, 0)}
	if !lim.Allowed {
		lim.RetryAfter = left
	}
	return lim, nil
}

// TooManyAttempts reports whether key already used its hits without
// recording a new one.
func (l *RateLimiter) TooManyAttempts(ctx context.Context, key string, maxHits int64) (bool, error) {
	hits, _, err := l.counter.Hits(ctx, key)
	return hits >= maxHits, err
}

// AvailableIn returns the time until key resets.
func (l *RateLimiter) AvailableIn(ctx context.Context, key string) (time.Duration, error) {
	_, left, err := l.counter.Hits(ctx, key)
	return left, err
}

// Clear resets key.
func (l *RateLimiter) Clear(ctx context.Context, key string) error {
	return l.counter.Reset(ctx, key)
}
