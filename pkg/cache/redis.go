package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis keeps encoded values in Redis under "{prefix}:{key}".
type Redis[V any] struct {
	client redis.UniversalClient
	codec  Codec[V]
	prefix string
	ttl    time.Duration
}

// RedisOption configures a Redis store.
type RedisOption[V any] func(*Redis[V])

// WithPrefix namespaces the keys of the store.
func WithPrefix[V any](prefix string) RedisOption[V] {
	return func(r *Redis[V]) { r.prefix = prefix }
}

// WithCodec replaces the JSON codec.
func WithCodec[V any](c Codec[V]) RedisOption[V] {
	return func(r *Redis[V]) { r.codec = c }
}

// WithRedisTTL sets the expiry used when Put is called with a zero ttl.
func WithRedisTTL[V any](d time.Duration) RedisOption[V] {
	return func(r *Redis[V]) { r.ttl = d }
}

// NewRedis creates a Redis store. The client is owned by the caller.
func NewRedis[V any](client redis.UniversalClient, opts ...RedisOption[V]) *Redis[V] {
	r := &Redis[V]{client: client, codec: JSON[V]{}, ttl: time.Hour}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Redis[V]) Get(ctx context.Context, key string) (V, error) {
	var zero V
	b, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return zero, ErrMiss
	}
	if err != nil {
		return zero, err
	}
	return r.codec.Decode(b)
}

func (r *Redis[V]) Put(ctx context.Context, key string, value V, ttl time.Duration) error {
	b, err := r.codec.Encode(value)
	if err != nil {
		return err
	}
	if ttl == 0 {
		ttl = r.ttl
	}
	return r.client.Set(ctx, r.key(key), b, max(ttl, 0)).Err()
}

func (r *Redis[V]) Has(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(key)).Result()
	return n > 0, err
}

func (r *Redis[V]) Forget(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

// Flush removes the keys under the prefix, or the whole database when the
// store has no prefix.
func (r *Redis[V]) Flush(ctx context.Context) error {
	if r.prefix == "" {
		return r.client.FlushDB(ctx).Err()
	}
	iter := r.client.Scan(ctx, 0, r.prefix+":*", 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			if err := r.client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return r.client.Del(ctx, batch...).Err()
	}
	return nil
}

// Close is a no-op.
func (r *Redis[V]) Close() error { return nil }

func (r *Redis[V]) key(k string) string {
	if r.prefix == "" {
		return k
	}
	return r.prefix + ":" + k
}

var _ Store[any] = (*Redis[any])(nil)
