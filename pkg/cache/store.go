package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"
)

// Forever stores a value without expiry.
const Forever time.Duration = -1

// Store keeps values of type V by key. A zero ttl uses the store default,
// a negative ttl never expires.
type Store[V any] interface {
	Get(ctx context.Context, key string) (V, error)
	Put(ctx context.Context, key string, value V, ttl time.Duration) error
	Has(ctx context.Context, key string) (bool, error)
	Forget(ctx context.Context, key string) error
	Flush(ctx context.Context) error
	Close() error
}

// Codec converts values for stores that keep bytes.
type Codec[V any] interface {
	Encode(v V) ([]byte, error)
	Decode(b []byte) (V, error)
}

// JSON is the default codec.
type JSON[V any] struct{}

func (JSON[V]) Encode(v V) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrEncode, err)
	}
	return b, nil
}

func (JSON[V]) Decode(b []byte) (V, error) {
	var v V
	if err := json.Unmarshal(b, &v); err != nil {
		return v, errors.Join(ErrDecode, err)
	}
	return v, nil
}

var remembering singleflight.Group

// Remember returns the cached value of key, or computes it with fn, stores it
// for ttl and returns it. Concurrent misses on the same key call fn once.
func Remember[V any](ctx context.Context, s Store[V], key string, ttl time.Duration, fn func(context.Context) (V, error)) (V, error) {
	if v, err := s.Get(ctx, key); err == nil {
		return v, nil
	} else if !errors.Is(err, ErrMiss) {
		var zero V
		return zero, err
	}

	res, err, _ := remembering.Do(key, func() (any, error) {
		v, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		if err := s.Put(ctx, key, v, ttl); err != nil {
			return nil, err
		}
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}

// Pull returns the value of key and removes it.
func Pull[V any](ctx context.Context, s Store[V], key string) (V, error) {
	v, err := s.Get(ctx, key)
	if err != nil {
		return v, err
	}
	return v, s.Forget(ctx, key)
}
