package redis_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BenRutlandWeb/atomic-framework/pkg/redis"
)

func TestConfigOptions(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		opts, err := redis.Config{URL: "redis://:secret@cache:6380/2"}.Options()
		require.NoError(t, err)
		assert.Equal(t, "cache:6380", opts.Addr)
		assert.Equal(t, "secret", opts.Password)
		assert.Equal(t, 2, opts.DB)
		assert.Equal(t, 10, opts.PoolSize)
		assert.Equal(t, 5*time.Second, opts.DialTimeout)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Parallel()
		opts, err := redis.Config{URL: "rediss://cache:6379", PoolSize: 3, ReadTimeout: time.Second}.Options()
		require.NoError(t, err)
		assert.Equal(t, 3, opts.PoolSize)
		assert.Equal(t, time.Second, opts.ReadTimeout)
		assert.NotNil(t, opts.TLSConfig)
	})

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()
		_, err := redis.Config{}.Options()
		require.ErrorIs(t, err, redis.ErrNoURL)

		for _, u := range []string{"http://cache:6379", "cache:6379", "postgres://db"} {
			_, err := redis.Config{URL: u}.Options()
			assert.ErrorIs(t, err, redis.ErrInvalidURL, u)
		}
	})
}

func TestOpenRespectsContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := redis.Open(ctx, redis.Config{
		URL:           "redis://127.0.0.1:1",
		Retries:       3,
		RetryInterval: time.Hour,
		DialTimeout:   50 * time.Millisecond,
	}, nil)
	require.ErrorIs(t, err, redis.ErrConnectionFailed)
}

func TestPingNilClient(t *testing.T) {
	t.Parallel()
	require.ErrorIs(t, redis.Ping(nil)(context.Background()), redis.ErrPingFailed)
}

func TestOpenIntegration(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	ctx := context.Background()

	client, err := redis.Open(ctx, redis.Config{URL: url}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, redis.Ping(client)(ctx))
}
