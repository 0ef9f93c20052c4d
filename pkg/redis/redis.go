package redis

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/BenRutlandWeb/atomic-framework/pkg/logger"
)

// Client is the connection handed to the cache and throttle stores.
type Client = redis.UniversalClient

// Config is the "database.redis" config section.
type Config struct {
	URL           string        `mapstructure:"url"`
	PoolSize      int           `mapstructure:"pool_size"`
	MinIdleConns  int           `mapstructure:"min_idle_conns"`
	Retries       int           `mapstructure:"retries"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
	DialTimeout   time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
}

func (c Config) withDefaults() Config {
	if c.PoolSize <= 0 {
		c.PoolSize = 10
	}
	if c.Retries <= 0 {
		c.Retries = 3
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = 2 * time.Second
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 3 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 3 * time.Second
	}
	return c
}

// Options parses the connection url and applies the pool settings.
func (c Config) Options() (*redis.Options, error) {
	if c.URL == "" {
		return nil, ErrNoURL
	}
	if !strings.HasPrefix(c.URL, "redis://") && !strings.HasPrefix(c.URL, "rediss://") {
		return nil, ErrInvalidURL
	}
	opts, err := redis.ParseURL(c.URL)
	if err != nil {
		return nil, errors.Join(ErrInvalidURL, err)
	}

	c = c.withDefaults()
	opts.PoolSize = c.PoolSize
	opts.MinIdleConns = c.MinIdleConns
	opts.DialTimeout = c.DialTimeout
	opts.ReadTimeout = c.ReadTimeout
	opts.WriteTimeout = c.WriteTimeout
	return opts, nil
}

// Open connects to Redis, retrying with a linear backoff until the server
// answers a ping or the retries run out.
func Open(ctx context.Context, cfg Config, log *slog.Logger) (Client, error) {
	if log == nil {
		log = logger.NewNope()
	}
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	var last error
	for attempt := 1; attempt <= cfg.Retries; attempt++ {
		client := redis.NewClient(opts)
		if last = client.Ping(ctx).Err(); last == nil {
			log.DebugContext(ctx, "redis connected", slog.String("addr", opts.Addr))
			return client, nil
		}
		_ = client.Close()
		log.WarnContext(ctx, "redis connection attempt failed",
			slog.Int("attempt", attempt),
			slog.String("error", last.Error()),
		)

		if attempt == cfg.Retries {
			break
		}
		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrConnectionFailed, ctx.Err())
		case <-time.After(time.Duration(attempt) * cfg.RetryInterval):
		}
	}
	return nil, errors.Join(ErrConnectionFailed, last)
}

// Ping returns a health check for client.
func Ping(client Client) func(context.Context) error {
	return func(ctx context.Context) error {
		if client == nil {
			return ErrPingFailed
		}
		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Join(ErrPingFailed, err)
		}
		return nil
	}
}
