package db

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BenRutlandWeb/atomic-framework/pkg/logger"
)

// Config is the "database" config section.
type Config struct {
	URL             string        `mapstructure:"url"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	Retries         int           `mapstructure:"retries"`
	RetryInterval   time.Duration `mapstructure:"retry_interval"`
	MigrationsTable string        `mapstructure:"migrations_table"`
}

// PoolConfig parses the url and applies the pool limits.
func (c Config) PoolConfig() (*pgxpool.Config, error) {
	if c.URL == "" {
		return nil, ErrNoDSN
	}
	pc, err := pgxpool.ParseConfig(c.URL)
	if err != nil {
		return nil, errors.Join(ErrInvalidDSN, err)
	}
	if c.MaxConns > 0 {
		pc.MaxConns = c.MaxConns
	}
	if c.MinConns > 0 {
		pc.MinConns = c.MinConns
	}
	if c.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = c.MaxConnIdleTime
	}
	if c.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = c.MaxConnLifetime
	}
	return pc, nil
}

// Open creates a pool and waits for the database to answer, retrying with a
// linear backoff.
func Open(ctx context.Context, cfg Config, log *slog.Logger) (*pgxpool.Pool, error) {
	if log == nil {
		log = logger.NewNope()
	}
	pc, err := cfg.PoolConfig()
	if err != nil {
		return nil, err
	}
	retries := max(cfg.Retries, 1)
	interval := cfg.RetryInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}

	var last error
	for attempt := 1; attempt <= retries; attempt++ {
		pool, err := pgxpool.NewWithConfig(ctx, pc)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				log.DebugContext(ctx, "database connected", slog.String("host", pc.ConnConfig.Host))
				return pool, nil
			}
			pool.Close()
		}
		last = err
		log.WarnContext(ctx, "database connection attempt failed",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()),
		)
		if attempt == retries {
			break
		}
		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrConnectionFailed, ctx.Err())
		case <-time.After(time.Duration(attempt) * interval):
		}
	}
	return nil, errors.Join(ErrConnectionFailed, last)
}

// Ping returns a health check for pool.
func Ping(pool *pgxpool.Pool) func(context.Context) error {
	return func(ctx context.Context) error {
		if pool == nil {
			return ErrPingFailed
		}
		if err := pool.Ping(ctx); err != nil {
			return errors.Join(ErrPingFailed, err)
		}
		return nil
	}
}
