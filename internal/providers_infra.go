package internal

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BenRutlandWeb/atomic-framework/middlewares"
	"github.com/BenRutlandWeb/atomic-framework/pkg/cache"
	"github.com/BenRutlandWeb/atomic-framework/pkg/container"
	"github.com/BenRutlandWeb/atomic-framework/pkg/content"
	"github.com/BenRutlandWeb/atomic-framework/pkg/db"
	"github.com/BenRutlandWeb/atomic-framework/pkg/events"
	"github.com/BenRutlandWeb/atomic-framework/pkg/filesystem"
	"github.com/BenRutlandWeb/atomic-framework/pkg/mail"
	"github.com/BenRutlandWeb/atomic-framework/pkg/queue"
	"github.com/BenRutlandWeb/atomic-framework/pkg/redis"
	"github.com/BenRutlandWeb/atomic-framework/pkg/routing"
)

// connectTimeout bounds the retries of database and redis connections made
// while resolving services.
const connectTimeout = 30 * time.Second

// FilesystemServiceProvider binds the disk manager over the "filesystems"
// config. Relative local roots are resolved against the base path.
type FilesystemServiceProvider struct {
	// Drivers are extra disk drivers by name.
	Drivers map[string]filesystem.DriverFunc
}

func (p *FilesystemServiceProvider) Register(app *Application) error {
	container.ProvideNamed(app.Container, ServiceFiles, func(container.Resolver) (*filesystem.Manager, error) {
		var cfg filesystem.Config
		if err := app.Config().Unmarshal("filesystems", &cfg); err != nil {
			return nil, err
		}
		for name, disk := range cfg.Disks {
			if disk.Driver == "local" && disk.Root != "" && !filepath.IsAbs(disk.Root) {
				disk.Root = app.BasePath(disk.Root)
				cfg.Disks[name] = disk
			}
		}

		opts := []filesystem.ManagerOption{filesystem.WithLogger(app.Logger())}
		for name, fn := range p.Drivers {
			opts = append(opts, filesystem.WithDriver(name, fn))
		}
		m := filesystem.NewManager(cfg, opts...)
		app.Terminating(func(context.Context) error { return m.Close() })
		return m, nil
	})
	return nil
}

func (p *FilesystemServiceProvider) Boot(*Application) error { return nil }

// CacheConfig is the "cache" config section.
type CacheConfig struct {
	Driver string        `mapstructure:"driver"`
	Prefix string        `mapstructure:"prefix"`
	TTL    time.Duration `mapstructure:"ttl"`
	Limit  int           `mapstructure:"limit"`
}

// CacheServiceProvider binds the cache store and the rate limiter, on
// memory or on redis (cache.driver), and aliases the "throttle" middleware.
type CacheServiceProvider struct {
	// Throttle keys rate limited requests. Defaults to the signed-in user
	// or the client address.
	Throttle middlewares.ThrottleKeyFunc
}

func (p *CacheServiceProvider) Register(app *Application) error {
	container.ProvideNamed(app.Container, ServiceRedis, func(container.Resolver) (redis.Client, error) {
		var cfg redis.Config
		if err := app.Config().Unmarshal("database.redis", &cfg); err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		client, err := redis.Open(ctx, cfg, app.Logger())
		if err != nil {
			return nil, err
		}
		app.Terminating(func(context.Context) error { return client.Close() })
		return client, nil
	})

	container.ProvideNamed(app.Container, ServiceCache, func(r container.Resolver) (cache.Store[any], error) {
		cfg, err := cacheConfig(app)
		if err != nil {
			return nil, err
		}
		switch cfg.Driver {
		case "", "memory":
			opts := []cache.MemoryOption{cache.WithTTL(cfg.TTL)}
			if cfg.Limit > 0 {
				opts = append(opts, cache.WithLimit(cfg.Limit))
			}
			m := cache.NewMemory[any](opts...)
			app.Terminating(func(context.Context) error { return m.Close() })
			return m, nil
		case "redis":
			client, err := container.MakeNamed[redis.Client](r, ServiceRedis)
			if err != nil {
				return nil, err
			}
			return cache.NewRedis(client,
				cache.WithPrefix[any](cfg.Prefix),
				cache.WithRedisTTL[any](cfg.TTL),
			), nil
		default:
			return nil, fmt.Errorf("%w: cache [%s]", ErrUnknownDriver, cfg.Driver)
		}
	})

	container.ProvideNamed(app.Container, ServiceLimiter, func(r container.Resolver) (*cache.RateLimiter, error) {
		cfg, err := cacheConfig(app)
		if err != nil {
			return nil, err
		}
		if cfg.Driver != "redis" {
			counter := cache.NewMemoryCounter()
			app.Terminating(func(context.Context) error { return counter.Close() })
			return cache.NewRateLimiter(counter), nil
		}
		client, err := container.MakeNamed[redis.Client](r, ServiceRedis)
		if err != nil {
			return nil, err
		}
		return cache.NewRateLimiter(cache.NewRedisCounter(client, cfg.Prefix+"throttle:")), nil
	})
	return nil
}

func (p *CacheServiceProvider) Boot(app *Application) error {
	limiter, err := container.MakeNamed[*cache.RateLimiter](app, ServiceLimiter)
	if err != nil {
		return err
	}
	for _, router := range routers(app) {
		router.AliasParameterizedMiddleware("throttle", middlewares.Throttle(limiter, p.Throttle))
	}

	cfg, err := cacheConfig(app)
	if err != nil {
		return err
	}
	if cfg.Driver == "redis" {
		app.AddCheck("redis", func(ctx context.Context) error {
			client, err := container.MakeNamed[redis.Client](app, ServiceRedis)
			if err != nil {
				return err
			}
			return redis.Ping(client)(ctx)
		})
	}
	return nil
}

func cacheConfig(app *Application) (CacheConfig, error) {
	var cfg CacheConfig
	err := app.Config().Unmarshal("cache", &cfg)
	return cfg, err
}

// DatabaseServiceProvider binds the Postgres pool and the migrator when
// database.url is set. Migrations are read from database/migrations.
type DatabaseServiceProvider struct {
	// Migrations replaces the migrations directory of the project.
	Migrations string
}

func (p *DatabaseServiceProvider) Register(app *Application) error {
	container.ProvideNamed(app.Container, ServiceDB, func(container.Resolver) (*pgxpool.Pool, error) {
		var cfg db.Config
		if err := app.Config().Unmarshal("database", &cfg); err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		pool, err := db.Open(ctx, cfg, app.Logger())
		if err != nil {
			return nil, err
		}
		app.Terminating(func(context.Context) error {
			pool.Close()
			return nil
		})
		return pool, nil
	})

	container.ProvideNamed(app.Container, ServiceMigrator, func(r container.Resolver) (*db.Migrator, error) {
		pool, err := container.MakeNamed[*pgxpool.Pool](r, ServiceDB)
		if err != nil {
			return nil, err
		}
		opts := []db.MigratorOption{db.WithMigratorLogger(app.Logger())}
		if table := app.Config().String("database.migrations_table"); table != "" {
			opts = append(opts, db.WithTable(table))
		}
		return db.NewMigrator(pool, subFS(app, p.migrations()), opts...)
	})
	return nil
}

func (p *DatabaseServiceProvider) Boot(app *Application) error {
	if app.Config().String("database.url") == "" {
		return nil
	}
	app.AddCheck("postgres", func(ctx context.Context) error {
		pool, err := container.MakeNamed[*pgxpool.Pool](app, ServiceDB)
		if err != nil {
			return err
		}
		return db.Ping(pool)(ctx)
	})
	return nil
}

func (p *DatabaseServiceProvider) migrations() string {
	if p.Migrations != "" {
		return p.Migrations
	}
	return "database/migrations"
}

// QueueConfig is the "queue" config section.
type QueueConfig struct {
	Driver  string         `mapstructure:"driver"`
	Workers map[string]int `mapstructure:"workers"`
	Mail    string         `mapstructure:"mail_queue"`
}

// QueueServiceProvider binds the job queue: "sync" runs jobs inline, "river"
// stores them in Postgres. Queued mail is sent through it. Workers start
// with the host and stop when the application terminates.
type QueueServiceProvider struct {
	// Jobs registers job handlers, usually with queue.Register.
	Jobs func(q queue.Queue) error
	// Schedule registers recurring jobs.
	Schedule func(q queue.Queue) error
}

func (p *QueueServiceProvider) Register(app *Application) error {
	container.ProvideNamed(app.Container, ServiceQueue, func(r container.Resolver) (queue.Queue, error) {
		cfg, err := queueConfig(app)
		if err != nil {
			return nil, err
		}
		switch cfg.Driver {
		case "", "sync":
			return queue.NewSync(queue.WithSyncLogger(app.Logger())), nil
		case "river":
			pool, err := container.MakeNamed[*pgxpool.Pool](r, ServiceDB)
			if err != nil {
				return nil, err
			}
			opts := []queue.RiverOption{queue.WithRiverLogger(app.Logger())}
			for name, n := range cfg.Workers {
				opts = append(opts, queue.WithWorkers(name, n))
			}
			return queue.NewRiver(pool, opts...)
		default:
			return nil, fmt.Errorf("%w: queue [%s]", ErrUnknownDriver, cfg.Driver)
		}
	})
	return nil
}

func (p *QueueServiceProvider) Boot(app *Application) error {
	q, err := container.MakeNamed[queue.Queue](app, ServiceQueue)
	if err != nil {
		return err
	}
	cfg, err := queueConfig(app)
	if err != nil {
		return err
	}

	if mailer, err := container.MakeNamed[*mail.Mailer](app, ServiceMailer); err == nil {
		var opts []queue.DispatchOption
		if cfg.Mail != "" {
			opts = append(opts, queue.OnQueue(cfg.Mail))
		}
		mailer.SetQueue(queue.NewMailQueue(q, mailer, opts...))
	}
	if p.Jobs != nil {
		if err := p.Jobs(q); err != nil {
			return err
		}
	}
	if p.Schedule != nil {
		if err := p.Schedule(q); err != nil {
			return err
		}
	}
	if rq, ok := q.(*queue.River); ok {
		app.AddCheck("queue", rq.Ping())
	}

	app.Starting(q.Start)
	app.Terminating(func(ctx context.Context) error {
		if err := q.Stop(ctx); err != nil && !errors.Is(err, queue.ErrNotStarted) {
			return err
		}
		return nil
	})
	return nil
}

func queueConfig(app *Application) (QueueConfig, error) {
	var cfg QueueConfig
	err := app.Config().Unmarshal("queue", &cfg)
	return cfg, err
}

// ContentFilter is the filter rendered post content goes through.
const ContentFilter = "content.render"

// ContentServiceProvider binds the content registry and registers the post
// types, taxonomies and shortcodes declared on it. Content passed through
// the content.render filter, with an optional context as second argument,
// has its shortcodes expanded.
type ContentServiceProvider struct {
	PostTypes  []content.PostType
	Taxonomies map[string][]content.Taxonomy
	Shortcodes []content.Shortcode
}

func (p *ContentServiceProvider) Register(app *Application) error {
	container.ProvideNamed(app.Container, ServiceContent, func(container.Resolver) (*content.Registry, error) {
		return content.NewRegistry(), nil
	})
	return nil
}

func (p *ContentServiceProvider) Boot(app *Application) error {
	reg, err := container.MakeNamed[*content.Registry](app, ServiceContent)
	if err != nil {
		return err
	}
	for _, pt := range p.PostTypes {
		if _, err := reg.RegisterPostType(pt); err != nil {
			return fmt.Errorf("post type [%s]: %w", pt.Name, err)
		}
	}
	for _, postType := range slices.Sorted(maps.Keys(p.Taxonomies)) {
		for _, tax := range p.Taxonomies[postType] {
			if _, err := reg.RegisterTaxonomy(tax, postType); err != nil {
				return fmt.Errorf("taxonomy [%s]: %w", tax.Name, err)
			}
		}
	}
	for _, sc := range p.Shortcodes {
		if err := reg.Shortcodes().Add(sc); err != nil {
			return fmt.Errorf("shortcode [%s]: %w", sc.Tag, err)
		}
	}

	return events.NewFilter(app.Events()).Add(ContentFilter, func(text string, ctx context.Context) (string, error) {
		if ctx == nil {
			ctx = context.Background()
		}
		return reg.Shortcodes().Do(ctx, text)
	})
}

// routers returns the REST router and the router under the AJAX one, so
// aliases and request hooks are installed on both.
func routers(app *Application) []*routing.Router {
	return []*routing.Router{app.Router(), app.Ajax().Router}
}
