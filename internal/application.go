package internal

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"github.com/BenRutlandWeb/atomic-framework/pkg/config"
	"github.com/BenRutlandWeb/atomic-framework/pkg/container"
	"github.com/BenRutlandWeb/atomic-framework/pkg/events"
	"github.com/BenRutlandWeb/atomic-framework/pkg/hooks"
	"github.com/BenRutlandWeb/atomic-framework/pkg/host"
	"github.com/BenRutlandWeb/atomic-framework/pkg/logger"
	"github.com/BenRutlandWeb/atomic-framework/pkg/routing"
)

// Version is the framework version.
const Version = "1.0.0"

// Service names the core providers bind.
const (
	ServiceApp       = "app"
	ServiceHooks     = "hooks"
	ServiceLogger    = "logger"
	ServiceConfig    = "config"
	ServiceEvents    = "events"
	ServiceRouter    = "router"
	ServiceAjax      = "router.ajax"
	ServiceURL       = "url"
	ServiceMailer    = "mailer"
	ServiceView      = "view"
	ServiceValidator = "validator"
	ServiceHash      = "hash"
	ServiceAuth      = "auth"
	ServiceCSRF      = "csrf"
	ServiceFiles     = "files"
	ServiceCache     = "cache"
	ServiceLimiter   = "limiter"
	ServiceRedis     = "redis"
	ServiceDB        = "db"
	ServiceMigrator  = "migrator"
	ServiceQueue     = "queue"
	ServiceContent   = "content"
)

// Application is the service container plus the provider lifecycle:
// register every provider, boot them, then dispatch routes to the host.
type Application struct {
	*container.Container

	basePath string
	fsys     fs.FS
	hooks    *hooks.Table
	logger   *slog.Logger

	mu           sync.Mutex
	providers    []ServiceProvider
	loaded       map[string]bool
	catalog      map[string]func() ServiceProvider
	booted       bool
	bootstrapped bool
	configured   bool
	onBooted     []func(*Application) error
	starting     []func(context.Context) error
	terminating  []func(context.Context) error
	checks       host.Checks
	pending      []ServiceProvider
	initErr      error
}

// Option configures an Application.
type Option func(*Application)

// WithBasePath sets the project root. Config is read from {base}/config.
func WithBasePath(path string) Option {
	return func(a *Application) {
		a.basePath = path
	}
}

// WithFS sets the filesystem config and views are read from, instead of
// the base path on disk.
func WithFS(fsys fs.FS) Option {
	return func(a *Application) {
		a.fsys = fsys
	}
}

// WithHooks shares a hook table with the host.
func WithHooks(t *hooks.Table) Option {
	return func(a *Application) {
		if t != nil {
			a.hooks = t
		}
	}
}

// WithLogger sets the logger used until LoadConfiguration builds one from
// the logging config.
func WithLogger(l *slog.Logger) Option {
	return func(a *Application) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithConfig provides the configuration instead of loading it from disk.
func WithConfig(repo *config.Repository) Option {
	return func(a *Application) {
		if repo != nil {
			a.Instance(ServiceConfig, repo)
			a.configured = true
		}
	}
}

// WithProvider adds a provider to the catalog app.providers names are
// resolved from.
func WithProvider(name string, fn func() ServiceProvider) Option {
	return func(a *Application) {
		a.catalog[name] = fn
	}
}

// WithProviders registers providers right after the base ones. A failing
// registration is reported by Boot.
func WithProviders(p ...ServiceProvider) Option {
	return func(a *Application) {
		a.pending = append(a.pending, p...)
	}
}

// NewApplication creates an application with the event and routing
// providers registered.
func NewApplication(opts ...Option) *Application {
	a := &Application{
		Container: container.New(),
		basePath:  ".",
		hooks:     hooks.New(),
		logger:    logger.NewNope(),
		loaded:    make(map[string]bool),
		catalog:   DefaultProviders(),
		checks:    make(host.Checks),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.fsys == nil {
		a.fsys = os.DirFS(a.basePath)
	}

	a.Instance(ServiceApp, a)
	a.Instance(ServiceHooks, a.hooks)
	a.Instance(ServiceLogger, a.logger)
	bindExceptions(a)

	// Base providers cannot fail: they only bind factories.
	_ = a.Register(&EventServiceProvider{})
	_ = a.Register(&RoutingServiceProvider{})
	for _, p := range a.pending {
		if err := a.Register(p); err != nil {
			a.initErr = errors.Join(a.initErr, err)
		}
	}
	a.pending = nil
	return a
}

// Register registers p once per provider type. When the application is
// already booted p is booted immediately.
func (a *Application) Register(p ServiceProvider) error {
	name := providerName(p)

	a.mu.Lock()
	if a.loaded[name] {
		a.mu.Unlock()
		return nil
	}
	a.loaded[name] = true
	a.mu.Unlock()

	if err := p.Register(a); err != nil {
		a.mu.Lock()
		delete(a.loaded, name)
		a.mu.Unlock()
		return fmt.Errorf("%w: %s register: %w", ErrProviderFailed, name, err)
	}

	a.mu.Lock()
	a.providers = append(a.providers, p)
	booted := a.booted
	a.mu.Unlock()
	if booted {
		if err := p.Boot(a); err != nil {
			return fmt.Errorf("%w: %s boot: %w", ErrProviderFailed, name, err)
		}
	}
	a.logger.Debug("provider registered", slog.String("provider", name))
	return nil
}

// RegisterConfiguredProviders registers the providers listed in
// app.providers, resolved through the provider catalog.
func (a *Application) RegisterConfiguredProviders() error {
	for _, name := range a.Config().StringSlice("app.providers") {
		a.mu.Lock()
		fn, ok := a.catalog[name]
		a.mu.Unlock()
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownProvider, name)
		}
		if err := a.Register(fn()); err != nil {
			return err
		}
	}
	return nil
}

// Boot boots every registered provider in registration order. Providers
// registered while booting are booted too.
func (a *Application) Boot() error {
	a.mu.Lock()
	if a.booted {
		a.mu.Unlock()
		return nil
	}
	a.mu.Unlock()
	if a.initErr != nil {
		return a.initErr
	}

	for i := 0; ; i++ {
		a.mu.Lock()
		if i >= len(a.providers) {
			a.booted = true
			callbacks := a.onBooted
			a.onBooted = nil
			a.mu.Unlock()
			for _, fn := range callbacks {
				if err := fn(a); err != nil {
					return err
				}
			}
			return nil
		}
		p := a.providers[i]
		a.mu.Unlock()

		if err := p.Boot(a); err != nil {
			return fmt.Errorf("%w: %s boot: %w", ErrProviderFailed, providerName(p), err)
		}
	}
}

// Booted runs fn once the application has booted, or right away when it
// already has.
func (a *Application) Booted(fn func(*Application) error) error {
	a.mu.Lock()
	if !a.booted {
		a.onBooted = append(a.onBooted, fn)
		a.mu.Unlock()
		return nil
	}
	a.mu.Unlock()
	return fn(a)
}

// IsBooted reports whether Boot completed.
func (a *Application) IsBooted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.booted
}

// BootstrapWith runs the bootstrappers in order.
func (a *Application) BootstrapWith(bootstrappers []Bootstrapper) error {
	for _, b := range bootstrappers {
		if err := b.Bootstrap(a); err != nil {
			return fmt.Errorf("%w: %T: %w", ErrBootstrapFailed, b, err)
		}
	}
	a.mu.Lock()
	a.bootstrapped = true
	a.mu.Unlock()
	return nil
}

// HasBeenBootstrapped reports whether BootstrapWith completed.
func (a *Application) HasBeenBootstrapped() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.bootstrapped
}

// LoadedProviders returns the registered provider names in order.
func (a *Application) LoadedProviders() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.providers))
	for i, p := range a.providers {
		out[i] = providerName(p)
	}
	return out
}

// BasePath joins elems onto the project root.
func (a *Application) BasePath(elems ...string) string {
	return filepath.Join(append([]string{a.basePath}, elems...)...)
}

// FS returns the project filesystem, or the sub tree at dir.
func (a *Application) FS(dir ...string) (fs.FS, error) {
	if len(dir) == 0 || dir[0] == "" || dir[0] == "." {
		return a.fsys, nil
	}
	return fs.Sub(a.fsys, dir[0])
}

// Version returns the framework version.
func (a *Application) Version() string { return Version }

// Hooks returns the hook table shared with the host.
func (a *Application) Hooks() *hooks.Table { return a.hooks }

// Logger returns the application logger.
func (a *Application) Logger() *slog.Logger { return a.logger }

// SetLogger replaces the application logger.
func (a *Application) SetLogger(l *slog.Logger) {
	if l == nil {
		return
	}
	a.logger = l
	a.Instance(ServiceLogger, l)
}

// Starting registers fn to run before the host starts serving, such as
// queue workers.
func (a *Application) Starting(fn func(context.Context) error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.starting = append(a.starting, fn)
}

// Start runs the starting callbacks in registration order and stops at the
// first failure.
func (a *Application) Start(ctx context.Context) error {
	a.mu.Lock()
	fns := a.starting
	a.starting = nil
	a.mu.Unlock()

	for _, fn := range fns {
		if err := fn(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Terminating registers fn to run when the application shuts down.
func (a *Application) Terminating(fn func(context.Context) error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.terminating = append(a.terminating, fn)
}

// Terminate runs the terminating callbacks in registration order.
func (a *Application) Terminate(ctx context.Context) error {
	a.mu.Lock()
	fns := a.terminating
	a.terminating = nil
	a.mu.Unlock()

	var errs []error
	for _, fn := range fns {
		if err := fn(ctx); err != nil {
			a.logger.ErrorContext(ctx, "terminating callback failed", slog.Any("error", err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// AddCheck registers a readiness check served by the host.
func (a *Application) AddCheck(name string, fn host.CheckFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.checks[name] = fn
}

// Checks returns the registered readiness checks.
func (a *Application) Checks() host.Checks {
	a.mu.Lock()
	defer a.mu.Unlock()
	return maps.Clone(a.checks)
}

// Config returns the configuration repository, or an empty one before
// LoadConfiguration ran.
func (a *Application) Config() *config.Repository {
	repo, err := container.MakeNamed[*config.Repository](a, ServiceConfig)
	if err != nil {
		repo = config.New()
		a.Instance(ServiceConfig, repo)
	}
	return repo
}

// Events returns the event dispatcher.
func (a *Application) Events() *events.Dispatcher {
	return mustMake[*events.Dispatcher](a, ServiceEvents)
}

// Router returns the REST router.
func (a *Application) Router() *routing.Router {
	return mustMake[*routing.Router](a, ServiceRouter)
}

// Ajax returns the AJAX router.
func (a *Application) Ajax() *routing.AjaxRouter {
	return mustMake[*routing.AjaxRouter](a, ServiceAjax)
}

// URL returns the URL generator.
func (a *Application) URL() *routing.URLGenerator {
	return mustMake[*routing.URLGenerator](a, ServiceURL)
}

// mustMake resolves services the base providers always bind.
func mustMake[T any](a *Application, name string) T {
	v, err := container.MakeNamed[T](a, name)
	if err != nil {
		panic(err)
	}
	return v
}

func providerName(p ServiceProvider) string {
	if n, ok := p.(interface{ Name() string }); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", p)
}
