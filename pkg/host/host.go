package host

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/BenRutlandWeb/atomic-framework/pkg/hooks"
	"github.com/BenRutlandWeb/atomic-framework/pkg/logger"
)

// RestInitHook is fired once, with the host as argument, before the first
// REST request is served.
const RestInitHook = "rest.init"

// Config is the "host" config section.
type Config struct {
	Addr            string        `mapstructure:"addr"`
	RestPrefix      string        `mapstructure:"rest_prefix"`
	AjaxPath        string        `mapstructure:"ajax_path"`
	HealthPath      string        `mapstructure:"health_path"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
}

func (c Config) withDefaults() Config {
	def := func(v *string, d string) {
		if *v == "" {
			*v = d
		}
	}
	def(&c.Addr, ":8080")
	def(&c.RestPrefix, "rest")
	def(&c.AjaxPath, "ajax")
	def(&c.HealthPath, "up")
	c.RestPrefix = strings.Trim(c.RestPrefix, "/")
	c.AjaxPath = strings.Trim(c.AjaxPath, "/")
	c.HealthPath = strings.Trim(c.HealthPath, "/")
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 30 * time.Second
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 15 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 30 * time.Second
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = 2 * time.Minute
	}
	return c
}

type staticMount struct {
	prefix string
	fsys   fs.FS
}

// Host is the runtime the framework plugs into: a hook table, a REST route
// registry and an HTTP server exposing the REST and AJAX surfaces.
type Host struct {
	cfg      Config
	hooks    *hooks.Table
	logger   *slog.Logger
	middle   []func(http.Handler) http.Handler
	checks   Checks
	statics  []staticMount
	loggedIn func(*http.Request) bool
	onStart  []func(context.Context) error
	onStop   []func(context.Context) error

	restMu   sync.RWMutex
	rest     []*restRoute
	restOnce sync.Once

	handlerOnce sync.Once
	handler     http.Handler
	serving     atomic.Bool
}

// Option configures a Host.
type Option func(*Host)

// WithHooks shares an existing hook table.
func WithHooks(t *hooks.Table) Option {
	return func(h *Host) {
		if t != nil {
			h.hooks = t
		}
	}
}

// WithLogger sets the host logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Host) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithMiddleware wraps every request in mw, outermost first.
func WithMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(h *Host) { h.middle = append(h.middle, mw...) }
}

// WithCheck adds a readiness check to the health endpoint.
func WithCheck(name string, fn CheckFunc) Option {
	return func(h *Host) {
		if fn != nil {
			h.checks[name] = fn
		}
	}
}

// WithStatic serves fsys under prefix.
func WithStatic(prefix string, fsys fs.FS) Option {
	return func(h *Host) {
		h.statics = append(h.statics, staticMount{prefix: "/" + strings.Trim(prefix, "/"), fsys: fsys})
	}
}

// WithLoggedIn decides whether an AJAX request is served on the user or the
// guest hook. Without it every request is a guest.
func WithLoggedIn(fn func(*http.Request) bool) Option {
	return func(h *Host) { h.loggedIn = fn }
}

// WithStartHook runs fn before the server accepts connections.
func WithStartHook(fn func(context.Context) error) Option {
	return func(h *Host) { h.onStart = append(h.onStart, fn) }
}

// WithShutdownHook runs fn after the server stopped, in registration order.
func WithShutdownHook(fn func(context.Context) error) Option {
	return func(h *Host) { h.onStop = append(h.onStop, fn) }
}

// New creates a host.
func New(cfg Config, opts ...Option) *Host {
	h := &Host{
		cfg:    cfg.withDefaults(),
		hooks:  hooks.New(),
		logger: logger.NewNope(),
		checks: make(Checks),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Apply configures the host after construction. It must be called before
// the first request.
func (h *Host) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(h)
	}
}

// Hooks returns the hook table.
func (h *Host) Hooks() *hooks.Table { return h.hooks }

// Config returns the effective configuration.
func (h *Host) Config() Config { return h.cfg }

// InitREST fires RestInitHook once.
func (h *Host) InitREST() {
	h.restOnce.Do(func() {
		h.hooks.Do(RestInitHook, h)
		h.logger.Debug("rest initialised", slog.Int("routes", len(h.RESTRoutes())))
	})
}

// Handler returns the HTTP handler of the host.
func (h *Host) Handler() http.Handler {
	h.handlerOnce.Do(func() {
		mux := chi.NewRouter()
		mux.Use(h.middle...)

		mux.Get("/"+h.cfg.HealthPath, readiness(h.checks, h.logger))
		mux.Get("/"+h.cfg.HealthPath+"/live", liveness)

		mux.Handle("/"+h.cfg.RestPrefix, http.HandlerFunc(h.serveRESTIndex))
		mux.Handle("/"+h.cfg.RestPrefix+"/*", http.HandlerFunc(h.serveREST))
		mux.Handle("/"+h.cfg.AjaxPath, http.HandlerFunc(h.serveAjax))

		for _, s := range h.statics {
			mux.Handle(s.prefix+"/*", http.StripPrefix(s.prefix, http.FileServerFS(s.fsys)))
		}
		h.handler = mux
	})
	return h.handler
}

func (h *Host) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.Handler().ServeHTTP(w, r)
}
