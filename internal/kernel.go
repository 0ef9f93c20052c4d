package internal

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/BenRutlandWeb/atomic-framework/middlewares"
	"github.com/BenRutlandWeb/atomic-framework/pkg/auth"
	"github.com/BenRutlandWeb/atomic-framework/pkg/container"
	"github.com/BenRutlandWeb/atomic-framework/pkg/events"
	"github.com/BenRutlandWeb/atomic-framework/pkg/host"
	"github.com/BenRutlandWeb/atomic-framework/pkg/routing"
)

// Kernel bootstraps the application and hands its routes to a host.
type Kernel struct {
	app           *Application
	bootstrappers []Bootstrapper
	middleware    []routing.Middleware
	groups        map[string][]string
	aliases       map[string]routing.Middleware
	parameterized map[string]routing.ParameterizedMiddleware
	httpMiddle    []func(http.Handler) http.Handler

	once sync.Once
	err  error
}

// KernelOption configures a Kernel.
type KernelOption func(*Kernel)

// WithBootstrappers replaces the default bootstrappers.
func WithBootstrappers(b ...Bootstrapper) KernelOption {
	return func(k *Kernel) { k.bootstrappers = b }
}

// WithGlobalMiddleware replaces the middleware run on every route.
func WithGlobalMiddleware(mw ...routing.Middleware) KernelOption {
	return func(k *Kernel) { k.middleware = mw }
}

// WithMiddlewareGroup defines or replaces a middleware group.
func WithMiddlewareGroup(name string, names ...string) KernelOption {
	return func(k *Kernel) { k.groups[name] = names }
}

// WithRouteMiddleware aliases mw as name.
func WithRouteMiddleware(name string, mw routing.Middleware) KernelOption {
	return func(k *Kernel) { k.aliases[name] = mw }
}

// WithParameterizedMiddleware aliases f as name, used as "name:arg,arg".
func WithParameterizedMiddleware(name string, f routing.ParameterizedMiddleware) KernelOption {
	return func(k *Kernel) { k.parameterized[name] = f }
}

// WithHTTPMiddleware adds middleware wrapping the whole host handler.
func WithHTTPMiddleware(mw ...func(http.Handler) http.Handler) KernelOption {
	return func(k *Kernel) { k.httpMiddle = append(k.httpMiddle, mw...) }
}

// NewKernel creates a kernel for app.
//
// Every route runs Recover, RequestID, TrimStrings and
// ConvertEmptyStringsToNull. The "web" group verifies CSRF tokens and the
// "api" group allows 60 requests a minute.
func NewKernel(app *Application, opts ...KernelOption) *Kernel {
	k := &Kernel{
		app:           app,
		bootstrappers: DefaultBootstrappers(),
		middleware: []routing.Middleware{
			middlewares.Recover(),
			middlewares.RequestID(),
			middlewares.TrimStrings(),
			middlewares.ConvertEmptyStringsToNull(),
		},
		groups: map[string][]string{
			"web": {"csrf"},
			"api": {"throttle:60,1"},
		},
		aliases:       make(map[string]routing.Middleware),
		parameterized: map[string]routing.ParameterizedMiddleware{"timeout": timeoutMiddleware},
		httpMiddle:    []func(http.Handler) http.Handler{middlewares.MethodOverride},
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// App returns the application.
func (k *Kernel) App() *Application { return k.app }

// Bootstrap runs the bootstrappers once and installs the middleware on
// both routers.
func (k *Kernel) Bootstrap() error {
	k.once.Do(func() {
		if err := k.app.BootstrapWith(k.bootstrappers); err != nil {
			k.err = err
			return
		}
		k.syncMiddleware()
	})
	return k.err
}

func (k *Kernel) syncMiddleware() {
	for _, router := range routers(k.app) {
		router.Use(k.middleware...)
		for _, name := range slices.Sorted(maps.Keys(k.aliases)) {
			router.AliasMiddleware(name, k.aliases[name])
		}
		for _, name := range slices.Sorted(maps.Keys(k.parameterized)) {
			router.AliasParameterizedMiddleware(name, k.parameterized[name])
		}
		for _, name := range slices.Sorted(maps.Keys(k.groups)) {
			router.MiddlewareGroup(name, k.groups[name])
		}
	}
}

// Handle bootstraps the application and attaches it to h: AJAX routes are
// dispatched right away, REST routes when the host fires rest.init.
func (k *Kernel) Handle(h *host.Host) error {
	if err := k.Bootstrap(); err != nil {
		return err
	}
	app := k.app

	d := app.Events()
	if h.Hooks() != app.Hooks() {
		d = events.NewDispatcher(h.Hooks(), events.WithResolver(app), events.WithLogger(app.Logger()))
	}

	if err := app.Ajax().Dispatch(d); err != nil {
		return err
	}
	if err := d.Listen(host.RestInitHook, func(reg routing.RESTRegistrar) error {
		return app.Router().Dispatch(reg)
	}); err != nil {
		return err
	}

	opts := []host.Option{
		host.WithStartHook(app.Start),
		host.WithShutdownHook(app.Terminate),
	}
	for name, check := range app.Checks() {
		opts = append(opts, host.WithCheck(name, check))
	}
	if guard, err := container.MakeNamed[*auth.Guard](app, ServiceAuth); err == nil {
		opts = append(opts, host.WithLoggedIn(guard.SignedIn))
	}
	h.Apply(opts...)
	return nil
}

// Host bootstraps the application and builds a host from the "host"
// config section with the application attached.
func (k *Kernel) Host(opts ...host.Option) (*host.Host, error) {
	if err := k.Bootstrap(); err != nil {
		return nil, err
	}
	cfg, err := HostConfig(k.app)
	if err != nil {
		return nil, err
	}

	middle := k.httpMiddle
	if cors := corsOptions(k.app); len(cors) > 0 {
		middle = append([]func(http.Handler) http.Handler{middlewares.CORS(cors...)}, middle...)
	}

	base := []host.Option{
		host.WithHooks(k.app.Hooks()),
		host.WithLogger(k.app.Logger()),
		host.WithMiddleware(middle...),
	}
	if public := subFS(k.app, k.app.Config().String("app.public", "public")); public != nil {
		base = append(base, host.WithStatic("/"+k.app.Config().String("urls.theme_path", "theme"), public))
	}
	h := host.New(cfg, append(base, opts...)...)
	if err := k.Handle(h); err != nil {
		return nil, err
	}
	return h, nil
}

// Serve runs the application on a host until ctx is cancelled or the
// process receives SIGINT or SIGTERM.
func (k *Kernel) Serve(ctx context.Context, opts ...host.Option) error {
	h, err := k.Host(opts...)
	if err != nil {
		return err
	}
	return h.Run(ctx)
}

// HostConfig reads the "host" config section. The REST prefix and the AJAX
// path default to the ones URLs are generated with.
func HostConfig(app *Application) (host.Config, error) {
	var cfg host.Config
	if err := app.Config().Unmarshal("host", &cfg); err != nil {
		return cfg, err
	}
	if cfg.RestPrefix == "" {
		cfg.RestPrefix = app.Config().String("urls.rest_prefix")
	}
	if cfg.AjaxPath == "" {
		cfg.AjaxPath = app.Config().String("urls.ajax_path")
	}
	return cfg, nil
}

func corsOptions(app *Application) []middlewares.CORSOption {
	cfg := app.Config()
	origins := cfg.StringSlice("cors.allowed_origins")
	if len(origins) == 0 {
		return nil
	}
	opts := []middlewares.CORSOption{middlewares.WithAllowOrigins(origins...)}
	if methods := cfg.StringSlice("cors.allowed_methods"); len(methods) > 0 {
		opts = append(opts, middlewares.WithAllowMethods(methods...))
	}
	if headers := cfg.StringSlice("cors.allowed_headers"); len(headers) > 0 {
		opts = append(opts, middlewares.WithAllowHeaders(headers...))
	}
	if headers := cfg.StringSlice("cors.exposed_headers"); len(headers) > 0 {
		opts = append(opts, middlewares.WithExposeHeaders(headers...))
	}
	if cfg.Bool("cors.supports_credentials") {
		opts = append(opts, middlewares.WithAllowCredentials())
	}
	if age := cfg.Duration("cors.max_age"); age > 0 {
		opts = append(opts, middlewares.WithMaxAge(age))
	}
	return opts
}

// timeoutMiddleware is the "timeout:seconds" middleware.
func timeoutMiddleware(args ...string) (routing.Middleware, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("timeout: want one argument, got %d", len(args))
	}
	seconds, err := strconv.Atoi(args[0])
	if err != nil || seconds <= 0 {
		return nil, fmt.Errorf("timeout: invalid seconds %q", args[0])
	}
	return middlewares.Timeout(time.Duration(seconds) * time.Second), nil
}
