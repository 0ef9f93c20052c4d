package atomic

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/BenRutlandWeb/atomic-framework/internal"
	"github.com/BenRutlandWeb/atomic-framework/pkg/config"
	"github.com/BenRutlandWeb/atomic-framework/pkg/hooks"
	"github.com/BenRutlandWeb/atomic-framework/pkg/host"
)

// Option configures the application.
type Option func(*settings)

type settings struct {
	app    []internal.Option
	kernel []internal.KernelOption
	host   []host.Option
}

// WithBasePath sets the project root. Config is read from {base}/config.
// Defaults to the working directory.
func WithBasePath(path string) Option {
	return func(s *settings) {
		s.app = append(s.app, internal.WithBasePath(path))
	}
}

// WithFS reads config, views and migrations from fsys instead of the base
// path on disk. Useful with embed.FS.
func WithFS(fsys fs.FS) Option {
	return func(s *settings) {
		s.app = append(s.app, internal.WithFS(fsys))
	}
}

// WithConfig provides the configuration instead of loading it from disk.
func WithConfig(repo *config.Repository) Option {
	return func(s *settings) {
		s.app = append(s.app, internal.WithConfig(repo))
	}
}

// WithLogger sets the logger used until the logging config replaces it.
// If nil, logging is disabled.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		s.app = append(s.app, internal.WithLogger(l))
		s.host = append(s.host, host.WithLogger(l))
	}
}

// WithHooks shares a hook table with code outside the application.
func WithHooks(t *hooks.Table) Option {
	return func(s *settings) {
		s.app = append(s.app, internal.WithHooks(t))
	}
}

// WithProviders registers service providers.
func WithProviders(p ...ServiceProvider) Option {
	return func(s *settings) {
		s.app = append(s.app, internal.WithProviders(p...))
	}
}

// WithProvider adds a provider app.providers can name.
func WithProvider(name string, fn func() ServiceProvider) Option {
	return func(s *settings) {
		s.app = append(s.app, internal.WithProvider(name, fn))
	}
}

// WithRoutes registers a RouteServiceProvider running fn.
func WithRoutes(fn func(router *Router, ajax *AjaxRouter) error) Option {
	return WithProviders(&RouteServiceProvider{Map: fn})
}

// WithKernel configures the kernel.
func WithKernel(opts ...KernelOption) Option {
	return func(s *settings) {
		s.kernel = append(s.kernel, opts...)
	}
}

// WithHTTPMiddleware adds middleware wrapping the whole host handler.
func WithHTTPMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return WithKernel(internal.WithHTTPMiddleware(mw...))
}

// WithHealthCheck adds a readiness check served on the health path.
func WithHealthCheck(name string, fn host.CheckFunc) Option {
	return func(s *settings) {
		s.host = append(s.host, host.WithCheck(name, fn))
	}
}

// WithStatic serves fsys under prefix.
func WithStatic(prefix string, fsys fs.FS) Option {
	return func(s *settings) {
		s.host = append(s.host, host.WithStatic(prefix, fsys))
	}
}
