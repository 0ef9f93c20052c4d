package atomic

import (
	"context"
	"net/http"

	"github.com/BenRutlandWeb/atomic-framework/internal"
	"github.com/BenRutlandWeb/atomic-framework/pkg/host"
)

// App is an application with its kernel, ready to serve.
type App struct {
	*Application
	kernel *Kernel
	host   []host.Option
}

// New creates an application with the given options.
//
// Example:
//
//	app := atomic.New(
//	    atomic.WithBasePath("."),
//	    atomic.WithRoutes(routes.Map),
//	    atomic.WithProviders(&providers.AppServiceProvider{}),
//	)
//
//	if err := app.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
func New(opts ...Option) *App {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	app := internal.NewApplication(s.app...)
	return &App{
		Application: app,
		kernel:      internal.NewKernel(app, s.kernel...),
		host:        s.host,
	}
}

// Kernel returns the kernel.
func (a *App) Kernel() *Kernel { return a.kernel }

// Bootstrap loads the configuration, then registers and boots the
// providers. It runs once.
func (a *App) Bootstrap() error { return a.kernel.Bootstrap() }

// Host bootstraps the application and returns the host serving it.
func (a *App) Host() (*host.Host, error) { return a.kernel.Host(a.host...) }

// Handler bootstraps the application and returns its HTTP handler, for
// tests and for mounting in another server.
func (a *App) Handler() (http.Handler, error) {
	h, err := a.Host()
	if err != nil {
		return nil, err
	}
	return h.Handler(), nil
}

// Run serves the application until ctx is cancelled or the process
// receives SIGINT or SIGTERM. Queue workers start with the server and the
// terminating callbacks run after it stopped.
func (a *App) Run(ctx context.Context) error {
	return a.kernel.Serve(ctx, a.host...)
}
