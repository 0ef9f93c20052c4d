package internal

import (
	"fmt"
	"html/template"
	"io/fs"
	"maps"
	"slices"

	"github.com/BenRutlandWeb/atomic-framework/pkg/container"
	"github.com/BenRutlandWeb/atomic-framework/pkg/events"
	"github.com/BenRutlandWeb/atomic-framework/pkg/hash"
	"github.com/BenRutlandWeb/atomic-framework/pkg/request"
	"github.com/BenRutlandWeb/atomic-framework/pkg/routing"
	"github.com/BenRutlandWeb/atomic-framework/pkg/validation"
	"github.com/BenRutlandWeb/atomic-framework/pkg/view"
)

// EventServiceProvider binds the event dispatcher and registers the
// listeners and subscribers declared on it.
type EventServiceProvider struct {
	// Listen maps event names to listeners.
	Listen map[string][]any
	// Subscribe lists subscribers or container names resolving to them.
	Subscribe []any
}

func (p *EventServiceProvider) Register(app *Application) error {
	if app.Bound(ServiceEvents) {
		return nil
	}
	container.ProvideNamed(app.Container, ServiceEvents, func(container.Resolver) (*events.Dispatcher, error) {
		return events.NewDispatcher(app.Hooks(),
			events.WithResolver(app),
			events.WithLogger(app.Logger()),
		), nil
	})
	return nil
}

func (p *EventServiceProvider) Boot(app *Application) error {
	d := app.Events()
	for _, event := range slices.Sorted(maps.Keys(p.Listen)) {
		for _, l := range p.Listen[event] {
			if err := d.Listen(event, l); err != nil {
				return fmt.Errorf("event [%s]: %w", event, err)
			}
		}
	}
	for _, s := range p.Subscribe {
		if err := d.Subscribe(s); err != nil {
			return err
		}
	}
	return nil
}

// RoutingServiceProvider binds the REST router, the AJAX router and the URL
// generator.
type RoutingServiceProvider struct{}

func (p *RoutingServiceProvider) Register(app *Application) error {
	if app.Bound(ServiceRouter) {
		return nil
	}
	container.ProvideNamed(app.Container, ServiceRouter, func(container.Resolver) (*routing.Router, error) {
		return routing.NewRouter(p.options(app)...), nil
	})
	container.ProvideNamed(app.Container, ServiceAjax, func(container.Resolver) (*routing.AjaxRouter, error) {
		return routing.NewAjaxRouter(p.options(app)...), nil
	})
	container.ProvideNamed(app.Container, ServiceURL, func(r container.Resolver) (*routing.URLGenerator, error) {
		var cfg routing.URLConfig
		if err := app.Config().Unmarshal("urls", &cfg); err != nil {
			return nil, err
		}
		if cfg.Home == "" {
			cfg.Home = app.Config().String("app.url")
		}
		router, ajax := app.Router(), app.Ajax()
		u := routing.NewURLGenerator(router.Routes(), ajax.Routes(), cfg, routing.WithManifestFS(app.fsys))
		router.SetURLGenerator(u)
		ajax.SetURLGenerator(u)
		return u, nil
	})
	return nil
}

func (p *RoutingServiceProvider) options(app *Application) []routing.Option {
	return []routing.Option{
		routing.WithLogger(app.Logger()),
		routing.WithNamespace(app.Config().String("app.rest_namespace")),
		routing.WithExceptionHandler(app.Exceptions()),
	}
}

func (p *RoutingServiceProvider) Boot(app *Application) error {
	_ = app.URL()
	return nil
}

// RouteServiceProvider runs Map to declare the application routes, then
// refreshes the name lookups of both route collections.
type RouteServiceProvider struct {
	Map func(router *routing.Router, ajax *routing.AjaxRouter) error
}

func (p *RouteServiceProvider) Register(*Application) error { return nil }

func (p *RouteServiceProvider) Boot(app *Application) error {
	router, ajax := app.Router(), app.Ajax()
	if p.Map != nil {
		if err := p.Map(router, ajax); err != nil {
			return err
		}
	}
	router.Routes().RefreshNameLookups()
	ajax.Routes().RefreshNameLookups()
	return nil
}

// ValidationServiceProvider binds the validator and installs it on every
// request.
type ValidationServiceProvider struct {
	// Rules are extra rule factories by name.
	Rules map[string]validation.Factory
}

func (p *ValidationServiceProvider) Register(app *Application) error {
	container.ProvideNamed(app.Container, ServiceValidator, func(container.Resolver) (*validation.Validator, error) {
		var opts []validation.Option
		if app.Config().Bool("validation.strict") {
			opts = append(opts, validation.WithStrictPresence())
		}
		for name, f := range p.Rules {
			opts = append(opts, validation.WithRule(name, f))
		}
		return validation.New(opts...), nil
	})
	return nil
}

func (p *ValidationServiceProvider) Boot(app *Application) error {
	v, err := container.MakeNamed[*validation.Validator](app, ServiceValidator)
	if err != nil {
		return err
	}
	install := func(req *request.Request) { req.SetValidator(v) }
	app.Router().OnRequest(install)
	app.Ajax().OnRequest(install)
	return nil
}

// HashServiceProvider binds the password hasher keyed by app.key.
type HashServiceProvider struct {
	BaseProvider
}

func (p *HashServiceProvider) Register(app *Application) error {
	container.ProvideNamed(app.Container, ServiceHash, func(container.Resolver) (*hash.Hasher, error) {
		key, err := appKey(app)
		if err != nil {
			return nil, err
		}
		var opts []hash.Option
		if cost := app.Config().Int("hashing.cost"); cost > 0 {
			opts = append(opts, hash.WithCost(cost))
		}
		return hash.New(key, opts...)
	})
	return nil
}

// ViewServiceProvider binds the view factory over view.path
// (resources/views by default).
type ViewServiceProvider struct {
	// Funcs are added to every template.
	Funcs template.FuncMap
}

func (p *ViewServiceProvider) Register(app *Application) error {
	container.ProvideNamed(app.Container, ServiceView, func(container.Resolver) (*view.Factory, error) {
		fsys, err := app.FS(viewsPath(app))
		if err != nil {
			return nil, err
		}

		u := app.URL()
		funcs := template.FuncMap{
			"asset":        u.Asset,
			"mix":          u.Mix,
			"home":         u.Home,
			"route":        func(name string) (string, error) { return u.Route(name, nil) },
			"method_field": view.MethodField,
			"svg":          func(name string) template.HTML { return view.SVG(fsys, name) },
		}
		maps.Copy(funcs, p.Funcs)

		opts := []view.Option{
			view.WithFuncs(funcs),
			view.WithFilters(events.NewFilter(app.Events())),
			view.WithCache(!app.Config().Bool("app.debug")),
			view.WithLogger(app.Logger()),
		}
		if ext := app.Config().String("view.extension"); ext != "" {
			opts = append(opts, view.WithExtension(ext))
		}
		if partials := app.Config().StringSlice("view.partials"); len(partials) > 0 {
			opts = append(opts, view.WithPartials(partials...))
		}
		return view.New(fsys, opts...), nil
	})
	return nil
}

func (p *ViewServiceProvider) Boot(app *Application) error {
	if dir := app.Config().String("view.redirect"); dir != "" {
		return view.NewTemplateRedirect(dir).Register(events.NewFilter(app.Events()))
	}
	return nil
}

func viewsPath(app *Application) string {
	return app.Config().String("view.path", "resources/views")
}

func appKey(app *Application) (string, error) {
	key := app.Config().String("app.key")
	if key == "" {
		return "", ErrMissingAppKey
	}
	return key, nil
}

// subFS returns the sub tree at dir, or nil when it does not exist.
func subFS(app *Application, dir string) fs.FS {
	if _, err := fs.Stat(app.fsys, dir); err != nil {
		return nil
	}
	fsys, err := app.FS(dir)
	if err != nil {
		return nil
	}
	return fsys
}
