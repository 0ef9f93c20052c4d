// Package atomic is a small framework for content driven web applications:
// service providers on a container, REST and AJAX routers with middleware
// pipelines, form validation, views, mail, a queue and a filesystem
// abstraction, served by a native HTTP host.
//
// # Quick Start
//
// Create an application with atomic.New(), declare routes and call Run():
//
//	app := atomic.New(
//	    atomic.WithBasePath("."),
//	    atomic.WithRoutes(func(router *atomic.Router, ajax *atomic.AjaxRouter) error {
//	        router.Get("posts/{id}", posts.Show).Name("posts.show")
//	        ajax.Post("subscribe", newsletter.Subscribe).Middleware("throttle:5,1")
//	        return nil
//	    }),
//	)
//
//	if err := app.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// REST routes are served under /rest/{namespace}/..., AJAX routes by action
// name on /ajax. Both go through the same middleware pipeline.
//
// # Configuration
//
// Config files live in {base}/config. Every YAML, JSON or TOML file becomes
// a top level key; the app file is required:
//
//	# config/app.yaml
//	name: Blog
//	url: https://blog.test
//	key: base64-or-random-32-bytes-or-more
//	providers: [validation, hash, view, mail, auth, cache]
//
// Values can be overridden by ATOMIC_ prefixed environment variables:
// ATOMIC_APP_DEBUG=true sets app.debug.
//
// # Providers
//
// A provider binds services in Register and uses them in Boot:
//
//	type AppServiceProvider struct{ atomic.BaseProvider }
//
//	func (AppServiceProvider) Register(app *atomic.Application) error {
//	    container.ProvideNamed(app.Container, "posts", func(container.Resolver) (*posts.Repo, error) {
//	        return posts.NewRepo(), nil
//	    })
//	    return nil
//	}
//
// # Errors
//
// Actions return errors; the exception handler answers with the status of
// errors implementing StatusCode() int and 500 otherwise. Validation
// failures render 422 with {"errors": {...}}. Use Abort to stop with a
// given status:
//
//	return nil, atomic.Abort(http.StatusForbidden)
package atomic
