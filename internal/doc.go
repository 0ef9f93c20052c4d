// Package internal holds the application: the service container with the
// provider lifecycle, the bootstrappers, the kernel attaching routes to a
// host and the exception handler. It is re-exported by the root package.
//
// A provider binds services in Register and uses them in Boot:
//
//	app := internal.NewApplication(internal.WithBasePath("."))
//	app.Register(&internal.RouteServiceProvider{Map: routes.Map})
//	kernel := internal.NewKernel(app)
//	err := kernel.Serve(ctx)
//
// Config is read from {base}/config; app.providers names the providers of
// the catalog (DefaultProviders) to register.
package internal
