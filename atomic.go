package atomic

import (
	"github.com/BenRutlandWeb/atomic-framework/internal"
	"github.com/BenRutlandWeb/atomic-framework/pkg/logger"
	"github.com/BenRutlandWeb/atomic-framework/pkg/request"
	"github.com/BenRutlandWeb/atomic-framework/pkg/routing"
)

// Version is the framework version.
const Version = internal.Version

// Type aliases - public API
type (
	// Application is the service container plus the provider lifecycle.
	Application = internal.Application

	// ServiceProvider binds services in Register and configures them in Boot.
	ServiceProvider = internal.ServiceProvider

	// BaseProvider gives a provider no-op Register and Boot methods.
	BaseProvider = internal.BaseProvider

	// Bootstrapper is one step of bringing an application up.
	Bootstrapper = internal.Bootstrapper

	// Kernel bootstraps the application and hands its routes to a host.
	Kernel = internal.Kernel

	// KernelOption configures the kernel.
	KernelOption = internal.KernelOption

	// ExceptionHandler renders errors returned by actions and middleware.
	ExceptionHandler = internal.ExceptionHandler

	// HTTPError is an error answered with its status code.
	HTTPError = internal.HTTPError

	// Request is the per-request input wrapper handed to actions.
	Request = request.Request

	// Action handles a route.
	Action = routing.Action

	// Middleware is a route pipeline stage.
	Middleware = routing.Middleware

	// Router defines REST routes.
	Router = routing.Router

	// AjaxRouter defines routes served through the AJAX endpoint.
	AjaxRouter = routing.AjaxRouter

	// ContextExtractor extracts a slog attribute from context.
	ContextExtractor = logger.ContextExtractor
)

// Providers
type (
	EventServiceProvider      = internal.EventServiceProvider
	RoutingServiceProvider    = internal.RoutingServiceProvider
	RouteServiceProvider      = internal.RouteServiceProvider
	ValidationServiceProvider = internal.ValidationServiceProvider
	HashServiceProvider       = internal.HashServiceProvider
	ViewServiceProvider       = internal.ViewServiceProvider
	MailServiceProvider       = internal.MailServiceProvider
	AuthServiceProvider       = internal.AuthServiceProvider
	FilesystemServiceProvider = internal.FilesystemServiceProvider
	CacheServiceProvider      = internal.CacheServiceProvider
	DatabaseServiceProvider   = internal.DatabaseServiceProvider
	QueueServiceProvider      = internal.QueueServiceProvider
	ContentServiceProvider    = internal.ContentServiceProvider
)

// Service names
const (
	ServiceApp        = internal.ServiceApp
	ServiceHooks      = internal.ServiceHooks
	ServiceLogger     = internal.ServiceLogger
	ServiceConfig     = internal.ServiceConfig
	ServiceEvents     = internal.ServiceEvents
	ServiceRouter     = internal.ServiceRouter
	ServiceAjax       = internal.ServiceAjax
	ServiceURL        = internal.ServiceURL
	ServiceMailer     = internal.ServiceMailer
	ServiceView       = internal.ServiceView
	ServiceValidator  = internal.ServiceValidator
	ServiceHash       = internal.ServiceHash
	ServiceAuth       = internal.ServiceAuth
	ServiceCSRF       = internal.ServiceCSRF
	ServiceFiles      = internal.ServiceFiles
	ServiceCache      = internal.ServiceCache
	ServiceLimiter    = internal.ServiceLimiter
	ServiceRedis      = internal.ServiceRedis
	ServiceDB         = internal.ServiceDB
	ServiceMigrator   = internal.ServiceMigrator
	ServiceQueue      = internal.ServiceQueue
	ServiceContent    = internal.ServiceContent
	ServiceExceptions = internal.ServiceExceptions
)

// ContentFilter is the filter rendering post content: dispatch it with the
// text and a context to expand shortcodes.
const ContentFilter = internal.ContentFilter

// Errors
var (
	ErrUnknownProvider = internal.ErrUnknownProvider
	ErrProviderFailed  = internal.ErrProviderFailed
	ErrBootstrapFailed = internal.ErrBootstrapFailed
	ErrMissingAppKey   = internal.ErrMissingAppKey
	ErrUnknownDriver   = internal.ErrUnknownDriver
)

// Abort returns an HTTPError for code, with the status text as default
// message.
//
//	if post == nil {
//	    return nil, atomic.Abort(http.StatusNotFound)
//	}
func Abort(code int, message ...string) *HTTPError {
	return internal.Abort(code, message...)
}

// StatusOf returns the HTTP status err is answered with.
func StatusOf(err error) int {
	return internal.StatusOf(err)
}

// BootstrapperFunc adapts a function to Bootstrapper.
func BootstrapperFunc(fn func(app *Application) error) Bootstrapper {
	return internal.BootstrapperFunc(fn)
}

// WithBootstrappers replaces the kernel bootstrappers.
func WithBootstrappers(b ...Bootstrapper) KernelOption {
	return internal.WithBootstrappers(b...)
}

// WithGlobalMiddleware replaces the middleware run on every route.
func WithGlobalMiddleware(mw ...Middleware) KernelOption {
	return internal.WithGlobalMiddleware(mw...)
}

// WithMiddlewareGroup defines or replaces a middleware group.
func WithMiddlewareGroup(name string, names ...string) KernelOption {
	return internal.WithMiddlewareGroup(name, names...)
}

// WithRouteMiddleware aliases mw as name.
func WithRouteMiddleware(name string, mw Middleware) KernelOption {
	return internal.WithRouteMiddleware(name, mw)
}

// WithParameterizedMiddleware aliases f as name, used as "name:arg,arg".
func WithParameterizedMiddleware(name string, f routing.ParameterizedMiddleware) KernelOption {
	return internal.WithParameterizedMiddleware(name, f)
}
