package routing

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/BenRutlandWeb/atomic-framework/pkg/logger"
	"github.com/BenRutlandWeb/atomic-framework/pkg/pipeline"
	"github.com/BenRutlandWeb/atomic-framework/pkg/request"
)

// DefaultNamespace is used for REST routes declared outside a namespaced group.
const DefaultNamespace = "api"

var anyMethods = []string{
	http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
	http.MethodPatch, http.MethodDelete, http.MethodOptions,
}

// RESTCallback serves a matched REST route. Params holds the named groups
// of the route pattern.
type RESTCallback func(w http.ResponseWriter, r *http.Request, params map[string]string) error

// RESTRoute is what gets registered with the host for one route.
type RESTRoute struct {
	Methods    []string
	Callback   RESTCallback
	Permission func(r *http.Request) bool
}

// RESTRegistrar is the host's REST route registry.
type RESTRegistrar interface {
	RegisterRESTRoute(namespace, pattern string, route RESTRoute) error
}

// ExceptionHandler turns errors returned from the pipeline into responses.
// It returns nil once it has written a response, or the error when it
// cannot handle it.
type ExceptionHandler interface {
	Handle(w http.ResponseWriter, r *http.Request, err error) error
}

// Router defines REST routes and registers them with the host.
type Router struct {
	routes      *RouteCollection
	groupStack  []GroupAttributes
	middleware  *MiddlewareResolver
	global      []Middleware
	onRequest   []func(*request.Request)
	exceptions  ExceptionHandler
	url         *URLGenerator
	logger      *slog.Logger
	namespace   string
	requestOpts []request.Option
	routeURL    func(*Route) string
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the router logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Router) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithNamespace sets the REST namespace for routes declared without one.
func WithNamespace(ns string) Option {
	return func(r *Router) {
		if ns = strings.Trim(ns, "/"); ns != "" {
			r.namespace = ns
		}
	}
}

// WithExceptionHandler sets the handler for errors returned by middleware
// and actions.
func WithExceptionHandler(h ExceptionHandler) Option {
	return func(r *Router) {
		r.exceptions = h
	}
}

// WithRequestOptions configures the *request.Request built per request.
func WithRequestOptions(opts ...request.Option) Option {
	return func(r *Router) {
		r.requestOpts = append(r.requestOpts, opts...)
	}
}

// NewRouter creates a REST router.
func NewRouter(opts ...Option) *Router {
	r := &Router{
		routes:     NewRouteCollection(),
		middleware: NewMiddlewareResolver(),
		logger:     logger.NewNope(),
		namespace:  DefaultNamespace,
	}
	r.routeURL = r.restURL
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get registers a GET (and HEAD) route.
func (r *Router) Get(uri string, action Action) *Route {
	return r.AddRoute([]string{http.MethodGet, http.MethodHead}, uri, action)
}

// Post registers a POST route.
func (r *Router) Post(uri string, action Action) *Route {
	return r.AddRoute([]string{http.MethodPost}, uri, action)
}

// Put registers a PUT route.
func (r *Router) Put(uri string, action Action) *Route {
	return r.AddRoute([]string{http.MethodPut}, uri, action)
}

// Patch registers a PATCH route.
func (r *Router) Patch(uri string, action Action) *Route {
	return r.AddRoute([]string{http.MethodPatch}, uri, action)
}

// Delete registers a DELETE route.
func (r *Router) Delete(uri string, action Action) *Route {
	return r.AddRoute([]string{http.MethodDelete}, uri, action)
}

// Options registers an OPTIONS route.
func (r *Router) Options(uri string, action Action) *Route {
	return r.AddRoute([]string{http.MethodOptions}, uri, action)
}

// Any registers a route for every verb.
func (r *Router) Any(uri string, action Action) *Route {
	return r.AddRoute(anyMethods, uri, action)
}

// Match registers a route for the given methods.
func (r *Router) Match(methods []string, uri string, action Action) *Route {
	return r.AddRoute(methods, uri, action)
}

// AddRoute creates a route with the current group attributes and adds it.
func (r *Router) AddRoute(methods []string, uri string, action Action) *Route {
	route := NewRoute(methods, r.prefix(uri), action)
	route.router = r
	if len(r.groupStack) > 0 {
		route.SetAttributes(MergeGroup(route.attributes, r.lastGroup()))
	}
	return r.routes.Add(route)
}

// Group registers the routes defined in fn with attrs merged onto the
// enclosing group.
func (r *Router) Group(attrs GroupAttributes, fn func(*Router)) {
	if len(r.groupStack) > 0 {
		attrs = MergeGroup(attrs, r.lastGroup())
	}
	r.groupStack = append(r.groupStack, attrs)
	defer func() { r.groupStack = r.groupStack[:len(r.groupStack)-1] }()
	fn(r)
}

// HasGroupStack reports whether a group is open.
func (r *Router) HasGroupStack() bool { return len(r.groupStack) > 0 }

// Namespace starts a registrar with a namespace.
func (r *Router) Namespace(ns string) *RouteRegistrar {
	return NewRouteRegistrar(r).Namespace(ns)
}

// Prefix starts a registrar with a URI prefix.
func (r *Router) Prefix(prefix string) *RouteRegistrar {
	return NewRouteRegistrar(r).Prefix(prefix)
}

// Name starts a registrar with a name prefix.
func (r *Router) Name(name string) *RouteRegistrar {
	return NewRouteRegistrar(r).Name(name)
}

// Middleware starts a registrar with middleware.
func (r *Router) Middleware(names ...string) *RouteRegistrar {
	return NewRouteRegistrar(r).Middleware(names...)
}

// Attribute starts a registrar with an attribute given by key.
func (r *Router) Attribute(key string, value any) (*RouteRegistrar, error) {
	return NewRouteRegistrar(r).Attribute(key, value)
}

// AliasMiddleware names a middleware.
func (r *Router) AliasMiddleware(name string, mw Middleware) *Router {
	r.middleware.Alias(name, mw)
	return r
}

// AliasParameterizedMiddleware names a middleware factory.
func (r *Router) AliasParameterizedMiddleware(name string, f ParameterizedMiddleware) *Router {
	r.middleware.AliasParameterized(name, f)
	return r
}

// MiddlewareGroup names a list of middleware names.
func (r *Router) MiddlewareGroup(name string, names []string) *Router {
	r.middleware.Group(name, names)
	return r
}

// Use appends middleware run before every route's own middleware.
func (r *Router) Use(mw ...Middleware) *Router {
	r.global = append(r.global, mw...)
	return r
}

// OnRequest registers fn to run on every request before middleware.
func (r *Router) OnRequest(fn func(*request.Request)) *Router {
	r.onRequest = append(r.onRequest, fn)
	return r
}

// SetExceptionHandler sets the handler for pipeline errors.
func (r *Router) SetExceptionHandler(h ExceptionHandler) { r.exceptions = h }

// SetURLGenerator sets the generator used for route URLs.
func (r *Router) SetURLGenerator(u *URLGenerator) { r.url = u }

// Routes returns the route collection.
func (r *Router) Routes() *RouteCollection { return r.routes }

// DefaultNamespace returns the namespace used for routes without one.
func (r *Router) DefaultNamespace() string { return r.namespace }

// RouteNamespace returns the namespace route is registered under.
func (r *Router) RouteNamespace(route *Route) string {
	if ns := route.Namespace(); ns != "" {
		return ns
	}
	return r.namespace
}

// RouteURL builds the absolute URL of route.
func (r *Router) RouteURL(route *Route) string {
	return r.routeURL(route)
}

func (r *Router) restURL(route *Route) string {
	path := r.RouteNamespace(route) + "/" + strings.Trim(route.URI(), "/")
	if r.url == nil {
		return "/" + strings.Trim(path, "/")
	}
	return r.url.Rest(path)
}

// GatherRouteMiddleware resolves the route's middleware names.
func (r *Router) GatherRouteMiddleware(route *Route) ([]Middleware, error) {
	return r.middleware.ResolveAll(route.GatherMiddleware())
}

// Dispatch registers every route with the host. Middleware names are
// resolved here, so an unknown name fails the whole dispatch.
func (r *Router) Dispatch(host RESTRegistrar) error {
	var errs []error
	for route := range r.routes.Each() {
		stages, err := r.GatherRouteMiddleware(route)
		if err != nil {
			errs = append(errs, fmt.Errorf("route [%s]: %w", route.URI(), err))
			continue
		}
		err = host.RegisterRESTRoute(r.RouteNamespace(route), ParseURI(route), RESTRoute{
			Methods:    route.Methods(),
			Callback:   r.restCallback(route, stages),
			Permission: allowAll,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("route [%s]: %w", route.URI(), err))
		}
	}
	r.logger.Debug("rest routes dispatched", slog.Int("count", r.routes.Len()))
	return errors.Join(errs...)
}

func allowAll(*http.Request) bool { return true }

func (r *Router) restCallback(route *Route, stages []Middleware) RESTCallback {
	return func(w http.ResponseWriter, hr *http.Request, params map[string]string) error {
		rw := NewResponseWriter(w)
		req, err := r.newRequest(rw, hr)
		if err != nil {
			return r.handleException(rw, hr, err)
		}
		req.SetParams(params)

		res, err := r.RunRoute(route, req, stages)
		if err != nil {
			return r.handleException(req.Response(), req.Request(), err)
		}
		if rw.Written() {
			return nil
		}
		return WriteResponse(req.Response(), req.Request(), res)
	}
}

// RunRoute sends req through the global middleware, stages and the route action.
func (r *Router) RunRoute(route *Route, req *request.Request, stages []Middleware) (any, error) {
	if route.action == nil {
		return nil, fmt.Errorf("%w: [%s]", ErrNilAction, route.URI())
	}
	req.SetRouteResolver(func() any { return route })
	return pipeline.New[*request.Request, any]().
		Send(req).
		Through(r.global...).
		Through(stages...).
		Then(Next(route.action))
}

func (r *Router) newRequest(w http.ResponseWriter, hr *http.Request) (*request.Request, error) {
	opts := append([]request.Option{request.WithLogger(r.logger)}, r.requestOpts...)
	req, err := request.New(w, hr, opts...)
	if err != nil {
		return nil, err
	}
	for _, fn := range r.onRequest {
		fn(req)
	}
	return req, nil
}

func (r *Router) handleException(w http.ResponseWriter, hr *http.Request, err error) error {
	if r.exceptions == nil {
		return err
	}
	return r.exceptions.Handle(w, hr, err)
}

func (r *Router) lastGroup() GroupAttributes {
	return r.groupStack[len(r.groupStack)-1]
}

func (r *Router) prefix(uri string) string {
	prefix := ""
	if len(r.groupStack) > 0 {
		prefix = r.lastGroup().Prefix
	}
	if p := strings.Trim(strings.Trim(prefix, "/")+"/"+strings.Trim(uri, "/"), "/"); p != "" {
		return p
	}
	return "/"
}

var paramPattern = regexp.MustCompile(`(^|/)\{(\w+?)(\?)?\}`)

// ParseURI turns the route's {param} and {param?} placeholders into named
// regular expression groups.
func ParseURI(route *Route) string {
	return paramPattern.ReplaceAllStringFunc(route.URI(), func(m string) string {
		sub := paramPattern.FindStringSubmatch(m)
		lead := ""
		if sub[1] != "" {
			lead = `\/?`
		}
		return lead + "(?P<" + sub[2] + ">[a-zA-Z0-9-]+)" + sub[3]
	})
}

// CurrentRoute returns the route req was matched to, or nil.
func CurrentRoute(req *request.Request) *Route {
	route, _ := req.Route().(*Route)
	return route
}
