package routing

import (
	"net/http"
	"slices"
	"strings"

	"github.com/BenRutlandWeb/atomic-framework/pkg/request"
)

// Action handles a matched request. The returned value is written with
// WriteResponse.
type Action func(r *request.Request) (any, error)

// Route is a single route definition.
type Route struct {
	methods    []string
	uri        string
	action     Action
	attributes GroupAttributes
	router     *Router
	computed   []string
}

// NewRoute creates a route. A route answering GET also answers HEAD.
func NewRoute(methods []string, uri string, action Action) *Route {
	ms := make([]string, 0, len(methods)+1)
	for _, m := range methods {
		m = strings.ToUpper(strings.TrimSpace(m))
		if m != "" && !slices.Contains(ms, m) {
			ms = append(ms, m)
		}
	}
	if slices.Contains(ms, http.MethodGet) && !slices.Contains(ms, http.MethodHead) {
		ms = append(ms, http.MethodHead)
	}
	return &Route{methods: ms, uri: uri, action: action}
}

// Methods returns the HTTP methods the route answers.
func (r *Route) Methods() []string { return slices.Clone(r.methods) }

// AllowsMethod reports whether method is one of the route's methods.
func (r *Route) AllowsMethod(method string) bool {
	return slices.Contains(r.methods, strings.ToUpper(method))
}

// URI returns the prefixed route pattern.
func (r *Route) URI() string { return r.uri }

// Namespace returns the REST namespace the route is registered under.
func (r *Route) Namespace() string { return r.attributes.Namespace }

// Action returns the route action.
func (r *Route) Action() Action { return r.action }

// Name appends name to the route's name.
func (r *Route) Name(name string) *Route {
	r.attributes.Name += name
	return r
}

// GetName returns the route name, "" when unnamed.
func (r *Route) GetName() string { return r.attributes.Name }

// Middleware appends middleware names.
func (r *Route) Middleware(names ...string) *Route {
	r.attributes.Middleware = append(r.attributes.Middleware, names...)
	r.computed = nil
	return r
}

// MiddlewareNames returns the middleware names as declared, duplicates included.
func (r *Route) MiddlewareNames() []string {
	return slices.Clone(r.attributes.Middleware)
}

// GatherMiddleware returns the de-duplicated middleware names in first-seen
// order. The result is cached until the middleware changes.
func (r *Route) GatherMiddleware() []string {
	if r.computed != nil {
		return r.computed
	}
	seen := make(map[string]struct{}, len(r.attributes.Middleware))
	out := make([]string, 0, len(r.attributes.Middleware))
	for _, name := range r.attributes.Middleware {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	r.computed = out
	return out
}

// Attributes returns a copy of the route's attributes.
func (r *Route) Attributes() GroupAttributes {
	a := r.attributes
	a.Middleware = slices.Clone(a.Middleware)
	return a
}

// SetAttributes replaces the route's attributes.
func (r *Route) SetAttributes(a GroupAttributes) {
	r.attributes = a
	r.computed = nil
}

// URL returns the route's URL as built by its router.
func (r *Route) URL() string {
	if r.router == nil {
		return "/" + strings.TrimLeft(r.uri, "/")
	}
	return r.router.RouteURL(r)
}
