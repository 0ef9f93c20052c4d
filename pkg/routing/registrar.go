package routing

import (
	"fmt"
	"net/http"
)

// RouteRegistrar collects group attributes fluently before a group or a
// single route is registered:
//
//	router.Prefix("users").Name("users.").Middleware("auth").Group(func(r *routing.Router) {
//	    r.Get("{id}", show).Name("show")
//	})
type RouteRegistrar struct {
	router *Router
	attrs  GroupAttributes
}

// NewRouteRegistrar creates a registrar for router.
func NewRouteRegistrar(router *Router) *RouteRegistrar {
	return &RouteRegistrar{router: router}
}

// Attribute sets an attribute by key. Only namespace, prefix, name and
// middleware exist; middleware accepts a string or a []string.
func (r *RouteRegistrar) Attribute(key string, value any) (*RouteRegistrar, error) {
	switch key {
	case "namespace", "prefix", "name":
		s, ok := value.(string)
		if !ok {
			return r, fmt.Errorf("%w: [%s] expects a string, got %T", ErrInvalidAttribute, key, value)
		}
		switch key {
		case "namespace":
			r.attrs.Namespace = s
		case "prefix":
			r.attrs.Prefix = s
		default:
			r.attrs.Name = s
		}
	case "middleware":
		switch v := value.(type) {
		case string:
			r.attrs.Middleware = []string{v}
		case []string:
			r.attrs.Middleware = v
		default:
			return r, fmt.Errorf("%w: [middleware] expects string or []string, got %T", ErrInvalidAttribute, value)
		}
	default:
		return r, fmt.Errorf("%w: [%s]", ErrInvalidAttribute, key)
	}
	return r, nil
}

// Namespace sets the REST namespace.
func (r *RouteRegistrar) Namespace(ns string) *RouteRegistrar {
	r.attrs.Namespace = ns
	return r
}

// Prefix sets the URI prefix.
func (r *RouteRegistrar) Prefix(prefix string) *RouteRegistrar {
	r.attrs.Prefix = prefix
	return r
}

// Name sets the name prefix.
func (r *RouteRegistrar) Name(name string) *RouteRegistrar {
	r.attrs.Name = name
	return r
}

// Middleware sets the middleware names.
func (r *RouteRegistrar) Middleware(names ...string) *RouteRegistrar {
	r.attrs.Middleware = names
	return r
}

// Group registers the routes defined in fn with the collected attributes.
func (r *RouteRegistrar) Group(fn func(*Router)) {
	r.router.Group(r.attrs, fn)
}

// Get registers a single GET route with the collected attributes.
func (r *RouteRegistrar) Get(uri string, action Action) *Route {
	return r.Match([]string{http.MethodGet}, uri, action)
}

// Post registers a single POST route with the collected attributes.
func (r *RouteRegistrar) Post(uri string, action Action) *Route {
	return r.Match([]string{http.MethodPost}, uri, action)
}

// Put registers a single PUT route with the collected attributes.
func (r *RouteRegistrar) Put(uri string, action Action) *Route {
	return r.Match([]string{http.MethodPut}, uri, action)
}

// Patch registers a single PATCH route with the collected attributes.
func (r *RouteRegistrar) Patch(uri string, action Action) *Route {
	return r.Match([]string{http.MethodPatch}, uri, action)
}

// Delete registers a single DELETE route with the collected attributes.
func (r *RouteRegistrar) Delete(uri string, action Action) *Route {
	return r.Match([]string{http.MethodDelete}, uri, action)
}

// Options registers a single OPTIONS route with the collected attributes.
func (r *RouteRegistrar) Options(uri string, action Action) *Route {
	return r.Match([]string{http.MethodOptions}, uri, action)
}

// Any registers a route for every verb with the collected attributes.
func (r *RouteRegistrar) Any(uri string, action Action) *Route {
	return r.Match(anyMethods, uri, action)
}

// Match registers a route for methods with the collected attributes.
func (r *RouteRegistrar) Match(methods []string, uri string, action Action) *Route {
	var route *Route
	r.router.Group(r.attrs, func(rt *Router) {
		route = rt.Match(methods, uri, action)
	})
	return route
}
