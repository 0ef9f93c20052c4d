package routing

import (
	"iter"
	"slices"
	"sync"
)

// RouteCollection is the ordered list of routes of a router.
type RouteCollection struct {
	mu     sync.RWMutex
	routes []*Route
	names  map[string]*Route
}

// NewRouteCollection creates an empty collection.
func NewRouteCollection() *RouteCollection {
	return &RouteCollection{names: map[string]*Route{}}
}

// Add appends route and returns it.
func (c *RouteCollection) Add(route *Route) *Route {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.routes = append(c.routes, route)
	return route
}

// All returns the routes in registration order.
func (c *RouteCollection) All() []*Route {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.routes)
}

// Each iterates over the routes in registration order.
func (c *RouteCollection) Each() iter.Seq[*Route] {
	return slices.Values(c.All())
}

// Len returns the number of routes.
func (c *RouteCollection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.routes)
}

// RefreshNameLookups rebuilds the name index. Names are usually assigned
// after a route is added, so this runs once all routes are defined. The last
// route with a given name wins.
func (c *RouteCollection) RefreshNameLookups() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.names = make(map[string]*Route, len(c.routes))
	for _, r := range c.routes {
		if name := r.GetName(); name != "" {
			c.names[name] = r
		}
	}
}

// GetByName returns the named route, or nil.
func (c *RouteCollection) GetByName(name string) *Route {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.names[name]
}

// HasNamedRoute reports whether a route is indexed under name.
func (c *RouteCollection) HasNamedRoute(name string) bool {
	return c.GetByName(name) != nil
}
