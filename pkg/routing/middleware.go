package routing

import (
	"fmt"
	"strings"

	"github.com/BenRutlandWeb/atomic-framework/pkg/pipeline"
	"github.com/BenRutlandWeb/atomic-framework/pkg/request"
)

// Next passes the request to the rest of the middleware stack.
type Next = pipeline.Next[*request.Request, any]

// Middleware wraps the handling of a request. It calls next to continue, or
// returns early to short-circuit the route.
type Middleware = pipeline.Stage[*request.Request, any]

// ParameterizedMiddleware builds middleware from arguments given in the
// route definition ("throttle:60,1" passes ["60", "1"]).
type ParameterizedMiddleware func(args ...string) (Middleware, error)

// maxGroupDepth bounds group expansion so self-referencing groups fail.
const maxGroupDepth = 16

// MiddlewareResolver turns middleware names into middleware.
type MiddlewareResolver struct {
	aliases       map[string]Middleware
	parameterized map[string]ParameterizedMiddleware
	groups        map[string][]string
}

// NewMiddlewareResolver creates an empty resolver.
func NewMiddlewareResolver() *MiddlewareResolver {
	return &MiddlewareResolver{
		aliases:       map[string]Middleware{},
		parameterized: map[string]ParameterizedMiddleware{},
		groups:        map[string][]string{},
	}
}

// Alias registers mw under name.
func (m *MiddlewareResolver) Alias(name string, mw Middleware) {
	m.aliases[name] = mw
}

// AliasParameterized registers a middleware factory under name.
func (m *MiddlewareResolver) AliasParameterized(name string, f ParameterizedMiddleware) {
	m.parameterized[name] = f
}

// Group registers a named list of middleware names.
func (m *MiddlewareResolver) Group(name string, names []string) {
	m.groups[name] = names
}

// Aliases returns the alias names, parameterized ones included.
func (m *MiddlewareResolver) Aliases() []string {
	out := make([]string, 0, len(m.aliases)+len(m.parameterized))
	for k := range m.aliases {
		out = append(out, k)
	}
	for k := range m.parameterized {
		out = append(out, k)
	}
	return out
}

// Resolve expands name into middleware. Groups expand recursively; an
// "alias:a,b" name calls the parameterized alias with ["a", "b"].
func (m *MiddlewareResolver) Resolve(name string) ([]Middleware, error) {
	return m.resolve(name, 0)
}

// ResolveAll resolves each name in order.
func (m *MiddlewareResolver) ResolveAll(names []string) ([]Middleware, error) {
	var out []Middleware
	for _, name := range names {
		mws, err := m.Resolve(name)
		if err != nil {
			return nil, err
		}
		out = append(out, mws...)
	}
	return out, nil
}

func (m *MiddlewareResolver) resolve(name string, depth int) ([]Middleware, error) {
	if depth > maxGroupDepth {
		return nil, fmt.Errorf("%w: group [%s] nests too deeply", ErrInvalidMiddleware, name)
	}

	if names, ok := m.groups[name]; ok {
		var out []Middleware
		for _, n := range names {
			mws, err := m.resolve(n, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, mws...)
		}
		return out, nil
	}

	alias, rawArgs, hasArgs := strings.Cut(name, ":")
	if f, ok := m.parameterized[alias]; ok {
		var args []string
		if hasArgs {
			args = strings.Split(rawArgs, ",")
		}
		mw, err := f(args...)
		if err != nil {
			return nil, fmt.Errorf("%w: [%s]: %w", ErrInvalidMiddleware, name, err)
		}
		return []Middleware{mw}, nil
	}

	if mw, ok := m.aliases[alias]; ok {
		if hasArgs {
			return nil, fmt.Errorf("%w: [%s] does not take arguments", ErrInvalidMiddleware, alias)
		}
		return []Middleware{mw}, nil
	}

	return nil, fmt.Errorf("%w: [%s]", ErrMiddlewareNotFound, name)
}
