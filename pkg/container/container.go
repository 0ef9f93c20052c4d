package container

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
	"sync"
)

// Resolver resolves bindings by name.
// Factories receive a Resolver scoped to the current resolution so nested
// lookups take part in cycle detection.
type Resolver interface {
	Make(name string) (any, error)
}

// Factory builds a value, resolving its dependencies through r.
type Factory func(r Resolver) (any, error)

// ResolvingFunc is called with every freshly built value of a binding.
type ResolvingFunc func(v any, r Resolver) (any, error)

type binding struct {
	factory  Factory
	shared   bool
	mu       sync.Mutex
	instance any
	built    bool
}

// Container is a registry of named factories, singletons and instances.
// Registration is expected to happen during application bootstrap; resolution
// is safe for concurrent use.
type Container struct {
	mu        sync.RWMutex
	bindings  map[string]*binding
	aliases   map[string]string
	resolving map[string][]ResolvingFunc
}

// New creates an empty container.
func New() *Container {
	return &Container{
		bindings:  make(map[string]*binding),
		aliases:   make(map[string]string),
		resolving: make(map[string][]ResolvingFunc),
	}
}

// Bind registers a transient factory: every Make builds a new value.
func (c *Container) Bind(name string, f Factory) {
	c.set(name, &binding{factory: f})
}

// Singleton registers a shared factory: the first successful Make is memoized.
func (c *Container) Singleton(name string, f Factory) {
	c.set(name, &binding{factory: f, shared: true})
}

// Instance registers an already built value.
func (c *Container) Instance(name string, v any) {
	c.set(name, &binding{shared: true, built: true, instance: v})
}

// Alias makes alias resolve to the binding registered under name.
func (c *Container) Alias(name, alias string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aliases[alias] = name
}

// Resolving registers fn to run after each build of name.
// The value fn returns replaces the built one.
func (c *Container) Resolving(name string, fn ResolvingFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	name = c.canonical(name)
	c.resolving[name] = append(c.resolving[name], fn)
}

// Bound reports whether name (or an alias of it) is registered.
func (c *Container) Bound(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.bindings[c.canonical(name)]
	return ok
}

// Forget removes a binding and its memoized instance.
func (c *Container) Forget(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.bindings, c.canonical(name))
}

// Names returns the registered binding names in sorted order.
func (c *Container) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Sorted(maps.Keys(c.bindings))
}

// Make resolves name.
func (c *Container) Make(name string) (any, error) {
	return (&resolution{c: c}).Make(name)
}

func (c *Container) set(name string, b *binding) {
	if b.factory == nil && !b.built {
		b.factory = func(Resolver) (any, error) { return nil, fmt.Errorf("%w: %s", ErrNilFactory, name) }
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.aliases, name)
	c.bindings[name] = b
}

// canonical follows aliases. Callers hold c.mu.
func (c *Container) canonical(name string) string {
	seen := 0
	for {
		target, ok := c.aliases[name]
		if !ok || seen > len(c.aliases) {
			return name
		}
		name = target
		seen++
	}
}

func (c *Container) lookup(name string) (string, *binding, []ResolvingFunc) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	name = c.canonical(name)
	return name, c.bindings[name], slices.Clone(c.resolving[name])
}

// resolution tracks the chain of names being built for cycle detection.
type resolution struct {
	c     *Container
	stack []string
}

func (r *resolution) Make(name string) (any, error) {
	name, b, hooks := r.c.lookup(name)
	if b == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if slices.Contains(r.stack, name) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrCircularDependency, strings.Join(r.stack, " -> "), name)
	}

	child := &resolution{c: r.c, stack: append(slices.Clone(r.stack), name)}

	if !b.shared {
		return child.build(name, b, hooks)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.built {
		return b.instance, nil
	}
	v, err := child.build(name, b, hooks)
	if err != nil {
		return nil, err
	}
	b.instance, b.built = v, true
	return v, nil
}

func (r *resolution) build(name string, b *binding, hooks []ResolvingFunc) (any, error) {
	v, err := b.factory(r)
	if err != nil {
		return nil, fmt.Errorf("container: resolve %s: %w", name, err)
	}
	for _, hook := range hooks {
		if v, err = hook(v, r); err != nil {
			return nil, fmt.Errorf("container: resolving hook for %s: %w", name, err)
		}
	}
	return v, nil
}

// Key returns the binding name used by the typed helpers for T.
func Key[T any]() string {
	return reflect.TypeFor[T]().String()
}
