package events

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/BenRutlandWeb/atomic-framework/pkg/container"
	"github.com/BenRutlandWeb/atomic-framework/pkg/hooks"
	"github.com/BenRutlandWeb/atomic-framework/pkg/logger"
)

// Hooks is the host hook table the dispatcher forwards to.
type Hooks interface {
	Add(hook string, fn hooks.Callback, priority, accepted int) uint64
	Apply(hook string, value any, args ...any) any
	Has(hook string) bool
	RemoveAll(hook string)
}

// Subscriber registers several listeners at once.
type Subscriber interface {
	Subscribe(d *Dispatcher) error
}

// Dispatcher maps listen/dispatch calls onto the host hook table.
type Dispatcher struct {
	hooks    Hooks
	resolver container.Resolver
	logger   *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithResolver lets listeners and subscribers be given by container name.
func WithResolver(r container.Resolver) Option {
	return func(d *Dispatcher) {
		d.resolver = r
	}
}

// WithLogger sets the logger used to report listeners that could not be called.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDispatcher creates a dispatcher over h.
func NewDispatcher(h Hooks, opts ...Option) *Dispatcher {
	d := &Dispatcher{hooks: h, logger: logger.NewNope()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Listen registers listener on event. The listener may be:
//   - a hooks.Callback (receives every argument),
//   - any func; the number of arguments it receives is its arity,
//   - a value with a Handle method, called like a func,
//   - a string naming a container binding that resolves to one of the above.
//
// Priority defaults to hooks.DefaultPriority; lower runs first.
func (d *Dispatcher) Listen(event string, listener any, priority ...int) error {
	return d.ListenAll([]string{event}, listener, priority...)
}

// ListenAll registers the same listener on several events.
func (d *Dispatcher) ListenAll(events []string, listener any, priority ...int) error {
	cb, accepted, err := d.makeListener(listener)
	if err != nil {
		return err
	}
	p := hooks.DefaultPriority
	if len(priority) > 0 {
		p = priority[0]
	}
	for _, event := range events {
		d.hooks.Add(event, cb, p, accepted)
	}
	return nil
}

// HasListeners reports whether anything listens on event.
func (d *Dispatcher) HasListeners(event string) bool {
	return d.hooks.Has(event)
}

// Subscribe lets subscriber register its listeners. A string is resolved
// through the container first.
func (d *Dispatcher) Subscribe(subscriber any) error {
	if name, ok := subscriber.(string); ok {
		v, err := d.resolve(name)
		if err != nil {
			return err
		}
		subscriber = v
	}
	s, ok := subscriber.(Subscriber)
	if !ok {
		return fmt.Errorf("%w: %T", ErrInvalidSubscriber, subscriber)
	}
	return s.Subscribe(d)
}

// Dispatch fires event and returns the filtered value.
//
// A non-string event is keyed by TypeName and passed as the only argument.
// For string events a single []any payload is spread into positional
// arguments; otherwise the payload values are passed as given.
func (d *Dispatcher) Dispatch(event any, payload ...any) any {
	name, ok := event.(string)
	if !ok {
		name, payload = TypeName(event), []any{event}
	} else if len(payload) == 1 {
		if spread, isSlice := payload[0].([]any); isSlice && len(spread) > 0 {
			payload = spread
		}
	}

	if len(payload) == 0 {
		return d.hooks.Apply(name, nil)
	}
	return d.hooks.Apply(name, payload[0], payload[1:]...)
}

// Forget removes every listener of event.
func (d *Dispatcher) Forget(event string) {
	d.hooks.RemoveAll(event)
}

// TypeName returns the key an object event is dispatched under:
// the package path and type name, with pointers dereferenced.
func TypeName(v any) string {
	t := reflect.TypeOf(v)
	if t == nil {
		return "<nil>"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.PkgPath() == "" || t.Name() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

func (d *Dispatcher) resolve(name string) (any, error) {
	if d.resolver == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoResolver, name)
	}
	return d.resolver.Make(name)
}

func (d *Dispatcher) makeListener(listener any) (hooks.Callback, int, error) {
	if name, ok := listener.(string); ok {
		v, err := d.resolve(name)
		if err != nil {
			return nil, 0, err
		}
		if _, stillString := v.(string); stillString {
			return nil, 0, fmt.Errorf("%w: %s resolved to a string", ErrInvalidListener, name)
		}
		return d.makeListener(v)
	}

	switch fn := listener.(type) {
	case nil:
		return nil, 0, ErrInvalidListener
	case hooks.Callback:
		return fn, hooks.AllArgs, nil
	case func(...any) any:
		return fn, hooks.AllArgs, nil
	}

	v := reflect.ValueOf(listener)
	if v.Kind() != reflect.Func {
		v = v.MethodByName("Handle")
		if !v.IsValid() {
			return nil, 0, fmt.Errorf("%w: %T", ErrInvalidListener, listener)
		}
	}
	cb, accepted := adapt(v, d.logger)
	return cb, accepted, nil
}
