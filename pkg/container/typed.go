package container

import "fmt"

// Provide registers a singleton factory keyed by T.
//
//	container.Provide(c, func(r container.Resolver) (*routing.Router, error) {
//	    return routing.NewRouter(), nil
//	})
func Provide[T any](c *Container, f func(r Resolver) (T, error)) {
	c.Singleton(Key[T](), erase(f))
}

// ProvideTransient registers a transient factory keyed by T.
func ProvideTransient[T any](c *Container, f func(r Resolver) (T, error)) {
	c.Bind(Key[T](), erase(f))
}

// ProvideNamed registers a singleton factory under name and aliases the type key of T to it.
func ProvideNamed[T any](c *Container, name string, f func(r Resolver) (T, error)) {
	c.Singleton(name, erase(f))
	c.Alias(name, Key[T]())
}

// Make resolves the binding keyed by T.
func Make[T any](r Resolver) (T, error) {
	return MakeNamed[T](r, Key[T]())
}

// MakeNamed resolves name and asserts the result to T.
func MakeNamed[T any](r Resolver, name string) (T, error) {
	var zero T
	v, err := r.Make(name)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s is %T, want %s", ErrTypeMismatch, name, v, Key[T]())
	}
	return t, nil
}

// Extend decorates every value built for name. A value that is not a T is
// a type mismatch.
func Extend[T any](c *Container, name string, fn func(v T, r Resolver) (T, error)) {
	c.Resolving(name, func(v any, r Resolver) (any, error) {
		t, ok := v.(T)
		if !ok {
			return nil, fmt.Errorf("%w: %s is %T, want %s", ErrTypeMismatch, name, v, Key[T]())
		}
		return fn(t, r)
	})
}

// MustMake is Make that panics on error. Use it during bootstrap only.
func MustMake[T any](r Resolver) T {
	v, err := Make[T](r)
	if err != nil {
		panic(err)
	}
	return v
}

func erase[T any](f func(r Resolver) (T, error)) Factory {
	if f == nil {
		return nil
	}
	return func(r Resolver) (any, error) {
		return f(r)
	}
}
