package container

import "errors"

var (
	ErrNotFound           = errors.New("container: binding not found")
	ErrCircularDependency = errors.New("container: circular dependency")
	ErrTypeMismatch       = errors.New("container: resolved value has unexpected type")
	ErrNilFactory         = errors.New("container: nil factory")
)
