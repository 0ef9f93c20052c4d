package host

import "errors"

var (
	ErrInvalidRoute  = errors.New("host: invalid rest route")
	ErrNoHandler     = errors.New("host: no handler")
	ErrAlreadyServed = errors.New("host: server already running")
)
