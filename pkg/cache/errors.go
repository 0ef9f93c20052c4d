package cache

import "errors"

var (
	ErrMiss   = errors.New("cache: key not found")
	ErrClosed = errors.New("cache: store closed")
	ErrEncode = errors.New("cache: could not encode value")
	ErrDecode = errors.New("cache: could not decode value")
)
