package content

import "errors"

var (
	ErrInvalidName    = errors.New("content: name must not be empty")
	ErrMissingHandler = errors.New("content: shortcode has no handler")
	ErrUnknownType    = errors.New("content: unknown post type")
)
