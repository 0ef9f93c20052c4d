package view

import "errors"

var (
	ErrViewNotFound = errors.New("view: not found")
	ErrParse        = errors.New("view: failed to parse template")
	ErrRender       = errors.New("view: failed to render template")
)
