package console

import "errors"

var (
	ErrAlreadyExists = errors.New("console: file already exists")
	ErrInvalidName   = errors.New("console: invalid name")
	ErrUnknownKind   = errors.New("console: unknown generator")
	ErrNoApp         = errors.New("console: command needs an application")
)
