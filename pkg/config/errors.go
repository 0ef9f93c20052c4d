package config

import "errors"

var (
	ErrMissingAppConfig = errors.New(`config: unable to load the "app" configuration file`)
	ErrInvalidFile      = errors.New("config: invalid configuration file")
	ErrDecode           = errors.New("config: unable to decode configuration")
)
