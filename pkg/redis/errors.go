package redis

import "errors"

var (
	ErrNoURL            = errors.New("redis: connection url is empty")
	ErrInvalidURL       = errors.New("redis: invalid connection url")
	ErrConnectionFailed = errors.New("redis: could not connect")
	ErrPingFailed       = errors.New("redis: ping failed")
)
