package queue

import "errors"

var (
	ErrUnknownJob      = errors.New("queue: unknown job")
	ErrInvalidPayload  = errors.New("queue: invalid payload")
	ErrInvalidSchedule = errors.New("queue: invalid schedule")
	ErrAlreadyStarted  = errors.New("queue: already started")
	ErrNotStarted      = errors.New("queue: not started")
	ErrNoPool          = errors.New("queue: database pool is required")
	ErrDispatchFailed  = errors.New("queue: dispatch failed")
)
