package events

import "errors"

var (
	ErrInvalidListener   = errors.New("events: listener must be a func or have a Handle method")
	ErrInvalidSubscriber = errors.New("events: subscriber does not implement Subscriber")
	ErrNoResolver        = errors.New("events: no resolver configured to resolve named listeners")
)
