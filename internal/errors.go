package internal

import (
	"errors"
	"net/http"
)

var (
	ErrUnknownProvider = errors.New("atomic: unknown service provider")
	ErrProviderFailed  = errors.New("atomic: service provider failed")
	ErrBootstrapFailed = errors.New("atomic: bootstrap failed")
	ErrMissingAppKey   = errors.New("atomic: app.key is not set")
	ErrUnknownDriver   = errors.New("atomic: unknown driver")
)

// HTTPError is an error carrying the status it should be answered with.
// Actions return it, usually through Abort, to stop with a given status.
type HTTPError struct {
	Err     error
	Message string
	Code    int
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return http.StatusText(e.Code)
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error { return e.Err }

func (e *HTTPError) StatusCode() int { return e.Code }

// NewHTTPError creates an HTTPError.
func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{Code: code, Message: message}
}

// Abort returns an HTTPError for code, with the status text as default
// message.
//
//	if post == nil {
//	    return nil, atomic.Abort(http.StatusNotFound)
//	}
func Abort(code int, message ...string) *HTTPError {
	e := &HTTPError{Code: code}
	if len(message) > 0 {
		e.Message = message[0]
	}
	return e
}

// AsHTTPError extracts the HTTPError from err if present.
func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	if errors.As(err, &he) {
		return he, true
	}
	return nil, false
}
