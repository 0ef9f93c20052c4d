package middlewares

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

var ErrInvalidThrottle = errors.New("middlewares: invalid throttle arguments")

// PanicError represents a recovered panic.
type PanicError struct {
	Value any    // The panic value
	Stack []byte // Stack trace (nil if disabled)
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

func (e *PanicError) StatusCode() int { return http.StatusInternalServerError }

// TimeoutError is returned when a request outlives its deadline.
type TimeoutError struct {
	Duration time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timeout after %s", e.Duration)
}

func (e *TimeoutError) StatusCode() int { return http.StatusServiceUnavailable }

// ThrottleError is returned when a client exceeded its rate limit.
type ThrottleError struct {
	RetryAfter time.Duration
}

func (e *ThrottleError) Error() string { return "Too Many Attempts." }

func (e *ThrottleError) StatusCode() int { return http.StatusTooManyRequests }

// IsPanicError returns true if the error is a PanicError.
func IsPanicError(err error) bool {
	var pe *PanicError
	return errors.As(err, &pe)
}

// IsTimeoutError returns true if the error is a TimeoutError.
func IsTimeoutError(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// IsThrottleError returns true if the error is a ThrottleError.
func IsThrottleError(err error) bool {
	var te *ThrottleError
	return errors.As(err, &te)
}

// AsPanicError extracts the PanicError from an error if present.
func AsPanicError(err error) (*PanicError, bool) {
	var pe *PanicError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
