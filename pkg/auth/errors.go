package auth

import (
	"errors"
	"net/http"
)

var (
	ErrNoSecret           = errors.New("auth: secret must be at least 32 bytes")
	ErrCookieNotFound     = errors.New("auth: cookie not found")
	ErrBadSignature       = errors.New("auth: invalid cookie signature")
	ErrCookieExpired      = errors.New("auth: cookie expired")
	ErrUserNotFound       = errors.New("auth: user not found")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrNoCredentials      = errors.New("auth: user provider cannot check credentials")
)

// AuthenticationError is returned when a route requires a signed-in user.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	if e.Message == "" {
		return "Unauthenticated."
	}
	return e.Message
}

func (e *AuthenticationError) StatusCode() int { return http.StatusUnauthorized }

// TokenMismatchError is returned when a CSRF token is missing or invalid.
type TokenMismatchError struct{}

func (*TokenMismatchError) Error() string   { return "CSRF token mismatch." }
func (*TokenMismatchError) StatusCode() int { return http.StatusUnauthorized }
