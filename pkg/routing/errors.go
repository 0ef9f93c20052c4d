package routing

import "errors"

var (
	ErrRouteNotFound      = errors.New("routing: route not defined")
	ErrInvalidAttribute   = errors.New("routing: attribute does not exist")
	ErrMiddlewareNotFound = errors.New("routing: middleware not found")
	ErrInvalidMiddleware  = errors.New("routing: invalid middleware definition")
	ErrNilAction          = errors.New("routing: route has no action")
	ErrManifestNotFound   = errors.New("routing: mix manifest not found")
)
