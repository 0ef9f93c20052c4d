package middlewares

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/BenRutlandWeb/atomic-framework/pkg/request"
	"github.com/BenRutlandWeb/atomic-framework/pkg/routing"
)

// DefaultTimeout is the default request timeout.
const DefaultTimeout = 30 * time.Second

// Timeout puts a deadline on the request context. Handlers are expected to
// honour ctx.Done(); a handler that gives up because of the deadline without
// writing a response is reported as a *TimeoutError.
//
// The route runs on the calling goroutine, so a handler that ignores the
// context is not interrupted.
func Timeout(timeout time.Duration) routing.Middleware {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return func(req *request.Request, next routing.Next) (any, error) {
		ctx, cancel := context.WithTimeout(req.Context(), timeout)
		defer cancel()
		req.WithContext(ctx)

		res, err := next(req)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !written(req) {
			req.Logger().WarnContext(ctx, "request timeout", slog.Duration("timeout", timeout))
			return nil, &TimeoutError{Duration: timeout}
		}
		return res, err
	}
}

func written(req *request.Request) bool {
	rw, ok := req.Response().(*routing.ResponseWriter)
	return ok && rw.Written()
}
