package middlewares

import (
	"log/slog"
	"runtime"

	"github.com/BenRutlandWeb/atomic-framework/pkg/request"
	"github.com/BenRutlandWeb/atomic-framework/pkg/routing"
)

// DefaultStackSize is the default maximum stack trace size in bytes.
const DefaultStackSize = 4096

// RecoverConfig configures the recover middleware.
type RecoverConfig struct {
	StackSize         int  // Max stack trace size (default: 4096)
	DisablePrintStack bool // Disable stack trace in logs
}

// RecoverOption configures RecoverConfig.
type RecoverOption func(*RecoverConfig)

// WithRecoverStackSize sets the maximum stack trace size.
func WithRecoverStackSize(size int) RecoverOption {
	return func(cfg *RecoverConfig) {
		cfg.StackSize = size
	}
}

// WithRecoverDisablePrintStack leaves the stack trace out of logs and errors.
func WithRecoverDisablePrintStack() RecoverOption {
	return func(cfg *RecoverConfig) {
		cfg.DisablePrintStack = true
	}
}

// Recover turns panics in later stages and the route action into a
// *PanicError, which the exception handler reports as a 500.
func Recover(opts ...RecoverOption) routing.Middleware {
	cfg := &RecoverConfig{StackSize: DefaultStackSize}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(req *request.Request, next routing.Next) (res any, err error) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}

			var stack []byte
			attrs := []any{slog.Any("panic", v)}
			if !cfg.DisablePrintStack {
				stack = make([]byte, cfg.StackSize)
				stack = stack[:runtime.Stack(stack, false)]
				attrs = append(attrs, slog.String("stack", string(stack)))
			}
			req.Logger().ErrorContext(req.Context(), "panic recovered", attrs...)

			res, err = nil, &PanicError{Value: v, Stack: stack}
		}()

		return next(req)
	}
}
