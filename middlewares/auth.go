package middlewares

import (
	"net/http"
	"slices"
	"strings"

	"github.com/BenRutlandWeb/atomic-framework/pkg/auth"
	"github.com/BenRutlandWeb/atomic-framework/pkg/request"
	"github.com/BenRutlandWeb/atomic-framework/pkg/routing"
)

// Authenticate rejects guests with an *auth.AuthenticationError.
func Authenticate(guard *auth.Guard) routing.Middleware {
	return func(req *request.Request, next routing.Next) (any, error) {
		if err := guard.Authenticate(req); err != nil {
			return nil, err
		}
		return next(req)
	}
}

// Guest lets only guests through; signed-in users are redirected to to.
func Guest(guard *auth.Guard, to string) routing.Middleware {
	return func(req *request.Request, next routing.Next) (any, error) {
		if guard.Check(req) {
			return routing.Redirect(to, http.StatusFound), nil
		}
		return next(req)
	}
}

var csrfSafeMethods = []string{http.MethodGet, http.MethodHead, http.MethodOptions}

// VerifyCsrfToken checks the CSRF token of state-changing requests. Paths
// matching an except entry (exact, or prefix when it ends in "*") are
// skipped.
func VerifyCsrfToken(csrf *auth.CSRF, except ...string) routing.Middleware {
	return func(req *request.Request, next routing.Next) (any, error) {
		if slices.Contains(csrfSafeMethods, req.Method()) || excluded(req.Path(), except) {
			return next(req)
		}
		if err := csrf.VerifyRequest(req); err != nil {
			return nil, err
		}
		return next(req)
	}
}

func excluded(path string, patterns []string) bool {
	path = strings.Trim(path, "/")
	for _, p := range patterns {
		p = strings.Trim(p, "/")
		if prefix, ok := strings.CutSuffix(p, "*"); ok {
			if strings.HasPrefix(path, prefix) {
				return true
			}
			continue
		}
		if path == p {
			return true
		}
	}
	return false
}
