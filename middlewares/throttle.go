package middlewares

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/BenRutlandWeb/atomic-framework/pkg/cache"
	"github.com/BenRutlandWeb/atomic-framework/pkg/request"
	"github.com/BenRutlandWeb/atomic-framework/pkg/routing"
)

const (
	defaultThrottleMax     = 60
	defaultThrottleMinutes = 1
)

// Identifier is implemented by signed-in users so throttling is per user
// rather than per address.
type Identifier interface {
	AuthID() string
}

// ThrottleKeyFunc returns the bucket a request counts against.
type ThrottleKeyFunc func(req *request.Request) string

// ThrottleByUserOrIP keys on the signed-in user, or the client address for
// guests, scoped to the route.
func ThrottleByUserOrIP(req *request.Request) string {
	scope := req.Path()
	if route := routing.CurrentRoute(req); route != nil {
		scope = route.URI()
	}
	if u, ok := req.User().(Identifier); ok && u != nil {
		return sha1Hex("user|" + u.AuthID() + "|" + scope)
	}
	host, _, err := net.SplitHostPort(req.Request().RemoteAddr)
	if err != nil {
		host = req.Request().RemoteAddr
	}
	return sha1Hex(host + "|" + scope)
}

func sha1Hex(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Throttle builds the "throttle:max,minutes" middleware. Both arguments are
// optional and default to 60 requests per minute.
//
//	router.AliasParameterizedMiddleware("throttle", middlewares.Throttle(limiter, nil))
//	router.Post("login", action).Middleware("throttle:5,1")
func Throttle(limiter *cache.RateLimiter, key ThrottleKeyFunc) routing.ParameterizedMiddleware {
	if key == nil {
		key = ThrottleByUserOrIP
	}
	return func(args ...string) (routing.Middleware, error) {
		maxHits, minutes, err := throttleArgs(args)
		if err != nil {
			return nil, err
		}
		return ThrottleRequests(limiter, key, maxHits, time.Duration(minutes)*time.Minute), nil
	}
}

// ThrottleRequests allows maxHits requests per decay window for each key.
func ThrottleRequests(limiter *cache.RateLimiter, key ThrottleKeyFunc, maxHits int64, decay time.Duration) routing.Middleware {
	if key == nil {
		key = ThrottleByUserOrIP
	}
	return func(req *request.Request, next routing.Next) (any, error) {
		lim, err := limiter.Attempt(req.Context(), key(req), maxHits, decay)
		if err != nil {
			return nil, fmt.Errorf("throttle: %w", err)
		}

		h := req.Response().Header()
		h.Set("X-RateLimit-Limit", strconv.FormatInt(lim.Max, 10))
		h.Set("X-RateLimit-Remaining", strconv.FormatInt(lim.Remaining, 10))
		if !lim.Allowed {
			secs := int64((lim.RetryAfter + time.Second - 1) / time.Second)
			h.Set("Retry-After", strconv.FormatInt(secs, 10))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(lim.RetryAfter).Unix(), 10))
			return nil, &ThrottleError{RetryAfter: lim.RetryAfter}
		}
		return next(req)
	}
}

func throttleArgs(args []string) (int64, int64, error) {
	vals := []int64{defaultThrottleMax, defaultThrottleMinutes}
	if len(args) > len(vals) {
		return 0, 0, fmt.Errorf("%w: %v", ErrInvalidThrottle, args)
	}
	for i, a := range args {
		if a == "" {
			continue
		}
		n, err := strconv.ParseInt(a, 10, 64)
		if err != nil || n <= 0 {
			return 0, 0, fmt.Errorf("%w: %v", ErrInvalidThrottle, args)
		}
		vals[i] = n
	}
	return vals[0], vals[1], nil
}
