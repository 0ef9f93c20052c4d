// Package middlewares provides the stock middleware of an atomic application.
//
// Route middleware has the routing.Middleware signature and runs inside the
// route pipeline, after the request has been parsed:
//
//   - Recover converts panics into *PanicError.
//   - RequestID assigns an id, echoed in X-Request-ID and available to
//     loggers through RequestIDExtractor.
//   - Timeout puts a deadline on the request context.
//   - TransformsRequest, TrimStrings, ConvertEmptyStringsToNull and StripTags
//     rewrite the input before validation.
//   - Throttle implements "throttle:max,minutes" over a cache.RateLimiter.
//   - Authenticate, Guest and VerifyCsrfToken wrap the auth package.
//
// Register them on the kernel as global middleware or aliases:
//
//	kernel.Use(middlewares.Recover(), middlewares.RequestID(), middlewares.TrimStrings())
//	kernel.AliasParameterized("throttle", middlewares.Throttle(limiter, nil))
//
// CORS and MethodOverride wrap the host's http.Handler instead, because they
// must act before a REST route is matched:
//
//	host.New(cfg, host.WithMiddleware(middlewares.CORS(), middlewares.MethodOverride))
package middlewares
