// Package cache provides typed key/value stores and the hit counters behind
// request throttling.
//
// Memory and Redis implement Store. Remember computes and stores a missing
// value once even under concurrent misses:
//
//	posts := cache.NewMemory[[]Post](cache.WithTTL(5 * time.Minute))
//	latest, err := cache.Remember(ctx, posts, "latest", 0, loadLatest)
//
// RateLimiter counts hits per key inside a fixed window over a Counter,
// either MemoryCounter or RedisCounter:
//
//	limiter := cache.NewRateLimiter(cache.NewRedisCounter(client, "throttle"))
//	lim, err := limiter.Attempt(ctx, "login:"+ip, 5, time.Minute)
//	if !lim.Allowed {
//		// retry after lim.RetryAfter
//	}
package cache
