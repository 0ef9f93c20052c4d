// Package redis opens the shared Redis connection used by the cache and the
// throttle counters.
//
//	client, err := redis.Open(ctx, redis.Config{URL: "redis://localhost:6379/0"}, log)
//
// Connections are retried with a linear backoff. Ping adapts the client to
// the host health endpoint.
package redis
