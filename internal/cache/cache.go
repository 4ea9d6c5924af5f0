package cache

import (
	"context"
	"time"
)

// Cache is the small set of Redis operations the service relies on. No domain state is
// cached here; only short-lived counters.
type Cache interface {
	IncrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	TTL(ctx context.Context, key string) (time.Duration, error)
	Delete(ctx context.Context, key string) error
	Close() error
	Ping(ctx context.Context) error
}

// RateLimiter counts requests per route and client address in fixed windows.
type RateLimiter interface {
	// Allow registers one hit. When the limit is exceeded it returns false and the time
	// until the window resets.
	Allow(ctx context.Context, route, ip string) (bool, time.Duration, error)
}
