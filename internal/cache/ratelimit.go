package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/AtoyanMikhail/blogauth/internal/config"
	"github.com/AtoyanMikhail/blogauth/internal/logger"
)

const ThrottlePrefix = "throttle:"

type rateLimiter struct {
	cache  Cache
	window time.Duration
	limit  int64
	logger logger.Logger
}

func NewRateLimiter(cache Cache, cfg config.ThrottleConfig, l logger.Logger) RateLimiter {
	return &rateLimiter{
		cache:  cache,
		window: cfg.TTL.Std(),
		limit:  int64(cfg.Limit),
		logger: l,
	}
}

func (r *rateLimiter) Allow(ctx context.Context, route, ip string) (bool, time.Duration, error) {
	key := fmt.Sprintf("%s%s:%s", ThrottlePrefix, route, ip)

	count, err := r.cache.IncrementWithTTL(ctx, key, r.window)
	if err != nil {
		return false, 0, fmt.Errorf("failed to count request: %w", err)
	}
	if count <= r.limit {
		return true, 0, nil
	}

	retryAfter, err := r.cache.TTL(ctx, key)
	if err != nil {
		retryAfter = r.window
	}

	r.logger.Warn("Request throttled",
		logger.String("route", route),
		logger.String("ip", ip),
		logger.Int64("attempts", count))
	return false, retryAfter, nil
}
