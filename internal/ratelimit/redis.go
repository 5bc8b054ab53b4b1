package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"sc-trade-advisor/internal/logger"
)

// RedisLimiter is a fixed-window limiter shared across instances through a
// Redis counter per key and window. Redis failures fail open: a broken
// limiter must not take the API down with it.
type RedisLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
}

// NewRedisLimiter allows limit requests per key per window, counted in rdb.
func NewRedisLimiter(rdb *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, limit: limit, window: window}
}

// Allow counts one request against key's current window.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := time.Now()
	windowStart := now.Truncate(l.window)
	reset := windowStart.Add(l.window)
	redisKey := fmt.Sprintf("ratelimit:%s:%d", key, windowStart.Unix())

	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.ExpireNX(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Warnf("RATELIMIT", "redis unavailable, allowing request: %v", err)
		return Decision{Allowed: true, Limit: l.limit, Remaining: l.limit, Reset: reset}, nil
	}

	hits := int(incr.Val())
	remaining := l.limit - hits
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   hits <= l.limit,
		Limit:     l.limit,
		Remaining: remaining,
		Reset:     reset,
	}, nil
}
