package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultWindow = time.Minute

// Counter is the subset of the Redis client used by FixedWindowLimiter.
type Counter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// FixedWindowLimiter counts requests per key in fixed windows.
// Key format: ratelimit:<key>:<window_start_unix>
type FixedWindowLimiter struct {
	client Counter
	limit  int64
	window time.Duration
	now    func() time.Time
}

// NewFixedWindowLimiter allows limit requests per key in every window.
// A non-positive window falls back to one minute.
func NewFixedWindowLimiter(client Counter, limit int, window time.Duration) *FixedWindowLimiter {
	if window <= 0 {
		window = defaultWindow
	}
	return &FixedWindowLimiter{
		client: client,
		limit:  int64(limit),
		window: window,
		now:    time.Now,
	}
}

// Allow records one hit for key and reports whether it is within the limit.
func (l *FixedWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.key(key)

	n, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit incr: %w", err)
	}
	if n == 1 {
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			return false, fmt.Errorf("rate limit expire: %w", err)
		}
	}
	return n <= l.limit, nil
}

func (l *FixedWindowLimiter) key(key string) string {
	start := l.now().Truncate(l.window)
	return fmt.Sprintf("ratelimit:%s:%d", key, start.Unix())
}
