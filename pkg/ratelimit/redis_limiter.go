package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter shares the cooldown window across instances using key TTLs.
// Redis errors fail open: a broken cache must not block registrations.
type RedisLimiter struct {
	rdb    *redis.Client
	window time.Duration
}

func NewRedisLimiter(rdb *redis.Client, window time.Duration) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, window: window}
}

func limiterKey(key string) string {
	return "waitlist:submitted:" + normalize(key)
}

func (l *RedisLimiter) Blocked(ctx context.Context, key string) bool {
	n, err := l.rdb.Exists(ctx, limiterKey(key)).Result()
	if err != nil {
		return false
	}
	return n > 0
}

func (l *RedisLimiter) Record(ctx context.Context, key string) {
	l.rdb.Set(ctx, limiterKey(key), "1", l.window)
}
