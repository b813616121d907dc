package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed-window counter shared by every API instance.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	max    int
	window time.Duration
}

// NewRedisLimiter builds a limiter storing counters under
// "ratelimit:<prefix>:". Pass a bare name such as "login".
func NewRedisLimiter(client *redis.Client, prefix string, max int, win time.Duration) *RedisLimiter {
	if max <= 0 {
		max = 5
	}
	if win <= 0 {
		win = 15 * time.Minute
	}
	return &RedisLimiter{client: client, prefix: prefix, max: max, window: win}
}

// Allow increments the counter for key and reports whether it is within budget.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	redisKey := l.redisKey(key)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.ExpireNX(ctx, redisKey, l.window)
	ttl := pipe.PTTL(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("rate limit %s: %w", redisKey, err)
	}

	count := int(incr.Val())
	if count > l.max {
		retry := ttl.Val()
		if retry <= 0 {
			retry = l.window
		}
		return Decision{Allowed: false, RetryAfter: retry}, nil
	}
	return Decision{Allowed: true, Remaining: l.max - count}, nil
}

func (l *RedisLimiter) redisKey(key string) string {
	return fmt.Sprintf("ratelimit:%s:%s", l.prefix, key)
}
