package flow

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRateLimiter implements RateLimiter on Redis for multi-instance
// deployments. The increment and window expiry are a single Lua script,
// so concurrent logins against different instances share one counter.
type RedisRateLimiter struct {
	client *redis.Client
	prefix string
}

func NewRedisRateLimiter(client *redis.Client, prefix string) *RedisRateLimiter {
	if prefix == "" {
		prefix = "fitgate:ratelimit:"
	}
	return &RedisRateLimiter{client: client, prefix: prefix}
}

var incrScript = redis.NewScript(`
	local count = redis.call('INCR', KEYS[1])
	if count == 1 then
		redis.call('PEXPIRE', KEYS[1], ARGV[1])
	end
	return count
`)

func (l *RedisRateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, int, error) {
	result, err := incrScript.Run(ctx, l.client, []string{l.prefix + key}, window.Milliseconds()).Result()
	if err != nil {
		return false, 0, fmt.Errorf("redis ratelimit: incr failed: %w", err)
	}

	count, ok := result.(int64)
	if !ok {
		return false, 0, fmt.Errorf("redis ratelimit: unexpected result type")
	}

	if int(count) > limit {
		return false, 0, nil
	}
	return true, limit - int(count), nil
}

func (l *RedisRateLimiter) Reset(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, l.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis ratelimit: reset failed: %w", err)
	}
	return nil
}
