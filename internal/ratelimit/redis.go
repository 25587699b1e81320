package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter shares limiter state between replicas. Keys expire with the
// window, so Redis bounds memory the same way the LRU does.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	window time.Duration
}

// NewRedisLimiter creates a Redis-backed limiter.
func NewRedisLimiter(client *redis.Client, prefix string, window time.Duration) *RedisLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &RedisLimiter{client: client, prefix: prefix, window: window}
}

func (l *RedisLimiter) key(clientID string) string {
	if l.prefix == "" {
		return "ratelimit:" + clientID
	}
	return l.prefix + ":ratelimit:" + clientID
}

// checkAndRecord runs as one script so concurrent callers for the same
// client cannot both see a stale stamp. It returns -1 when the request is
// allowed, otherwise the milliseconds left in the window.
var checkAndRecord = redis.NewScript(`
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local last = redis.call("GET", KEYS[1])
if last then
	local stamp = tonumber(last)
	if not stamp then
		return redis.error_reply("corrupt rate limit entry")
	end
	local elapsed = now - stamp
	if elapsed < window then
		return window - elapsed
	end
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
return -1
`)

func (l *RedisLimiter) CheckAndRecord(ctx context.Context, clientID string, now time.Time) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("context error: %w", err)
	}

	remaining, err := checkAndRecord.Run(ctx, l.client,
		[]string{l.key(clientID)}, now.UnixMilli(), l.window.Milliseconds(),
	).Int64()
	if err != nil {
		return Result{}, fmt.Errorf("redis rate limit script failed: %w", err)
	}
	if remaining < 0 {
		return Result{Allowed: true}, nil
	}
	return Result{RetryAfter: time.Duration(remaining) * time.Millisecond}, nil
}

var _ Limiter = (*RedisLimiter)(nil)
