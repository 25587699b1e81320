package cache

import (
	"time"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	Backend    string // "memory" or "redis"
	MaxEntries int
	Prefix     string
}

// NewStore picks the backend named by cfg.Backend, defaulting to memory.
func NewStore(cfg Config, redisClient *redis.Client) Store {
	switch cfg.Backend {
	case "redis":
		return NewRedisStore(redisClient, RedisConfig{
			Prefix: cfg.Prefix,
		})
	default:
		return NewMemoryStore(cfg.MaxEntries, 10*time.Minute)
	}
}
