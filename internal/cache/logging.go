package cache

import (
	"context"
	"strings"
	"time"

	"quran-mood-gateway/internal/metrics"
	"quran-mood-gateway/pkg/logging/logging"

	"go.uber.org/zap"
)

// LoggingStore wraps a Store with structured logging and hit/miss counters.
type LoggingStore struct {
	inner Store
}

// NewLoggingStore returns a store that logs every call.
func NewLoggingStore(inner Store) Store {
	return &LoggingStore{inner: inner}
}

func (c *LoggingStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	start := time.Now()
	value, ok, err := c.inner.Get(ctx, key)
	latencyMs := float64(time.Since(start).Microseconds()) / 1000.0

	result := "miss"
	if err != nil {
		result = "error"
	} else if ok {
		result = "hit"
		metrics.MoodCacheHitsTotal.Inc()
	}
	if result != "hit" {
		metrics.MoodCacheMissesTotal.Inc()
	}

	fields := append(keyFields(key),
		zap.String("cache_result", result), // hit | miss | error
		zap.Float64("latency_ms", latencyMs),
	)

	logger := logging.L(ctx)
	if err != nil {
		logger.Error("mood_cache_get", append(fields, zap.Error(err))...)
	} else {
		logger.Debug("mood_cache_get", fields...)
	}

	return value, ok, err
}

// Peek reads through to the wrapped store without logging or counting.
func (c *LoggingStore) Peek(ctx context.Context, key string) ([]byte, bool, error) {
	return c.inner.Get(ctx, key)
}

func (c *LoggingStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	start := time.Now()
	err := c.inner.Set(ctx, key, value, ttl)
	latencyMs := float64(time.Since(start).Microseconds()) / 1000.0

	fields := append(keyFields(key),
		zap.Duration("ttl", ttl),
		zap.Int("bytes", len(value)),
		zap.Float64("latency_ms", latencyMs),
	)

	logger := logging.L(ctx)
	if err != nil {
		logger.Error("mood_cache_set", append(fields, zap.Error(err))...)
	} else {
		logger.Debug("mood_cache_set", fields...)
	}

	return err
}

func keyFields(key string) []zap.Field {
	fields := []zap.Field{zap.String("cache_key", key)}
	if k, ok := parseMoodKey(key); ok {
		fields = append(fields,
			zap.String("version_id", k.VersionID),
			zap.String("hash", k.Hash),
		)
	}
	return fields
}

// Expecting: mood:<VERSION_ID>:<HASH>
func parseMoodKey(key string) (MoodKey, bool) {
	parts := strings.Split(key, ":")
	if len(parts) != 3 || parts[0] != "mood" {
		return MoodKey{}, false
	}
	return MoodKey{VersionID: parts[1], Hash: parts[2]}, true
}
