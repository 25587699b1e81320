package cache

import (
	"context"
	"fmt"
	"time"
)

// MoodKey identifies one cached model answer. Hash is derived from the
// normalized mood text only; the requesting client never takes part.
type MoodKey struct {
	VersionID string
	Hash      string
}

// String converts the structured key into the final string used in Redis/map.
func (k MoodKey) String() string {
	// mood:<VERSION_ID>:<HASH_HEX>
	return fmt.Sprintf("mood:%s:%s", k.VersionID, k.Hash)
}

// Store is the byte-level cache behind MoodCache.
// Implemented by the in-memory LRU (single instance) and Redis (shared).
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
