package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// DefaultTTL is how long a resolved mood stays cached.
const DefaultTTL = 48 * time.Hour

// Entry is what the model produced for one normalized mood.
type Entry struct {
	VerseKeys []string `json:"verseKeys"`
	Mood      string   `json:"mood"`
}

// MoodCache stores Entries keyed by the digest of normalized mood text.
type MoodCache struct {
	store     Store
	ttl       time.Duration
	versionID string
}

// NewMoodCache wraps store. A non-positive ttl uses DefaultTTL.
func NewMoodCache(store Store, ttl time.Duration, versionID string) *MoodCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MoodCache{store: store, ttl: ttl, versionID: versionID}
}

// peeker is implemented by decorators that can read without side effects.
type peeker interface {
	Peek(ctx context.Context, key string) ([]byte, bool, error)
}

// Get returns the cached entry for normalized input. A corrupt entry is
// reported as an error and treated by callers as a miss.
func (c *MoodCache) Get(ctx context.Context, normalized string) (*Entry, bool, error) {
	return c.get(ctx, normalized, c.store.Get)
}

// Peek is Get without the store's logging and hit/miss accounting. It is
// meant for re-checks of a key the caller has already looked up.
func (c *MoodCache) Peek(ctx context.Context, normalized string) (*Entry, bool, error) {
	if p, ok := c.store.(peeker); ok {
		return c.get(ctx, normalized, p.Peek)
	}
	return c.get(ctx, normalized, c.store.Get)
}

func (c *MoodCache) get(ctx context.Context, normalized string, read func(context.Context, string) ([]byte, bool, error)) (*Entry, bool, error) {
	key := BuildMoodKey(normalized, c.versionID).String()

	raw, ok, err := read(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, false, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	if len(entry.VerseKeys) == 0 {
		return nil, false, nil
	}
	return &entry, true, nil
}

// Set stores entry for normalized input.
func (c *MoodCache) Set(ctx context.Context, normalized string, entry Entry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	return c.store.Set(ctx, BuildMoodKey(normalized, c.versionID).String(), raw, c.ttl)
}
