package cache

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultMemoryEntries = 1000

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore is a bounded LRU with per-entry expiry.
type MemoryStore struct {
	items           *lru.Cache[string, memoryEntry]
	stopCleanup     chan struct{}
	cleanupOnce     sync.Once
	cleanupInterval time.Duration
}

// NewMemoryStore creates an in-memory store holding at most maxEntries.
// A non-positive cleanupInterval defaults to 5 minutes.
func NewMemoryStore(maxEntries int, cleanupInterval time.Duration) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = defaultMemoryEntries
	}
	if cleanupInterval <= 0 {
		cleanupInterval = 5 * time.Minute
	}

	// lru.New only fails for a non-positive size
	items, _ := lru.New[string, memoryEntry](maxEntries)

	c := &MemoryStore{
		items:           items,
		stopCleanup:     make(chan struct{}),
		cleanupInterval: cleanupInterval,
	}

	go c.cleanupExpired()

	return c
}

// Get returns the value for key and marks it recently used.
func (c *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	entry, ok := c.items.Get(key)
	if !ok {
		return nil, false, nil
	}

	if time.Now().After(entry.expiresAt) {
		c.items.Remove(key)
		return nil, false, nil
	}

	return entry.value, true, nil
}

// Set stores value for ttl. A non-positive ttl removes the key.
func (c *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		c.items.Remove(key)
		return nil
	}

	// Copy to decouple from caller's buffer
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	c.items.Add(key, memoryEntry{
		value:     valueCopy,
		expiresAt: time.Now().Add(ttl),
	})
	return nil
}

// cleanupExpired runs periodically to remove expired entries.
func (c *MemoryStore) cleanupExpired() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweep(time.Now())
		case <-c.stopCleanup:
			return
		}
	}
}

func (c *MemoryStore) sweep(now time.Time) {
	for _, k := range c.items.Keys() {
		// Peek does not bump recency
		if e, ok := c.items.Peek(k); ok && now.After(e.expiresAt) {
			c.items.Remove(k)
		}
	}
}

// Close stops the cleanup goroutine. Call this on shutdown or in tests.
func (c *MemoryStore) Close() error {
	c.cleanupOnce.Do(func() {
		close(c.stopCleanup)
	})
	return nil
}

// Len returns the number of items currently in the cache.
func (c *MemoryStore) Len() int {
	return c.items.Len()
}

// Clear removes all items from cache.
func (c *MemoryStore) Clear() {
	c.items.Purge()
}
