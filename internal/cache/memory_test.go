package cache

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestMemoryStore_TTL(t *testing.T) {
	c := NewMemoryStore(10, 10*time.Millisecond)
	defer c.Close()

	ctx := context.Background()
	key := "test:key"
	val := []byte("hello")

	if err := c.Set(ctx, key, val, 20*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, hit, err := c.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !hit {
		t.Fatalf("expected hit immediately after Set")
	}
	if string(got) != "hello" {
		t.Fatalf("expected 'hello', got %q", got)
	}

	// Wait for TTL to expire
	time.Sleep(30 * time.Millisecond)

	_, hit, err = c.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get after TTL failed: %v", err)
	}
	if hit {
		t.Fatalf("expected miss after TTL expiry")
	}
}

func TestMemoryStore_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewMemoryStore(2, time.Minute)
	defer c.Close()

	ctx := context.Background()
	_ = c.Set(ctx, "a", []byte("1"), time.Minute)
	_ = c.Set(ctx, "b", []byte("2"), time.Minute)

	// touch a so b becomes the eviction candidate
	if _, hit, _ := c.Get(ctx, "a"); !hit {
		t.Fatalf("expected hit for a")
	}
	_ = c.Set(ctx, "c", []byte("3"), time.Minute)

	if c.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", c.Len())
	}
	if _, hit, _ := c.Get(ctx, "b"); hit {
		t.Fatalf("expected b to be evicted")
	}
	if _, hit, _ := c.Get(ctx, "a"); !hit {
		t.Fatalf("expected a to survive")
	}
}

func TestMemoryStore_SweepRemovesExpired(t *testing.T) {
	c := NewMemoryStore(10, time.Hour)
	defer c.Close()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_ = c.Set(ctx, fmt.Sprintf("k%d", i), []byte("v"), time.Millisecond)
	}
	_ = c.Set(ctx, "keep", []byte("v"), time.Hour)

	c.sweep(time.Now().Add(time.Second))

	if c.Len() != 1 {
		t.Fatalf("expected only the live entry to remain, got %d", c.Len())
	}
}

func TestMemoryStore_CopiesValue(t *testing.T) {
	c := NewMemoryStore(10, time.Minute)
	defer c.Close()

	ctx := context.Background()
	buf := []byte("abc")
	_ = c.Set(ctx, "k", buf, time.Minute)
	buf[0] = 'z'

	got, _, _ := c.Get(ctx, "k")
	if string(got) != "abc" {
		t.Fatalf("cached value changed with caller buffer: %q", got)
	}
}
