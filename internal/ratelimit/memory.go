package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryLimiter keeps timestamps in a bounded LRU whose entries expire after
// the window. Evicting an active client only makes the limiter more lenient.
type MemoryLimiter struct {
	mu     sync.Mutex
	window time.Duration
	store  *expirable.LRU[string, time.Time]
}

// NewMemoryLimiter creates a limiter tracking at most maxClients clients.
func NewMemoryLimiter(window time.Duration, maxClients int) *MemoryLimiter {
	if window <= 0 {
		window = time.Minute
	}
	if maxClients <= 0 {
		maxClients = 5000
	}
	return &MemoryLimiter{
		window: window,
		store:  expirable.NewLRU[string, time.Time](maxClients, nil, window),
	}
}

func (l *MemoryLimiter) CheckAndRecord(_ context.Context, clientID string, now time.Time) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if last, ok := l.store.Get(clientID); ok {
		if res := decide(last, now, l.window); !res.Allowed {
			return res, nil
		}
	}

	l.store.Add(clientID, now)
	return Result{Allowed: true}, nil
}

// Len returns the number of tracked clients.
func (l *MemoryLimiter) Len() int {
	return l.store.Len()
}

var _ Limiter = (*MemoryLimiter)(nil)
