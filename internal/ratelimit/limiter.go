// Package ratelimit enforces a per-client sliding window: a client may not
// repeat a request until Window has passed since its last allowed one.
package ratelimit

import (
	"context"
	"time"
)

// Result is the outcome of a single check.
type Result struct {
	Allowed    bool
	RetryAfter time.Duration
}

// RetryAfterSeconds rounds RetryAfter up to whole seconds.
func (r Result) RetryAfterSeconds() int {
	if r.Allowed || r.RetryAfter <= 0 {
		return 0
	}
	return int((r.RetryAfter + time.Second - 1) / time.Second)
}

// Limiter records the last allowed request per client. A rejected call does
// not touch the stored timestamp.
type Limiter interface {
	CheckAndRecord(ctx context.Context, clientID string, now time.Time) (Result, error)
}

// decide applies the window to a previously recorded timestamp.
func decide(last, now time.Time, window time.Duration) Result {
	elapsed := now.Sub(last)
	if elapsed < window {
		return Result{Allowed: false, RetryAfter: window - elapsed}
	}
	return Result{Allowed: true}
}
