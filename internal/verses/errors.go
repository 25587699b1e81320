package verses

import (
	"errors"
	"fmt"
)

// Request-scoped failures. Each maps to a stable code and a message that is
// safe to show to callers.
var (
	ErrInvalidInput     = errors.New("invalid mood input")
	ErrConfiguration    = errors.New("service is not configured")
	ErrNoVersesFound    = errors.New("no verses found for this mood")
	ErrUsageLimit       = errors.New("usage limit reached")
	ErrNoContentFetched = errors.New("no verses could be fetched for this mood")
)

const (
	CodeInvalidInput     = "INVALID_INPUT"
	CodeRateLimited      = "RATE_LIMITED"
	CodeNotConfigured    = "NOT_CONFIGURED"
	CodeNoVersesFound    = "NO_VERSES_FOUND"
	CodeUsageLimit       = "USAGE_LIMIT"
	CodeNoContentFetched = "NO_CONTENT_FETCHED"
	CodeInternal         = "INTERNAL"
)

// RateLimitedError is returned when a client repeats a request inside the
// rate-limit window.
type RateLimitedError struct {
	RetryAfterSeconds int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited: retry after %ds", e.RetryAfterSeconds)
}

// Code returns the machine-readable code for err.
func Code(err error) string {
	var rl *RateLimitedError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &rl):
		return CodeRateLimited
	case errors.Is(err, ErrInvalidInput):
		return CodeInvalidInput
	case errors.Is(err, ErrConfiguration):
		return CodeNotConfigured
	case errors.Is(err, ErrNoVersesFound):
		return CodeNoVersesFound
	case errors.Is(err, ErrUsageLimit):
		return CodeUsageLimit
	case errors.Is(err, ErrNoContentFetched):
		return CodeNoContentFetched
	default:
		return CodeInternal
	}
}

// PublicMessage returns the text shown to callers for err. Causes wrapped
// beneath the taxonomy never leak through it.
func PublicMessage(err error) string {
	var rl *RateLimitedError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &rl):
		return fmt.Sprintf("Too many requests. Try again in %d seconds.", rl.RetryAfterSeconds)
	case errors.Is(err, ErrInvalidInput):
		// built only from normalize reasons
		return err.Error()
	case errors.Is(err, ErrConfiguration):
		return "Service is not configured. Try again later."
	case errors.Is(err, ErrNoVersesFound):
		return "No verses found for this mood"
	case errors.Is(err, ErrUsageLimit):
		return "Usage limit reached. Try again shortly."
	case errors.Is(err, ErrNoContentFetched):
		return "No verses could be fetched for this mood"
	default:
		return "Something went wrong. Try again later."
	}
}
