// Package verses answers a mood query: it normalizes the text, applies the
// per-client rate limit, resolves verse keys through the response cache or
// the language model, and fetches verse content.
package verses

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"quran-mood-gateway/internal/cache"
	"quran-mood-gateway/internal/metrics"
	"quran-mood-gateway/internal/normalize"
	"quran-mood-gateway/internal/ratelimit"
	"quran-mood-gateway/pkg/logging/logging"
	"quran-mood-gateway/pkg/types"
)

type Service struct {
	limiter  ratelimit.Limiter
	cache    *cache.MoodCache
	resolver *Resolver
	fetcher  *ContentFetcher

	flights singleflight.Group
	now     func() time.Time
}

func NewService(limiter ratelimit.Limiter, moods *cache.MoodCache, resolver *Resolver, fetcher *ContentFetcher) *Service {
	return &Service{
		limiter:  limiter,
		cache:    moods,
		resolver: resolver,
		fetcher:  fetcher,
		now:      time.Now,
	}
}

// VersesByMood runs one mood request for clientID.
func (s *Service) VersesByMood(ctx context.Context, clientID, raw string) (*types.MoodResponse, error) {
	start := s.now()
	logger := logging.L(ctx)

	normalized, err := normalize.Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if err := s.checkRate(ctx, clientID, start); err != nil {
		return nil, err
	}

	entry, hit := s.lookup(ctx, normalized)
	if !hit {
		entry, err = s.resolve(ctx, normalized)
		if err != nil {
			return nil, err
		}
	}

	fetchStart := time.Now()
	results := s.fetcher.FetchAll(ctx, entry.VerseKeys)
	fetchDuration := time.Since(fetchStart)

	resp, err := Assemble(entry.Mood, results)
	if err != nil {
		logger.Error("no verse content fetched",
			zap.Strings("verse_keys", entry.VerseKeys),
			zap.Duration("fetch_duration", fetchDuration),
		)
		return nil, err
	}

	logger.Info("mood_request_served",
		zap.Bool("cache_hit", hit),
		zap.String("mood", resp.Mood),
		zap.Int("verse_keys", len(entry.VerseKeys)),
		zap.Int("verses", len(resp.Verses)),
		zap.Duration("fetch_duration", fetchDuration),
		zap.Duration("duration", time.Since(start)),
	)
	return resp, nil
}

// checkRate records the request against clientID. Store errors let the
// request through.
func (s *Service) checkRate(ctx context.Context, clientID string, now time.Time) error {
	res, err := s.limiter.CheckAndRecord(ctx, clientID, now)
	if err != nil {
		logging.L(ctx).Warn("rate_limit_decision",
			zap.String("client_id", clientID),
			zap.String("decision", "error"),
			zap.Error(err),
		)
		return nil
	}
	if !res.Allowed {
		metrics.RateLimitedTotal.Inc()
		logging.L(ctx).Info("rate_limit_decision",
			zap.String("client_id", clientID),
			zap.String("decision", "rejected"),
			zap.Int("retry_after_s", res.RetryAfterSeconds()),
		)
		return &RateLimitedError{RetryAfterSeconds: res.RetryAfterSeconds()}
	}
	return nil
}

func (s *Service) lookup(ctx context.Context, normalized string) (*cache.Entry, bool) {
	entry, ok, err := s.cache.Get(ctx, normalized)
	if err != nil {
		logging.L(ctx).Warn("mood cache lookup failed", zap.Error(err))
		return nil, false
	}
	return entry, ok
}

// resolve asks the model once per normalized input, even when several
// requests miss at the same time.
func (s *Service) resolve(ctx context.Context, normalized string) (*cache.Entry, error) {
	v, err, _ := s.flights.Do(normalized, func() (any, error) {
		// the first caller's cancellation must not fail the others
		ctx := context.WithoutCancel(ctx)

		// an earlier flight may have finished after our lookup
		if entry, ok, err := s.cache.Peek(ctx, normalized); err == nil && ok {
			return entry, nil
		}

		res, err := s.resolver.Resolve(ctx, normalized)
		if err != nil {
			return nil, err
		}

		entry := &cache.Entry{VerseKeys: res.VerseKeys, Mood: res.Mood}
		if err := s.cache.Set(ctx, normalized, *entry); err != nil {
			logging.L(ctx).Warn("mood cache store failed", zap.Error(err))
		}
		return entry, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*cache.Entry), nil
}
