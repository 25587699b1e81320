package verses

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"quran-mood-gateway/internal/llm"
	"quran-mood-gateway/internal/metrics"
	"quran-mood-gateway/pkg/logging/logging"
)

const (
	resolveTemperature = 0.7
	resolveMaxTokens   = 500
)

// Resolution is what the model chose for one normalized mood.
type Resolution struct {
	VerseKeys []string
	Mood      string
}

type ResolverConfig struct {
	Model   string        // empty uses the client's default model
	Timeout time.Duration // per call, default: 30s
}

// Resolver turns a normalized mood into verse keys with one model call.
type Resolver struct {
	client  llm.Client
	model   string
	timeout time.Duration
}

// NewResolver returns a resolver. A nil client is allowed: every call then
// fails with ErrConfiguration.
func NewResolver(client llm.Client, cfg ResolverConfig) *Resolver {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Resolver{client: client, model: cfg.Model, timeout: cfg.Timeout}
}

func (r *Resolver) Resolve(ctx context.Context, normalized string) (*Resolution, error) {
	if r.client == nil {
		return nil, fmt.Errorf("%w: language model credential missing", ErrConfiguration)
	}

	logger := logging.L(ctx)
	start := time.Now()

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	resp, err := r.client.ChatCompletion(callCtx, &llm.ChatRequest{
		Model:       r.model,
		Messages:    buildMessages(normalized),
		Temperature: resolveTemperature,
		MaxTokens:   resolveMaxTokens,
	})
	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues("error").Inc()
		logger.Error("verse key resolution failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
		)
		return nil, fmt.Errorf("%w: %w", ErrUsageLimit, err)
	}

	text := resp.Text()
	keys, err := ParseVerseKeys(text)
	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues("no_verses").Inc()
		logger.Warn("model answer had no usable verse keys",
			zap.Int("answer_bytes", len(text)),
			zap.Duration("duration", time.Since(start)),
		)
		return nil, err
	}

	res := &Resolution{
		VerseKeys: keys,
		Mood:      ParseMoodLabel(text, normalized),
	}

	metrics.LLMRequestsTotal.WithLabelValues("ok").Inc()
	logger.Info("verse keys resolved",
		zap.Strings("verse_keys", res.VerseKeys),
		zap.String("mood", res.Mood),
		zap.Duration("duration", time.Since(start)),
	)
	return res, nil
}
