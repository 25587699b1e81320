package verses

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"quran-mood-gateway/internal/cache"
	"quran-mood-gateway/internal/llm"
	"quran-mood-gateway/internal/quran"
	"quran-mood-gateway/internal/ratelimit"
	"quran-mood-gateway/pkg/logging/logging"
)

const gratefulAnswer = "<mood-label>\nGratitude\n</mood-label>\n<verse-keys>\n2:152\n94:5\n</verse-keys>"

type fakeLLM struct {
	answer string
	err    error
	delay  time.Duration

	calls atomic.Int32
	mu    sync.Mutex
	last  *llm.ChatRequest
}

func (f *fakeLLM) ChatCompletion(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.last = req
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llm.ChatResponse{Choices: []llm.ChatChoice{
		{Message: llm.ChatMessage{Role: llm.RoleAssistant, Content: f.answer}},
	}}, nil
}

func (f *fakeLLM) lastRequest() *llm.ChatRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

type fakeSource struct {
	fail  map[string]bool
	delay time.Duration

	calls    atomic.Int32
	inflight atomic.Int32
	maxSeen  atomic.Int32
}

func (f *fakeSource) GetVerse(ctx context.Context, key string, opts quran.VerseOptions) (*quran.VerseByKeyResponse, error) {
	f.calls.Add(1)
	n := f.inflight.Add(1)
	defer f.inflight.Add(-1)
	for {
		seen := f.maxSeen.Load()
		if n <= seen || f.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.fail[key] {
		return nil, &quran.APIError{StatusCode: 500, Body: "upstream exploded"}
	}

	surah, verse := splitKey(key)
	return &quran.VerseByKeyResponse{Verse: quran.Verse{
		VerseNumber: verse,
		VerseKey:    key,
		ChapterID:   surah,
		TextIndopak: "indopak " + key,
		TextUthmani: "uthmani " + key,
		Translations: []quran.Translation{
			{ResourceID: 20, LanguageName: "english", Text: "en " + key},
			{ResourceID: 161, LanguageName: "bengali", Text: "bn " + key},
		},
	}}, nil
}

var testTranslations = []TranslationLanguage{
	{ResourceID: 20, LanguageID: "en"},
	{ResourceID: 161, LanguageID: "bn"},
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	return logging.WithLogger(context.Background(), zaptest.NewLogger(t))
}

// newTestService wires real components around the fakes. Pass a nil client
// to model a missing credential.
func newTestService(t *testing.T, client llm.Client, source VerseSource) (*Service, *cache.MoodCache) {
	t.Helper()

	store := cache.NewMemoryStore(100, time.Minute)
	t.Cleanup(func() { _ = store.Close() })
	moods := cache.NewMoodCache(cache.NewLoggingStore(store), time.Hour, "test")

	svc := NewService(
		ratelimit.NewMemoryLimiter(time.Minute, 100),
		moods,
		NewResolver(client, ResolverConfig{Timeout: time.Second}),
		NewContentFetcher(source, FetcherConfig{Translations: testTranslations, Timeout: time.Second}),
	)
	return svc, moods
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("redis: connection refused")
}

func (failingStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("redis: connection refused")
}

type failingLimiter struct{}

func (failingLimiter) CheckAndRecord(context.Context, string, time.Time) (ratelimit.Result, error) {
	return ratelimit.Result{}, errors.New("redis: connection refused")
}
