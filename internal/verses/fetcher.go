package verses

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"quran-mood-gateway/internal/metrics"
	"quran-mood-gateway/internal/quran"
	"quran-mood-gateway/pkg/logging/logging"
	"quran-mood-gateway/pkg/types"
)

// VerseSource fetches one verse. *quran.Client implements it.
type VerseSource interface {
	GetVerse(ctx context.Context, key string, opts quran.VerseOptions) (*quran.VerseByKeyResponse, error)
}

// TranslationLanguage binds a content API translation resource to the
// language id reported to callers.
type TranslationLanguage struct {
	ResourceID int
	LanguageID string
}

// ParseTranslations reads a list like "20:en,161:bn".
func ParseTranslations(s string) ([]TranslationLanguage, error) {
	var out []TranslationLanguage
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, lang, ok := strings.Cut(part, ":")
		if !ok || strings.TrimSpace(lang) == "" {
			return nil, fmt.Errorf("translation %q: want <resource id>:<language>", part)
		}
		n, err := strconv.Atoi(strings.TrimSpace(id))
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("translation %q: invalid resource id", part)
		}
		out = append(out, TranslationLanguage{ResourceID: n, LanguageID: strings.TrimSpace(lang)})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no translations configured")
	}
	return out, nil
}

type FetcherConfig struct {
	Translations []TranslationLanguage
	Concurrency  int           // parallel fetches per request, default: 10
	Timeout      time.Duration // per verse, default: 10s
}

// ContentFetcher loads verse content for a list of keys.
type ContentFetcher struct {
	source      VerseSource
	opts        quran.VerseOptions
	languages   map[int]string
	concurrency int
	timeout     time.Duration
}

func NewContentFetcher(source VerseSource, cfg FetcherConfig) *ContentFetcher {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 10
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	ids := make([]int, 0, len(cfg.Translations))
	languages := make(map[int]string, len(cfg.Translations))
	for _, t := range cfg.Translations {
		ids = append(ids, t.ResourceID)
		languages[t.ResourceID] = t.LanguageID
	}

	words := false
	return &ContentFetcher{
		source: source,
		opts: quran.VerseOptions{
			Words:             &words,
			Translations:      ids,
			Fields:            []string{"text_indopak", "text_uthmani", "chapter_id"},
			TranslationFields: []string{"resource_id", "language_name", "text"},
		},
		languages:   languages,
		concurrency: cfg.Concurrency,
		timeout:     cfg.Timeout,
	}
}

// FetchAll returns one slot per key, in key order. A slot is nil when its key
// is malformed or its fetch failed; one failure never stops the others.
func (f *ContentFetcher) FetchAll(ctx context.Context, keys []string) []*types.Verse {
	results := make([]*types.Verse, len(keys))

	var g errgroup.Group
	g.SetLimit(f.concurrency)

	for i, key := range keys {
		if !quran.ValidKey(key) {
			logging.L(ctx).Warn("verse fetch skipped", zap.String("verse_key", key))
			continue
		}
		g.Go(func() error {
			results[i] = f.fetchOne(ctx, key)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (f *ContentFetcher) fetchOne(ctx context.Context, key string) *types.Verse {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	resp, err := f.source.GetVerse(ctx, key, f.opts)
	if err != nil {
		metrics.VerseFetchesTotal.WithLabelValues("error").Inc()
		logging.L(ctx).Warn("verse fetch failed",
			zap.String("verse_key", key),
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
		)
		return nil
	}

	metrics.VerseFetchesTotal.WithLabelValues("ok").Inc()
	return f.toVerse(key, &resp.Verse)
}

func (f *ContentFetcher) toVerse(key string, v *quran.Verse) *types.Verse {
	surah, number := splitKey(key)
	if v.ChapterID > 0 {
		surah = v.ChapterID
	}
	if v.VerseNumber > 0 {
		number = v.VerseNumber
	}

	out := &types.Verse{
		Key:          key,
		Number:       number,
		Surah:        types.Surah{Number: surah},
		Scripts:      []types.Script{},
		Translations: []types.Translation{},
	}

	if v.TextIndopak != "" {
		out.Scripts = append(out.Scripts, types.Script{Name: "indopak", Text: v.TextIndopak})
	}
	if v.TextUthmani != "" {
		out.Scripts = append(out.Scripts, types.Script{Name: "uthmani", Text: v.TextUthmani})
	}

	for _, t := range v.Translations {
		lang, ok := f.languages[t.ResourceID]
		if !ok {
			lang = strings.ToLower(t.LanguageName)
		}
		if lang == "" {
			continue
		}
		out.Translations = append(out.Translations, types.Translation{LanguageID: lang, Text: t.Text})
	}
	return out
}

// splitKey parses "surah:verse". Keys are validated before this is called.
func splitKey(key string) (int, int) {
	s, v, _ := strings.Cut(key, ":")
	surah, _ := strconv.Atoi(s)
	verse, _ := strconv.Atoi(v)
	return surah, verse
}
