package graphql

import (
	"context"
	"errors"
	"math/rand/v2"

	"go.uber.org/zap"

	"quran-mood-gateway/internal/middleware"
	"quran-mood-gateway/internal/verses"
	"quran-mood-gateway/pkg/logging/logging"
	"quran-mood-gateway/pkg/types"
)

// MoodService is satisfied by *verses.Service.
type MoodService interface {
	VersesByMood(ctx context.Context, clientID, raw string) (*types.MoodResponse, error)
}

type rootResolver struct {
	svc MoodService
}

func (r *rootResolver) Random() float64 {
	return rand.Float64()
}

type versesByMoodArgs struct {
	Mood   string
	Locale *string // accepted, every configured translation is returned
}

func (r *rootResolver) GetVersesByMood(ctx context.Context, args versesByMoodArgs) (*verseResponseResolver, error) {
	resp, err := r.svc.VersesByMood(ctx, middleware.ClientIPFromContext(ctx), args.Mood)
	if err != nil {
		if verses.Code(err) == verses.CodeInternal {
			logging.L(ctx).Error("getVersesByMood failed", zap.Error(err))
		}
		return nil, &resolverError{err: err}
	}
	return &verseResponseResolver{resp: resp}, nil
}

// resolverError exposes only the public message; the code and retry hint
// travel in the error extensions.
type resolverError struct {
	err error
}

func (e *resolverError) Error() string {
	return verses.PublicMessage(e.err)
}

func (e *resolverError) Unwrap() error {
	return e.err
}

func (e *resolverError) Extensions() map[string]interface{} {
	ext := map[string]interface{}{"code": verses.Code(e.err)}
	var rl *verses.RateLimitedError
	if errors.As(e.err, &rl) {
		ext["retryAfter"] = rl.RetryAfterSeconds
	}
	return ext
}

type verseResponseResolver struct {
	resp *types.MoodResponse
}

func (r *verseResponseResolver) Mood() string {
	return r.resp.Mood
}

func (r *verseResponseResolver) Verses() []*verseResolver {
	out := make([]*verseResolver, len(r.resp.Verses))
	for i, v := range r.resp.Verses {
		out[i] = &verseResolver{v: v}
	}
	return out
}

type verseResolver struct {
	v *types.Verse
}

func (r *verseResolver) Number() int32 {
	return int32(r.v.Number)
}

func (r *verseResolver) Surah() *surahResolver {
	return &surahResolver{number: int32(r.v.Surah.Number)}
}

func (r *verseResolver) Scripts() []*scriptResolver {
	out := make([]*scriptResolver, len(r.v.Scripts))
	for i := range r.v.Scripts {
		out[i] = &scriptResolver{s: r.v.Scripts[i]}
	}
	return out
}

func (r *verseResolver) Translations() []*translationResolver {
	out := make([]*translationResolver, len(r.v.Translations))
	for i := range r.v.Translations {
		out[i] = &translationResolver{t: r.v.Translations[i]}
	}
	return out
}

type surahResolver struct {
	number int32
}

func (r *surahResolver) Number() int32 { return r.number }

type scriptResolver struct {
	s types.Script
}

func (r *scriptResolver) Name() string { return r.s.Name }
func (r *scriptResolver) Text() string { return r.s.Text }

type translationResolver struct {
	t types.Translation
}

func (r *translationResolver) LanguageID() string { return r.t.LanguageID }
func (r *translationResolver) Text() string       { return r.t.Text }
