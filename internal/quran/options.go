package quran

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var verseKeyPattern = regexp.MustCompile(`^\d+:\d+$`)

// ValidKey reports whether key has the surah:verse form.
func ValidKey(key string) bool {
	return verseKeyPattern.MatchString(key)
}

// VerseOptions are the query parameters of the verse-by-key endpoint.
type VerseOptions struct {
	Language          string
	Words             *bool
	Translations      []int
	Audio             int
	Tafsirs           []int
	WordFields        []string
	TranslationFields []string
	Fields            []string
}

func (o VerseOptions) values() url.Values {
	q := url.Values{}
	if o.Language != "" {
		q.Set("language", o.Language)
	}
	if o.Words != nil {
		q.Set("words", strconv.FormatBool(*o.Words))
	}
	if len(o.Translations) > 0 {
		q.Set("translations", joinInts(o.Translations))
	}
	if o.Audio > 0 {
		q.Set("audio", strconv.Itoa(o.Audio))
	}
	if len(o.Tafsirs) > 0 {
		q.Set("tafsirs", joinInts(o.Tafsirs))
	}
	if len(o.WordFields) > 0 {
		q.Set("word_fields", strings.Join(o.WordFields, ","))
	}
	if len(o.TranslationFields) > 0 {
		q.Set("translation_fields", strings.Join(o.TranslationFields, ","))
	}
	if len(o.Fields) > 0 {
		q.Set("fields", strings.Join(o.Fields, ","))
	}
	return q
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
