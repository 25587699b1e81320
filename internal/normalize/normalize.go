// Package normalize turns raw mood text into the canonical form used as the
// cache key and as the model input.
//
// Pipeline:
//  1. reject empty or over-long input
//  2. drop invalid UTF-8
//  3. strip tag-like substrings (<...>)
//  4. collapse whitespace runs to one space and trim
//  5. lowercase
//  6. cap at MaxLength runes
package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MaxLength is the maximum accepted input length, in characters.
const MaxLength = 200

var (
	ErrEmpty   = errors.New("mood is required")
	ErrTooLong = fmt.Errorf("mood must be at most %d characters", MaxLength)
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// cases.Caser is not safe for concurrent use, so each call builds its own.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// Normalize returns the canonical form of raw. It is pure and idempotent.
func Normalize(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", ErrEmpty
	}
	if utf8.RuneCountInString(raw) > MaxLength {
		return "", ErrTooLong
	}

	s := strings.ToValidUTF8(raw, "")
	s = tagPattern.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), " ")
	s = lower(s)
	s = truncate(s, MaxLength)

	if s == "" {
		return "", ErrEmpty
	}
	return s, nil
}

// truncate cuts s to at most n runes. Lowercasing can grow a string by a few
// runes, so the cap keeps the output valid input for a second pass.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n]))
}
