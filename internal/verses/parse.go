package verses

import (
	"regexp"
	"strings"

	"quran-mood-gateway/internal/quran"
)

// MaxVerseKeys caps how many keys one answer may contribute.
const MaxVerseKeys = 10

var (
	verseKeysBlock = regexp.MustCompile(`(?s)<verse-keys>(.*?)</verse-keys>`)
	moodLabelBlock = regexp.MustCompile(`(?s)<mood-label>(.*?)</mood-label>`)
)

// ParseVerseKeys extracts the well-formed keys of the <verse-keys> block in
// their original order. Malformed lines and repeats are dropped.
func ParseVerseKeys(text string) ([]string, error) {
	m := verseKeysBlock.FindStringSubmatch(text)
	if m == nil {
		return nil, ErrNoVersesFound
	}

	var keys []string
	seen := make(map[string]struct{})
	for _, line := range strings.Split(m[1], "\n") {
		key := strings.TrimSpace(line)
		if !quran.ValidKey(key) {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
		if len(keys) == MaxVerseKeys {
			break
		}
	}

	if len(keys) == 0 {
		return nil, ErrNoVersesFound
	}
	return keys, nil
}

// ParseMoodLabel returns the <mood-label> content, or fallback when the block
// is missing or blank.
func ParseMoodLabel(text, fallback string) string {
	m := moodLabelBlock.FindStringSubmatch(text)
	if m == nil {
		return fallback
	}
	label := strings.Join(strings.Fields(m[1]), " ")
	if label == "" {
		return fallback
	}
	return label
}
