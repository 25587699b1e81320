package verses

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVerseKeys(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "drops malformed lines",
			text: "<verse-keys>1:1\nbad\n2:255\n\n</verse-keys>",
			want: []string{"1:1", "2:255"},
		},
		{
			name: "surrounding prose and label",
			text: "Sure!\n<mood-label>\nHope\n</mood-label>\n<verse-keys>\n39:53\n94:5\n</verse-keys>\nThanks",
			want: []string{"39:53", "94:5"},
		},
		{
			name: "crlf and indentation",
			text: "<verse-keys>\r\n  2:286\r\n\t13:28 \r\n</verse-keys>",
			want: []string{"2:286", "13:28"},
		},
		{
			name: "duplicates keep first position",
			text: "<verse-keys>\n2:152\n94:5\n2:152\n</verse-keys>",
			want: []string{"2:152", "94:5"},
		},
		{
			name: "first block wins",
			text: "<verse-keys>1:1</verse-keys><verse-keys>1:2</verse-keys>",
			want: []string{"1:1"},
		},
		{
			name: "inline annotations are not keys",
			text: "<verse-keys>\n2:152 (remembrance)\n- 94:5\n14:7\n</verse-keys>",
			want: []string{"14:7"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVerseKeys(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseVerseKeysNoneFound(t *testing.T) {
	for _, text := range []string{
		"",
		"2:152\n94:5",
		"<verse-keys>\n</verse-keys>",
		"<verse-keys>\nnone\nsurah 2\n</verse-keys>",
		"<verse-keys>\n2:152\n",
	} {
		_, err := ParseVerseKeys(text)
		assert.ErrorIs(t, err, ErrNoVersesFound, "text %q", text)
	}
}

func TestParseVerseKeysCapped(t *testing.T) {
	var lines []string
	for i := 1; i <= 15; i++ {
		lines = append(lines, fmt.Sprintf("2:%d", i))
	}
	got, err := ParseVerseKeys("<verse-keys>\n" + strings.Join(lines, "\n") + "\n</verse-keys>")
	require.NoError(t, err)
	assert.Len(t, got, MaxVerseKeys)
	assert.Equal(t, "2:1", got[0])
	assert.Equal(t, "2:10", got[MaxVerseKeys-1])
}

func TestParseMoodLabel(t *testing.T) {
	assert.Equal(t, "Gratitude", ParseMoodLabel("<mood-label>\nGratitude\n</mood-label>", "fallback"))
	assert.Equal(t, "Seeking Forgiveness", ParseMoodLabel("<mood-label>  Seeking\n  Forgiveness </mood-label>", "fallback"))
	assert.Equal(t, "i feel lost", ParseMoodLabel("<verse-keys>1:1</verse-keys>", "i feel lost"))
	assert.Equal(t, "i feel lost", ParseMoodLabel("<mood-label>\n \n</mood-label>", "i feel lost"))
}
