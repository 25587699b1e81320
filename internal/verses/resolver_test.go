package verses

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quran-mood-gateway/internal/llm"
)

func TestResolverParsesAnswer(t *testing.T) {
	client := &fakeLLM{answer: gratefulAnswer}
	r := NewResolver(client, ResolverConfig{Model: "test-model"})

	res, err := r.Resolve(testContext(t), "i feel so grateful!!")
	require.NoError(t, err)
	assert.Equal(t, "Gratitude", res.Mood)
	assert.Equal(t, []string{"2:152", "94:5"}, res.VerseKeys)

	req := client.lastRequest()
	require.NotNil(t, req)
	assert.Equal(t, "test-model", req.Model)
	assert.InDelta(t, 0.7, req.Temperature, 1e-6)
	assert.Equal(t, 500, req.MaxTokens)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, llm.RoleSystem, req.Messages[0].Role)
	assert.Contains(t, req.Messages[0].Content, "<verse-keys>")
	assert.Contains(t, req.Messages[0].Content, "<mood-label>")
	assert.Equal(t, llm.RoleUser, req.Messages[1].Role)
	assert.Contains(t, req.Messages[1].Content, "i feel so grateful!!")
	assert.NoError(t, req.Validate())
}

func TestResolverFallsBackToInputLabel(t *testing.T) {
	r := NewResolver(&fakeLLM{answer: "<verse-keys>\n13:28\n</verse-keys>"}, ResolverConfig{})

	res, err := r.Resolve(testContext(t), "restless at night")
	require.NoError(t, err)
	assert.Equal(t, "restless at night", res.Mood)
	assert.Equal(t, []string{"13:28"}, res.VerseKeys)
}

func TestResolverMissingCredential(t *testing.T) {
	r := NewResolver(nil, ResolverConfig{})

	_, err := r.Resolve(testContext(t), "calm")
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestResolverProviderFailure(t *testing.T) {
	client := &fakeLLM{err: errors.New("upstream status 429: RESOURCE_EXHAUSTED project quota")}
	r := NewResolver(client, ResolverConfig{})

	_, err := r.Resolve(testContext(t), "anxious")
	require.ErrorIs(t, err, ErrUsageLimit)
	assert.False(t, strings.Contains(PublicMessage(err), "RESOURCE_EXHAUSTED"))
	assert.Equal(t, int32(1), client.calls.Load())
}

func TestResolverNoKeys(t *testing.T) {
	for _, answer := range []string{
		"I cannot help with that.",
		"<mood-label>Unclear</mood-label><verse-keys>\nnone\n</verse-keys>",
	} {
		r := NewResolver(&fakeLLM{answer: answer}, ResolverConfig{})
		_, err := r.Resolve(testContext(t), "asdf qwer")
		assert.ErrorIs(t, err, ErrNoVersesFound)
	}
}
