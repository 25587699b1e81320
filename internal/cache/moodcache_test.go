package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quran-mood-gateway/internal/metrics"
)

func TestBuildMoodKey(t *testing.T) {
	a := BuildMoodKey("i feel so grateful!!", "v2")
	b := BuildMoodKey("i feel so grateful!!", "v2")
	c := BuildMoodKey("i feel anxious", "v2")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a.Hash, c.Hash)
	assert.Len(t, a.Hash, hashLength)
	assert.Equal(t, "mood:v2:"+a.Hash, a.String())

	parsed, ok := parseMoodKey(a.String())
	require.True(t, ok)
	assert.Equal(t, a, parsed)

	assert.Equal(t, "v1", BuildMoodKey("x", " ").VersionID)
}

func TestMoodCacheRoundTrip(t *testing.T) {
	store := NewMemoryStore(10, time.Minute)
	defer store.Close()

	mc := NewMoodCache(NewLoggingStore(store), time.Hour, "v1")
	ctx := context.Background()

	_, hit, err := mc.Get(ctx, "i feel so grateful!!")
	require.NoError(t, err)
	assert.False(t, hit)

	entry := Entry{VerseKeys: []string{"2:152", "94:5"}, Mood: "Gratitude"}
	require.NoError(t, mc.Set(ctx, "i feel so grateful!!", entry))

	got, hit, err := mc.Get(ctx, "i feel so grateful!!")
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, entry, *got)
}

func TestMoodCacheCorruptEntry(t *testing.T) {
	store := NewMemoryStore(10, time.Minute)
	defer store.Close()

	mc := NewMoodCache(store, time.Hour, "v1")
	ctx := context.Background()
	key := BuildMoodKey("sad", "v1").String()
	require.NoError(t, store.Set(ctx, key, []byte("{not json"), time.Hour))

	_, hit, err := mc.Get(ctx, "sad")
	assert.Error(t, err)
	assert.False(t, hit)
}

func TestMoodCacheVersionIsolation(t *testing.T) {
	store := NewMemoryStore(10, time.Minute)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, NewMoodCache(store, time.Hour, "v1").Set(ctx, "calm", Entry{VerseKeys: []string{"13:28"}, Mood: "Calm"}))

	_, hit, err := NewMoodCache(store, time.Hour, "v2").Get(ctx, "calm")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisStore(client, RedisConfig{Prefix: "qm"})
	ctx := context.Background()

	_, hit, err := store.Get(ctx, "mood:v1:abc")
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, store.Set(ctx, "mood:v1:abc", []byte(`{"mood":"Hope"}`), time.Minute))
	assert.True(t, mr.Exists("qm:mood:v1:abc"))

	got, hit, err := store.Get(ctx, "mood:v1:abc")
	require.NoError(t, err)
	require.True(t, hit)
	assert.JSONEq(t, `{"mood":"Hope"}`, string(got))

	mr.FastForward(2 * time.Minute)
	_, hit, err = store.Get(ctx, "mood:v1:abc")
	require.NoError(t, err)
	assert.False(t, hit)

	// zero ttl is a no-op
	require.NoError(t, store.Set(ctx, "k", []byte("v"), 0))
	assert.False(t, mr.Exists("qm:k"))
}

func TestNewStoreSelectsBackend(t *testing.T) {
	mem := NewStore(Config{Backend: "memory", MaxEntries: 5}, nil)
	_, ok := mem.(*MemoryStore)
	assert.True(t, ok)
	_ = mem.(*MemoryStore).Close()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	_, ok = NewStore(Config{Backend: "redis", Prefix: "p"}, client).(*RedisStore)
	assert.True(t, ok)
}

func TestMoodCachePeekSkipsAccounting(t *testing.T) {
	store := NewMemoryStore(10, time.Minute)
	defer store.Close()

	mc := NewMoodCache(NewLoggingStore(store), time.Hour, "v1")
	ctx := context.Background()
	hits := testutil.ToFloat64(metrics.MoodCacheHitsTotal)
	misses := testutil.ToFloat64(metrics.MoodCacheMissesTotal)

	_, ok, err := mc.Peek(ctx, "hopeful")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, mc.Set(ctx, "hopeful", Entry{VerseKeys: []string{"94:5"}, Mood: "Hope"}))
	entry, ok, err := mc.Peek(ctx, "hopeful")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Hope", entry.Mood)

	assert.Equal(t, hits, testutil.ToFloat64(metrics.MoodCacheHitsTotal))
	assert.Equal(t, misses, testutil.ToFloat64(metrics.MoodCacheMissesTotal))

	// Get still counts
	_, ok, err = mc.Get(ctx, "hopeful")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, hits+1, testutil.ToFloat64(metrics.MoodCacheHitsTotal))
}
