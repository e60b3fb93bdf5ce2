package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/ragflow/types"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *Redis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	config := DefaultConfig()
	config.Addr = mr.Addr()
	config.DefaultTTL = 1 * time.Minute

	c, err := NewRedis(config, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	return mr, c
}

func sampleResponse() *types.RAGResponse {
	return &types.RAGResponse{
		Query:      "test query",
		ConfigUsed: "cfg-1",
		Results: []types.RAGResult{
			{
				Content:         "c1",
				Source:          types.SourceKnowledgeBase,
				SourceType:      types.SourceTypeDocument,
				SourceID:        "d1",
				SimilarityScore: 0.8,
				RelevanceScore:  0.5,
				RankingScore:    0.68,
				TokenCount:      12,
			},
		},
		TotalResults:   1,
		ContextLength:  12,
		SourcesQueried: []string{types.SourceKnowledgeBase},
	}
}

func TestRedis_RoundTrip(t *testing.T) {
	_, c := setupTestRedis(t)
	ctx := context.Background()

	key := Key("test query", &types.RAGConfig{Strategy: types.StrategySemantic, EmbeddingModel: "m"}, 3, 0.7)
	want := sampleResponse()

	c.Set(ctx, key, want, time.Minute)

	got, ok := c.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestRedis_MissOnUnknownKey(t *testing.T) {
	_, c := setupTestRedis(t)

	got, ok := c.Get(context.Background(), "rag:result:unknown")
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestRedis_TTLExpiry(t *testing.T) {
	mr, c := setupTestRedis(t)
	ctx := context.Background()

	c.Set(ctx, "rag:result:ttl", sampleResponse(), 100*time.Millisecond)

	_, ok := c.Get(ctx, "rag:result:ttl")
	require.True(t, ok)

	mr.FastForward(200 * time.Millisecond)

	_, ok = c.Get(ctx, "rag:result:ttl")
	assert.False(t, ok)
}

func TestRedis_DegradesToMissOnBackendFailure(t *testing.T) {
	mr, c := setupTestRedis(t)
	ctx := context.Background()

	c.Set(ctx, "rag:result:k", sampleResponse(), time.Minute)
	mr.Close()

	// Backend gone: get degrades to miss, set is swallowed.
	_, ok := c.Get(ctx, "rag:result:k")
	assert.False(t, ok)
	c.Set(ctx, "rag:result:k2", sampleResponse(), time.Minute)
}

func TestRedis_UndecodableEntryIsMiss(t *testing.T) {
	mr, c := setupTestRedis(t)

	require.NoError(t, mr.Set("rag:result:bad", "not json"))

	_, ok := c.Get(context.Background(), "rag:result:bad")
	assert.False(t, ok)
}

func TestRedis_ConnectFailure(t *testing.T) {
	config := DefaultConfig()
	config.Addr = "localhost:1" // nothing listens here

	c, err := NewRedis(config, zap.NewNop())
	assert.Nil(t, c)
	assert.Error(t, err)
}

func TestMemory_RoundTripAndExpiry(t *testing.T) {
	c := NewMemory(time.Minute)
	ctx := context.Background()

	now := time.Now()
	c.now = func() time.Time { return now }

	c.Set(ctx, "k", sampleResponse(), time.Minute)
	got, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, sampleResponse(), got)
	assert.Equal(t, 1, c.Len())

	// Past TTL the entry is not served and is swept on read.
	now = now.Add(2 * time.Minute)
	_, ok = c.Get(ctx, "k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestKey_Stability(t *testing.T) {
	cfg := types.DefaultRAGConfig()

	k1 := Key("what is ragflow", &cfg, 5, 0.7)
	k2 := Key("what is ragflow", &cfg, 5, 0.7)
	assert.Equal(t, k1, k2)
	assert.Contains(t, k1, "rag:result:")
}

func TestKey_SensitiveToParameters(t *testing.T) {
	cfg := types.DefaultRAGConfig()
	base := Key("what is ragflow", &cfg, 5, 0.7)

	assert.NotEqual(t, base, Key("what is ragflow?", &cfg, 5, 0.7))
	assert.NotEqual(t, base, Key("what is ragflow", &cfg, 3, 0.7))
	assert.NotEqual(t, base, Key("what is ragflow", &cfg, 5, 0.8))

	other := cfg
	other.Strategy = types.StrategyHybrid
	assert.NotEqual(t, base, Key("what is ragflow", &other, 5, 0.7))

	other = cfg
	other.EmbeddingModel = "text-embedding-3-large"
	assert.NotEqual(t, base, Key("what is ragflow", &other, 5, 0.7))
}

func TestKey_InsensitiveToUnrelatedConfigFields(t *testing.T) {
	cfg := types.DefaultRAGConfig()
	base := Key("q", &cfg, 5, 0.7)

	other := cfg
	other.Name = "renamed"
	other.MaxContextLength = 9999
	assert.Equal(t, base, Key("q", &other, 5, 0.7))
}
