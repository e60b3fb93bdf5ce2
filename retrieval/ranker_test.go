package retrieval

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/ragflow/testutil"
	"github.com/BaSui01/ragflow/types"
)

func rankerConfig() *types.RAGConfig {
	cfg := types.DefaultRAGConfig()
	return &cfg
}

func resultIDs(results []types.RAGResult) []string {
	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.SourceID)
	}
	return ids
}

func TestRanker_EmptyPool(t *testing.T) {
	r := NewRanker(nil, nil)
	assert.Nil(t, r.Rank("anything", nil, rankerConfig(), 5))
}

func TestRanker_OrdersByScoreDescending(t *testing.T) {
	r := NewRanker(nil, nil)
	hits := []types.RawHit{
		testutil.Hit("restart the server afterwards", 0.70, "doc-low"),
		testutil.Hit("install the package via pip", 0.90, "doc-high"),
		testutil.Hit("check the service logs", 0.80, "doc-mid"),
	}

	results := r.Rank("install package", hits, rankerConfig(), 5)

	require.Len(t, results, 3)
	assert.Equal(t, []string{"doc-high", "doc-mid", "doc-low"}, resultIDs(results))
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].RankingScore, results[i].RankingScore)
	}
}

func TestRanker_TruncatesToMaxResults(t *testing.T) {
	r := NewRanker(nil, nil)
	hits := []types.RawHit{
		testutil.Hit("alpha topic overview", 0.9, "doc-1"),
		testutil.Hit("beta topic overview", 0.8, "doc-2"),
		testutil.Hit("gamma topic overview", 0.7, "doc-3"),
		testutil.Hit("delta topic overview", 0.6, "doc-4"),
	}

	results := r.Rank("unrelated", hits, rankerConfig(), 2)

	require.Len(t, results, 2)
	assert.Equal(t, []string{"doc-1", "doc-2"}, resultIDs(results))
}

func TestRanker_ZeroMaxResultsFallsBackToConfig(t *testing.T) {
	r := NewRanker(nil, nil)
	cfg := rankerConfig()
	cfg.MaxResults = 1

	hits := []types.RawHit{
		testutil.Hit("alpha topic overview", 0.9, "doc-1"),
		testutil.Hit("beta topic overview", 0.8, "doc-2"),
	}

	results := r.Rank("unrelated", hits, cfg, 0)
	assert.Len(t, results, 1)
}

func TestRanker_TokenBudget(t *testing.T) {
	r := NewRanker(nil, nil)
	cfg := rankerConfig()
	// Each 40-char ASCII blob estimates to 10 tokens; only two fit.
	cfg.MaxContextLength = 25

	hits := []types.RawHit{
		testutil.Hit(strings.Repeat("a", 40), 0.9, "doc-1"),
		testutil.Hit(strings.Repeat("b", 40), 0.8, "doc-2"),
		testutil.Hit(strings.Repeat("c", 40), 0.7, "doc-3"),
	}

	results := r.Rank("unrelated", hits, cfg, 5)

	require.Len(t, results, 2)
	total := 0
	for _, res := range results {
		total += res.TokenCount
	}
	assert.Equal(t, 20, total)
	assert.LessOrEqual(t, total, cfg.MaxContextLength)
}

func TestRanker_DiversityPenalty(t *testing.T) {
	// doc-b is a near-duplicate of doc-a; doc-c is unrelated but close in
	// raw score. Under the default relevance method the duplicate keeps its
	// slot; under the diversity method the stronger penalty lets doc-c
	// overtake it.
	hits := []types.RawHit{
		testutil.Hit("install the package via pip", 0.90, "doc-a"),
		testutil.Hit("install the package via pip now", 0.85, "doc-b"),
		testutil.Hit("restart the server afterwards", 0.83, "doc-c"),
	}

	r := NewRanker(nil, nil)

	relevance := rankerConfig()
	relevance.RankingMethod = types.RankingRelevance
	results := r.Rank("install package", hits, relevance, 3)
	require.Len(t, results, 3)
	assert.Equal(t, []string{"doc-a", "doc-b", "doc-c"}, resultIDs(results))

	diversity := rankerConfig()
	diversity.RankingMethod = types.RankingDiversity
	results = r.Rank("install package", hits, diversity, 3)
	require.Len(t, results, 3)
	assert.Equal(t, []string{"doc-a", "doc-c", "doc-b"}, resultIDs(results))
}

func TestRanker_PenalizedOnlyOnce(t *testing.T) {
	// Two near-identical hits: the duplicate is discounted and re-queued,
	// then admitted on its second pass instead of looping forever.
	hits := []types.RawHit{
		testutil.Hit("install the package via pip", 0.90, "doc-a"),
		testutil.Hit("install the package via pip today", 0.89, "doc-b"),
	}

	r := NewRanker(nil, nil)
	results := r.Rank("install package", hits, rankerConfig(), 5)

	require.Len(t, results, 2)
	assert.Equal(t, "doc-a", results[0].SourceID)
	assert.Equal(t, "doc-b", results[1].SourceID)
	assert.Less(t, results[1].RankingScore, results[0].RankingScore)
}

func TestRanker_FreshnessMethod(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	r := NewRanker(nil, nil)
	r.now = func() time.Time { return now }

	old := testutil.Hit("release notes for version one", 0.8, "doc-a")
	old.CreatedAt = now.AddDate(-2, 0, 0)
	fresh := testutil.Hit("release notes for version two", 0.8, "doc-b")
	fresh.CreatedAt = now

	hits := []types.RawHit{old, fresh}

	// With the base method the equal scores tie-break on source id.
	results := r.Rank("release notes", hits, rankerConfig(), 2)
	require.Len(t, results, 2)
	assert.Equal(t, []string{"doc-a", "doc-b"}, resultIDs(results))

	cfg := rankerConfig()
	cfg.RankingMethod = types.RankingFreshness
	results = r.Rank("release notes", hits, cfg, 2)
	require.Len(t, results, 2)
	assert.Equal(t, []string{"doc-b", "doc-a"}, resultIDs(results))
}

func TestRanker_AuthorityMethod(t *testing.T) {
	conv := testutil.Hit("we discussed the migration plan", 0.90, "msg-1")
	conv.Source = types.SourceConversation
	kb := testutil.Hit("official migration runbook steps", 0.85, "doc-1")
	kb.Source = types.SourceKnowledgeBase

	hits := []types.RawHit{conv, kb}
	r := NewRanker(nil, nil)

	// Base method: the conversation hit's higher similarity wins.
	results := r.Rank("unrelated", hits, rankerConfig(), 2)
	require.Len(t, results, 2)
	assert.Equal(t, []string{"msg-1", "doc-1"}, resultIDs(results))

	// Authority method: the knowledge-base tier overtakes.
	cfg := rankerConfig()
	cfg.RankingMethod = types.RankingAuthority
	results = r.Rank("unrelated", hits, cfg, 2)
	require.Len(t, results, 2)
	assert.Equal(t, []string{"doc-1", "msg-1"}, resultIDs(results))
}

func TestRanker_DeterministicTiebreak(t *testing.T) {
	// Identical scores in either input order produce the same output.
	a := testutil.Hit("alpha overview", 0.8, "doc-a")
	b := testutil.Hit("beta overview", 0.8, "doc-b")

	r := NewRanker(nil, nil)
	first := r.Rank("unrelated", []types.RawHit{a, b}, rankerConfig(), 2)
	second := r.Rank("unrelated", []types.RawHit{b, a}, rankerConfig(), 2)

	assert.Equal(t, resultIDs(first), resultIDs(second))
	assert.Equal(t, []string{"doc-a", "doc-b"}, resultIDs(first))
}
