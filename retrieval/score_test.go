package retrieval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/BaSui01/ragflow/types"
)

func TestRelevanceScore(t *testing.T) {
	// All query terms present.
	assert.Equal(t, 1.0, RelevanceScore("install package", "how to install the package via pip"))
	// Half the query terms present.
	assert.Equal(t, 0.5, RelevanceScore("install docker", "install instructions"))
	// Nothing matches.
	assert.Equal(t, 0.0, RelevanceScore("quantum physics", "cooking with garlic"))
	// Empty query scores zero, not NaN.
	assert.Equal(t, 0.0, RelevanceScore("", "anything"))
	// Case-insensitive.
	assert.Equal(t, 1.0, RelevanceScore("REDIS Cache", "redis cache tuning guide"))
}

func TestRelevanceScore_RepeatedQueryTerms(t *testing.T) {
	// Repeated terms count once; the ratio is over unique terms.
	assert.Equal(t, 1.0, RelevanceScore("cache cache cache", "cache sizing"))
}

func TestFreshnessScore(t *testing.T) {
	now := time.Now()

	assert.InDelta(t, 1.0, FreshnessScore(now, now), 0.001)
	// Future timestamps clamp to 1.
	assert.Equal(t, 1.0, FreshnessScore(now.Add(time.Hour), now))
	// One half-life halves the score.
	assert.InDelta(t, 0.5, FreshnessScore(now.Add(-freshnessHalfLife), now), 0.001)
	// Multi-year-old content bottoms out at the floor.
	assert.Equal(t, freshnessFloor, FreshnessScore(now.AddDate(-5, 0, 0), now))
	// Unknown age scores the floor.
	assert.Equal(t, freshnessFloor, FreshnessScore(time.Time{}, now))
}

func TestFreshnessScore_Monotone(t *testing.T) {
	now := time.Now()
	prev := FreshnessScore(now, now)
	for days := 30; days <= 720; days += 30 {
		score := FreshnessScore(now.AddDate(0, 0, -days), now)
		assert.LessOrEqual(t, score, prev, "freshness must not grow with age (%d days)", days)
		prev = score
	}
}

func TestAuthorityScore(t *testing.T) {
	// Explicit tier wins.
	official := &types.RawHit{
		Source:   types.SourceKnowledgeBase,
		Metadata: map[string]any{"source_tier": "official_documentation"},
	}
	assert.Equal(t, 1.0, AuthorityScore(official))

	// Source tag fallback.
	assert.Equal(t, 0.8, AuthorityScore(&types.RawHit{Source: types.SourceKnowledgeBase}))
	assert.Equal(t, 0.5, AuthorityScore(&types.RawHit{Source: types.SourceConversation}))

	// Missing metadata and unknown sources default to the unknown tier.
	assert.Equal(t, 0.3, AuthorityScore(&types.RawHit{Source: "pastebin"}))
	unknownTier := &types.RawHit{Source: "pastebin", Metadata: map[string]any{"source_tier": "blog"}}
	assert.Equal(t, 0.3, AuthorityScore(unknownTier))
	// Non-string tier values are ignored, not fatal.
	badTier := &types.RawHit{Source: types.SourceKnowledgeBase, Metadata: map[string]any{"source_tier": 42}}
	assert.Equal(t, 0.8, AuthorityScore(badTier))
}

func TestContentSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, ContentSimilarity("install the package", "install the package"))
	// Symmetric.
	a, b := "redis cache tuning", "cache tuning for redis clusters"
	assert.Equal(t, ContentSimilarity(a, b), ContentSimilarity(b, a))
	// Disjoint.
	assert.Equal(t, 0.0, ContentSimilarity("alpha beta", "gamma delta"))
	// Bounded.
	sim := ContentSimilarity(a, b)
	assert.GreaterOrEqual(t, sim, 0.0)
	assert.LessOrEqual(t, sim, 1.0)
	// Empty edge cases.
	assert.Equal(t, 1.0, ContentSimilarity("", ""))
	assert.Equal(t, 0.0, ContentSimilarity("", "something"))
}

func TestDiversityPenalty(t *testing.T) {
	accepted := []string{
		"install the package via pip",
		"restart the server afterwards",
	}

	// Near-duplicate of an accepted result yields a high penalty.
	dup := DiversityPenalty("install the package via pip", accepted)
	assert.Equal(t, 1.0, dup)

	// Unrelated content is barely penalized.
	fresh := DiversityPenalty("quantum entanglement basics", accepted)
	assert.Less(t, fresh, 0.2)

	// Empty accepted set: no penalty.
	assert.Equal(t, 0.0, DiversityPenalty("anything", nil))
}
