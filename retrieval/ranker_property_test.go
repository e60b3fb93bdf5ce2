package retrieval

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"pgregory.net/rapid"

	"github.com/BaSui01/ragflow/testutil"
	"github.com/BaSui01/ragflow/types"
)

// Property: the ranking score is strictly monotonic in similarity. For two
// otherwise-identical hits, the one with higher similarity always scores
// higher, whatever the ranking method.
func TestProperty_ScoreMonotonicInSimilarity(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	methods := []types.RankingMethod{
		types.RankingRelevance,
		types.RankingDiversity,
		types.RankingFreshness,
		types.RankingAuthority,
	}

	r := NewRanker(nil, nil)
	now := time.Now()

	properties := gopter.NewProperties(parameters)
	properties.Property("higher similarity never scores lower", prop.ForAll(
		func(simLow, delta float64, methodIdx int) bool {
			method := methods[methodIdx]

			low := testutil.Hit("shared candidate content", simLow, "doc-1")
			high := testutil.Hit("shared candidate content", simLow+delta, "doc-1")
			high.CreatedAt = low.CreatedAt

			relevance := RelevanceScore("some query", low.Content)
			return r.baseScore(&high, relevance, method, now) > r.baseScore(&low, relevance, method, now)
		},
		gen.Float64Range(0, 0.5),
		gen.Float64Range(0.01, 0.5),
		gen.IntRange(0, len(methods)-1),
	))

	properties.TestingRun(t)
}

// Property: selection never exceeds the result count cap or the token
// budget, and the output stays ordered by effective ranking score.
func TestProperty_RankRespectsLimits(t *testing.T) {
	words := []string{
		"install", "package", "server", "restart", "cache", "index",
		"query", "vector", "token", "budget", "config", "metrics",
	}

	rapid.Check(t, func(rt *rapid.T) {
		r := NewRanker(nil, nil)

		cfg := rankerConfig()
		cfg.MaxContextLength = rapid.IntRange(5, 200).Draw(rt, "maxContextLength")
		cfg.RankingMethod = types.RankingMethod(rapid.SampledFrom([]string{
			string(types.RankingRelevance),
			string(types.RankingDiversity),
			string(types.RankingFreshness),
			string(types.RankingAuthority),
		}).Draw(rt, "method"))
		maxResults := rapid.IntRange(1, 10).Draw(rt, "maxResults")

		poolSize := rapid.IntRange(0, 12).Draw(rt, "poolSize")
		hits := make([]types.RawHit, 0, poolSize)
		for i := 0; i < poolSize; i++ {
			wordCount := rapid.IntRange(2, 6).Draw(rt, fmt.Sprintf("wordCount%d", i))
			parts := make([]string, 0, wordCount)
			for w := 0; w < wordCount; w++ {
				parts = append(parts, rapid.SampledFrom(words).Draw(rt, fmt.Sprintf("word%d_%d", i, w)))
			}
			sim := rapid.Float64Range(0, 1).Draw(rt, fmt.Sprintf("sim%d", i))
			hits = append(hits, testutil.Hit(strings.Join(parts, " "), sim, fmt.Sprintf("doc-%d", i)))
		}

		query := rapid.SampledFrom(words).Draw(rt, "query")
		results := r.Rank(query, hits, cfg, maxResults)

		if len(results) > maxResults {
			rt.Fatalf("selected %d results, cap is %d", len(results), maxResults)
		}

		contents := make(map[string]struct{}, len(hits))
		for _, h := range hits {
			contents[h.Content] = struct{}{}
		}

		total := 0
		for i, res := range results {
			total += res.TokenCount
			if _, ok := contents[res.Content]; !ok {
				rt.Fatalf("result %q not drawn from the candidate pool", res.Content)
			}
			if i > 0 && results[i-1].RankingScore < res.RankingScore {
				rt.Fatalf("results out of order at %d: %f < %f", i, results[i-1].RankingScore, res.RankingScore)
			}
		}
		if total > cfg.MaxContextLength {
			rt.Fatalf("context length %d exceeds budget %d", total, cfg.MaxContextLength)
		}
	})
}
