package retrieval

import (
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/BaSui01/ragflow/types"
)

// Score weights. The base ranking score always combines similarity and
// relevance; the ranking method layers extra terms on top (it never
// replaces the base).
const (
	similarityWeight = 0.6
	relevanceWeight  = 0.4
	freshnessWeight  = 0.2
	authorityWeight  = 0.2

	// freshnessHalfLife controls the exponential age decay.
	freshnessHalfLife = 180 * 24 * time.Hour
	// freshnessFloor keeps multi-year-old content scorable.
	freshnessFloor = 0.1
)

// authorityTiers maps a source tier to its authority score. Hits carry the
// tier in metadata under "source_tier"; absent or unknown tiers fall back
// to the source tag itself, then to the unknown tier.
var authorityTiers = map[string]float64{
	"official_documentation":  1.0,
	types.SourceKnowledgeBase: 0.8,
	"verified_answer":         0.7,
	types.SourceConversation:  0.5,
	"unknown":                 0.3,
}

// RelevanceScore returns the fraction of query terms present in content,
// bounded to [0, 1]. Terms are normalized word tokens.
func RelevanceScore(query, content string) float64 {
	queryTerms := tokenizeWords(query)
	if len(queryTerms) == 0 {
		return 0
	}

	contentTerms := make(map[string]struct{})
	for _, term := range tokenizeWords(content) {
		contentTerms[term] = struct{}{}
	}

	matched := 0
	seen := make(map[string]struct{}, len(queryTerms))
	unique := 0
	for _, term := range queryTerms {
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		unique++
		if _, ok := contentTerms[term]; ok {
			matched++
		}
	}

	return float64(matched) / float64(unique)
}

// FreshnessScore returns an exponential-decay score of the hit's age:
// ~1 for now, halving every freshnessHalfLife, never below freshnessFloor.
// A zero createdAt is treated as unknown age and scores the floor.
func FreshnessScore(createdAt, now time.Time) float64 {
	if createdAt.IsZero() {
		return freshnessFloor
	}
	age := now.Sub(createdAt)
	if age <= 0 {
		return 1.0
	}

	score := math.Exp2(-float64(age) / float64(freshnessHalfLife))
	if score < freshnessFloor {
		return freshnessFloor
	}
	return score
}

// AuthorityScore returns the tier score for a hit. An explicit
// "source_tier" metadata entry wins; otherwise the source tag decides;
// anything unrecognized scores the unknown tier.
func AuthorityScore(hit *types.RawHit) float64 {
	if hit.Metadata != nil {
		if tier, ok := hit.Metadata["source_tier"].(string); ok {
			if score, ok := authorityTiers[tier]; ok {
				return score
			}
		}
	}
	if score, ok := authorityTiers[hit.Source]; ok {
		return score
	}
	return authorityTiers["unknown"]
}

// ContentSimilarity is a symmetric Jaccard similarity over normalized word
// tokens, in [0, 1]. Two empty texts are identical; one empty text matches
// nothing.
func ContentSimilarity(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)

	if len(setA) == 0 && len(setB) == 0 {
		return 1.0
	}
	if len(setA) == 0 || len(setB) == 0 {
		return 0.0
	}

	intersection := 0
	for term := range setA {
		if _, ok := setB[term]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

// DiversityPenalty returns the maximum content similarity between the
// candidate and any already-accepted content, in [0, 1].
func DiversityPenalty(content string, accepted []string) float64 {
	maxSim := 0.0
	for _, acc := range accepted {
		if sim := ContentSimilarity(content, acc); sim > maxSim {
			maxSim = sim
		}
	}
	return maxSim
}

// tokenizeWords lowercases the text and splits it into alphanumeric word
// tokens.
func tokenizeWords(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, term := range tokenizeWords(text) {
		set[term] = struct{}{}
	}
	return set
}
