package retrieval

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/ragflow/tokenizer"
	"github.com/BaSui01/ragflow/types"
)

const (
	// duplicationThreshold is the content similarity above which a
	// candidate is penalized against already-selected results.
	duplicationThreshold = 0.8

	// penaltyWeight scales the diversity discount. RankingDiversity uses
	// the stronger weight.
	penaltyWeight          = 0.3
	diversityPenaltyWeight = 0.5
)

// Ranker turns a merged candidate pool into the final ordered, budgeted
// result list.
type Ranker struct {
	counter *tokenizer.SafeCounter
	logger  *zap.Logger
	now     func() time.Time
}

// NewRanker creates a ranker. counter may be nil (estimator fallback).
func NewRanker(counter *tokenizer.SafeCounter, logger *zap.Logger) *Ranker {
	if counter == nil {
		counter = tokenizer.NewSafeCounter(nil, logger)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ranker{
		counter: counter,
		logger:  logger.With(zap.String("component", "ranker")),
		now:     time.Now,
	}
}

// candidate is a pooled hit with its computed scores.
type candidate struct {
	hit       types.RawHit
	relevance float64
	score     float64
	penalized bool
}

// Rank scores every candidate, applies greedy diversity-penalized
// selection, and truncates to maxResults and the config's token budget.
// Results come back ordered by effective ranking score descending; ties
// break on source id so output is reproducible for caching and tests.
func (r *Ranker) Rank(query string, hits []types.RawHit, cfg *types.RAGConfig, maxResults int) []types.RAGResult {
	if len(hits) == 0 {
		return nil
	}
	if maxResults < 1 {
		maxResults = cfg.MaxResults
	}

	now := r.now()
	pool := make([]*candidate, 0, len(hits))
	for i := range hits {
		hit := hits[i]
		relevance := RelevanceScore(query, hit.Content)
		pool = append(pool, &candidate{
			hit:       hit,
			relevance: relevance,
			score:     r.baseScore(&hit, relevance, cfg.RankingMethod, now),
		})
	}
	sortCandidates(pool)

	weight := penaltyWeight
	if cfg.RankingMethod == types.RankingDiversity {
		weight = diversityPenaltyWeight
	}

	var (
		selected []types.RAGResult
		accepted []string
		tokenSum int
	)

	for len(pool) > 0 {
		if len(selected) >= maxResults {
			break
		}

		cand := pool[0]
		pool = pool[1:]

		// Near-duplicates of already-selected content are discounted once
		// and re-queued, so a diverse lower-raw-score hit can overtake
		// them without the duplicate being rejected outright.
		if maxSim := DiversityPenalty(cand.hit.Content, accepted); maxSim > duplicationThreshold && !cand.penalized {
			cand.score -= weight * maxSim
			cand.penalized = true
			pool = append(pool, cand)
			sortCandidates(pool)
			continue
		}

		tokens := r.counter.Count(cand.hit.Content)
		if tokenSum+tokens > cfg.MaxContextLength {
			// Whole-result admission only: never truncate content to fit.
			break
		}

		tokenSum += tokens
		accepted = append(accepted, cand.hit.Content)
		selected = append(selected, types.RAGResult{
			Content:         cand.hit.Content,
			Source:          cand.hit.Source,
			SourceType:      cand.hit.SourceType,
			SourceID:        cand.hit.SourceID,
			SimilarityScore: cand.hit.SimilarityScore,
			RelevanceScore:  cand.relevance,
			RankingScore:    cand.score,
			TokenCount:      tokens,
		})
	}

	return selected
}

// baseScore combines similarity and relevance, then layers the ranking
// method's extra term on top. The base terms are never replaced, so the
// score stays monotonic in both.
func (r *Ranker) baseScore(hit *types.RawHit, relevance float64, method types.RankingMethod, now time.Time) float64 {
	score := similarityWeight*hit.SimilarityScore + relevanceWeight*relevance

	switch method {
	case types.RankingFreshness:
		score += freshnessWeight * FreshnessScore(hit.CreatedAt, now)
	case types.RankingAuthority:
		score += authorityWeight * AuthorityScore(hit)
	}
	return score
}

// sortCandidates orders by score descending with source id and chunk index
// tiebreaks for deterministic output.
func sortCandidates(pool []*candidate) {
	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].score != pool[j].score {
			return pool[i].score > pool[j].score
		}
		if pool[i].hit.SourceID != pool[j].hit.SourceID {
			return pool[i].hit.SourceID < pool[j].hit.SourceID
		}
		return pool[i].hit.ChunkIndex < pool[j].hit.ChunkIndex
	})
}
