package retrieval

import (
	"context"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/ragflow/types"
)

// dedupThreshold is the content similarity above which two hits are
// considered the same passage.
const dedupThreshold = 0.9

// HybridStrategy runs semantic and keyword retrieval concurrently,
// concatenates their pools, and collapses near-duplicate content, keeping
// the hit with the higher similarity score.
type HybridStrategy struct {
	semantic Strategy
	keyword  Strategy
	logger   *zap.Logger
}

// NewHybridStrategy creates the hybrid strategy.
func NewHybridStrategy(semantic, keyword Strategy, logger *zap.Logger) *HybridStrategy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HybridStrategy{
		semantic: semantic,
		keyword:  keyword,
		logger:   logger.With(zap.String("strategy", "hybrid")),
	}
}

func (s *HybridStrategy) Name() types.Strategy {
	return types.StrategyHybrid
}

func (s *HybridStrategy) Retrieve(ctx context.Context, query string, p Params) (*Result, error) {
	var semanticRes, keywordRes *Result
	var semanticErr, keywordErr error

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		semanticRes, semanticErr = s.semantic.Retrieve(gctx, query, p)
		return nil
	})
	g.Go(func() error {
		keywordRes, keywordErr = s.keyword.Retrieve(gctx, query, p)
		return nil
	})
	_ = g.Wait()

	if semanticErr != nil && keywordErr != nil {
		return nil, types.NewError(types.ErrRetrieval, "all sources failed").
			WithCause(semanticErr).
			WithRetryable(true)
	}
	if semanticErr != nil {
		s.logger.Warn("semantic leg failed, keyword results only", zap.Error(semanticErr))
	}
	if keywordErr != nil {
		s.logger.Warn("keyword leg failed, semantic results only", zap.Error(keywordErr))
	}

	var pool []types.RawHit
	sources := make(map[string]struct{})
	for _, res := range []*Result{semanticRes, keywordRes} {
		if res == nil {
			continue
		}
		pool = append(pool, res.Hits...)
		for _, src := range res.SourcesQueried {
			sources[src] = struct{}{}
		}
	}

	result := &Result{Hits: dedupByContent(pool)}
	for src := range sources {
		result.SourcesQueried = append(result.SourcesQueried, src)
	}
	sort.Strings(result.SourcesQueried)
	return result, nil
}

// dedupByContent collapses hits whose contents are near-duplicates
// (similarity >= dedupThreshold), keeping the higher-scored one. Quadratic
// over the pool, which is bounded by a few source limits.
func dedupByContent(hits []types.RawHit) []types.RawHit {
	var kept []types.RawHit
	for _, hit := range hits {
		replaced := false
		duplicate := false
		for i := range kept {
			if ContentSimilarity(hit.Content, kept[i].Content) >= dedupThreshold {
				duplicate = true
				if hit.SimilarityScore > kept[i].SimilarityScore {
					kept[i] = hit
					replaced = true
				}
				break
			}
		}
		if !duplicate && !replaced {
			kept = append(kept, hit)
		}
	}
	return kept
}
