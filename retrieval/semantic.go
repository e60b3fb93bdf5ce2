package retrieval

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/ragflow/search"
	"github.com/BaSui01/ragflow/types"
)

// SemanticStrategy queries every source concurrently and merges the hits,
// relying on the vector store's similarity ranking. One failing source
// degrades to partial results; all sources failing is a RETRIEVAL error.
type SemanticStrategy struct {
	sources []search.Source
	logger  *zap.Logger
}

// NewSemanticStrategy creates the semantic strategy over the knowledge and
// message sources.
func NewSemanticStrategy(knowledge, messages search.Source, logger *zap.Logger) *SemanticStrategy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SemanticStrategy{
		sources: []search.Source{knowledge, messages},
		logger:  logger.With(zap.String("strategy", "semantic")),
	}
}

func (s *SemanticStrategy) Name() types.Strategy {
	return types.StrategySemantic
}

func (s *SemanticStrategy) Retrieve(ctx context.Context, query string, p Params) (*Result, error) {
	type sourceHits struct {
		name string
		hits []types.RawHit
	}

	var (
		mu        sync.Mutex
		collected []sourceHits
		lastErr   error
	)

	// Independent I/O-bound calls: fan out, join, merge. The shared ctx
	// propagates caller cancellation into every in-flight call.
	g, gctx := errgroup.WithContext(ctx)
	for _, src := range s.sources {
		g.Go(func() error {
			hits, err := src.Search(gctx, query, p.Threshold, p.Limit)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				// Partial failure is recovered locally; remember the cause
				// in case every source fails.
				s.logger.Warn("source failed",
					zap.String("source", src.Name()), zap.Error(err))
				lastErr = err
				return nil
			}
			collected = append(collected, sourceHits{name: src.Name(), hits: hits})
			return nil
		})
	}
	// Errors never escape the goroutines; Wait only joins.
	_ = g.Wait()

	if len(collected) == 0 {
		return nil, types.NewError(types.ErrRetrieval, "all sources failed").
			WithCause(lastErr).
			WithRetryable(true)
	}

	// Merge deterministically regardless of goroutine completion order.
	sort.Slice(collected, func(i, j int) bool { return collected[i].name < collected[j].name })

	result := &Result{}
	for _, sh := range collected {
		result.Hits = append(result.Hits, sh.hits...)
		result.SourcesQueried = append(result.SourcesQueried, sh.name)
	}
	return result, nil
}
