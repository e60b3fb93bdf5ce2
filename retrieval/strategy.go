package retrieval

import (
	"context"

	"go.uber.org/zap"

	"github.com/BaSui01/ragflow/search"
	"github.com/BaSui01/ragflow/types"
)

// Params carries the resolved retrieval parameters for one strategy call.
type Params struct {
	// Threshold is the effective similarity threshold.
	Threshold float64
	// Limit is the per-source hit limit.
	Limit int
	// History holds the most recent conversation turns, newest last. Empty
	// when the request has no conversation or no provider is wired.
	History []string
}

// Result is a strategy's candidate pool plus the sources that actually
// answered. Sources that failed are excluded from SourcesQueried.
type Result struct {
	Hits           []types.RawHit
	SourcesQueried []string
}

// Strategy turns a query (plus optional conversation history) into a
// candidate pool. Implementations must tolerate partial source failure and
// return a RETRIEVAL error only when no source answered.
type Strategy interface {
	Name() types.Strategy
	Retrieve(ctx context.Context, query string, p Params) (*Result, error)
}

// NewStrategies builds the strategy lookup table over the given backend.
// Dispatch is by config strategy value; there is no dynamic registration.
func NewStrategies(backend search.VectorSearch, analyzer *Analyzer, logger *zap.Logger) map[types.Strategy]Strategy {
	if logger == nil {
		logger = zap.NewNop()
	}

	knowledge := search.NewKnowledgeSource(backend, logger)
	messages := search.NewMessageSource(backend, logger)

	semantic := NewSemanticStrategy(knowledge, messages, logger)
	keyword := NewKeywordStrategy(knowledge, analyzer, logger)
	hybrid := NewHybridStrategy(semantic, keyword, logger)
	contextual := NewContextualStrategy(semantic, analyzer, logger)
	adaptive := NewAdaptiveStrategy(analyzer, semantic, contextual, hybrid, logger)

	return map[types.Strategy]Strategy{
		types.StrategySemantic:   semantic,
		types.StrategyKeyword:    keyword,
		types.StrategyHybrid:     hybrid,
		types.StrategyContextual: contextual,
		types.StrategyAdaptive:   adaptive,
	}
}
