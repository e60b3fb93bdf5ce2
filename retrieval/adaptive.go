package retrieval

import (
	"context"

	"go.uber.org/zap"

	"github.com/BaSui01/ragflow/types"
)

// AdaptiveStrategy is a pure routing layer: it classifies the query and
// delegates to semantic, contextual, or hybrid retrieval. It owns no
// scoring logic.
type AdaptiveStrategy struct {
	analyzer   *Analyzer
	semantic   Strategy
	contextual Strategy
	hybrid     Strategy
	logger     *zap.Logger
}

// NewAdaptiveStrategy creates the adaptive router.
func NewAdaptiveStrategy(analyzer *Analyzer, semantic, contextual, hybrid Strategy, logger *zap.Logger) *AdaptiveStrategy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdaptiveStrategy{
		analyzer:   analyzer,
		semantic:   semantic,
		contextual: contextual,
		hybrid:     hybrid,
		logger:     logger.With(zap.String("strategy", "adaptive")),
	}
}

func (s *AdaptiveStrategy) Name() types.Strategy {
	return types.StrategyAdaptive
}

// Route returns the strategy the query would be delegated to.
func (s *AdaptiveStrategy) Route(query string) types.Strategy {
	switch s.analyzer.Classify(query) {
	case QueryTechnical:
		return types.StrategySemantic
	case QueryConversational:
		return types.StrategyContextual
	default:
		return types.StrategyHybrid
	}
}

func (s *AdaptiveStrategy) Retrieve(ctx context.Context, query string, p Params) (*Result, error) {
	target := s.Route(query)
	s.logger.Debug("adaptive routing decision",
		zap.String("query", query),
		zap.String("target", string(target)))

	switch target {
	case types.StrategySemantic:
		return s.semantic.Retrieve(ctx, query, p)
	case types.StrategyContextual:
		return s.contextual.Retrieve(ctx, query, p)
	default:
		return s.hybrid.Retrieve(ctx, query, p)
	}
}
