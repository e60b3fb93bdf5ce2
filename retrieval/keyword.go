package retrieval

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/ragflow/search"
	"github.com/BaSui01/ragflow/types"
)

// KeywordStrategy searches the knowledge base with the query reduced to its
// extracted keywords, sharpening matches on specific terms. Conversation
// messages are not consulted.
type KeywordStrategy struct {
	knowledge search.Source
	analyzer  *Analyzer
	logger    *zap.Logger
}

// NewKeywordStrategy creates the keyword strategy.
func NewKeywordStrategy(knowledge search.Source, analyzer *Analyzer, logger *zap.Logger) *KeywordStrategy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KeywordStrategy{
		knowledge: knowledge,
		analyzer:  analyzer,
		logger:    logger.With(zap.String("strategy", "keyword")),
	}
}

func (s *KeywordStrategy) Name() types.Strategy {
	return types.StrategyKeyword
}

func (s *KeywordStrategy) Retrieve(ctx context.Context, query string, p Params) (*Result, error) {
	effective := query
	if keywords := s.analyzer.Keywords(query); len(keywords) > 0 {
		effective = strings.Join(keywords, " ")
	}

	hits, err := s.knowledge.Search(ctx, effective, p.Threshold, p.Limit)
	if err != nil {
		return nil, types.NewError(types.ErrRetrieval, "all sources failed").
			WithCause(err).
			WithRetryable(true)
	}

	return &Result{
		Hits:           hits,
		SourcesQueried: []string{s.knowledge.Name()},
	}, nil
}
