package retrieval

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/ragflow/types"
)

const (
	// contextTurns is how many recent conversation turns feed the
	// augmented query.
	contextTurns = 3
	// maxContextTerms caps how many salient history terms are appended.
	maxContextTerms = 8
)

// ContextualStrategy augments the query with salient terms from the recent
// conversation turns, then retrieves semantically. With no history it is
// plain semantic retrieval.
type ContextualStrategy struct {
	semantic Strategy
	analyzer *Analyzer
	logger   *zap.Logger
}

// NewContextualStrategy creates the contextual strategy.
func NewContextualStrategy(semantic Strategy, analyzer *Analyzer, logger *zap.Logger) *ContextualStrategy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContextualStrategy{
		semantic: semantic,
		analyzer: analyzer,
		logger:   logger.With(zap.String("strategy", "contextual")),
	}
}

func (s *ContextualStrategy) Name() types.Strategy {
	return types.StrategyContextual
}

func (s *ContextualStrategy) Retrieve(ctx context.Context, query string, p Params) (*Result, error) {
	augmented := s.augment(query, p.History)
	if augmented != query {
		s.logger.Debug("query augmented from history",
			zap.String("query", query),
			zap.String("augmented", augmented))
	}
	return s.semantic.Retrieve(ctx, augmented, p)
}

// augment appends salient keywords from the last contextTurns history
// entries that are not already present in the query.
func (s *ContextualStrategy) augment(query string, history []string) string {
	if len(history) == 0 {
		return query
	}
	if len(history) > contextTurns {
		history = history[len(history)-contextTurns:]
	}

	queryTerms := make(map[string]struct{})
	for _, term := range tokenizeWords(query) {
		queryTerms[term] = struct{}{}
	}

	var extra []string
	for _, turn := range history {
		for _, kw := range s.analyzer.Keywords(turn) {
			if len(extra) >= maxContextTerms {
				break
			}
			if _, dup := queryTerms[strings.ToLower(kw)]; dup {
				continue
			}
			queryTerms[strings.ToLower(kw)] = struct{}{}
			extra = append(extra, kw)
		}
	}

	if len(extra) == 0 {
		return query
	}
	return query + " " + strings.Join(extra, " ")
}
