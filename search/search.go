package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/BaSui01/ragflow/types"
)

// VectorSearch is the external vector-search backend. Implementations
// perform semantic k-NN search over the "knowledge" and "message"
// collections and return hits at or above the similarity threshold.
type VectorSearch interface {
	SearchKnowledge(ctx context.Context, query string, threshold float64, limit int) ([]types.RawHit, error)
	SearchMessages(ctx context.Context, query string, threshold float64, limit int) ([]types.RawHit, error)
}

// Source is one retrievable content source with normalized output. The
// strategies fan out over Sources and never touch the backend directly.
type Source interface {
	// Name returns the source tag ("knowledge_base" or "conversation").
	Name() string

	// Search returns normalized hits for the query.
	Search(ctx context.Context, query string, threshold float64, limit int) ([]types.RawHit, error)
}

// KnowledgeSource adapts the knowledge collection of a VectorSearch backend.
type KnowledgeSource struct {
	backend VectorSearch
	logger  *zap.Logger
}

// NewKnowledgeSource creates a knowledge-base source adapter.
func NewKnowledgeSource(backend VectorSearch, logger *zap.Logger) *KnowledgeSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KnowledgeSource{
		backend: backend,
		logger:  logger.With(zap.String("component", "source_knowledge")),
	}
}

func (s *KnowledgeSource) Name() string {
	return types.SourceKnowledgeBase
}

func (s *KnowledgeSource) Search(ctx context.Context, query string, threshold float64, limit int) ([]types.RawHit, error) {
	hits, err := s.backend.SearchKnowledge(ctx, query, threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("knowledge search: %w", err)
	}
	return normalize(hits, types.SourceKnowledgeBase, types.SourceTypeDocument), nil
}

// MessageSource adapts the conversation-message collection of a VectorSearch
// backend.
type MessageSource struct {
	backend VectorSearch
	logger  *zap.Logger
}

// NewMessageSource creates a conversation-message source adapter.
func NewMessageSource(backend VectorSearch, logger *zap.Logger) *MessageSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessageSource{
		backend: backend,
		logger:  logger.With(zap.String("component", "source_messages")),
	}
}

func (s *MessageSource) Name() string {
	return types.SourceConversation
}

func (s *MessageSource) Search(ctx context.Context, query string, threshold float64, limit int) ([]types.RawHit, error) {
	hits, err := s.backend.SearchMessages(ctx, query, threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("message search: %w", err)
	}
	return normalize(hits, types.SourceConversation, types.SourceTypeMessage), nil
}

// normalize tags every hit with its origin and clamps similarity scores to
// [0, 1]. Backends disagree on both, and downstream scoring relies on the
// tags being present.
func normalize(hits []types.RawHit, source, sourceType string) []types.RawHit {
	out := make([]types.RawHit, 0, len(hits))
	for _, h := range hits {
		h.Source = source
		if h.SourceType == "" {
			h.SourceType = sourceType
		}
		if h.SimilarityScore < 0 {
			h.SimilarityScore = 0
		} else if h.SimilarityScore > 1 {
			h.SimilarityScore = 1
		}
		out = append(out, h)
	}
	return out
}
