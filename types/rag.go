package types

import (
	"time"
)

// Strategy identifies a retrieval strategy.
type Strategy string

const (
	StrategySemantic   Strategy = "semantic"   // Pure vector similarity search
	StrategyKeyword    Strategy = "keyword"    // Keyword-driven knowledge-base search
	StrategyHybrid     Strategy = "hybrid"     // Semantic + keyword with dedup
	StrategyContextual Strategy = "contextual" // Query augmented from conversation history
	StrategyAdaptive   Strategy = "adaptive"   // Routes to one of the above per query
)

// KnownStrategies lists every strategy the engine can dispatch to.
var KnownStrategies = []Strategy{
	StrategySemantic,
	StrategyKeyword,
	StrategyHybrid,
	StrategyContextual,
	StrategyAdaptive,
}

// RankingMethod selects which score terms are layered on top of the base
// similarity+relevance ranking score.
type RankingMethod string

const (
	RankingRelevance RankingMethod = "relevance" // Base score only
	RankingDiversity RankingMethod = "diversity" // Stronger near-duplicate penalty
	RankingFreshness RankingMethod = "freshness" // Adds an age-decay term
	RankingAuthority RankingMethod = "authority" // Adds a source-tier term
)

// Result source tags.
const (
	SourceKnowledgeBase = "knowledge_base"
	SourceConversation  = "conversation"

	SourceTypeDocument = "document"
	SourceTypeMessage  = "message"
)

// RAGConfig is a named retrieval configuration. Configs are immutable once
// created; changes go through ConfigStore update (replace by id).
type RAGConfig struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	Strategy            Strategy      `json:"strategy"`
	MaxContextLength    int           `json:"max_context_length"`
	MaxResults          int           `json:"max_results"`
	SimilarityThreshold float64       `json:"similarity_threshold"`
	EmbeddingModel      string        `json:"embedding_model"`
	RankingMethod       RankingMethod `json:"ranking_method"`
}

// DefaultRAGConfig returns a config with sensible defaults for ad-hoc use.
func DefaultRAGConfig() RAGConfig {
	return RAGConfig{
		Name:                "default",
		Strategy:            StrategySemantic,
		MaxContextLength:    2000,
		MaxResults:          5,
		SimilarityThreshold: 0.7,
		EmbeddingModel:      "text-embedding-3-small",
		RankingMethod:       RankingRelevance,
	}
}

// Validate checks the config invariants.
func (c *RAGConfig) Validate() error {
	if c.MaxResults < 1 {
		return NewError(ErrValidation, "max_results must be >= 1")
	}
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return NewError(ErrValidation, "similarity_threshold must be in [0, 1]")
	}
	if c.MaxContextLength <= 0 {
		return NewError(ErrValidation, "max_context_length must be > 0")
	}
	known := false
	for _, s := range KnownStrategies {
		if c.Strategy == s {
			known = true
			break
		}
	}
	if !known {
		return NewError(ErrValidation, "unknown strategy: "+string(c.Strategy))
	}
	return nil
}

// RAGRequest is a single retrieval request. ConversationID and UserID are
// optional for ad-hoc queries. MaxResults and SimilarityThreshold override
// the config defaults when set; SimilarityThreshold is a pointer because 0
// is a meaningful threshold.
type RAGRequest struct {
	Query               string   `json:"query"`
	ConversationID      string   `json:"conversation_id,omitempty"`
	UserID              string   `json:"user_id,omitempty"`
	MaxResults          int      `json:"max_results,omitempty"`
	SimilarityThreshold *float64 `json:"similarity_threshold,omitempty"`
}

// RawHit is an unranked candidate produced by a source adapter, before any
// scoring. Metadata is an open map; scoring applies defaults when keys are
// absent.
type RawHit struct {
	Content         string         `json:"content"`
	Source          string         `json:"source"`
	SourceType      string         `json:"source_type"`
	SourceID        string         `json:"source_id"`
	SimilarityScore float64        `json:"similarity_score"`
	ChunkIndex      int            `json:"chunk_index"`
	CreatedAt       time.Time      `json:"created_at"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

// RAGResult is a ranked, selected result.
type RAGResult struct {
	Content         string  `json:"content"`
	Source          string  `json:"source"`
	SourceType      string  `json:"source_type"`
	SourceID        string  `json:"source_id"`
	SimilarityScore float64 `json:"similarity_score"`
	RelevanceScore  float64 `json:"relevance_score"`
	RankingScore    float64 `json:"ranking_score"`
	TokenCount      int     `json:"token_count"`
}

// RAGResponse is the assembled answer for one request. Results are ordered
// by RankingScore descending and ContextLength never exceeds the config's
// MaxContextLength.
type RAGResponse struct {
	Query          string        `json:"query"`
	Results        []RAGResult   `json:"results"`
	ConfigUsed     string        `json:"config_used"`
	TotalResults   int           `json:"total_results"`
	RetrievalTime  time.Duration `json:"retrieval_time"`
	ProcessingTime time.Duration `json:"processing_time"`
	ContextLength  int           `json:"context_length"`
	SourcesQueried []string      `json:"sources_queried"`
	Cached         bool          `json:"cached"`
	CacheHit       bool          `json:"cache_hit"`
}

// RAGMetrics is a point-in-time snapshot of the engine's counters.
type RAGMetrics struct {
	TotalRequests      uint64        `json:"total_requests"`
	SuccessfulRequests uint64        `json:"successful_requests"`
	FailedRequests     uint64        `json:"failed_requests"`
	AvgRetrievalTime   time.Duration `json:"avg_retrieval_time"`
	AvgProcessingTime  time.Duration `json:"avg_processing_time"`
	AvgTotalTime       time.Duration `json:"avg_total_time"`
}
