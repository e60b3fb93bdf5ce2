package retrieval

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/BaSui01/ragflow/cache"
	"github.com/BaSui01/ragflow/metrics"
	"github.com/BaSui01/ragflow/search"
	"github.com/BaSui01/ragflow/tokenizer"
	"github.com/BaSui01/ragflow/types"
)

// ResultCache is the engine's view of the result cache. Implementations
// never fail: backend errors degrade to misses.
type ResultCache interface {
	Get(ctx context.Context, key string) (*types.RAGResponse, bool)
	Set(ctx context.Context, key string, resp *types.RAGResponse, ttl time.Duration)
}

// HistoryProvider supplies recent conversation turns for contextual
// retrieval. Optional; without one, contextual retrieval degrades to
// semantic.
type HistoryProvider interface {
	RecentTurns(ctx context.Context, conversationID string, n int) ([]string, error)
}

// Options configures an Engine. VectorSearch is required; everything else
// has a working default.
type Options struct {
	VectorSearch search.VectorSearch
	Cache        ResultCache
	Metrics      *metrics.Collector
	Tokenizer    tokenizer.Tokenizer
	History      HistoryProvider
	Logger       *zap.Logger

	// SourceTimeout bounds each strategy dispatch so one stalled source
	// degrades to partial results instead of hanging the request.
	SourceTimeout time.Duration

	// CacheTTL is the result cache entry lifetime.
	CacheTTL time.Duration

	// RetryBackoff is the pause before the single internal retry after a
	// total retrieval failure.
	RetryBackoff time.Duration

	// Limiter, when set, throttles dispatches to the search backend.
	Limiter *rate.Limiter
}

// Engine orchestrates one retrieval: validate, consult the cache, dispatch
// to the configured strategy, rank, cache, record metrics.
type Engine struct {
	strategies map[types.Strategy]Strategy
	ranker     *Ranker
	cache      ResultCache
	metrics    *metrics.Collector
	history    HistoryProvider
	limiter    *rate.Limiter
	logger     *zap.Logger
	tracer     trace.Tracer

	sourceTimeout time.Duration
	cacheTTL      time.Duration
	retryBackoff  time.Duration
}

// NewEngine creates an engine over the given collaborators.
func NewEngine(opts Options) (*Engine, error) {
	if opts.VectorSearch == nil {
		return nil, types.NewError(types.ErrValidation, "vector search backend is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	collector := opts.Metrics
	if collector == nil {
		collector = metrics.NewCollector(logger)
	}
	if opts.SourceTimeout <= 0 {
		opts.SourceTimeout = 5 * time.Second
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 100 * time.Millisecond
	}

	analyzer := NewAnalyzer()
	counter := tokenizer.NewSafeCounter(opts.Tokenizer, logger)

	return &Engine{
		strategies:    NewStrategies(opts.VectorSearch, analyzer, logger),
		ranker:        NewRanker(counter, logger),
		cache:         opts.Cache,
		metrics:       collector,
		history:       opts.History,
		limiter:       opts.Limiter,
		logger:        logger.With(zap.String("component", "rag_engine")),
		tracer:        otel.Tracer("github.com/BaSui01/ragflow/retrieval"),
		sourceTimeout: opts.SourceTimeout,
		cacheTTL:      opts.CacheTTL,
		retryBackoff:  opts.RetryBackoff,
	}, nil
}

// Metrics returns the engine's metrics collector.
func (e *Engine) Metrics() *metrics.Collector {
	return e.metrics
}

// Retrieve runs one request under the given config. It fails with a
// VALIDATION error before any I/O when the request is malformed, and with
// a RETRIEVAL error when every source is unreachable (after one internal
// retry).
func (e *Engine) Retrieve(ctx context.Context, req *types.RAGRequest, cfg *types.RAGConfig) (*types.RAGResponse, error) {
	ctx, span := e.tracer.Start(ctx, "rag.retrieve",
		trace.WithAttributes(attribute.String("rag.strategy", string(cfg.Strategy))))
	defer span.End()

	if err := ValidateRequest(req, cfg); err != nil {
		e.metrics.RecordFailure()
		span.RecordError(err)
		return nil, err
	}

	maxResults := cfg.MaxResults
	if req.MaxResults > 0 {
		maxResults = req.MaxResults
	}
	threshold := cfg.SimilarityThreshold
	if req.SimilarityThreshold != nil {
		threshold = *req.SimilarityThreshold
	}
	query := strings.TrimSpace(req.Query)

	key := cache.Key(query, cfg, maxResults, threshold)
	if e.cache != nil {
		if resp, ok := e.cache.Get(ctx, key); ok {
			e.metrics.RecordCacheHit()
			e.metrics.RecordCachedSuccess()
			span.SetAttributes(attribute.Bool("rag.cache_hit", true))

			resp.Cached = true
			resp.CacheHit = true
			return resp, nil
		}
		e.metrics.RecordCacheMiss()
	}

	strategy, ok := e.strategies[cfg.Strategy]
	if !ok {
		err := types.NewError(types.ErrValidation, "unknown strategy: "+string(cfg.Strategy))
		e.metrics.RecordFailure()
		span.RecordError(err)
		return nil, err
	}

	params := Params{
		Threshold: threshold,
		// Overfetch so the ranker has room to diversify.
		Limit:   maxResults * 2,
		History: e.recentTurns(ctx, req.ConversationID),
	}

	retrievalStart := time.Now()
	result, err := e.dispatch(ctx, strategy, query, params)
	if err != nil && types.IsRetrieval(err) && ctx.Err() == nil {
		e.logger.Warn("retrieval failed, retrying once",
			zap.String("strategy", string(cfg.Strategy)), zap.Error(err))
		select {
		case <-ctx.Done():
		case <-time.After(e.retryBackoff):
			result, err = e.dispatch(ctx, strategy, query, params)
		}
	}
	if err != nil {
		e.metrics.RecordFailure()
		span.RecordError(err)
		return nil, err
	}
	retrievalTime := time.Since(retrievalStart)

	processingStart := time.Now()
	ranked := e.ranker.Rank(query, result.Hits, cfg, maxResults)

	contextLength := 0
	for _, r := range ranked {
		contextLength += r.TokenCount
	}

	resp := &types.RAGResponse{
		Query:          query,
		Results:        ranked,
		ConfigUsed:     cfg.ID,
		TotalResults:   len(ranked),
		RetrievalTime:  retrievalTime,
		ProcessingTime: time.Since(processingStart),
		ContextLength:  contextLength,
		SourcesQueried: result.SourcesQueried,
	}

	if e.cache != nil {
		stored := *resp
		e.cache.Set(ctx, key, &stored, e.cacheTTL)
	}

	e.metrics.RecordSuccess(resp.RetrievalTime, resp.ProcessingTime)
	span.SetAttributes(
		attribute.Int("rag.results", len(ranked)),
		attribute.Int("rag.context_length", contextLength),
	)

	e.logger.Debug("retrieval complete",
		zap.String("strategy", string(cfg.Strategy)),
		zap.Int("results", len(ranked)),
		zap.Duration("retrieval_time", resp.RetrievalTime))

	return resp, nil
}

// dispatch runs one strategy call under the source timeout and optional
// rate limit.
func (e *Engine) dispatch(ctx context.Context, strategy Strategy, query string, p Params) (*Result, error) {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, types.NewError(types.ErrTimeout, "rate limit wait aborted").WithCause(err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, e.sourceTimeout)
	defer cancel()
	return strategy.Retrieve(ctx, query, p)
}

// recentTurns fetches conversation history, tolerating provider failure.
func (e *Engine) recentTurns(ctx context.Context, conversationID string) []string {
	if e.history == nil || conversationID == "" {
		return nil
	}
	turns, err := e.history.RecentTurns(ctx, conversationID, contextTurns)
	if err != nil {
		e.logger.Warn("history provider failed, retrieving without context",
			zap.String("conversation_id", conversationID), zap.Error(err))
		return nil
	}
	return turns
}
