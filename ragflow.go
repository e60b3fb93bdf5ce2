// Package ragflow is the top-level entry point. It wires the retrieval
// engine, config store, result cache, tokenizer, and metrics into one
// Service with minimal boilerplate.
//
// Usage:
//
//	import "github.com/BaSui01/ragflow"
//
//	svc, err := ragflow.New(ragflow.WithVectorSearch(backend))
//	resp, err := svc.Retrieve(ctx, &types.RAGRequest{Query: "..."}, "")
//
// Every collaborator except the vector search backend has a working
// default: in-memory cache, in-memory config store, tiktoken counting, and
// a no-op logger.
package ragflow

import (
	"context"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/BaSui01/ragflow/cache"
	"github.com/BaSui01/ragflow/config"
	"github.com/BaSui01/ragflow/metrics"
	"github.com/BaSui01/ragflow/retrieval"
	"github.com/BaSui01/ragflow/search"
	"github.com/BaSui01/ragflow/store"
	"github.com/BaSui01/ragflow/tokenizer"
	"github.com/BaSui01/ragflow/types"
)

// Option configures the Service created by [New].
type Option func(*options)

type options struct {
	backend    search.VectorSearch
	cache      retrieval.ResultCache
	store      store.Store
	history    retrieval.HistoryProvider
	tokenizer  tokenizer.Tokenizer
	logger     *zap.Logger
	config     *config.Config
	registerer prometheus.Registerer
}

// WithVectorSearch sets the vector search backend. Required.
func WithVectorSearch(backend search.VectorSearch) Option {
	return func(o *options) { o.backend = backend }
}

// WithConfig sets the process configuration. Defaults to
// [config.DefaultConfig].
func WithConfig(cfg *config.Config) Option {
	return func(o *options) { o.config = cfg }
}

// WithResultCache overrides the result cache chosen by the configuration.
func WithResultCache(c retrieval.ResultCache) Option {
	return func(o *options) { o.cache = c }
}

// WithConfigStore overrides the config store chosen by the configuration.
func WithConfigStore(s store.Store) Option {
	return func(o *options) { o.store = s }
}

// WithHistory sets the conversation history provider used by contextual
// retrieval.
func WithHistory(h retrieval.HistoryProvider) Option {
	return func(o *options) { o.history = h }
}

// WithTokenizer overrides the token counter used for context budgeting.
func WithTokenizer(t tokenizer.Tokenizer) Option {
	return func(o *options) { o.tokenizer = t }
}

// WithLogger sets a custom zap logger. Defaults to the configuration's log
// section, or a no-op logger when no configuration is given.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithPrometheus registers engine metrics on the given registerer,
// regardless of the telemetry.enabled setting.
func WithPrometheus(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// Service bundles the retrieval engine with config management.
type Service struct {
	engine   *retrieval.Engine
	store    store.Store
	cache    retrieval.ResultCache
	logger   *zap.Logger
	fallback types.RAGConfig
}

// New creates a Service. At minimum a vector search backend must be set via
// [WithVectorSearch].
func New(opts ...Option) (*Service, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.backend == nil {
		return nil, types.NewError(types.ErrValidation, "vector search backend is required")
	}

	cfg := o.config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, types.NewError(types.ErrValidation, "invalid configuration").WithCause(err)
	}

	logger := o.logger
	if logger == nil {
		if o.config != nil {
			logger = config.NewLogger(cfg.Log)
		} else {
			logger = zap.NewNop()
		}
	}

	configStore := o.store
	if configStore == nil {
		var err error
		configStore, err = newConfigStore(cfg, logger)
		if err != nil {
			return nil, err
		}
	}

	resultCache := o.cache
	if resultCache == nil {
		resultCache = newResultCache(cfg, logger)
	}

	counter := o.tokenizer
	if counter == nil {
		counter = tokenizer.NewTiktoken(cfg.Engine.TokenizerModel)
	}

	collector := metrics.NewCollector(logger)
	if o.registerer != nil {
		collector.WithPrometheus(cfg.Telemetry.MetricsNamespace, o.registerer)
	} else if cfg.Telemetry.Enabled {
		collector.WithPrometheus(cfg.Telemetry.MetricsNamespace, prometheus.DefaultRegisterer)
	}

	var limiter *rate.Limiter
	if cfg.Engine.RateLimitRPS > 0 {
		burst := cfg.Engine.RateLimitBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.Engine.RateLimitRPS), burst)
	}

	engine, err := retrieval.NewEngine(retrieval.Options{
		VectorSearch:  o.backend,
		Cache:         resultCache,
		Metrics:       collector,
		Tokenizer:     counter,
		History:       o.history,
		Logger:        logger,
		SourceTimeout: cfg.Engine.SourceTimeout,
		CacheTTL:      cfg.Engine.CacheTTL,
		RetryBackoff:  cfg.Engine.RetryBackoff,
		Limiter:       limiter,
	})
	if err != nil {
		return nil, err
	}

	return &Service{
		engine:   engine,
		store:    configStore,
		cache:    resultCache,
		logger:   logger.With(zap.String("component", "ragflow")),
		fallback: types.DefaultRAGConfig(),
	}, nil
}

// newConfigStore builds the config store selected by the configuration.
func newConfigStore(cfg *config.Config, logger *zap.Logger) (store.Store, error) {
	switch cfg.Database.Driver {
	case "sqlite":
		db, err := store.OpenSQLite(cfg.Database.Path)
		if err != nil {
			return nil, types.NewError(types.ErrValidation, "open config database").WithCause(err)
		}
		return store.NewGorm(db, logger)
	default:
		return store.NewMemory(logger), nil
	}
}

// newResultCache builds the result cache selected by the configuration. An
// unreachable redis degrades to the in-memory cache so the engine stays up.
func newResultCache(cfg *config.Config, logger *zap.Logger) retrieval.ResultCache {
	if cfg.Cache.Backend == "redis" {
		redisCache, err := cache.NewRedis(cache.Config{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			DefaultTTL: cfg.Engine.CacheTTL,
			PoolSize:   cfg.Redis.PoolSize,
		}, logger)
		if err == nil {
			return redisCache
		}
		logger.Warn("redis cache unavailable, falling back to memory", zap.Error(err))
	}
	return cache.NewMemory(cfg.Engine.CacheTTL)
}

// Retrieve runs one retrieval request. configID selects a stored config; an
// empty id uses the built-in default config.
func (s *Service) Retrieve(ctx context.Context, req *types.RAGRequest, configID string) (*types.RAGResponse, error) {
	cfg := s.fallback
	if configID != "" {
		stored, ok := s.store.Get(ctx, configID)
		if !ok {
			return nil, types.NewError(types.ErrConfigNotFound, "config not found: "+configID)
		}
		cfg = *stored
	}
	return s.engine.Retrieve(ctx, req, &cfg)
}

// CreateConfig validates and stores a new retrieval config, returning its
// assigned id.
func (s *Service) CreateConfig(ctx context.Context, cfg types.RAGConfig) (string, error) {
	return s.store.Create(ctx, cfg)
}

// GetConfig returns the stored config for id.
func (s *Service) GetConfig(ctx context.Context, id string) (*types.RAGConfig, error) {
	cfg, ok := s.store.Get(ctx, id)
	if !ok {
		return nil, types.NewError(types.ErrConfigNotFound, "config not found: "+id)
	}
	return cfg, nil
}

// UpdateConfig replaces the config stored under id.
func (s *Service) UpdateConfig(ctx context.Context, id string, cfg types.RAGConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if !s.store.Update(ctx, id, cfg) {
		return types.NewError(types.ErrConfigNotFound, "config not found: "+id)
	}
	return nil
}

// DeleteConfig removes the config stored under id.
func (s *Service) DeleteConfig(ctx context.Context, id string) error {
	if !s.store.Delete(ctx, id) {
		return types.NewError(types.ErrConfigNotFound, "config not found: "+id)
	}
	return nil
}

// ListConfigs returns all stored configs ordered by id.
func (s *Service) ListConfigs(ctx context.Context) []types.RAGConfig {
	return s.store.List(ctx)
}

// Metrics returns a snapshot of the engine counters.
func (s *Service) Metrics() types.RAGMetrics {
	return s.engine.Metrics().Snapshot()
}

// Close releases backend connections held by the result cache.
func (s *Service) Close() error {
	if closer, ok := s.cache.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
