package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BaSui01/ragflow/types"
)

// Memory is the in-memory Store. Writes take the write lock; reads share
// the read lock. No lock is ever held across I/O because there is none.
type Memory struct {
	mu      sync.RWMutex
	configs map[string]types.RAGConfig
	logger  *zap.Logger
}

// NewMemory creates an empty in-memory config store.
func NewMemory(logger *zap.Logger) *Memory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Memory{
		configs: make(map[string]types.RAGConfig),
		logger:  logger.With(zap.String("component", "config_store")),
	}
}

func (s *Memory) Create(_ context.Context, cfg types.RAGConfig) (string, error) {
	cfg.ID = uuid.NewString()
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	s.mu.Lock()
	s.configs[cfg.ID] = cfg
	s.mu.Unlock()

	s.logger.Info("config created",
		zap.String("id", cfg.ID),
		zap.String("name", cfg.Name),
		zap.String("strategy", string(cfg.Strategy)))
	return cfg.ID, nil
}

func (s *Memory) Get(_ context.Context, id string) (*types.RAGConfig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg, ok := s.configs[id]
	if !ok {
		return nil, false
	}
	return &cfg, true
}

func (s *Memory) Update(_ context.Context, id string, cfg types.RAGConfig) bool {
	cfg.ID = id
	if err := cfg.Validate(); err != nil {
		s.logger.Warn("config update rejected", zap.String("id", id), zap.Error(err))
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.configs[id]; !ok {
		return false
	}
	s.configs[id] = cfg
	return true
}

func (s *Memory) Delete(_ context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.configs[id]; !ok {
		return false
	}
	delete(s.configs, id)
	return true
}

func (s *Memory) List(_ context.Context) []types.RAGConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.RAGConfig, 0, len(s.configs))
	for _, cfg := range s.configs {
		out = append(out, cfg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
