package store

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/BaSui01/ragflow/types"
)

// configRecord is the gorm table mapping for a stored RAGConfig.
type configRecord struct {
	ID                  string `gorm:"primaryKey;size:36"`
	Name                string `gorm:"size:255;index"`
	Description         string
	Strategy            string `gorm:"size:32"`
	MaxContextLength    int
	MaxResults          int
	SimilarityThreshold float64
	EmbeddingModel      string `gorm:"size:255"`
	RankingMethod       string `gorm:"size:32"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (configRecord) TableName() string {
	return "rag_configs"
}

func toRecord(cfg types.RAGConfig) configRecord {
	return configRecord{
		ID:                  cfg.ID,
		Name:                cfg.Name,
		Description:         cfg.Description,
		Strategy:            string(cfg.Strategy),
		MaxContextLength:    cfg.MaxContextLength,
		MaxResults:          cfg.MaxResults,
		SimilarityThreshold: cfg.SimilarityThreshold,
		EmbeddingModel:      cfg.EmbeddingModel,
		RankingMethod:       string(cfg.RankingMethod),
	}
}

func (r configRecord) toConfig() types.RAGConfig {
	return types.RAGConfig{
		ID:                  r.ID,
		Name:                r.Name,
		Description:         r.Description,
		Strategy:            types.Strategy(r.Strategy),
		MaxContextLength:    r.MaxContextLength,
		MaxResults:          r.MaxResults,
		SimilarityThreshold: r.SimilarityThreshold,
		EmbeddingModel:      r.EmbeddingModel,
		RankingMethod:       types.RankingMethod(r.RankingMethod),
	}
}

// Gorm is a persistent Store backed by a gorm database. It satisfies the
// same idempotency contract as Memory: I/O failures on update/delete are
// logged and reported as false.
type Gorm struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGorm creates a gorm-backed config store and migrates its schema.
func NewGorm(db *gorm.DB, logger *zap.Logger) (*Gorm, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := db.AutoMigrate(&configRecord{}); err != nil {
		return nil, fmt.Errorf("failed to auto migrate: %w", err)
	}
	return &Gorm{
		db:     db,
		logger: logger.With(zap.String("component", "config_store")),
	}, nil
}

// OpenSQLite opens a sqlite database for the config store. Use ":memory:"
// for tests.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	return db, nil
}

func (s *Gorm) Create(ctx context.Context, cfg types.RAGConfig) (string, error) {
	cfg.ID = uuid.NewString()
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	record := toRecord(cfg)
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return "", fmt.Errorf("create config: %w", err)
	}

	s.logger.Info("config created",
		zap.String("id", cfg.ID),
		zap.String("name", cfg.Name),
		zap.String("strategy", string(cfg.Strategy)))
	return cfg.ID, nil
}

func (s *Gorm) Get(ctx context.Context, id string) (*types.RAGConfig, bool) {
	var record configRecord
	err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			s.logger.Warn("config get failed", zap.String("id", id), zap.Error(err))
		}
		return nil, false
	}
	cfg := record.toConfig()
	return &cfg, true
}

func (s *Gorm) Update(ctx context.Context, id string, cfg types.RAGConfig) bool {
	cfg.ID = id
	if err := cfg.Validate(); err != nil {
		s.logger.Warn("config update rejected", zap.String("id", id), zap.Error(err))
		return false
	}

	record := toRecord(cfg)
	res := s.db.WithContext(ctx).Model(&configRecord{}).Where("id = ?", id).Updates(map[string]any{
		"name":                 record.Name,
		"description":          record.Description,
		"strategy":             record.Strategy,
		"max_context_length":   record.MaxContextLength,
		"max_results":          record.MaxResults,
		"similarity_threshold": record.SimilarityThreshold,
		"embedding_model":      record.EmbeddingModel,
		"ranking_method":       record.RankingMethod,
	})
	if res.Error != nil {
		s.logger.Warn("config update failed", zap.String("id", id), zap.Error(res.Error))
		return false
	}
	return res.RowsAffected > 0
}

func (s *Gorm) Delete(ctx context.Context, id string) bool {
	res := s.db.WithContext(ctx).Delete(&configRecord{}, "id = ?", id)
	if res.Error != nil {
		s.logger.Warn("config delete failed", zap.String("id", id), zap.Error(res.Error))
		return false
	}
	return res.RowsAffected > 0
}

func (s *Gorm) List(ctx context.Context) []types.RAGConfig {
	var records []configRecord
	if err := s.db.WithContext(ctx).Order("id").Find(&records).Error; err != nil {
		s.logger.Warn("config list failed", zap.Error(err))
		return nil
	}

	out := make([]types.RAGConfig, 0, len(records))
	for _, r := range records {
		out = append(out, r.toConfig())
	}
	return out
}
