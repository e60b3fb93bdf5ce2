package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/BaSui01/ragflow/types"
)

// Config configures the redis-backed result cache.
type Config struct {
	// Redis address.
	Addr string `yaml:"addr" json:"addr"`

	// Password.
	Password string `yaml:"password" json:"password"`

	// Database number.
	DB int `yaml:"db" json:"db"`

	// Default entry TTL. Entries outlive a typical conversation turn, not
	// an hour.
	DefaultTTL time.Duration `yaml:"default_ttl" json:"default_ttl"`

	// Connection pool size.
	PoolSize int `yaml:"pool_size" json:"pool_size"`
}

// DefaultConfig returns the default cache configuration.
func DefaultConfig() Config {
	return Config{
		Addr:       "localhost:6379",
		DB:         0,
		DefaultTTL: 5 * time.Minute,
		PoolSize:   10,
	}
}

// Redis is a result cache backed by a redis key/value store.
type Redis struct {
	client *redis.Client
	config Config
	logger *zap.Logger
}

// NewRedis creates a redis-backed result cache and verifies connectivity.
func NewRedis(config Config, logger *zap.Logger) (*Redis, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
		PoolSize: config.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("result cache initialized",
		zap.String("addr", config.Addr),
		zap.Duration("default_ttl", config.DefaultTTL),
	)

	return &Redis{
		client: client,
		config: config,
		logger: logger.With(zap.String("component", "result_cache")),
	}, nil
}

// Get returns the cached response for key, or (nil, false) on miss. Backend
// failures and undecodable entries degrade to a miss.
func (c *Redis) Get(ctx context.Context, key string) (*types.RAGResponse, bool) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("cache get failed, treating as miss",
			zap.String("key", key), zap.Error(err))
		return nil, false
	}

	var resp types.RAGResponse
	if err := json.Unmarshal([]byte(val), &resp); err != nil {
		c.logger.Warn("cache entry undecodable, treating as miss",
			zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &resp, true
}

// Set stores the response under key with the given TTL (DefaultTTL when
// ttl <= 0). Failures are logged and swallowed.
func (c *Redis) Set(ctx context.Context, key string, resp *types.RAGResponse, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.config.DefaultTTL
	}

	data, err := json.Marshal(resp)
	if err != nil {
		c.logger.Warn("cache set skipped, response not marshallable",
			zap.String("key", key), zap.Error(err))
		return
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.logger.Warn("cache set failed",
			zap.String("key", key), zap.Error(err))
	}
}

// Close releases the redis client.
func (c *Redis) Close() error {
	return c.client.Close()
}
