package config

import "time"

// DefaultConfig returns the default configuration. Every section works out
// of the box without external services: in-memory cache, in-memory config
// store, JSON logs to stdout.
func DefaultConfig() *Config {
	return &Config{
		Engine:    DefaultEngineConfig(),
		Cache:     DefaultCacheConfig(),
		Redis:     DefaultRedisConfig(),
		Database:  DefaultDatabaseConfig(),
		Log:       DefaultLogConfig(),
		Telemetry: DefaultTelemetryConfig(),
	}
}

// DefaultEngineConfig returns the default engine tuning.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		SourceTimeout:  5 * time.Second,
		CacheTTL:       5 * time.Minute,
		RetryBackoff:   100 * time.Millisecond,
		RateLimitRPS:   0,
		RateLimitBurst: 0,
		TokenizerModel: "text-embedding-3-small",
	}
}

// DefaultCacheConfig returns the default cache selection.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Backend: "memory",
	}
}

// DefaultRedisConfig returns the default redis settings.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:     "localhost:6379",
		Password: "",
		DB:       0,
		PoolSize: 10,
	}
}

// DefaultDatabaseConfig returns the default config store settings.
func DefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Driver: "memory",
		Path:   "ragflow.db",
	}
}

// DefaultLogConfig returns the default logging settings.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{"stdout"},
		EnableCaller:     true,
		EnableStacktrace: false,
	}
}

// DefaultTelemetryConfig returns the default telemetry settings.
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:          false,
		MetricsNamespace: "ragflow",
		ServiceName:      "ragflow",
	}
}
