// =============================================================================
// 📦 memcurator 默认配置
// =============================================================================
// 提供所有配置项的合理默认值
// =============================================================================
package config

import "time"

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Server:    DefaultServerConfig(),
		Filter:    DefaultFilterSourceConfig(),
		Triggers:  DefaultTriggersConfig(),
		Anchor:    DefaultAnchorConfig(),
		Curator:   DefaultCuratorConfig(),
		Redis:     DefaultRedisConfig(),
		Database:  DefaultDatabaseConfig(),
		Indexing:  DefaultIndexingConfig(),
		Tokenizer: DefaultTokenizerConfig(),
		Metrics:   DefaultMetricsConfig(),
		Log:       DefaultLogConfig(),
		Telemetry: DefaultTelemetryConfig(),
	}
}

// DefaultServerConfig 返回默认服务器配置
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:            ":8080",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 15 * time.Second,
		MaxBodyBytes:    10 << 20,
		RateLimitRPS:    0,
		RateLimitBurst:  20,
	}
}

// DefaultFilterSourceConfig 返回默认过滤配置来源
func DefaultFilterSourceConfig() FilterSourceConfig {
	return FilterSourceConfig{
		ConfigPath:    "",
		WatchInterval: 0,
	}
}

// DefaultTriggersConfig 返回默认触发短语配置
func DefaultTriggersConfig() TriggersConfig {
	return TriggersConfig{
		MinPhrases: 8,
		MaxPhrases: 25,
	}
}

// DefaultAnchorConfig 返回默认锚点配置
func DefaultAnchorConfig() AnchorConfig {
	return AnchorConfig{DefaultCategory: "summary"}
}

// DefaultCuratorConfig 返回默认编排器配置
func DefaultCuratorConfig() CuratorConfig {
	return CuratorConfig{
		Concurrency: 4,
		Cache:       "memory",
		CacheSize:   256,
		CacheTTL:    time.Hour,
	}
}

// DefaultRedisConfig 返回默认 Redis 配置
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:         "localhost:6379",
		Password:     "",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 2,
	}
}

// DefaultDatabaseConfig 返回默认数据库配置（本地 sqlite 文件）
func DefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Driver:          "sqlite",
		Name:            "memcurator.db",
		SSLMode:         "disable",
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: 30 * time.Minute,
	}
}

// DefaultIndexingConfig 返回默认索引配置
func DefaultIndexingConfig() IndexingConfig {
	return IndexingConfig{
		Enabled:           false,
		Dimension:         256,
		RequestsPerSecond: 10,
		Burst:             5,
	}
}

// DefaultTokenizerConfig 返回默认 Token 计数配置
func DefaultTokenizerConfig() TokenizerConfig {
	return TokenizerConfig{Model: "gpt-4o"}
}

// DefaultMetricsConfig 返回默认指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:   true,
		Namespace: "memcurator",
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{"stdout"},
		EnableCaller:     true,
		EnableStacktrace: false,
	}
}

// DefaultTelemetryConfig 返回默认遥测配置
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "memcurator",
		SampleRate:   0.1,
	}
}
