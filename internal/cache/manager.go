// Package cache provides internal cache management.
// This package is internal and should not be imported by external projects.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/BaSui01/memcurator/config"
	"github.com/BaSui01/memcurator/internal/tlsutil"
)

var (
	// ErrCacheMiss 缓存未命中错误
	ErrCacheMiss = errors.New("cache miss")
	// ErrClosed 管理器已关闭
	ErrClosed = errors.New("cache manager is closed")
)

// IsCacheMiss 判断是否为缓存未命中错误
func IsCacheMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss)
}

// =============================================================================
// ⚙️ 配置
// =============================================================================

// Config 缓存配置
type Config struct {
	Addr                string        `yaml:"addr" json:"addr"`
	Password            string        `yaml:"password" json:"password"`
	DB                  int           `yaml:"db" json:"db"`
	DefaultTTL          time.Duration `yaml:"default_ttl" json:"default_ttl"` // Set 传入 0 时使用
	MaxRetries          int           `yaml:"max_retries" json:"max_retries"`
	PoolSize            int           `yaml:"pool_size" json:"pool_size"`
	MinIdleConns        int           `yaml:"min_idle_conns" json:"min_idle_conns"`
	HealthCheckInterval time.Duration `yaml:"health_check_interval" json:"health_check_interval"`
	TLS                 bool          `yaml:"tls" json:"tls"`
}

// DefaultConfig 返回默认缓存配置
func DefaultConfig() Config {
	return Config{
		Addr:                "localhost:6379",
		DefaultTTL:          5 * time.Minute,
		MaxRetries:          3,
		PoolSize:            10,
		MinIdleConns:        2,
		HealthCheckInterval: 30 * time.Second,
	}
}

// FromRedisConfig 由应用配置构造缓存配置，未覆盖的字段取默认值
func FromRedisConfig(rc config.RedisConfig, defaultTTL time.Duration) Config {
	cfg := DefaultConfig()
	cfg.Addr, cfg.Password, cfg.DB, cfg.TLS = rc.Addr, rc.Password, rc.DB, rc.TLS
	if rc.PoolSize > 0 {
		cfg.PoolSize = rc.PoolSize
	}
	if rc.MinIdleConns >= 0 {
		cfg.MinIdleConns = rc.MinIdleConns
	}
	if defaultTTL > 0 {
		cfg.DefaultTTL = defaultTTL
	}
	return cfg
}

func (c Config) redisOptions() *redis.Options {
	opts := &redis.Options{
		Addr:         c.Addr,
		Password:     c.Password,
		DB:           c.DB,
		MaxRetries:   c.MaxRetries,
		PoolSize:     c.PoolSize,
		MinIdleConns: c.MinIdleConns,
	}
	if c.TLS {
		host, _, err := net.SplitHostPort(c.Addr)
		if err != nil {
			host = c.Addr
		}
		opts.TLSConfig = tlsutil.ClientConfig(host)
	}
	return opts
}

// =============================================================================
// 💾 Manager
// =============================================================================

// Manager 包装 go-redis 客户端，记录本实例的命中与未命中次数
type Manager struct {
	redis  *redis.Client
	config Config
	logger *zap.Logger

	mu     sync.RWMutex
	closed bool
	stop   chan struct{}

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewManager 连接 Redis 并在 5 秒内完成一次 PING，失败时返回错误
func NewManager(config Config, logger *zap.Logger) (*Manager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := redis.NewClient(config.redisOptions())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	m := &Manager{
		redis:  client,
		config: config,
		logger: logger.With(zap.String("component", "cache")),
		stop:   make(chan struct{}),
	}
	if config.HealthCheckInterval > 0 {
		go m.watch(config.HealthCheckInterval)
	}

	m.logger.Info("cache manager initialized",
		zap.String("addr", config.Addr),
		zap.Int("pool_size", config.PoolSize),
		zap.Bool("tls", config.TLS),
	)
	return m, nil
}

// do 在读锁下执行 fn，已关闭时返回 ErrClosed
func (m *Manager) do(fn func(c *redis.Client) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrClosed
	}
	return fn(m.redis)
}

// Get 读取字符串值，键不存在时返回 ErrCacheMiss
func (m *Manager) Get(ctx context.Context, key string) (string, error) {
	var val string
	err := m.do(func(c *redis.Client) error {
		v, err := c.Get(ctx, key).Result()
		switch {
		case errors.Is(err, redis.Nil):
			m.misses.Add(1)
			return ErrCacheMiss
		case err != nil:
			m.logger.Error("cache get failed", zap.String("key", key), zap.Error(err))
			return fmt.Errorf("cache get failed: %w", err)
		}
		m.hits.Add(1)
		val = v
		return nil
	})
	return val, err
}

// Set 写入字符串值，ttl 为 0 时使用 DefaultTTL
func (m *Manager) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if ttl == 0 {
		ttl = m.config.DefaultTTL
	}
	return m.do(func(c *redis.Client) error {
		if err := c.Set(ctx, key, value, ttl).Err(); err != nil {
			m.logger.Error("cache set failed", zap.String("key", key), zap.Error(err))
			return fmt.Errorf("cache set failed: %w", err)
		}
		return nil
	})
}

// GetJSON 读取并反序列化到 dest
func (m *Manager) GetJSON(ctx context.Context, key string, dest any) error {
	val, err := m.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return nil
}

// SetJSON 序列化 value 后写入
func (m *Manager) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return m.Set(ctx, key, string(data), ttl)
}

// Delete 删除若干键，空参数直接返回
func (m *Manager) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return m.do(func(c *redis.Client) error {
		if err := c.Del(ctx, keys...).Err(); err != nil {
			m.logger.Error("cache delete failed", zap.Strings("keys", keys), zap.Error(err))
			return fmt.Errorf("cache delete failed: %w", err)
		}
		return nil
	})
}

// Exists 返回 keys 中存在的数量
func (m *Manager) Exists(ctx context.Context, keys ...string) (int64, error) {
	var n int64
	err := m.do(func(c *redis.Client) (err error) {
		if n, err = c.Exists(ctx, keys...).Result(); err != nil {
			return fmt.Errorf("cache exists check failed: %w", err)
		}
		return nil
	})
	return n, err
}

// Expire 重设键的过期时间
func (m *Manager) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return m.do(func(c *redis.Client) error {
		if err := c.Expire(ctx, key, ttl).Err(); err != nil {
			return fmt.Errorf("cache expire failed: %w", err)
		}
		return nil
	})
}

// Ping 检查 Redis 连接
func (m *Manager) Ping(ctx context.Context) error {
	return m.do(func(c *redis.Client) error { return c.Ping(ctx).Err() })
}

// Close 停止探活并关闭客户端，重复调用无副作用
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	close(m.stop)
	m.logger.Info("closing cache manager")
	return m.redis.Close()
}

func (m *Manager) watch(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := m.Ping(ctx)
		cancel()
		switch {
		case errors.Is(err, ErrClosed):
			return
		case err != nil:
			m.logger.Error("cache health check failed", zap.Error(err))
		default:
			m.logger.Debug("cache health check passed")
		}
	}
}

// =============================================================================
// 📊 统计信息
// =============================================================================

// Stats 缓存统计信息
type Stats struct {
	Hits        uint64 `json:"hits"`
	Misses      uint64 `json:"misses"`
	Keys        int64  `json:"keys"`
	Connections uint32 `json:"connections"`
	IdleConns   uint32 `json:"idle_conns"`
}

// HitRate 命中率，无请求时为 0
func (s Stats) HitRate() float64 {
	if total := s.Hits + s.Misses; total > 0 {
		return float64(s.Hits) / float64(total)
	}
	return 0
}

// GetStats 返回命中计数、键数量与连接池状态。命中数只统计本 Manager 的 Get 调用。
func (m *Manager) GetStats(ctx context.Context) (*Stats, error) {
	var stats *Stats
	err := m.do(func(c *redis.Client) error {
		keys, err := c.DBSize(ctx).Result()
		if err != nil {
			return fmt.Errorf("failed to get redis dbsize: %w", err)
		}
		pool := c.PoolStats()
		stats = &Stats{
			Hits:        m.hits.Load(),
			Misses:      m.misses.Load(),
			Keys:        keys,
			Connections: pool.TotalConns,
			IdleConns:   pool.IdleConns,
		}
		return nil
	})
	return stats, err
}
