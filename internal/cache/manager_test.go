package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/memcurator/config"
)

// =============================================================================
// 🧪 Manager 测试
// =============================================================================

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *Manager) {
	t.Helper()
	mr := miniredis.RunT(t)

	manager, err := NewManager(Config{
		Addr:       mr.Addr(),
		DefaultTTL: time.Minute,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = manager.Close() })

	return mr, manager
}

type cachedDoc struct {
	ID       string   `json:"id"`
	Task     string   `json:"task"`
	Triggers []string `json:"triggers"`
}

func TestNewManager(t *testing.T) {
	_, manager := setupTestRedis(t)

	assert.NotNil(t, manager.redis)
	assert.NotNil(t, manager.logger)
}

func TestNewManager_Unreachable(t *testing.T) {
	manager, err := NewManager(Config{Addr: "localhost:1"}, nil)
	assert.Nil(t, manager)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to redis")
}

func TestFromRedisConfig(t *testing.T) {
	cfg := FromRedisConfig(config.RedisConfig{
		Addr:     "redis:6379",
		Password: "secret",
		DB:       3,
		PoolSize: 20,
		TLS:      true,
	}, 2*time.Hour)

	assert.Equal(t, "redis:6379", cfg.Addr)
	assert.Equal(t, "secret", cfg.Password)
	assert.Equal(t, 3, cfg.DB)
	assert.Equal(t, 20, cfg.PoolSize)
	assert.True(t, cfg.TLS)
	assert.Equal(t, 2*time.Hour, cfg.DefaultTTL)
	assert.Equal(t, DefaultConfig().MaxRetries, cfg.MaxRetries)

	cfg = FromRedisConfig(config.RedisConfig{Addr: "redis:6379"}, 0)
	assert.Equal(t, DefaultConfig().PoolSize, cfg.PoolSize)
	assert.Equal(t, DefaultConfig().DefaultTTL, cfg.DefaultTTL)
}

func TestManager_SetGetDelete(t *testing.T) {
	_, manager := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, manager.Set(ctx, "memcurator:doc:a", "body", time.Minute))

	value, err := manager.Get(ctx, "memcurator:doc:a")
	require.NoError(t, err)
	assert.Equal(t, "body", value)

	n, err := manager.Exists(ctx, "memcurator:doc:a", "memcurator:doc:b")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, manager.Delete(ctx, "memcurator:doc:a"))
	require.NoError(t, manager.Delete(ctx))

	_, err = manager.Get(ctx, "memcurator:doc:a")
	assert.True(t, IsCacheMiss(err))
}

func TestManager_JSONRoundTrip(t *testing.T) {
	_, manager := setupTestRedis(t)
	ctx := context.Background()

	doc := cachedDoc{ID: "d1", Task: "Implement OAuth login", Triggers: []string{"oauth login", "auth.js"}}
	require.NoError(t, manager.SetJSON(ctx, "memcurator:doc:d1", doc, time.Minute))

	var got cachedDoc
	require.NoError(t, manager.GetJSON(ctx, "memcurator:doc:d1", &got))
	assert.Equal(t, doc, got)
}

func TestManager_JSONErrors(t *testing.T) {
	_, manager := setupTestRedis(t)
	ctx := context.Background()

	var got cachedDoc
	err := manager.GetJSON(ctx, "missing", &got)
	assert.ErrorIs(t, err, ErrCacheMiss)

	assert.Error(t, manager.SetJSON(ctx, "bad", make(chan int), time.Minute))

	require.NoError(t, manager.Set(ctx, "not-json", "plain text", time.Minute))
	err = manager.GetJSON(ctx, "not-json", &got)
	require.Error(t, err)
	assert.False(t, IsCacheMiss(err))
}

func TestManager_TTL(t *testing.T) {
	mr, manager := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, manager.Set(ctx, "short", "v", 100*time.Millisecond))
	require.NoError(t, manager.Set(ctx, "default", "v", 0))
	assert.Equal(t, time.Minute, mr.TTL("default"))

	mr.FastForward(200 * time.Millisecond)
	_, err := manager.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, manager.Expire(ctx, "default", time.Second))
	mr.FastForward(2 * time.Second)
	_, err = manager.Get(ctx, "default")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestManager_GetStats(t *testing.T) {
	_, manager := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, manager.Set(ctx, "k1", "v", time.Minute))
	require.NoError(t, manager.Set(ctx, "k2", "v", time.Minute))
	_, err := manager.Get(ctx, "k1")
	require.NoError(t, err)
	_, err = manager.Get(ctx, "k1")
	require.NoError(t, err)
	_, err = manager.Get(ctx, "nope")
	require.ErrorIs(t, err, ErrCacheMiss)

	stats, err := manager.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, int64(2), stats.Keys)
	assert.InDelta(t, 2.0/3.0, stats.HitRate(), 1e-9)
	assert.Zero(t, Stats{}.HitRate())
}

func TestManager_Closed(t *testing.T) {
	_, manager := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, manager.Close())
	require.NoError(t, manager.Close(), "close is idempotent")

	_, err := manager.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, manager.Set(ctx, "k", "v", 0), ErrClosed)
	assert.ErrorIs(t, manager.Ping(ctx), ErrClosed)
	_, err = manager.GetStats(ctx)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestManager_ConcurrentOperations(t *testing.T) {
	_, manager := setupTestRedis(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := fmt.Sprintf("concurrent-%d", id)
			assert.NoError(t, manager.Set(ctx, key, "value", time.Minute))
			value, err := manager.Get(ctx, key)
			assert.NoError(t, err)
			assert.Equal(t, "value", value)
		}(i)
	}
	wg.Wait()
	assert.NoError(t, manager.Ping(ctx))
}
