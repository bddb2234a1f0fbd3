package curation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/BaSui01/memcurator/config"
	"github.com/BaSui01/memcurator/internal/cache"
	"github.com/BaSui01/memcurator/types"
)

// ResultCache stores curated documents by transcript key.
type ResultCache interface {
	Get(ctx context.Context, key string) (*Document, bool, error)
	Set(ctx context.Context, key string, doc *Document) error
	Name() string
}

// CacheKey hashes the transcript texts together with the settings that
// shape the result, so a config reload never serves stale documents.
func CacheKey(msgs []types.Message, cfg *config.FilterConfig, minPhrases, maxPhrases int) string {
	h := sha256.New()
	if cfg != nil {
		if b, err := json.Marshal(cfg); err == nil {
			h.Write(b)
		}
	}
	fmt.Fprintf(h, "|%d|%d|", minPhrases, maxPhrases)
	for _, m := range msgs {
		h.Write([]byte(m.Text()))
		h.Write([]byte{0})
		for _, f := range m.Files {
			h.Write([]byte(f))
			h.Write([]byte{1})
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// =============================================================================
// 进程内 LRU 缓存
// =============================================================================

// LRUCache is an in-process cache with per-entry TTL.
type LRUCache struct {
	lru *expirable.LRU[string, *Document]
}

// NewLRUCache creates an LRU cache. ttl <= 0 disables expiry.
func NewLRUCache(size int, ttl time.Duration) *LRUCache {
	if size <= 0 {
		size = 256
	}
	if ttl < 0 {
		ttl = 0
	}
	return &LRUCache{lru: expirable.NewLRU[string, *Document](size, nil, ttl)}
}

func (c *LRUCache) Get(_ context.Context, key string) (*Document, bool, error) {
	doc, ok := c.lru.Get(key)
	return doc, ok, nil
}

func (c *LRUCache) Set(_ context.Context, key string, doc *Document) error {
	c.lru.Add(key, doc)
	return nil
}

func (c *LRUCache) Name() string { return "memory" }

// Len returns the number of live entries.
func (c *LRUCache) Len() int { return c.lru.Len() }

// =============================================================================
// Redis 缓存
// =============================================================================

// RedisCache stores documents as JSON through the cache manager.
type RedisCache struct {
	manager *cache.Manager
	prefix  string
	ttl     time.Duration
}

// NewRedisCache wraps manager. Keys are stored under prefix.
func NewRedisCache(manager *cache.Manager, prefix string, ttl time.Duration) *RedisCache {
	if prefix == "" {
		prefix = "memcurator:doc:"
	}
	return &RedisCache{manager: manager, prefix: prefix, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*Document, bool, error) {
	var doc Document
	if err := c.manager.GetJSON(ctx, c.prefix+key, &doc); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, false, nil
		}
		return nil, false, types.NewError(types.ErrCache, "redis cache get failed").WithCause(err)
	}
	return &doc, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, doc *Document) error {
	if err := c.manager.SetJSON(ctx, c.prefix+key, doc, c.ttl); err != nil {
		return types.NewError(types.ErrCache, "redis cache set failed").WithCause(err)
	}
	return nil
}

func (c *RedisCache) Name() string { return "redis" }
