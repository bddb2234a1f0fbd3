// Package pool 提供基于 sync.Pool 的泛型对象池，用于 API 响应编码等热点路径。
package pool

import (
	"bytes"
	"sync"
	"sync/atomic"
)

// maxPooledBuffer 超过该容量的缓冲区不回收，避免大文档长期占用内存
const maxPooledBuffer = 1 << 20

// Pool is a generic object pool with hit counters.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(*T)
	keep  func(T) bool

	gets atomic.Int64
	puts atomic.Int64
	news atomic.Int64
}

// NewPool creates a pool. keep may be nil; when it returns false for an
// object, Put drops it instead of recycling.
func NewPool[T any](newFunc func() T, reset func(*T), keep func(T) bool) *Pool[T] {
	p := &Pool[T]{reset: reset, keep: keep}
	p.pool.New = func() any {
		p.news.Add(1)
		return newFunc()
	}
	return p
}

// Get retrieves an object from the pool.
func (p *Pool[T]) Get() T {
	p.gets.Add(1)
	return p.pool.Get().(T)
}

// Put returns an object to the pool.
func (p *Pool[T]) Put(obj T) {
	if p.keep != nil && !p.keep(obj) {
		return
	}
	p.puts.Add(1)
	if p.reset != nil {
		p.reset(&obj)
	}
	p.pool.Put(obj)
}

// Stats returns pool statistics.
func (p *Pool[T]) Stats() Stats {
	return Stats{
		Gets: p.gets.Load(),
		Puts: p.puts.Load(),
		News: p.news.Load(),
	}
}

// Stats contains pool statistics.
type Stats struct {
	Gets int64 `json:"gets"`
	Puts int64 `json:"puts"`
	News int64 `json:"news"`
}

// HitRate returns the share of Gets served without allocating.
func (s Stats) HitRate() float64 {
	if s.Gets == 0 {
		return 0
	}
	return float64(s.Gets-s.News) / float64(s.Gets)
}

// NewBufferPool returns a pool of byte buffers that discards oversized ones.
func NewBufferPool() *Pool[*bytes.Buffer] {
	return NewPool(
		func() *bytes.Buffer { return bytes.NewBuffer(make([]byte, 0, 4096)) },
		func(b **bytes.Buffer) { (*b).Reset() },
		func(b *bytes.Buffer) bool { return b.Cap() <= maxPooledBuffer },
	)
}

// Buffers 响应编码共享的缓冲池
var Buffers = NewBufferPool()
