// =============================================================================
// 📊 MockMetrics - 整理指标记录器模拟实现
// =============================================================================
// 记录 Curator 上报的所有指标，便于断言
//
// 使用方法:
//
//	m := mocks.NewMockMetrics()
//	curator := curation.NewCurator(curation.WithMetrics(m))
//	assert.Equal(t, 1, m.Curations("success"))
// =============================================================================
package mocks

import (
	"sync"
	"time"
)

// MockMetrics 是 curation.MetricsRecorder 的模拟实现
type MockMetrics struct {
	mu sync.Mutex

	curations      map[string]int
	processed      int
	filtered       map[string]int
	qualityScores  []int
	triggerPhrases int
	cacheHits      map[string]int
	cacheMisses    map[string]int
}

// NewMockMetrics 创建新的 MockMetrics
func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		curations:   make(map[string]int),
		filtered:    make(map[string]int),
		cacheHits:   make(map[string]int),
		cacheMisses: make(map[string]int),
	}
}

func (m *MockMetrics) RecordCuration(status string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.curations[status]++
}

func (m *MockMetrics) RecordMessages(processed, noise, empty, duplicate int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.processed += processed
	m.filtered["noise"] += noise
	m.filtered["empty"] += empty
	m.filtered["duplicate"] += duplicate
}

func (m *MockMetrics) RecordQualityScore(score int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.qualityScores = append(m.qualityScores, score)
}

func (m *MockMetrics) RecordTriggerPhrases(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.triggerPhrases += n
}

func (m *MockMetrics) RecordCacheHit(cacheType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheHits[cacheType]++
}

func (m *MockMetrics) RecordCacheMiss(cacheType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheMisses[cacheType]++
}

// =============================================================================
// 🔍 查询方法
// =============================================================================

// Curations 返回指定状态的整理次数
func (m *MockMetrics) Curations(status string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.curations[status]
}

// Processed 返回进入过滤器的消息总数
func (m *MockMetrics) Processed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.processed
}

// Filtered 返回指定原因的过滤数
func (m *MockMetrics) Filtered(reason string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filtered[reason]
}

// QualityScores 返回记录的质量分
func (m *MockMetrics) QualityScores() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.qualityScores...)
}

// TriggerPhrases 返回记录的触发短语总数
func (m *MockMetrics) TriggerPhrases() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.triggerPhrases
}

// CacheHits 返回指定缓存的命中数
func (m *MockMetrics) CacheHits(cacheType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cacheHits[cacheType]
}

// CacheMisses 返回指定缓存的未命中数
func (m *MockMetrics) CacheMisses(cacheType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cacheMisses[cacheType]
}
