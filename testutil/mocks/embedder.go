// =============================================================================
// 🔢 MockEmbedder - 嵌入服务模拟实现
// =============================================================================
// 返回固定维度的确定性向量，支持错误注入与调用计数
//
// 使用方法:
//
//	embedder := mocks.NewMockEmbedder(8).WithBatchError(errors.New("quota"))
//	ix := indexing.NewIndexer(embedder, store)
// =============================================================================
package mocks

import (
	"context"
	"sync"
)

// MockEmbedder 是 indexing.EmbeddingProvider 的模拟实现
type MockEmbedder struct {
	mu sync.Mutex

	dimension int

	// 错误注入
	batchErr error
	queryErr error

	// 返回向量数比输入少一个，用于校验数量检查
	shortBatch bool

	// 调用记录
	batchCalls int
	texts      []string
}

// NewMockEmbedder 创建新的 MockEmbedder
func NewMockEmbedder(dimension int) *MockEmbedder {
	return &MockEmbedder{dimension: dimension}
}

// WithBatchError 设置 BatchEmbed 返回的错误
func (m *MockEmbedder) WithBatchError(err error) *MockEmbedder {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchErr = err
	return m
}

// WithQueryError 设置 EmbedQuery 返回的错误
func (m *MockEmbedder) WithQueryError(err error) *MockEmbedder {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryErr = err
	return m
}

// WithShortBatch 让 BatchEmbed 少返回一个向量
func (m *MockEmbedder) WithShortBatch() *MockEmbedder {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shortBatch = true
	return m
}

func (m *MockEmbedder) vector(text string) []float64 {
	v := make([]float64, m.dimension)
	if m.dimension == 0 {
		return v
	}
	v[len(text)%m.dimension] = 1
	return v
}

func (m *MockEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	return m.vector(text), nil
}

func (m *MockEmbedder) BatchEmbed(_ context.Context, texts []string) ([][]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchCalls++
	m.texts = append(m.texts, texts...)
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	out := make([][]float64, 0, len(texts))
	for _, t := range texts {
		out = append(out, m.vector(t))
	}
	if m.shortBatch && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (m *MockEmbedder) EmbedQuery(_ context.Context, query string) ([]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	return m.vector(query), nil
}

func (m *MockEmbedder) EmbedDocument(ctx context.Context, doc string) ([]float64, error) {
	return m.Embed(ctx, doc)
}

func (m *MockEmbedder) Dimension() int { return m.dimension }

func (m *MockEmbedder) Initialize(context.Context) error { return nil }

func (m *MockEmbedder) ValidateCredentials(context.Context) error { return nil }

// BatchCalls 返回 BatchEmbed 调用次数
func (m *MockEmbedder) BatchCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.batchCalls
}

// Texts 返回所有被嵌入的文本
func (m *MockEmbedder) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.texts...)
}
