package indexing

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/BaSui01/memcurator/types"
)

// ====== 内存向量存储（用于测试和单机部署）======

// InMemoryVectorStore 内存向量存储，按 ID 覆盖写入
type InMemoryVectorStore struct {
	records   map[string]Record
	order     []string
	dimension int
	closed    bool
	mu        sync.RWMutex
	logger    *zap.Logger
}

// NewInMemoryVectorStore 创建内存向量存储。dimension 为 0 时以首条记录为准。
func NewInMemoryVectorStore(dimension int, logger *zap.Logger) *InMemoryVectorStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryVectorStore{
		records:   make(map[string]Record),
		dimension: dimension,
		logger:    logger.With(zap.String("component", "vector_store")),
	}
}

// Upsert 插入或覆盖记录
func (s *InMemoryVectorStore) Upsert(ctx context.Context, records []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return types.NewError(types.ErrIndex, "vector store closed")
	}
	for _, r := range records {
		if r.ID == "" {
			return types.NewError(types.ErrIndex, "record has no id")
		}
		if len(r.Vector) == 0 {
			return types.NewError(types.ErrIndex, fmt.Sprintf("record %s has no vector", r.ID))
		}
		if s.dimension == 0 {
			s.dimension = len(r.Vector)
		}
		if len(r.Vector) != s.dimension {
			return types.NewError(types.ErrIndex,
				fmt.Sprintf("record %s has dimension %d, store expects %d", r.ID, len(r.Vector), s.dimension))
		}
	}

	for _, r := range records {
		if _, exists := s.records[r.ID]; !exists {
			s.order = append(s.order, r.ID)
		}
		s.records[r.ID] = r
	}

	s.logger.Debug("records upserted",
		zap.Int("count", len(records)),
		zap.Int("total", len(s.records)))
	return nil
}

// Search 搜索相似记录，分数相同时按写入顺序
func (s *InMemoryVectorStore) Search(ctx context.Context, vector []float64, topK int) ([]SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if topK <= 0 || len(s.records) == 0 {
		return []SearchResult{}, nil
	}

	results := make([]SearchResult, 0, len(s.records))
	for _, id := range s.order {
		r := s.records[id]
		similarity := cosineSimilarity(vector, r.Vector)
		results = append(results, SearchResult{
			Record:   r,
			Score:    similarity,
			Distance: 1.0 - similarity,
		})
	}

	sortByScore(results)

	if topK > len(results) {
		topK = len(results)
	}
	return results[:topK], nil
}

// Delete 删除记录
func (s *InMemoryVectorStore) Delete(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for _, id := range ids {
		if _, ok := s.records[id]; ok {
			delete(s.records, id)
			deleted++
		}
	}
	if deleted > 0 {
		kept := s.order[:0]
		for _, id := range s.order {
			if _, ok := s.records[id]; ok {
				kept = append(kept, id)
			}
		}
		s.order = kept
	}

	s.logger.Debug("records deleted",
		zap.Int("deleted", deleted),
		zap.Int("remaining", len(s.records)))
	return nil
}

// Get 按 ID 获取记录
func (s *InMemoryVectorStore) Get(ctx context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[id]
	if !ok {
		return nil, types.NewError(types.ErrNotFound, fmt.Sprintf("record %s not found", id))
	}
	return &r, nil
}

// Stats 统计信息
func (s *InMemoryVectorStore) Stats(ctx context.Context) (StoreStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make(map[string]struct{})
	for _, r := range s.records {
		docs[r.DocumentID] = struct{}{}
	}
	return StoreStats{
		Records:   len(s.records),
		Documents: len(docs),
		Dimension: s.dimension,
	}, nil
}

// IsAvailable 关闭后不可用
func (s *InMemoryVectorStore) IsAvailable(ctx context.Context) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.closed
}

// Close 关闭存储，之后 Upsert 失败、IsAvailable 返回 false
func (s *InMemoryVectorStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// cosineSimilarity 余弦相似度，维度不一致或零向量时为 0
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// sortByScore 按分数降序排序（稳定）
func sortByScore(results []SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
}
