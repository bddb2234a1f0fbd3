package indexing

import "context"

// EmbeddingProvider 嵌入服务接口
type EmbeddingProvider interface {
	// Embed 嵌入单条文本
	Embed(ctx context.Context, text string) ([]float64, error)

	// BatchEmbed 批量嵌入，返回顺序与输入一致
	BatchEmbed(ctx context.Context, texts []string) ([][]float64, error)

	// EmbedQuery 嵌入检索查询
	EmbedQuery(ctx context.Context, query string) ([]float64, error)

	// EmbedDocument 嵌入待索引文档
	EmbedDocument(ctx context.Context, doc string) ([]float64, error)

	// Dimension 向量维度
	Dimension() int

	// Initialize 初始化连接或模型
	Initialize(ctx context.Context) error

	// ValidateCredentials 校验凭据
	ValidateCredentials(ctx context.Context) error
}

// VectorStore 向量数据库接口
type VectorStore interface {
	// Search 按向量检索 topK 条记录
	Search(ctx context.Context, vector []float64, topK int) ([]SearchResult, error)

	// Upsert 插入或覆盖记录
	Upsert(ctx context.Context, records []Record) error

	// Delete 删除记录，不存在的 ID 被忽略
	Delete(ctx context.Context, ids []string) error

	// Get 按 ID 获取记录
	Get(ctx context.Context, id string) (*Record, error)

	// Stats 统计信息
	Stats(ctx context.Context) (StoreStats, error)

	// IsAvailable 是否可用
	IsAvailable(ctx context.Context) bool
}

// Record 一条索引记录
type Record struct {
	ID         string         `json:"id"`
	DocumentID string         `json:"document_id"`
	AnchorID   string         `json:"anchor_id,omitempty"`
	Text       string         `json:"text"`
	Vector     []float64      `json:"vector,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// SearchResult 检索结果
type SearchResult struct {
	Record   Record  `json:"record"`
	Score    float64 `json:"score"`
	Distance float64 `json:"distance"`
}

// StoreStats 向量库统计
type StoreStats struct {
	Records   int `json:"records"`
	Documents int `json:"documents"`
	Dimension int `json:"dimension"`
}
