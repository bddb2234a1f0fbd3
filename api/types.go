package api

import (
	"github.com/BaSui01/memcurator/curation"
	"github.com/BaSui01/memcurator/curation/triggers"
	"github.com/BaSui01/memcurator/indexing"
)

// =============================================================================
// 整理
// =============================================================================

// CurateResponse 是 POST /v1/curate 的响应数据。
// @Description 整理结果；持久化与索引失败只作为 warnings 返回
type CurateResponse struct {
	// 整理后的文档
	Document *curation.Document `json:"document"`
	// 是否已写入文档库
	Saved bool `json:"saved"`
	// 写入向量索引的记录数
	IndexedRecords int `json:"indexed_records"`
	// 非致命问题
	Warnings []string `json:"warnings,omitempty"`
}

// =============================================================================
// 触发短语
// =============================================================================

// TriggersRequest 是 POST /v1/triggers 的请求体。
type TriggersRequest struct {
	// 待提取文本
	Text string `json:"text" example:"Fixed the redis connection pool leak in session/store.go"`
	// 是否返回候选列表
	IncludeCandidates bool `json:"include_candidates,omitempty"`
}

// TriggersResponse 是 POST /v1/triggers 的响应数据。
type TriggersResponse struct {
	Phrases    []string             `json:"phrases"`
	Stats      triggers.Stats       `json:"stats"`
	Candidates []triggers.Candidate `json:"candidates,omitempty"`
}

// =============================================================================
// 锚点
// =============================================================================

// AnchorRequest 是 POST /v1/anchors 的请求体。
type AnchorRequest struct {
	// 章节标题
	Title string `json:"title" example:"OAuth Callback Handler"`
	// 类别，空值使用默认类别
	Category string `json:"category,omitempty" example:"implementation"`
	// 文档中已存在的锚点 ID
	Existing []string `json:"existing,omitempty"`
	// 可选的规格编号前缀
	SpecNumber string `json:"spec_number,omitempty"`
}

// AnchorResponse 是 POST /v1/anchors 的响应数据。
type AnchorResponse struct {
	AnchorID string `json:"anchor_id"`
}

// =============================================================================
// 文档与检索
// =============================================================================

// DocumentList 是 GET /v1/documents 的响应数据。
type DocumentList struct {
	Documents []*curation.Document `json:"documents"`
	Limit     int                  `json:"limit"`
	Offset    int                  `json:"offset"`
	Total     int64                `json:"total"`
}

// SearchRequest 是 POST /v1/search 的请求体。
type SearchRequest struct {
	Query string `json:"query" example:"oauth login"`
	TopK  int    `json:"top_k,omitempty" example:"5"`
}

// SearchResponse 是 POST /v1/search 的响应数据。
type SearchResponse struct {
	Results []indexing.SearchResult `json:"results"`
}
