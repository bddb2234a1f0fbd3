package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/memcurator/api"
	"github.com/BaSui01/memcurator/curation"
	"github.com/BaSui01/memcurator/curation/anchor"
	"github.com/BaSui01/memcurator/curation/triggers"
	"github.com/BaSui01/memcurator/indexing"
	"github.com/BaSui01/memcurator/internal/ctxkeys"
	"github.com/BaSui01/memcurator/types"
)

// =============================================================================
// 🧠 整理 Handler
// =============================================================================

// Curator 整理器
type Curator interface {
	Curate(ctx context.Context, msgs []types.Message) (*curation.Document, error)
}

// DocumentStore 文档库（store.DocumentStore 实现）
type DocumentStore interface {
	Save(ctx context.Context, doc *curation.Document) error
	Get(ctx context.Context, id string) (*curation.Document, error)
	List(ctx context.Context, limit, offset int) ([]*curation.Document, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id string) error
	FindByTrigger(ctx context.Context, phrase string) ([]*curation.Document, error)
}

// Indexer 向量索引（indexing.Indexer 实现）
type Indexer interface {
	IndexDocument(ctx context.Context, doc *curation.Document) (int, error)
	Search(ctx context.Context, query string, topK int) ([]indexing.SearchResult, error)
	RemoveDocument(ctx context.Context, doc *curation.Document) error
}

// CurationHandler 处理整理、触发短语、锚点与文档接口
type CurationHandler struct {
	curator      Curator
	store        DocumentStore
	indexer      Indexer
	extractor    *triggers.Extractor
	anchors      *anchor.Generator
	defaultCat   string
	maxBodyBytes int64
	logger       *zap.Logger
}

// CurationOption 配置 CurationHandler
type CurationOption func(*CurationHandler)

// WithStore 启用文档持久化与 /v1/documents 路由
func WithStore(s DocumentStore) CurationOption {
	return func(h *CurationHandler) { h.store = s }
}

// WithIndexer 启用向量索引与 /v1/search 路由
func WithIndexer(ix Indexer) CurationOption {
	return func(h *CurationHandler) { h.indexer = ix }
}

// WithExtractor 设置触发短语提取器
func WithExtractor(e *triggers.Extractor) CurationOption {
	return func(h *CurationHandler) {
		if e != nil {
			h.extractor = e
		}
	}
}

// WithAnchorGenerator 设置锚点生成器与默认类别
func WithAnchorGenerator(g *anchor.Generator, defaultCategory string) CurationOption {
	return func(h *CurationHandler) {
		if g != nil {
			h.anchors = g
		}
		if defaultCategory != "" {
			h.defaultCat = defaultCategory
		}
	}
}

// WithMaxBodyBytes 设置请求体上限
func WithMaxBodyBytes(n int64) CurationOption {
	return func(h *CurationHandler) {
		if n > 0 {
			h.maxBodyBytes = n
		}
	}
}

// NewCurationHandler 创建整理处理器
func NewCurationHandler(curator Curator, logger *zap.Logger, opts ...CurationOption) *CurationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &CurationHandler{
		curator:      curator,
		extractor:    triggers.New(),
		anchors:      anchor.NewGenerator(nil),
		defaultCat:   "implementation",
		maxBodyBytes: DefaultMaxBodyBytes,
		logger:       logger.With(zap.String("component", "curation_handler")),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register 在 mux 上注册路由；文档与检索路由仅在对应依赖存在时注册
func (h *CurationHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/curate", h.HandleCurate)
	mux.HandleFunc("POST /v1/triggers", h.HandleTriggers)
	mux.HandleFunc("POST /v1/anchors", h.HandleAnchors)
	if h.store != nil {
		mux.HandleFunc("GET /v1/documents", h.HandleListDocuments)
		mux.HandleFunc("GET /v1/documents/{id}", h.HandleGetDocument)
		mux.HandleFunc("DELETE /v1/documents/{id}", h.HandleDeleteDocument)
	}
	if h.indexer != nil {
		mux.HandleFunc("POST /v1/search", h.HandleSearch)
	}
}

// =============================================================================
// 🎯 HTTP 处理程序
// =============================================================================

// HandleCurate 处理 POST /v1/curate
// 请求体为会话记录 JSON 数组；?save=false / ?index=false 跳过持久化与索引。
func (h *CurationHandler) HandleCurate(w http.ResponseWriter, r *http.Request) {
	body, err := ReadBody(w, r, h.maxBodyBytes, h.logger)
	if err != nil {
		return
	}

	msgs, err := types.DecodeTranscript(body)
	if err != nil {
		WriteErrorFrom(w, err, h.logger)
		return
	}

	doc, err := h.curator.Curate(r.Context(), msgs)
	if err != nil {
		WriteErrorFrom(w, err, h.logger)
		return
	}

	resp := api.CurateResponse{Document: doc}
	q := r.URL.Query()

	if h.store != nil && queryBool(q.Get("save"), true) {
		if err := h.store.Save(r.Context(), doc); err != nil {
			h.logger.Warn("document save failed",
				zap.String("document_id", doc.ID),
				zap.String("request_id", ctxkeys.RequestID(r.Context())),
				zap.String("subject", ctxkeys.Subject(r.Context())),
				zap.Error(err))
			resp.Warnings = append(resp.Warnings, "save failed: "+err.Error())
		} else {
			resp.Saved = true
		}
	}

	if h.indexer != nil && queryBool(q.Get("index"), true) {
		n, err := h.indexer.IndexDocument(r.Context(), doc)
		if err != nil {
			h.logger.Warn("document indexing failed",
				zap.String("document_id", doc.ID),
				zap.String("request_id", ctxkeys.RequestID(r.Context())),
				zap.Error(err))
			resp.Warnings = append(resp.Warnings, "index failed: "+err.Error())
		}
		resp.IndexedRecords = n
	}

	WriteSuccess(w, resp)
}

// HandleTriggers 处理 POST /v1/triggers
func (h *CurationHandler) HandleTriggers(w http.ResponseWriter, r *http.Request) {
	var req api.TriggersRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}

	res := h.extractor.ExtractWithStats(req.Text)
	resp := api.TriggersResponse{Phrases: res.Phrases, Stats: res.Stats}
	if resp.Phrases == nil {
		resp.Phrases = []string{}
	}
	if req.IncludeCandidates {
		resp.Candidates = res.Candidates
	}
	WriteSuccess(w, resp)
}

// HandleAnchors 处理 POST /v1/anchors
func (h *CurationHandler) HandleAnchors(w http.ResponseWriter, r *http.Request) {
	var req api.AnchorRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		WriteError(w, types.NewError(types.ErrInvalidInput, "title is required"), h.logger)
		return
	}

	category := req.Category
	if strings.TrimSpace(category) == "" {
		category = h.defaultCat
	}

	var opts []anchor.GenerateOption
	if req.SpecNumber != "" {
		opts = append(opts, anchor.WithSpecNumber(req.SpecNumber))
	}
	id := h.anchors.Generate(req.Title, category, opts...)
	id = anchor.ValidateAnchorUniqueness(id, req.Existing)

	WriteSuccess(w, api.AnchorResponse{AnchorID: id})
}

// HandleListDocuments 处理 GET /v1/documents?limit=&offset=&trigger=
func (h *CurationHandler) HandleListDocuments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := queryInt(q.Get("limit"), 0)
	if err != nil {
		WriteError(w, types.NewError(types.ErrInvalidInput, "limit must be an integer"), h.logger)
		return
	}
	offset, err := queryInt(q.Get("offset"), 0)
	if err != nil {
		WriteError(w, types.NewError(types.ErrInvalidInput, "offset must be an integer"), h.logger)
		return
	}

	if trigger := q.Get("trigger"); trigger != "" {
		docs, err := h.store.FindByTrigger(r.Context(), trigger)
		if err != nil {
			WriteErrorFrom(w, err, h.logger)
			return
		}
		WriteSuccess(w, api.DocumentList{Documents: docs, Total: int64(len(docs))})
		return
	}

	docs, err := h.store.List(r.Context(), limit, offset)
	if err != nil {
		WriteErrorFrom(w, err, h.logger)
		return
	}
	total, err := h.store.Count(r.Context())
	if err != nil {
		WriteErrorFrom(w, err, h.logger)
		return
	}
	WriteSuccess(w, api.DocumentList{Documents: docs, Limit: limit, Offset: offset, Total: total})
}

// HandleGetDocument 处理 GET /v1/documents/{id}；?format=markdown 返回 Markdown 原文
func (h *CurationHandler) HandleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteErrorFrom(w, err, h.logger)
		return
	}

	if r.URL.Query().Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(doc.Markdown))
		return
	}
	WriteSuccess(w, doc)
}

// HandleDeleteDocument 处理 DELETE /v1/documents/{id}，同时移出向量索引
func (h *CurationHandler) HandleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	doc, err := h.store.Get(r.Context(), id)
	if err != nil {
		WriteErrorFrom(w, err, h.logger)
		return
	}
	if err := h.store.Delete(r.Context(), id); err != nil {
		WriteErrorFrom(w, err, h.logger)
		return
	}
	if h.indexer != nil {
		if err := h.indexer.RemoveDocument(r.Context(), doc); err != nil {
			h.logger.Warn("index removal failed",
				zap.String("document_id", id),
				zap.String("request_id", ctxkeys.RequestID(r.Context())),
				zap.Error(err))
		}
	}
	WriteSuccess(w, map[string]string{"deleted": id})
}

// HandleSearch 处理 POST /v1/search
func (h *CurationHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	var req api.SearchRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		WriteError(w, types.NewError(types.ErrInvalidInput, "query is required"), h.logger)
		return
	}
	if req.TopK <= 0 {
		req.TopK = 5
	}

	results, err := h.indexer.Search(r.Context(), req.Query, req.TopK)
	if err != nil {
		WriteErrorFrom(w, err, h.logger)
		return
	}
	for i := range results {
		results[i].Record.Vector = nil
	}
	if results == nil {
		results = []indexing.SearchResult{}
	}
	WriteSuccess(w, api.SearchResponse{Results: results})
}

// =============================================================================
// 🔧 查询参数
// =============================================================================

func queryBool(v string, def bool) bool {
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func queryInt(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}
