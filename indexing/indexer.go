package indexing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/BaSui01/memcurator/curation"
	"github.com/BaSui01/memcurator/curation/summary"
	"github.com/BaSui01/memcurator/types"
)

// DefaultBatchSize bounds the texts sent in one BatchEmbed call.
const DefaultBatchSize = 16

// SummaryRecordSuffix marks the whole-summary record of a document.
const SummaryRecordSuffix = "#summary"

// Metrics receives indexing measurements.
type Metrics interface {
	RecordIndex(status string, records int, duration time.Duration)
}

type nopMetrics struct{}

func (nopMetrics) RecordIndex(string, int, time.Duration) {}

// Indexer pushes curated documents into a vector store.
type Indexer struct {
	embedder  EmbeddingProvider
	store     VectorStore
	limiter   *rate.Limiter
	batchSize int
	metrics   Metrics
	logger    *zap.Logger
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithRateLimit throttles embedding calls. rps <= 0 disables throttling.
func WithRateLimit(rps float64, burst int) IndexerOption {
	return func(ix *Indexer) {
		if rps <= 0 {
			ix.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst <= 0 {
			burst = 1
		}
		ix.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithBatchSize sets the BatchEmbed size.
func WithBatchSize(n int) IndexerOption {
	return func(ix *Indexer) {
		if n > 0 {
			ix.batchSize = n
		}
	}
}

// WithIndexMetrics sets the metrics recorder.
func WithIndexMetrics(m Metrics) IndexerOption {
	return func(ix *Indexer) {
		if m != nil {
			ix.metrics = m
		}
	}
}

// WithIndexLogger sets the logger.
func WithIndexLogger(logger *zap.Logger) IndexerOption {
	return func(ix *Indexer) {
		if logger != nil {
			ix.logger = logger
		}
	}
}

// NewIndexer creates an Indexer. Without WithRateLimit embedding calls are
// not throttled.
func NewIndexer(embedder EmbeddingProvider, store VectorStore, opts ...IndexerOption) *Indexer {
	ix := &Indexer{
		embedder:  embedder,
		store:     store,
		limiter:   rate.NewLimiter(rate.Inf, 0),
		batchSize: DefaultBatchSize,
		metrics:   nopMetrics{},
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(ix)
	}
	ix.logger = ix.logger.With(zap.String("component", "indexer"))
	return ix
}

// Records builds the index records of doc: one for the whole summary and
// one per anchored section. Vectors are left empty.
func Records(doc *curation.Document) []Record {
	triggers := append([]string(nil), doc.Summary.TriggerPhrases...)
	base := func(kind string) map[string]any {
		return map[string]any{
			"document_id":     doc.ID,
			"kind":            kind,
			"task":            doc.Summary.Task,
			"trigger_phrases": triggers,
		}
	}

	summaryText := summary.FormatSummaryAsMarkdown(doc.Summary)
	records := []Record{{
		ID:         doc.ID + SummaryRecordSuffix,
		DocumentID: doc.ID,
		Text:       summaryText,
		Metadata:   base("summary"),
	}}

	for _, s := range doc.Sections {
		text, ok := doc.SectionText(s.AnchorID)
		if !ok || strings.TrimSpace(text) == "" {
			continue
		}
		md := base("section")
		md["anchor_id"] = s.AnchorID
		md["section"] = s.Title
		md["category"] = s.Category
		records = append(records, Record{
			ID:         doc.ID + "#" + s.AnchorID,
			DocumentID: doc.ID,
			AnchorID:   s.AnchorID,
			Text:       text,
			Metadata:   md,
		})
	}
	return records
}

// IndexDocument embeds and upserts the records of doc. It returns the
// number of records written.
func (ix *Indexer) IndexDocument(ctx context.Context, doc *curation.Document) (int, error) {
	start := time.Now()
	n, err := ix.indexDocument(ctx, doc)
	status := "success"
	if err != nil {
		status = "error"
	}
	ix.metrics.RecordIndex(status, n, time.Since(start))
	return n, err
}

func (ix *Indexer) indexDocument(ctx context.Context, doc *curation.Document) (int, error) {
	if doc == nil {
		return 0, types.NewError(types.ErrInvalidInput, "document is nil")
	}
	if !ix.store.IsAvailable(ctx) {
		return 0, types.NewError(types.ErrIndex, "vector store unavailable").WithRetryable(true)
	}

	records := Records(doc)
	texts := make([]string, len(records))
	for i, r := range records {
		texts[i] = r.Text
	}

	vectors, err := ix.embed(ctx, texts)
	if err != nil {
		return 0, err
	}
	for i := range records {
		records[i].Vector = vectors[i]
	}

	if err := ix.store.Upsert(ctx, records); err != nil {
		return 0, types.WrapError(err, types.ErrIndex, "upsert records")
	}

	ix.logger.Debug("document indexed",
		zap.String("document_id", doc.ID),
		zap.Int("records", len(records)))
	return len(records), nil
}

func (ix *Indexer) embed(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, 0, len(texts))
	dim := ix.embedder.Dimension()
	for start := 0; start < len(texts); start += ix.batchSize {
		end := min(start+ix.batchSize, len(texts))
		if err := ix.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("embedding rate limit: %w", err)
		}
		batch, err := ix.embedder.BatchEmbed(ctx, texts[start:end])
		if err != nil {
			return nil, types.WrapError(err, types.ErrIndex, "embed records").WithRetryable(true)
		}
		if len(batch) != end-start {
			return nil, types.NewError(types.ErrIndex,
				fmt.Sprintf("embedder returned %d vectors for %d texts", len(batch), end-start))
		}
		for _, v := range batch {
			if dim > 0 && len(v) != dim {
				return nil, types.NewError(types.ErrIndex,
					fmt.Sprintf("embedder returned dimension %d, expected %d", len(v), dim))
			}
		}
		out = append(out, batch...)
	}
	return out, nil
}

// Search embeds query and returns the topK closest records.
func (ix *Indexer) Search(ctx context.Context, query string, topK int) ([]SearchResult, error) {
	if !ix.store.IsAvailable(ctx) {
		return nil, types.NewError(types.ErrIndex, "vector store unavailable").WithRetryable(true)
	}
	if err := ix.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("embedding rate limit: %w", err)
	}
	vec, err := ix.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, types.WrapError(err, types.ErrIndex, "embed query")
	}
	results, err := ix.store.Search(ctx, vec, topK)
	if err != nil {
		return nil, types.WrapError(err, types.ErrIndex, "search")
	}
	return results, nil
}

// RemoveDocument deletes every record of doc.
func (ix *Indexer) RemoveDocument(ctx context.Context, doc *curation.Document) error {
	records := Records(doc)
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	if err := ix.store.Delete(ctx, ids); err != nil {
		return types.WrapError(err, types.ErrIndex, "delete records")
	}
	return nil
}
