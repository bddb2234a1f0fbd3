package curation

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/memcurator/config"
	"github.com/BaSui01/memcurator/curation/anchor"
	"github.com/BaSui01/memcurator/curation/filter"
	"github.com/BaSui01/memcurator/curation/summary"
	"github.com/BaSui01/memcurator/curation/triggers"
	"github.com/BaSui01/memcurator/types"
)

const tracerName = "github.com/BaSui01/memcurator/curation"

// DefaultConcurrency bounds CurateBatch when no limit is given.
const DefaultConcurrency = 4

// MetricsRecorder receives curation measurements.
type MetricsRecorder interface {
	RecordCuration(status string, duration time.Duration)
	RecordMessages(processed, noise, empty, duplicate int)
	RecordQualityScore(score int)
	RecordTriggerPhrases(n int)
	RecordCacheHit(cacheType string)
	RecordCacheMiss(cacheType string)
}

type nopMetrics struct{}

func (nopMetrics) RecordCuration(string, time.Duration) {}
func (nopMetrics) RecordMessages(int, int, int, int) {}
func (nopMetrics) RecordQualityScore(int) {}
func (nopMetrics) RecordTriggerPhrases(int) {}
func (nopMetrics) RecordCacheHit(string) {}
func (nopMetrics) RecordCacheMiss(string) {}

// Curator turns transcripts into memory documents. It is safe for
// concurrent use; per-document state lives inside each Curate call.
type Curator struct {
	filterCfg   atomic.Pointer[config.FilterConfig]
	minPhrases  int
	maxPhrases  int
	concurrency int

	tokens  types.TokenCounter
	cache   ResultCache
	metrics MetricsRecorder
	tracer  trace.Tracer
	clock   func() time.Time
	logger  *zap.Logger
}

// Option configures a Curator.
type Option func(*Curator)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Curator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithFilterConfig sets the initial filter configuration.
func WithFilterConfig(cfg *config.FilterConfig) Option {
	return func(c *Curator) {
		if cfg != nil {
			c.filterCfg.Store(cfg)
		}
	}
}

// WithTriggerLimits sets the trigger phrase bounds.
func WithTriggerLimits(minPhrases, maxPhrases int) Option {
	return func(c *Curator) {
		c.minPhrases, c.maxPhrases = minPhrases, maxPhrases
	}
}

// WithConcurrency sets the default CurateBatch parallelism.
func WithConcurrency(n int) Option {
	return func(c *Curator) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithTokenCounter sets the counter for rendered documents.
func WithTokenCounter(tc types.TokenCounter) Option {
	return func(c *Curator) {
		if tc != nil {
			c.tokens = tc
		}
	}
}

// WithCache enables result caching.
func WithCache(rc ResultCache) Option {
	return func(c *Curator) { c.cache = rc }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(c *Curator) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithTracer overrides the global OpenTelemetry tracer.
func WithTracer(t trace.Tracer) Option {
	return func(c *Curator) {
		if t != nil {
			c.tracer = t
		}
	}
}

// WithClock sets the time source for document timestamps and anchors.
func WithClock(clock func() time.Time) Option {
	return func(c *Curator) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// NewCurator creates a Curator.
func NewCurator(opts ...Option) *Curator {
	c := &Curator{
		minPhrases:  triggers.DefaultMinPhrases,
		maxPhrases:  triggers.DefaultMaxPhrases,
		concurrency: DefaultConcurrency,
		tokens:      types.NewEstimateTokenizer(),
		metrics:     nopMetrics{},
		clock:       time.Now,
		logger:      zap.NewNop(),
	}
	c.filterCfg.Store(config.DefaultFilterConfig())
	for _, opt := range opts {
		opt(c)
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer(tracerName)
	}
	c.logger = c.logger.With(zap.String("component", "curator"))
	return c
}

// SetFilterConfig swaps the filter configuration for subsequent runs.
// Runs already in progress keep the configuration they started with.
func (c *Curator) SetFilterConfig(cfg *config.FilterConfig) {
	if cfg == nil {
		return
	}
	c.filterCfg.Store(cfg)
	c.logger.Info("filter config updated", zap.Strings("stages", cfg.Pipeline.Stages))
}

// FilterConfig returns the active filter configuration.
func (c *Curator) FilterConfig() *config.FilterConfig {
	return c.filterCfg.Load()
}

// Curate filters, summarizes and renders msgs. The input slice is not
// modified. An empty transcript still yields a document with the
// summary defaults.
func (c *Curator) Curate(ctx context.Context, msgs []types.Message) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := c.clock()
	cfg := c.filterCfg.Load()

	ctx, span := c.tracer.Start(ctx, "curation.Curate",
		trace.WithAttributes(attribute.Int("messages", len(msgs))))
	defer span.End()

	key := ""
	if c.cache != nil {
		key = CacheKey(msgs, cfg, c.minPhrases, c.maxPhrases)
		if doc := c.lookup(ctx, key); doc != nil {
			span.SetAttributes(attribute.Bool("cache_hit", true))
			c.metrics.RecordCuration("cached", time.Since(start))
			return doc, nil
		}
	}

	doc, err := c.curate(ctx, msgs, cfg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.metrics.RecordCuration("error", time.Since(start))
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, doc); err != nil {
			c.logger.Warn("cache store failed", zap.String("cache", c.cache.Name()), zap.Error(err))
		}
	}

	span.SetAttributes(
		attribute.String("document_id", doc.ID),
		attribute.Int("quality_score", doc.QualityScore),
		attribute.Int("trigger_phrases", len(doc.Summary.TriggerPhrases)),
	)
	c.metrics.RecordCuration("success", time.Since(start))
	c.logger.Debug("transcript curated",
		zap.String("document_id", doc.ID),
		zap.Int("messages", len(msgs)),
		zap.Int("kept", doc.MessageCount),
		zap.Int("quality_score", doc.QualityScore),
		zap.Duration("took", time.Since(start)),
	)
	return doc, nil
}

func (c *Curator) lookup(ctx context.Context, key string) *Document {
	doc, ok, err := c.cache.Get(ctx, key)
	switch {
	case err != nil:
		c.logger.Warn("cache lookup failed", zap.String("cache", c.cache.Name()), zap.Error(err))
		c.metrics.RecordCacheMiss(c.cache.Name())
		return nil
	case !ok || doc == nil:
		c.metrics.RecordCacheMiss(c.cache.Name())
		return nil
	default:
		c.metrics.RecordCacheHit(c.cache.Name())
		return doc
	}
}

func (c *Curator) curate(ctx context.Context, msgs []types.Message, cfg *config.FilterConfig) (*Document, error) {
	working := cloneMessages(msgs)
	observations := types.ObservationsFromMessages(msgs)

	_, fspan := c.tracer.Start(ctx, "curation.filter")
	pipeline := filter.NewPipeline(cfg, c.logger)
	filtered := pipeline.Filter(working)
	stats := pipeline.Stats()
	fspan.SetAttributes(
		attribute.Int("kept", len(filtered)),
		attribute.Int("noise_filtered", stats.NoiseFiltered),
		attribute.Int("duplicates_removed", stats.DuplicatesRemoved),
	)
	fspan.End()

	c.metrics.RecordMessages(stats.TotalProcessed, stats.Filtered.Noise, stats.Filtered.Empty, stats.Filtered.Duplicate)
	if cfg.HasStage(config.StageQuality) && cfg.Quality.Enabled {
		c.metrics.RecordQualityScore(stats.QualityScore)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	_, sspan := c.tracer.Start(ctx, "curation.summarize")
	summarizer := summary.NewSummarizer(
		summary.WithLogger(c.logger),
		summary.WithTriggerExtractor(triggers.New(
			triggers.WithLimits(c.minPhrases, c.maxPhrases),
			triggers.WithTokenCounter(c.tokens),
			triggers.WithLogger(c.logger),
		)),
	)
	sum := summarizer.Summarize(filtered, observations)
	sspan.SetAttributes(attribute.Int("trigger_phrases", len(sum.TriggerPhrases)))
	sspan.End()
	c.metrics.RecordTriggerPhrases(len(sum.TriggerPhrases))

	_, rspan := c.tracer.Start(ctx, "curation.render")
	defer rspan.End()

	now := c.clock()
	doc := &Document{
		ID:           uuid.NewString(),
		CreatedAt:    now.UTC(),
		Title:        sum.Task,
		Summary:      sum,
		QualityScore: stats.QualityScore,
		LowQuality:   pipeline.IsLowQuality(),
		Stats:        stats,
		MessageCount: len(filtered),
	}
	registry := anchor.NewRegistry(anchor.NewGenerator(c.clock))
	if err := render(doc, registry); err != nil {
		rspan.RecordError(err)
		return nil, types.NewError(types.ErrInternal, "render document").WithCause(err)
	}
	doc.TokenCount = c.tokens.CountTokens(doc.Markdown)
	return doc, nil
}

// CurateBatch curates transcripts concurrently. Results keep input order.
// concurrency <= 0 uses the curator default. The first error cancels the
// remaining work.
func (c *Curator) CurateBatch(ctx context.Context, transcripts [][]types.Message, concurrency int) ([]*Document, error) {
	if concurrency <= 0 {
		concurrency = c.concurrency
	}
	docs := make([]*Document, len(transcripts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, msgs := range transcripts {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			doc, err := c.Curate(gctx, msgs)
			if err != nil {
				return fmt.Errorf("transcript %d: %w", i, err)
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

func cloneMessages(msgs []types.Message) []types.Message {
	out := make([]types.Message, len(msgs))
	for i, m := range msgs {
		out[i] = m
		if m.Files != nil {
			out[i].Files = append([]string(nil), m.Files...)
		}
	}
	return out
}
