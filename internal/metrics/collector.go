// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// =============================================================================
// 📊 指标收集器
// =============================================================================

// Collector 指标收集器
type Collector struct {
	// HTTP 指标
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpRequestSize     *prometheus.HistogramVec
	httpResponseSize    *prometheus.HistogramVec

	// 整理指标
	curationsTotal    *prometheus.CounterVec
	curationDuration  *prometheus.HistogramVec
	messagesProcessed prometheus.Counter
	messagesFiltered  *prometheus.CounterVec
	qualityScore      prometheus.Histogram
	triggerPhrases    prometheus.Counter

	// 索引指标
	indexRequestsTotal *prometheus.CounterVec
	indexRecords       prometheus.Counter
	indexDuration      prometheus.Histogram

	// 缓存指标
	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec

	// 数据库指标
	dbConnectionsOpen *prometheus.GaugeVec
	dbConnectionsIdle *prometheus.GaugeVec
	dbQueryDuration   *prometheus.HistogramVec

	logger *zap.Logger
}

// NewCollector 创建指标收集器，注册到默认 Registry
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	return NewCollectorWithRegisterer(namespace, prometheus.DefaultRegisterer, logger)
}

// factory 为同一命名空间批量注册指标
type factory struct {
	promauto.Factory
	ns string
}

func (f factory) counter(name, help string) prometheus.Counter {
	return f.NewCounter(prometheus.CounterOpts{Namespace: f.ns, Name: name, Help: help})
}

func (f factory) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return f.NewCounterVec(prometheus.CounterOpts{Namespace: f.ns, Name: name, Help: help}, labels)
}

func (f factory) gaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	return f.NewGaugeVec(prometheus.GaugeOpts{Namespace: f.ns, Name: name, Help: help}, labels)
}

func (f factory) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return f.NewHistogram(prometheus.HistogramOpts{Namespace: f.ns, Name: name, Help: help, Buckets: buckets})
}

func (f factory) histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return f.NewHistogramVec(prometheus.HistogramOpts{Namespace: f.ns, Name: name, Help: help, Buckets: buckets}, labels)
}

var (
	sizeBuckets     = prometheus.ExponentialBuckets(100, 10, 8)
	curationBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5}
	qualityBuckets  = prometheus.LinearBuckets(10, 10, 10)
)

// NewCollectorWithRegisterer 创建指标收集器，注册到指定 Registerer。
// 同一 Registerer 上重复使用同一 namespace 会 panic。
func NewCollectorWithRegisterer(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	f := factory{Factory: promauto.With(reg), ns: namespace}

	c := &Collector{
		httpRequestsTotal:   f.counterVec("http_requests_total", "Total number of HTTP requests", "method", "path", "status"),
		httpRequestDuration: f.histogramVec("http_request_duration_seconds", "HTTP request duration in seconds", prometheus.DefBuckets, "method", "path"),
		httpRequestSize:     f.histogramVec("http_request_size_bytes", "HTTP request size in bytes", sizeBuckets, "method", "path"),
		httpResponseSize:    f.histogramVec("http_response_size_bytes", "HTTP response size in bytes", sizeBuckets, "method", "path"),

		// status: success, cached, error
		curationsTotal:    f.counterVec("curations_total", "Total number of transcript curations", "status"),
		curationDuration:  f.histogramVec("curation_duration_seconds", "Curation duration in seconds", curationBuckets, "status"),
		messagesProcessed: f.counter("messages_processed_total", "Total number of transcript messages entering the filter"),
		// reason: noise, empty, duplicate
		messagesFiltered: f.counterVec("messages_filtered_total", "Total number of messages removed by the filter", "reason"),
		qualityScore:     f.histogram("quality_score", "Quality score of curated transcripts", qualityBuckets),
		triggerPhrases:   f.counter("trigger_phrases_total", "Total number of trigger phrases extracted"),

		indexRequestsTotal: f.counterVec("index_requests_total", "Total number of document indexing requests", "status"),
		indexRecords:       f.counter("index_records_total", "Total number of vector records upserted"),
		indexDuration:      f.histogram("index_duration_seconds", "Document indexing duration in seconds", prometheus.DefBuckets),

		cacheHits:   f.counterVec("cache_hits_total", "Total number of cache hits", "cache_type"),
		cacheMisses: f.counterVec("cache_misses_total", "Total number of cache misses", "cache_type"),

		dbConnectionsOpen: f.gaugeVec("db_connections_open", "Number of open database connections", "database"),
		dbConnectionsIdle: f.gaugeVec("db_connections_idle", "Number of idle database connections", "database"),
		dbQueryDuration:   f.histogramVec("db_query_duration_seconds", "Database query duration in seconds", prometheus.DefBuckets, "database", "operation"),

		logger: logger.With(zap.String("component", "metrics")),
	}

	c.logger.Info("metrics collector initialized", zap.String("namespace", namespace))
	return c
}

// =============================================================================
// 🎯 HTTP 指标记录
// =============================================================================

// RecordHTTPRequest 记录 HTTP 请求
func (c *Collector) RecordHTTPRequest(method, path string, status int, duration time.Duration, requestSize, responseSize int64) {
	c.httpRequestsTotal.WithLabelValues(method, path, statusCode(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	c.httpRequestSize.WithLabelValues(method, path).Observe(float64(requestSize))
	c.httpResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
}

// =============================================================================
// 🧹 整理指标记录
// =============================================================================

// RecordCuration 记录一次整理
func (c *Collector) RecordCuration(status string, duration time.Duration) {
	c.curationsTotal.WithLabelValues(status).Inc()
	c.curationDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordMessages 记录过滤器处理与移除的消息数
func (c *Collector) RecordMessages(processed, noise, empty, duplicate int) {
	c.messagesProcessed.Add(float64(processed))
	c.messagesFiltered.WithLabelValues("noise").Add(float64(noise))
	c.messagesFiltered.WithLabelValues("empty").Add(float64(empty))
	c.messagesFiltered.WithLabelValues("duplicate").Add(float64(duplicate))
}

// RecordQualityScore 记录质量分
func (c *Collector) RecordQualityScore(score int) {
	c.qualityScore.Observe(float64(score))
}

// RecordTriggerPhrases 记录提取的触发短语数
func (c *Collector) RecordTriggerPhrases(n int) {
	c.triggerPhrases.Add(float64(n))
}

// =============================================================================
// 🔎 索引指标记录
// =============================================================================

// RecordIndex 记录一次文档索引
func (c *Collector) RecordIndex(status string, records int, duration time.Duration) {
	c.indexRequestsTotal.WithLabelValues(status).Inc()
	c.indexRecords.Add(float64(records))
	c.indexDuration.Observe(duration.Seconds())
}

// =============================================================================
// 💾 缓存指标记录
// =============================================================================

// RecordCacheHit 记录缓存命中
func (c *Collector) RecordCacheHit(cacheType string) {
	c.cacheHits.WithLabelValues(cacheType).Inc()
}

// RecordCacheMiss 记录缓存未命中
func (c *Collector) RecordCacheMiss(cacheType string) {
	c.cacheMisses.WithLabelValues(cacheType).Inc()
}

// =============================================================================
// 🗄️ 数据库指标记录
// =============================================================================

// RecordDBConnections 记录数据库连接数
func (c *Collector) RecordDBConnections(database string, open, idle int) {
	c.dbConnectionsOpen.WithLabelValues(database).Set(float64(open))
	c.dbConnectionsIdle.WithLabelValues(database).Set(float64(idle))
}

// RecordDBQuery 记录数据库查询
func (c *Collector) RecordDBQuery(database, operation string, duration time.Duration) {
	c.dbQueryDuration.WithLabelValues(database, operation).Observe(duration.Seconds())
}

// =============================================================================
// 🔧 辅助函数
// =============================================================================

// statusCode 将状态码归并为 2xx..5xx 五类之一，其余返回 unknown
func statusCode(code int) string {
	if code < 200 || code > 599 {
		return "unknown"
	}
	return string(rune('0'+code/100)) + "xx"
}
