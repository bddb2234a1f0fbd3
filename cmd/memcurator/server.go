package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/BaSui01/memcurator/api/handlers"
	"github.com/BaSui01/memcurator/config"
	"github.com/BaSui01/memcurator/curation"
	"github.com/BaSui01/memcurator/curation/anchor"
	"github.com/BaSui01/memcurator/curation/triggers"
	"github.com/BaSui01/memcurator/indexing"
	"github.com/BaSui01/memcurator/internal/cache"
	"github.com/BaSui01/memcurator/internal/metrics"
	"github.com/BaSui01/memcurator/internal/server"
	"github.com/BaSui01/memcurator/internal/telemetry"
	"github.com/BaSui01/memcurator/internal/tokenizer"
	"github.com/BaSui01/memcurator/store"
)

const redisKeyPrefix = "memcurator:curation:"

// skipAuthPaths 免认证的运维端点
var skipAuthPaths = []string{"/health", "/ready", "/version", "/metrics"}

// =============================================================================
// 🖥️ Server 结构
// =============================================================================

// Server 组装整理服务的全部依赖并管理其生命周期
type Server struct {
	cfg       *config.Config
	logger    *zap.Logger
	telemetry *telemetry.Providers

	registerer prometheus.Registerer
	gatherer   prometheus.Gatherer

	collector *metrics.Collector
	curator   *curation.Curator
	store     *store.DocumentStore
	indexer   *indexing.Indexer
	health    *handlers.HealthHandler
	watcher   *config.FileWatcher

	manager *server.Manager
	hooks   []server.ShutdownHook
}

// NewServer 创建服务器。reg 为 nil 时使用 Prometheus 默认注册表。
func NewServer(cfg *config.Config, logger *zap.Logger, providers *telemetry.Providers, reg *prometheus.Registry) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		cfg:        cfg,
		logger:     logger,
		telemetry:  providers,
		registerer: prometheus.DefaultRegisterer,
		gatherer:   prometheus.DefaultGatherer,
	}
	if reg != nil {
		s.registerer = reg
		s.gatherer = reg
	}
	return s
}

// onShutdown 记录关闭钩子，Manager 创建后统一注册（逆序执行）
func (s *Server) onShutdown(name string, fn func(ctx context.Context) error) {
	s.hooks = append(s.hooks, server.ShutdownHook{Name: name, Fn: fn})
}

// =============================================================================
// 🚀 启动流程
// =============================================================================

// Start 构建处理链并启动 HTTP 服务（非阻塞）
func (s *Server) Start(ctx context.Context) error {
	handler, err := s.Build(ctx)
	if err != nil {
		s.runHooks(context.Background())
		return err
	}

	s.manager = server.NewManager(handler, server.FromServerConfig(s.cfg.Server), s.logger)
	for _, h := range s.hooks {
		s.manager.OnShutdown(h.Name, h.Fn)
	}
	if err := s.manager.Start(); err != nil {
		_ = s.manager.Shutdown(context.Background())
		return fmt.Errorf("start HTTP server: %w", err)
	}

	s.logger.Info("memcurator serving",
		zap.String("addr", s.manager.Addr()),
		zap.Bool("store", s.store != nil),
		zap.Bool("indexing", s.indexer != nil),
		zap.Bool("auth", s.cfg.Auth.Enabled()),
	)
	return nil
}

// Wait 阻塞到 ctx 结束或服务异常退出，然后执行关闭钩子
func (s *Server) Wait(ctx context.Context) error {
	return s.manager.Run(ctx)
}

// Run 启动服务并阻塞到 ctx 结束
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	return s.Wait(ctx)
}

// runHooks 在 Manager 创建前失败时释放已打开的资源
func (s *Server) runHooks(ctx context.Context) {
	for i := len(s.hooks) - 1; i >= 0; i-- {
		if err := s.hooks[i].Fn(ctx); err != nil {
			s.logger.Warn("cleanup failed", zap.String("hook", s.hooks[i].Name), zap.Error(err))
		}
	}
	s.hooks = nil
}

// Build 初始化所有组件并返回带中间件的 HTTP 处理器。
// ctx 控制文件监听与限流清理协程的生命周期。
func (s *Server) Build(ctx context.Context) (http.Handler, error) {
	s.health = handlers.NewHealthHandler(Version, s.logger)

	if s.cfg.Metrics.Enabled {
		s.collector = metrics.NewCollectorWithRegisterer(s.cfg.Metrics.Namespace, s.registerer, s.logger)
	}

	if s.telemetry != nil {
		s.onShutdown("telemetry", s.telemetry.Shutdown)
	}

	s.initCurator()
	s.initStore()
	s.initIndexer()

	if err := s.initFilterWatcher(ctx); err != nil {
		return nil, err
	}

	return s.routes(), nil
}

// =============================================================================
// 🔧 初始化方法
// =============================================================================

func (s *Server) initCurator() {
	filterCfg := config.DefaultFilterConfig()
	if path := s.cfg.Filter.ConfigPath; path != "" {
		filterCfg = config.LoadFilterConfig(path, s.logger)
	}

	opts := []curation.Option{
		curation.WithLogger(s.logger),
		curation.WithFilterConfig(filterCfg),
		curation.WithTriggerLimits(s.cfg.Triggers.MinPhrases, s.cfg.Triggers.MaxPhrases),
		curation.WithConcurrency(s.cfg.Curator.Concurrency),
		curation.WithTokenCounter(tokenizer.ForModel(s.cfg.Tokenizer.Model, s.logger)),
		curation.WithTracer(s.telemetry.Tracer("github.com/BaSui01/memcurator/curation")),
	}
	if s.collector != nil {
		opts = append(opts, curation.WithMetrics(s.collector))
	}
	if rc := s.resultCache(); rc != nil {
		opts = append(opts, curation.WithCache(rc))
	}
	s.curator = curation.NewCurator(opts...)
}

// resultCache 按配置选择结果缓存；Redis 不可用时降级为不缓存
func (s *Server) resultCache() curation.ResultCache {
	cc := s.cfg.Curator
	switch cc.Cache {
	case "memory":
		return curation.NewLRUCache(cc.CacheSize, cc.CacheTTL)
	case "redis":
		mgr, err := cache.NewManager(cache.FromRedisConfig(s.cfg.Redis, cc.CacheTTL), s.logger)
		if err != nil {
			s.logger.Warn("redis unavailable, result cache disabled", zap.Error(err))
			return nil
		}
		s.health.RegisterCheck(handlers.NewPingCheck("redis", mgr.Ping))
		s.onShutdown("redis", func(context.Context) error { return mgr.Close() })
		return curation.NewRedisCache(mgr, redisKeyPrefix, cc.CacheTTL)
	default:
		return nil
	}
}

func (s *Server) initStore() {
	if s.cfg.Database.Driver == "" {
		s.logger.Info("database not configured, document routes disabled")
		return
	}
	st, err := store.Open(s.cfg.Database, s.logger)
	if err != nil {
		s.logger.Warn("database unavailable, document routes disabled", zap.Error(err))
		return
	}
	if s.collector != nil {
		if err := st.Pool().SetMetrics(s.collector); err != nil {
			s.logger.Warn("database metrics disabled", zap.Error(err))
		}
	}
	s.store = st
	s.health.RegisterCheck(handlers.NewPingCheck("database", st.Pool().Ping))
	s.onShutdown("database", func(context.Context) error { return st.Close() })
}

func (s *Server) initIndexer() {
	ic := s.cfg.Indexing
	if !ic.Enabled {
		return
	}
	vectors := indexing.NewInMemoryVectorStore(ic.Dimension, s.logger)
	opts := []indexing.IndexerOption{
		indexing.WithRateLimit(ic.RequestsPerSecond, ic.Burst),
		indexing.WithIndexLogger(s.logger),
	}
	if s.collector != nil {
		opts = append(opts, indexing.WithIndexMetrics(s.collector))
	}
	s.indexer = indexing.NewIndexer(indexing.NewHashEmbedder(ic.Dimension), vectors, opts...)
	s.onShutdown("vector_store", func(context.Context) error { return vectors.Close() })
}

func (s *Server) initFilterWatcher(ctx context.Context) error {
	fc := s.cfg.Filter
	if fc.ConfigPath == "" || fc.WatchInterval <= 0 {
		return nil
	}
	w, err := config.WatchFilterConfig(ctx, fc.ConfigPath, fc.WatchInterval, s.logger, s.curator.SetFilterConfig)
	if err != nil {
		return fmt.Errorf("watch filter config: %w", err)
	}
	s.watcher = w
	s.onShutdown("filter_watcher", func(context.Context) error { return w.Stop() })
	return nil
}

// =============================================================================
// 🌐 路由与中间件
// =============================================================================

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.health.HandleHealth)
	mux.HandleFunc("GET /ready", s.health.HandleReady)
	mux.HandleFunc("GET /version", s.health.HandleVersion(BuildTime, GitCommit))
	if s.collector != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	opts := []handlers.CurationOption{
		handlers.WithExtractor(triggers.New(
			triggers.WithLimits(s.cfg.Triggers.MinPhrases, s.cfg.Triggers.MaxPhrases),
			triggers.WithLogger(s.logger),
		)),
		handlers.WithAnchorGenerator(anchor.NewGenerator(nil), s.cfg.Anchor.DefaultCategory),
	}
	if s.cfg.Server.MaxBodyBytes > 0 {
		opts = append(opts, handlers.WithMaxBodyBytes(s.cfg.Server.MaxBodyBytes))
	}
	if s.store != nil {
		opts = append(opts, handlers.WithStore(s.store))
	}
	if s.indexer != nil {
		opts = append(opts, handlers.WithIndexer(s.indexer))
	}
	handlers.NewCurationHandler(s.curator, s.logger, opts...).Register(mux)

	middlewares := []Middleware{
		Recovery(s.logger),
		RequestID(),
		SecurityHeaders(),
		RequestLogger(s.logger),
		OTelTracing(),
	}
	if s.collector != nil {
		middlewares = append(middlewares, MetricsMiddleware(s.collector))
	}
	middlewares = append(middlewares, CORS(s.cfg.Server.CORSAllowedOrigins))
	if s.cfg.Server.RateLimitRPS > 0 {
		middlewares = append(middlewares,
			RateLimiter(s.cfg.Server.RateLimitRPS, s.cfg.Server.RateLimitBurst, s.logger))
	}
	middlewares = append(middlewares, Auth(s.cfg.Auth, skipAuthPaths, s.logger))

	return Chain(mux, middlewares...)
}
