package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/memcurator/config"
	"github.com/BaSui01/memcurator/internal/tlsutil"
)

var (
	errClosed  = errors.New("server is closed")
	errStarted = errors.New("server already started")
)

// =============================================================================
// ⚙️ 配置
// =============================================================================

// Config 服务器配置。TLSCertFile 与 TLSKeyFile 均设置时以 HTTPS 启动。
type Config struct {
	Addr            string        `yaml:"addr" json:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" json:"idle_timeout"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" json:"max_header_bytes"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
	TLSCertFile     string        `yaml:"tls_cert_file" json:"tls_cert_file"`
	TLSKeyFile      string        `yaml:"tls_key_file" json:"tls_key_file"`
}

// DefaultConfig 返回默认服务器配置
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     2 * time.Minute,
		MaxHeaderBytes:  1 << 20,
		ShutdownTimeout: 30 * time.Second,
	}
}

// FromServerConfig 由应用配置构造服务器配置，非正的超时取默认值
func FromServerConfig(sc config.ServerConfig) Config {
	cfg := DefaultConfig()
	cfg.Addr = sc.Addr
	cfg.TLSCertFile, cfg.TLSKeyFile = sc.TLSCertFile, sc.TLSKeyFile
	for dst, src := range map[*time.Duration]time.Duration{
		&cfg.ReadTimeout:     sc.ReadTimeout,
		&cfg.WriteTimeout:    sc.WriteTimeout,
		&cfg.IdleTimeout:     sc.IdleTimeout,
		&cfg.ShutdownTimeout: sc.ShutdownTimeout,
	} {
		if src > 0 {
			*dst = src
		}
	}
	return cfg
}

// TLSEnabled 是否配置了证书
func (c Config) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// =============================================================================
// 🌐 Manager
// =============================================================================

// ShutdownHook 在 HTTP 服务停止后按注册逆序执行（关闭存储、缓存、遥测等）
type ShutdownHook struct {
	Name string
	Fn   func(ctx context.Context) error
}

// Manager 管理单个 http.Server 的监听、关闭与关闭钩子
type Manager struct {
	server *http.Server
	config Config
	logger *zap.Logger
	errCh  chan error

	mu       sync.RWMutex
	listener net.Listener
	hooks    []ShutdownHook
	closed   bool
}

// NewManager 创建服务器管理器
func NewManager(handler http.Handler, cfg Config, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		server: &http.Server{
			Addr:           cfg.Addr,
			Handler:        handler,
			ReadTimeout:    cfg.ReadTimeout,
			WriteTimeout:   cfg.WriteTimeout,
			IdleTimeout:    cfg.IdleTimeout,
			MaxHeaderBytes: cfg.MaxHeaderBytes,
		},
		config: cfg,
		logger: logger.With(zap.String("component", "http_server")),
		errCh:  make(chan error, 1),
	}
}

// OnShutdown 注册关闭钩子
func (m *Manager) OnShutdown(name string, fn func(ctx context.Context) error) {
	m.mu.Lock()
	m.hooks = append(m.hooks, ShutdownHook{Name: name, Fn: fn})
	m.mu.Unlock()
}

// Start 监听并在后台提供服务。证书加载失败时不会开始监听。
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case m.closed:
		return errClosed
	case m.listener != nil:
		return errStarted
	}

	serve := m.server.Serve
	scheme := "http"
	if m.config.TLSEnabled() {
		tlsConfig, err := tlsutil.ServerConfig(m.config.TLSCertFile, m.config.TLSKeyFile)
		if err != nil {
			return err
		}
		m.server.TLSConfig = tlsConfig
		serve = func(l net.Listener) error { return m.server.ServeTLS(l, "", "") }
		scheme = "https"
	}

	l, err := net.Listen("tcp", m.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", m.config.Addr, err)
	}
	m.listener = l

	m.logger.Info("starting HTTP server",
		zap.String("addr", l.Addr().String()),
		zap.String("scheme", scheme))
	go func() { m.report(serve(l)) }()
	return nil
}

// report 将非正常退出的错误投递到 errCh，通道已满时丢弃
func (m *Manager) report(err error) {
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		return
	}
	m.logger.Error("HTTP server failed", zap.Error(err))
	select {
	case m.errCh <- err:
	default:
	}
}

// Shutdown 在 ShutdownTimeout 内优雅关闭，然后逆序执行钩子。重复调用返回 nil。
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	m.logger.Info("shutting down HTTP server")

	ctx, cancel := context.WithTimeout(ctx, m.config.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := m.server.Shutdown(ctx); err != nil {
		m.logger.Error("HTTP server shutdown failed", zap.Error(err))
		errs = append(errs, err)
	}
	m.listener = nil
	errs = append(errs, m.runHooks(ctx)...)

	m.logger.Info("HTTP server stopped")
	return errors.Join(errs...)
}

func (m *Manager) runHooks(ctx context.Context) []error {
	var errs []error
	for i := len(m.hooks) - 1; i >= 0; i-- {
		h := m.hooks[i]
		if err := h.Fn(ctx); err != nil {
			m.logger.Warn("shutdown hook failed", zap.String("hook", h.Name), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", h.Name, err))
		}
	}
	return errs
}

// Run 阻塞直到 ctx 结束或服务异常退出，然后优雅关闭。
// 调用方通常传入 signal.NotifyContext 得到的上下文。
func (m *Manager) Run(ctx context.Context) error {
	var runErr error
	select {
	case <-ctx.Done():
		m.logger.Info("received shutdown signal")
	case runErr = <-m.errCh:
		m.logger.Error("server exited unexpectedly", zap.Error(runErr))
	}

	if err := m.Shutdown(context.Background()); err != nil {
		m.logger.Error("shutdown error", zap.Error(err))
		return errors.Join(runErr, err)
	}
	return runErr
}

// Errors 返回服务协程的异步错误
func (m *Manager) Errors() <-chan error { return m.errCh }

// Addr 返回实际监听地址；未启动时返回配置地址
func (m *Manager) Addr() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.listener != nil {
		return m.listener.Addr().String()
	}
	return m.config.Addr
}

// IsRunning 检查服务器是否已启动且未关闭
func (m *Manager) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listener != nil && !m.closed
}
