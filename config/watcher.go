// 配置文件变更监听器实现。
//
// 以轮询 mtime 的方式检测变更，经防抖后触发回调；serve 命令用它在运行时
// 重载 filters.jsonc。
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
)

// FileOp 文件变更类型
type FileOp int

const (
	FileOpCreate FileOp = iota
	FileOpWrite
	FileOpRemove
)

var fileOpNames = [...]string{FileOpCreate: "CREATE", FileOpWrite: "WRITE", FileOpRemove: "REMOVE"}

func (op FileOp) String() string {
	if op >= 0 && int(op) < len(fileOpNames) {
		return fileOpNames[op]
	}
	return "UNKNOWN"
}

// FileEvent 一次去抖后的文件变更
type FileEvent struct {
	Path      string    `json:"path"`
	Op        FileOp    `json:"op"`
	Timestamp time.Time `json:"timestamp"`
}

// FileWatcher 轮询一组文件的 mtime。不存在的文件会等待其被创建。
type FileWatcher struct {
	paths         []string
	pollInterval  time.Duration
	debounceDelay time.Duration
	logger        *zap.Logger

	mu        sync.RWMutex
	stop      chan struct{}
	callbacks []func(FileEvent)
	seen      map[string]time.Time
}

// WatcherOption configures the FileWatcher
type WatcherOption func(*FileWatcher)

// WithDebounceDelay 同一路径在该时长内的多次变更合并为一次回调
func WithDebounceDelay(d time.Duration) WatcherOption {
	return func(w *FileWatcher) { w.debounceDelay = d }
}

// WithPollInterval 设置 stat 间隔，非正值忽略
func WithPollInterval(d time.Duration) WatcherOption {
	return func(w *FileWatcher) {
		if d > 0 {
			w.pollInterval = d
		}
	}
}

// WithWatcherLogger sets the logger for the watcher
func WithWatcherLogger(logger *zap.Logger) WatcherOption {
	return func(w *FileWatcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewFileWatcher 创建监听器。stat 失败且不是文件不存在时返回错误。
func NewFileWatcher(paths []string, opts ...WatcherOption) (*FileWatcher, error) {
	w := &FileWatcher{
		paths:         append([]string(nil), paths...),
		pollInterval:  time.Second,
		debounceDelay: 100 * time.Millisecond,
		logger:        zap.NewNop(),
		seen:          make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With(zap.String("component", "config_watcher"))

	for _, path := range w.paths {
		_, err := os.Stat(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			w.logger.Warn("watched file does not exist yet", zap.String("path", path))
		case err != nil:
			return nil, fmt.Errorf("failed to stat path %s: %w", path, err)
		}
	}
	return w, nil
}

// OnChange 注册回调，回调在监听协程中串行执行
func (w *FileWatcher) OnChange(callback func(FileEvent)) {
	w.mu.Lock()
	w.callbacks = append(w.callbacks, callback)
	w.mu.Unlock()
}

// Start 记录当前 mtime 作为基线并开始轮询，直到 ctx 结束或 Stop
func (w *FileWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.stop != nil {
		w.mu.Unlock()
		return errors.New("watcher already running")
	}
	stop := make(chan struct{})
	w.stop = stop
	for _, path := range w.paths {
		if info, err := os.Stat(path); err == nil {
			w.seen[path] = info.ModTime()
		}
	}
	w.mu.Unlock()

	go w.run(ctx, stop)

	w.logger.Info("file watcher started",
		zap.Strings("paths", w.paths),
		zap.Duration("poll_interval", w.pollInterval))
	return nil
}

// Stop 停止轮询，未运行时直接返回
func (w *FileWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stop == nil {
		return nil
	}
	close(w.stop)
	w.stop = nil
	w.logger.Info("file watcher stopped")
	return nil
}

// IsRunning returns whether the watcher is running
func (w *FileWatcher) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stop != nil
}

// Paths returns the list of watched paths
func (w *FileWatcher) Paths() []string {
	return append([]string(nil), w.paths...)
}

// run 在单个协程中轮询并去抖：新事件覆盖同路径的待发事件并重置计时器。
// 因 ctx 结束退出时清除运行状态，之后可再次 Start。
func (w *FileWatcher) run(ctx context.Context, stop chan struct{}) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	debounce := time.NewTimer(w.debounceDelay)
	debounce.Stop()
	defer debounce.Stop()

	pending := make(map[string]FileEvent)
	for {
		select {
		case <-ctx.Done():
			w.release(stop)
			return
		case <-stop:
			return
		case <-ticker.C:
			events := w.checkFiles()
			for _, evt := range events {
				pending[evt.Path] = evt
			}
			if len(events) > 0 {
				debounce.Reset(w.debounceDelay)
			}
		case <-debounce.C:
			w.dispatch(pending)
			clear(pending)
		}
	}
}

// release 仅当 stop 仍属于本次运行时清除
func (w *FileWatcher) release(stop chan struct{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stop == stop {
		w.stop = nil
		w.logger.Info("file watcher stopped", zap.String("reason", "context done"))
	}
}

func (w *FileWatcher) dispatch(events map[string]FileEvent) {
	w.mu.RLock()
	callbacks := slices.Clone(w.callbacks)
	w.mu.RUnlock()

	for _, evt := range events {
		w.logger.Debug("dispatching file event",
			zap.String("path", evt.Path),
			zap.Stringer("op", evt.Op))
		for _, cb := range callbacks {
			cb(evt)
		}
	}
}

// checkFiles 与上次记录的 mtime 比较，返回本轮的变更
func (w *FileWatcher) checkFiles() []FileEvent {
	w.mu.Lock()
	defer w.mu.Unlock()

	var events []FileEvent
	now := time.Now()
	emit := func(path string, op FileOp) {
		events = append(events, FileEvent{Path: path, Op: op, Timestamp: now})
	}

	for _, path := range w.paths {
		last, known := w.seen[path]
		info, err := os.Stat(path)
		switch {
		case err != nil:
			if known && errors.Is(err, fs.ErrNotExist) {
				delete(w.seen, path)
				emit(path, FileOpRemove)
			}
		case !known:
			w.seen[path] = info.ModTime()
			emit(path, FileOpCreate)
		case info.ModTime().After(last):
			w.seen[path] = info.ModTime()
			emit(path, FileOpWrite)
		}
	}
	return events
}

// WatchFilterConfig 监听 filters.jsonc，变更时重新加载并回调。
// 文件被删除时回调收到默认配置。
func WatchFilterConfig(ctx context.Context, path string, interval time.Duration, logger *zap.Logger, onReload func(*FilterConfig)) (*FileWatcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	w, err := NewFileWatcher([]string{path}, WithPollInterval(interval), WithWatcherLogger(logger))
	if err != nil {
		return nil, err
	}
	w.OnChange(func(evt FileEvent) {
		cfg := LoadFilterConfig(evt.Path, logger)
		logger.Info("filter config reloaded",
			zap.String("path", evt.Path),
			zap.Stringer("op", evt.Op),
			zap.Float64("similarity_threshold", cfg.Dedupe.SimilarityThreshold))
		onReload(cfg)
	})
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	return w, nil
}
