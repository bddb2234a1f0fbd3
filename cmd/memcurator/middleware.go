package main

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/BaSui01/memcurator/api/handlers"
	"github.com/BaSui01/memcurator/internal/ctxkeys"
	"github.com/BaSui01/memcurator/internal/metrics"
	"github.com/BaSui01/memcurator/types"
)

// Middleware 类型定义
type Middleware func(http.Handler) http.Handler

// Chain 将多个中间件串联，第一个中间件位于最外层
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// around 把带 next 参数的处理函数转换为中间件
func around(fn func(next http.Handler, w http.ResponseWriter, r *http.Request)) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { fn(next, w, r) })
	}
}

// serveRecorded 执行 next 并返回记录了状态码与字节数的 writer 以及耗时
func serveRecorded(next http.Handler, w http.ResponseWriter, r *http.Request) (*handlers.ResponseWriter, time.Duration) {
	start := time.Now()
	rw := handlers.NewResponseWriter(w)
	next.ServeHTTP(rw, r)
	return rw, time.Since(start)
}

// reject 以 handlers.Response 信封写出错误，状态码由错误码决定
func reject(w http.ResponseWriter, code types.ErrorCode, message string) {
	handlers.WriteError(w, types.NewError(code, message), nil)
}

// =============================================================================
// 🧱 基础中间件
// =============================================================================

// Recovery 捕获 panic 并返回 500
func Recovery(logger *zap.Logger) Middleware {
	return around(func(next http.Handler, w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				logger.Error("panic recovered",
					zap.Any("error", v),
					zap.String("path", r.URL.Path),
					zap.String("request_id", ctxkeys.RequestID(r.Context())))
				reject(w, types.ErrInternal, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// RequestID 沿用客户端的 X-Request-ID，缺省时生成 req-<uuid>，并写入响应头与上下文
func RequestID() Middleware {
	return around(func(next http.Handler, w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(handlers.RequestIDHeader)
		if id == "" {
			id = generateRequestID()
		}
		w.Header().Set(handlers.RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(ctxkeys.WithRequestID(r.Context(), id)))
	})
}

func generateRequestID() string {
	return "req-" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

var securityHeaders = [][2]string{
	{"X-Frame-Options", "DENY"},
	{"X-Content-Type-Options", "nosniff"},
	{"Referrer-Policy", "strict-origin-when-cross-origin"},
	{"Content-Security-Policy", "default-src 'none'"},
}

// SecurityHeaders 为所有响应添加安全头
func SecurityHeaders() Middleware {
	return around(func(next http.Handler, w http.ResponseWriter, r *http.Request) {
		for _, h := range securityHeaders {
			w.Header().Set(h[0], h[1])
		}
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// 📈 可观测性
// =============================================================================

// RequestLogger 每个请求结束后记录一条 Info 日志
func RequestLogger(logger *zap.Logger) Middleware {
	return around(func(next http.Handler, w http.ResponseWriter, r *http.Request) {
		rw, took := serveRecorded(next, w, r)
		logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rw.StatusCode),
			zap.Int64("bytes", rw.Bytes),
			zap.Duration("duration", took),
			zap.String("remote_addr", r.RemoteAddr),
			zap.String("request_id", ctxkeys.RequestID(r.Context())),
		)
	})
}

// MetricsMiddleware 记录请求耗时、状态与大小，路径标签经 normalizePath 归一
func MetricsMiddleware(collector *metrics.Collector) Middleware {
	return around(func(next http.Handler, w http.ResponseWriter, r *http.Request) {
		rw, took := serveRecorded(next, w, r)
		collector.RecordHTTPRequest(r.Method, normalizePath(r.URL.Path), rw.StatusCode, took,
			max(r.ContentLength, 0), rw.Bytes)
	})
}

// OTelTracing 为每个请求创建 server span，并延续请求头携带的 trace 上下文
func OTelTracing() Middleware {
	return around(func(next http.Handler, w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx, span := otel.Tracer("memcurator/http").Start(ctx, r.Method+" "+normalizePath(r.URL.Path),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				semconv.HTTPRequestMethodKey.String(r.Method),
				semconv.URLPath(r.URL.Path),
			),
		)
		defer span.End()

		rw, _ := serveRecorded(next, w, r.WithContext(ctx))
		span.SetAttributes(attribute.Int("http.response.status_code", rw.StatusCode))
		if rw.StatusCode >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(rw.StatusCode))
		}
	})
}

// staticRoutes 不含动态段的路由，直接作为标签
var staticRoutes = map[string]bool{
	"/health": true, "/ready": true, "/version": true, "/metrics": true,
	"/v1/curate": true, "/v1/triggers": true, "/v1/anchors": true,
	"/v1/documents": true, "/v1/search": true,
}

// normalizePath 将 UUID、数字与 8 位以上十六进制段替换为 :id，避免标签基数膨胀
func normalizePath(path string) string {
	if staticRoutes[path] {
		return path
	}
	segments := strings.Split(path, "/")
	changed := false
	for i, seg := range segments {
		if seg != "" && isIdentifier(seg) {
			segments[i] = ":id"
			changed = true
		}
	}
	if !changed {
		return path
	}
	return strings.Join(segments, "/")
}

func isIdentifier(seg string) bool {
	if _, err := uuid.Parse(seg); err == nil {
		return true
	}
	if _, err := strconv.ParseUint(seg, 10, 64); err == nil {
		return true
	}
	return len(seg) >= 8 && strings.Trim(seg, "0123456789abcdefABCDEF") == ""
}

// =============================================================================
// 🚦 流量控制
// =============================================================================

const limiterCapacity = 10000

// RateLimiter 基于客户端 IP 的令牌桶限流。每个 IP 的桶在最后一次请求
// 3 分钟后过期，最多跟踪 limiterCapacity 个 IP。
func RateLimiter(rps float64, burst int, logger *zap.Logger) Middleware {
	var mu sync.Mutex
	buckets := expirable.NewLRU[string, *rate.Limiter](limiterCapacity, nil, 3*time.Minute)

	bucket := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		l, ok := buckets.Get(ip)
		if !ok {
			l = rate.NewLimiter(rate.Limit(rps), burst)
		}
		buckets.Add(ip, l)
		return l
	}

	return around(func(next http.Handler, w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if !bucket(ip).Allow() {
			logger.Debug("rate limited", zap.String("ip", ip), zap.String("path", r.URL.Path))
			reject(w, types.ErrRateLimited, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CORS 只为白名单来源设置跨域头。非白名单来源的预检返回 403，
// allowedOrigins 为空等同于拒绝所有跨域预检。
func CORS(allowedOrigins []string) Middleware {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	preflight := func(r *http.Request) bool { return r.Method == http.MethodOptions }

	return around(func(next http.Handler, w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case origin == "":
		case !allowed[origin]:
			if preflight(r) {
				w.WriteHeader(http.StatusForbidden)
				return
			}
		default:
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key, Authorization, X-Request-ID")
			h.Set("Access-Control-Max-Age", "86400")
			h.Add("Vary", "Origin")
			if preflight(r) {
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
