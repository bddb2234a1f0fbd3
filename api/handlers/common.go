package handlers

import (
	"bytes"
	"cmp"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/memcurator/internal/pool"
	"github.com/BaSui01/memcurator/types"
)

// DefaultMaxBodyBytes 请求体默认上限（会话记录可能较大）
const DefaultMaxBodyBytes int64 = 10 << 20

// RequestIDHeader 请求 ID 头，由中间件写入响应头
const RequestIDHeader = "X-Request-ID"

// =============================================================================
// 📦 通用响应结构
// =============================================================================

// Response 统一 API 响应结构
type Response struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *ErrorInfo  `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"`
}

// ErrorInfo 错误信息结构
type ErrorInfo struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	Retryable  bool   `json:"retryable,omitempty"`
	HTTPStatus int    `json:"-"`
}

// =============================================================================
// 🎯 响应辅助函数
// =============================================================================

// WriteJSON 写入 JSON 响应。先编码到池化缓冲区，编码失败时仍可返回 500。
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	buf := pool.Buffers.Get()
	defer pool.Buffers.Put(buf)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	if err := json.NewEncoder(buf).Encode(data); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"success":false,"error":{"code":"INTERNAL_ERROR","message":"failed to encode response"}}`+"\n")
		return
	}
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// WriteSuccess 写入成功响应
func WriteSuccess(w http.ResponseWriter, data interface{}) {
	WriteJSON(w, http.StatusOK, Response{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC(),
		RequestID: w.Header().Get(RequestIDHeader),
	})
}

// WriteError 写入错误响应。状态码取 err.HTTPStatus，缺省时按错误码映射；
// 4xx 附带 cause 文本并记 Warn，5xx 隐藏 cause 并记 Error。
func WriteError(w http.ResponseWriter, err *types.Error, logger *zap.Logger) {
	status := cmp.Or(err.HTTPStatus, types.HTTPStatusFor(err.Code))
	serverSide := status >= http.StatusInternalServerError

	info := &ErrorInfo{
		Code:       string(err.Code),
		Message:    err.Message,
		Retryable:  err.Retryable,
		HTTPStatus: status,
	}
	if err.Cause != nil && !serverSide {
		info.Details = err.Cause.Error()
	}
	if logger != nil {
		log := logger.Warn
		if serverSide {
			log = logger.Error
		}
		log("API error",
			zap.String("code", info.Code),
			zap.String("message", err.Message),
			zap.Int("status", status),
			zap.Bool("retryable", err.Retryable),
			zap.NamedError("cause", err.Cause),
		)
	}

	WriteJSON(w, status, Response{
		Error:     info,
		Timestamp: time.Now().UTC(),
		RequestID: w.Header().Get(RequestIDHeader),
	})
}

// WriteErrorFrom 写入任意错误；非 *types.Error 视为内部错误
func WriteErrorFrom(w http.ResponseWriter, err error, logger *zap.Logger) {
	if e, ok := types.AsError(err); ok {
		WriteError(w, e, logger)
		return
	}
	WriteError(w, types.WrapError(err, types.ErrInternal, "internal error"), logger)
}

// WriteErrorMessage 写入简单错误消息
func WriteErrorMessage(w http.ResponseWriter, status int, code types.ErrorCode, message string, logger *zap.Logger) {
	WriteError(w, types.NewError(code, message).WithHTTPStatus(status), logger)
}

// =============================================================================
// 🛡️ 请求验证辅助函数
// =============================================================================

// invalid 写出 INVALID_INPUT 错误并返回它，status 为 0 时使用 400
func invalid(w http.ResponseWriter, logger *zap.Logger, status int, message string, cause error) error {
	err := types.NewError(types.ErrInvalidInput, message).WithHTTPStatus(status)
	if cause != nil {
		err.WithCause(cause)
	}
	WriteError(w, err, logger)
	return err
}

// DecodeJSONBody 严格解码 JSON 请求体（拒绝未知字段）。失败时已写出错误响应。
func DecodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}, logger *zap.Logger) error {
	body, err := ReadBody(w, r, DefaultMaxBodyBytes, logger)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return invalid(w, logger, http.StatusBadRequest, "invalid JSON body", err)
	}
	return nil
}

// ReadBody 读取不超过 limit 字节的非空请求体。失败时已写出错误响应。
func ReadBody(w http.ResponseWriter, r *http.Request, limit int64, logger *zap.Logger) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, invalid(w, logger, 0, "request body is empty", nil)
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return nil, invalid(w, logger, http.StatusRequestEntityTooLarge, "request body too large", nil)
	case err != nil:
		return nil, invalid(w, logger, 0, "failed to read request body", err)
	case len(bytes.TrimSpace(body)) == 0:
		return nil, invalid(w, logger, 0, "request body is empty", nil)
	}
	return body, nil
}

// ValidateContentType 要求 application/json（允许带参数）
func ValidateContentType(w http.ResponseWriter, r *http.Request, logger *zap.Logger) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		_ = invalid(w, logger, http.StatusUnsupportedMediaType, "Content-Type must be application/json", nil)
		return false
	}
	return true
}

// =============================================================================
// 📊 响应包装器
// =============================================================================

// ResponseWriter 记录首次写出的状态码与累计字节数
type ResponseWriter struct {
	http.ResponseWriter
	StatusCode int
	Bytes      int64
	wrote      bool
}

// NewResponseWriter 创建新的 ResponseWriter，未显式写头时状态为 200
func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{ResponseWriter: w, StatusCode: http.StatusOK}
}

// WriteHeader 只转发第一次调用
func (rw *ResponseWriter) WriteHeader(code int) {
	if rw.wrote {
		return
	}
	rw.wrote = true
	rw.StatusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *ResponseWriter) Write(b []byte) (int, error) {
	rw.WriteHeader(http.StatusOK)
	n, err := rw.ResponseWriter.Write(b)
	rw.Bytes += int64(n)
	return n, err
}

// Unwrap 供 http.ResponseController 访问底层 writer
func (rw *ResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
