// Package tokenizer counts tokens of rendered memory documents.
// This package is internal and should not be imported by external projects.
package tokenizer

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"go.uber.org/zap"

	"github.com/BaSui01/memcurator/types"
)

// 模型到 tiktoken 编码的映射，未知模型按前缀匹配，否则使用 cl100k_base
var modelEncodings = map[string]string{
	"gpt-4o":                 "o200k_base",
	"gpt-4o-mini":            "o200k_base",
	"gpt-4-turbo":            "cl100k_base",
	"gpt-4":                  "cl100k_base",
	"gpt-3.5-turbo":          "cl100k_base",
	"text-embedding-3-large": "cl100k_base",
	"text-embedding-3-small": "cl100k_base",
}

const defaultEncoding = "cl100k_base"

// EncodingForModel 返回模型对应的 tiktoken 编码
func EncodingForModel(model string) string {
	if enc, ok := modelEncodings[model]; ok {
		return enc
	}
	best := ""
	for prefix := range modelEncodings {
		if strings.HasPrefix(model, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best != "" {
		return modelEncodings[best]
	}
	return defaultEncoding
}

// Counter 基于 tiktoken 的 Token 计数器。编码数据在首次使用时加载
// （可能需要下载），加载失败时退回字符估算并记录一次 Warn。
type Counter struct {
	encoding string
	enc      *tiktoken.Tiktoken
	fallback *types.EstimateTokenizer
	once     sync.Once
	initErr  error
	logger   *zap.Logger
}

// EstimateModel 选择字符估算计数，不加载 tiktoken 编码
const EstimateModel = "estimate"

// ForModel 返回模型对应的计数器；model 为空或 EstimateModel 时使用估算
func ForModel(model string, logger *zap.Logger) types.TokenCounter {
	if model == "" || model == EstimateModel {
		return types.NewEstimateTokenizer()
	}
	return New(model, logger)
}

// New 为模型创建计数器
func New(model string, logger *zap.Logger) *Counter {
	return newWithEncoding(EncodingForModel(model), logger)
}

func newWithEncoding(encoding string, logger *zap.Logger) *Counter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Counter{
		encoding: encoding,
		fallback: types.NewEstimateTokenizer(),
		logger:   logger.With(zap.String("component", "tokenizer")),
	}
}

// init lazily 初始化 tiktoken 编码
func (c *Counter) init() error {
	c.once.Do(func() {
		enc, err := tiktoken.GetEncoding(c.encoding)
		if err != nil {
			c.initErr = fmt.Errorf("init tiktoken encoding %s: %w", c.encoding, err)
			c.logger.Warn("tiktoken unavailable, using estimate", zap.Error(c.initErr))
			return
		}
		c.enc = enc
	})
	return c.initErr
}

// CountTokens 实现 types.TokenCounter
func (c *Counter) CountTokens(text string) int {
	if text == "" {
		return 0
	}
	if err := c.init(); err != nil {
		return c.fallback.CountTokens(text)
	}
	return len(c.enc.Encode(text, nil, nil))
}

// Exact 报告是否使用 tiktoken 精确计数
func (c *Counter) Exact() bool {
	return c.init() == nil
}

// Name 返回计数器名称
func (c *Counter) Name() string {
	if c.Exact() {
		return "tiktoken[" + c.encoding + "]"
	}
	return "estimate"
}
