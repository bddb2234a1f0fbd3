// =============================================================================
// 🧹 过滤流水线配置（filters.jsonc）
// =============================================================================
// JSON5 语法：允许 // 与 /* */ 注释、尾逗号。
// 缺失文件、读取失败、解析失败均回退到内置默认值，只记录 Warn 日志。
// 部分配置合并到默认值之上；越界数值被夹回默认值。
// =============================================================================
package config

import (
	"fmt"
	"os"

	"github.com/titanous/json5"
	"go.uber.org/zap"
)

// 流水线阶段名称
const (
	StageNoise   = "noise"
	StageDedupe  = "dedupe"
	StageQuality = "quality"
)

// FilterConfig mirrors filters.jsonc.
type FilterConfig struct {
	Pipeline PipelineConfig `json:"pipeline"`
	Noise    NoiseConfig    `json:"noise"`
	Dedupe   DedupeConfig   `json:"dedupe"`
	Quality  QualityConfig  `json:"quality"`
}

// PipelineConfig 控制整个流水线与阶段顺序
type PipelineConfig struct {
	Enabled bool     `json:"enabled"`
	Stages  []string `json:"stages"`
}

// NoiseConfig 噪声阶段配置
type NoiseConfig struct {
	Enabled          bool `json:"enabled"`
	MinContentLength int  `json:"min_content_length"`
	MinUniqueWords   int  `json:"min_unique_words"`
}

// DedupeConfig 去重阶段配置
type DedupeConfig struct {
	Enabled             bool    `json:"enabled"`
	HashLength          int     `json:"hash_length"`
	SimilarityThreshold float64 `json:"similarity_threshold"`
}

// QualityConfig 质量评分阶段配置
type QualityConfig struct {
	Enabled       bool           `json:"enabled"`
	WarnThreshold int            `json:"warn_threshold"`
	Factors       QualityFactors `json:"factors"`
}

// QualityFactors 质量评分权重
type QualityFactors struct {
	Uniqueness float64 `json:"uniqueness"`
	Density    float64 `json:"density"`
	FileRefs   float64 `json:"file_refs"`
	Decisions  float64 `json:"decisions"`
}

// Sum returns the total weight.
func (f QualityFactors) Sum() float64 {
	return f.Uniqueness + f.Density + f.FileRefs + f.Decisions
}

// DefaultFilterConfig 返回内置默认过滤配置
func DefaultFilterConfig() *FilterConfig {
	return &FilterConfig{
		Pipeline: PipelineConfig{
			Enabled: true,
			Stages:  []string{StageNoise, StageDedupe, StageQuality},
		},
		Noise: NoiseConfig{
			Enabled:          true,
			MinContentLength: 5,
			MinUniqueWords:   2,
		},
		Dedupe: DedupeConfig{
			Enabled:             true,
			HashLength:          200,
			SimilarityThreshold: 0.85,
		},
		Quality: QualityConfig{
			Enabled:       true,
			WarnThreshold: 20,
			Factors: QualityFactors{
				Uniqueness: 0.30,
				Density:    0.30,
				FileRefs:   0.20,
				Decisions:  0.20,
			},
		},
	}
}

// ParseFilterConfig 严格解析 JSON5 内容，结果合并在默认值之上。
// 越界值的修正见 Normalize。
func ParseFilterConfig(data []byte) (*FilterConfig, error) {
	cfg := DefaultFilterConfig()
	if err := json5.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse filter config: %w", err)
	}
	return cfg, nil
}

// LoadFilterConfig 从文件加载过滤配置，任何失败都回退到默认值
func LoadFilterConfig(path string, logger *zap.Logger) *FilterConfig {
	if logger == nil {
		logger = zap.NewNop()
	}
	if path == "" {
		return DefaultFilterConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("filter config unavailable, using defaults",
			zap.String("path", path), zap.Error(err))
		return DefaultFilterConfig()
	}

	cfg, err := ParseFilterConfig(data)
	if err != nil {
		logger.Warn("filter config malformed, using defaults",
			zap.String("path", path), zap.Error(err))
		return DefaultFilterConfig()
	}

	cfg.Normalize(logger)
	return cfg
}

// Normalize 把越界值夹回默认值，并剔除未知阶段
func (c *FilterConfig) Normalize(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	def := DefaultFilterConfig()
	warn := func(field string, got any, want any) {
		logger.Warn("filter config value out of range, using default",
			zap.String("field", field), zap.Any("value", got), zap.Any("default", want))
	}

	stages := make([]string, 0, len(c.Pipeline.Stages))
	seen := make(map[string]bool, len(c.Pipeline.Stages))
	for _, s := range c.Pipeline.Stages {
		switch s {
		case StageNoise, StageDedupe, StageQuality:
			if !seen[s] {
				seen[s] = true
				stages = append(stages, s)
			}
		default:
			logger.Warn("unknown filter stage ignored", zap.String("stage", s))
		}
	}
	if len(stages) == 0 {
		warn("pipeline.stages", c.Pipeline.Stages, def.Pipeline.Stages)
		stages = def.Pipeline.Stages
	}
	c.Pipeline.Stages = stages

	if c.Noise.MinContentLength < 0 {
		warn("noise.min_content_length", c.Noise.MinContentLength, def.Noise.MinContentLength)
		c.Noise.MinContentLength = def.Noise.MinContentLength
	}
	if c.Noise.MinUniqueWords < 0 {
		warn("noise.min_unique_words", c.Noise.MinUniqueWords, def.Noise.MinUniqueWords)
		c.Noise.MinUniqueWords = def.Noise.MinUniqueWords
	}
	if c.Dedupe.HashLength <= 0 {
		warn("dedupe.hash_length", c.Dedupe.HashLength, def.Dedupe.HashLength)
		c.Dedupe.HashLength = def.Dedupe.HashLength
	}
	if c.Dedupe.SimilarityThreshold <= 0 || c.Dedupe.SimilarityThreshold > 1 {
		warn("dedupe.similarity_threshold", c.Dedupe.SimilarityThreshold, def.Dedupe.SimilarityThreshold)
		c.Dedupe.SimilarityThreshold = def.Dedupe.SimilarityThreshold
	}
	if c.Quality.WarnThreshold < 0 || c.Quality.WarnThreshold > 100 {
		warn("quality.warn_threshold", c.Quality.WarnThreshold, def.Quality.WarnThreshold)
		c.Quality.WarnThreshold = def.Quality.WarnThreshold
	}
	f := c.Quality.Factors
	if f.Uniqueness < 0 || f.Density < 0 || f.FileRefs < 0 || f.Decisions < 0 || f.Sum() == 0 {
		warn("quality.factors", f, def.Quality.Factors)
		c.Quality.Factors = def.Quality.Factors
	}
}

// HasStage reports whether the pipeline runs the named stage.
func (c *FilterConfig) HasStage(name string) bool {
	for _, s := range c.Pipeline.Stages {
		if s == name {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (c *FilterConfig) Clone() *FilterConfig {
	out := *c
	out.Pipeline.Stages = append([]string(nil), c.Pipeline.Stages...)
	return &out
}
