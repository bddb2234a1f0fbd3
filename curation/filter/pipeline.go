package filter

import (
	"github.com/BaSui01/memcurator/config"
	"github.com/BaSui01/memcurator/types"

	"go.uber.org/zap"
)

// FilteredCounts 按原因统计的移除数。LowQuality 为 1 表示本次运行评分低于
// 告警阈值，低质量只标记不丢弃。
type FilteredCounts struct {
	Noise      int `json:"noise"`
	Empty      int `json:"empty"`
	Duplicate  int `json:"duplicate"`
	LowQuality int `json:"low_quality"`
}

// Stats 单次运行的统计，每次 Filter 开始时清零
type Stats struct {
	TotalProcessed    int              `json:"total_processed"`
	NoiseFiltered     int              `json:"noise_filtered"`
	DuplicatesRemoved int              `json:"duplicates_removed"`
	QualityScore      int              `json:"quality_score"`
	Quality           QualityBreakdown `json:"quality"`
	Filtered          FilteredCounts   `json:"filtered"`
}

// Pipeline 按配置顺序执行过滤阶段。非并发安全，每次整理创建一个。
type Pipeline struct {
	cfg    *config.FilterConfig
	logger *zap.Logger
	stats  Stats
	scored bool
}

// NewPipeline 创建过滤流水线，cfg 为 nil 时使用内置默认值
func NewPipeline(cfg *config.FilterConfig, logger *zap.Logger) *Pipeline {
	if cfg == nil {
		cfg = config.DefaultFilterConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		cfg:    cfg,
		logger: logger.With(zap.String("component", "content_filter")),
	}
}

// Config 返回流水线使用的配置
func (p *Pipeline) Config() *config.FilterConfig {
	return p.cfg
}

// Filter 清零统计后按配置顺序执行各阶段，返回保留的消息。
// 包装标记剥离会原地改写 msgs 中保留消息的 prompt/content。
func (p *Pipeline) Filter(msgs []types.Message) []types.Message {
	p.ResetStats()
	p.stats.TotalProcessed = len(msgs)
	if !p.cfg.Pipeline.Enabled {
		return msgs
	}

	current := msgs
	var preDedupe []types.Message
	for _, stage := range p.cfg.Pipeline.Stages {
		switch stage {
		case config.StageNoise:
			if !p.cfg.Noise.Enabled {
				continue
			}
			var res NoiseResult
			current, res = FilterNoise(current, p.cfg.Noise)
			p.stats.Filtered.Noise += res.Noise
			p.stats.Filtered.Empty += res.Empty
			p.stats.NoiseFiltered += res.Noise + res.Empty
			p.logger.Debug("noise stage done",
				zap.Int("noise", res.Noise),
				zap.Int("empty", res.Empty),
				zap.Int("remaining", len(current)))

		case config.StageDedupe:
			if !p.cfg.Dedupe.Enabled {
				continue
			}
			preDedupe = current
			var removed int
			current, removed = Deduplicate(current, p.cfg.Dedupe)
			p.stats.Filtered.Duplicate += removed
			p.stats.DuplicatesRemoved += removed
			p.logger.Debug("dedupe stage done",
				zap.Int("removed", removed),
				zap.Float64("threshold", p.cfg.Dedupe.SimilarityThreshold),
				zap.Int("remaining", len(current)))

		case config.StageQuality:
			if !p.cfg.Quality.Enabled {
				continue
			}
			// 唯一性按去重前的集合计算，否则恒为 1
			input := current
			if preDedupe != nil {
				input = preDedupe
			}
			p.stats.Quality = AssessQuality(input, p.cfg.Quality.Factors)
			p.stats.QualityScore = p.stats.Quality.Score
			p.scored = true
			if p.IsLowQuality() {
				p.stats.Filtered.LowQuality = 1
				p.logger.Warn("low quality transcript",
					zap.Int("score", p.stats.QualityScore),
					zap.Int("warn_threshold", p.cfg.Quality.WarnThreshold))
			}

		default:
			p.logger.Warn("unknown filter stage skipped", zap.String("stage", stage))
		}
	}
	return current
}

// Stats 返回最近一次运行的统计快照
func (p *Pipeline) Stats() Stats {
	return p.stats
}

// ResetStats 清零统计
func (p *Pipeline) ResetStats() {
	p.stats = Stats{}
	p.scored = false
}

// IsLowQuality 最近一次运行的评分是否低于告警阈值，质量阶段未执行时为 false
func (p *Pipeline) IsLowQuality() bool {
	return p.scored && IsLowQuality(p.stats.QualityScore, p.cfg.Quality.WarnThreshold)
}
