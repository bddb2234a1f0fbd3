package filter

import (
	"math"
	"regexp"

	"github.com/BaSui01/memcurator/config"
	"github.com/BaSui01/memcurator/types"
)

// 每条消息的计数上限
const (
	densityCap  = 3
	fileRefCap  = 2
	decisionCap = 2
)

var (
	densityVocab   = regexp.MustCompile(`(?i)\b(?:implement\w*|creat(?:e|ed|es|ing)|add(?:ed|ing|s)?|fix(?:ed|es|ing)?|refactor\w*|updat(?:e|ed|es|ing)|remov(?:e|ed|es|ing)|deploy\w*|configur\w*|optimi[sz]\w*|debug\w*|test(?:s|ed|ing)?|migrat\w*|function|method|class|struct|interface|module|package|api|endpoint|database|schema|query|cache|config|error|exception|bug|build|compil\w*|server|client|handler|pipeline|regex|hash|index\w*)\b`)
	fileRefPattern = regexp.MustCompile(`(?:^|[\s(\["'` + "`" + `])(?:[\w.-]+/)*[\w-]+\.(?:go|js|jsx|ts|tsx|mjs|cjs|py|rb|rs|java|kt|swift|c|h|cpp|hpp|cs|php|sh|sql|md|json|jsonc|yaml|yml|toml|html|css|scss|vue|svelte|txt)\b`)
	decisionVocab  = regexp.MustCompile(`(?i)\b(?:decid\w*|decision|chose|choose|chosen|selected|opted for|went with|prefer\w*|instead of|rather than|trade-?offs?|because|approach|option)\b`)
)

// QualityBreakdown 质量评分的各因子明细
type QualityBreakdown struct {
	Uniqueness float64 `json:"uniqueness"`
	Density    float64 `json:"density"`
	FileRefs   float64 `json:"file_refs"`
	Decisions  float64 `json:"decisions"`
	Score      int     `json:"score"`
}

// AssessQuality 按因子权重给 msgs 打 0–100 分
func AssessQuality(msgs []types.Message, factors config.QualityFactors) QualityBreakdown {
	var b QualityBreakdown
	n := len(msgs)
	if n == 0 {
		return b
	}

	hashes := make(map[string]struct{}, n)
	var density, files, decisions int
	for _, m := range msgs {
		text := m.Text()
		hashes[ContentHash(text, similarityWindow)] = struct{}{}
		density += capped(len(densityVocab.FindAllStringIndex(text, -1)), densityCap)
		files += capped(len(fileRefPattern.FindAllStringIndex(text, -1)), fileRefCap)
		decisions += capped(len(decisionVocab.FindAllStringIndex(text, -1)), decisionCap)
	}

	b.Uniqueness = float64(len(hashes)) / float64(n)
	b.Density = float64(density) / float64(densityCap*n)
	b.FileRefs = float64(files) / float64(fileRefCap*n)
	b.Decisions = float64(decisions) / float64(decisionCap*n)

	total := factors.Sum()
	if total <= 0 {
		factors = config.DefaultFilterConfig().Quality.Factors
		total = factors.Sum()
	}
	weighted := factors.Uniqueness*b.Uniqueness +
		factors.Density*b.Density +
		factors.FileRefs*b.FileRefs +
		factors.Decisions*b.Decisions
	b.Score = clampScore(int(math.Round(100 * weighted / total)))
	return b
}

// QualityScore 返回综合质量分
func QualityScore(msgs []types.Message, factors config.QualityFactors) int {
	return AssessQuality(msgs, factors).Score
}

// IsLowQuality 评分是否低于告警阈值
func IsLowQuality(score, warnThreshold int) bool {
	return score < warnThreshold
}

func capped(n, limit int) int {
	if n > limit {
		return limit
	}
	return n
}

func clampScore(s int) int {
	switch {
	case s < 0:
		return 0
	case s > 100:
		return 100
	default:
		return s
	}
}
