package triggers

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/BaSui01/memcurator/types"

	"go.uber.org/zap"
)

// 默认限制
const (
	DefaultMinPhrases = 8
	DefaultMaxPhrases = 25
	MinTextLength     = 50
)

// 拒绝原因
const (
	RejectTooShort     = "too_short"
	RejectPlaceholder  = "placeholder_saturated"
	RejectInsufficient = "insufficient_phrases"
)

// Stats 单次提取的诊断信息
type Stats struct {
	InputLength    int            `json:"input_length"`
	TokenCount     int            `json:"token_count"`
	CandidateCount int            `json:"candidate_count"`
	ByType         map[string]int `json:"by_type"`
	Rejected       bool           `json:"rejected"`
	RejectReason   string         `json:"reject_reason,omitempty"`
}

// Result ExtractWithStats 的返回结果
type Result struct {
	Phrases    []string    `json:"phrases"`
	Stats      Stats       `json:"stats"`
	Candidates []Candidate `json:"candidates,omitempty"`
}

// Extractor 触发短语提取器，不持有调用级状态，可并发使用
type Extractor struct {
	minPhrases int
	maxPhrases int
	tokens     types.TokenCounter
	logger     *zap.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLimits 设置短语数量的上下限
func WithLimits(minPhrases, maxPhrases int) Option {
	return func(e *Extractor) {
		if minPhrases >= 0 && maxPhrases >= minPhrases && maxPhrases > 0 {
			e.minPhrases = minPhrases
			e.maxPhrases = maxPhrases
		}
	}
}

// WithTokenCounter 设置统计用的 token 计数器
func WithTokenCounter(tc types.TokenCounter) Option {
	return func(e *Extractor) {
		if tc != nil {
			e.tokens = tc
		}
	}
}

// WithLogger 设置日志记录器
func WithLogger(logger *zap.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New 创建提取器
func New(opts ...Option) *Extractor {
	e := &Extractor{
		minPhrases: DefaultMinPhrases,
		maxPhrases: DefaultMaxPhrases,
		tokens:     types.NewEstimateTokenizer(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With(zap.String("component", "trigger_extractor"))
	return e
}

var defaultExtractor = New()

// ExtractTriggerPhrases 使用默认提取器提取触发短语
func ExtractTriggerPhrases(text string) []string {
	return defaultExtractor.Extract(text)
}

// Extract 返回排序后的触发短语
func (e *Extractor) Extract(text string) []string {
	return e.ExtractWithStats(text).Phrases
}

// ExtractWithStats 返回短语及提取诊断
func (e *Extractor) ExtractWithStats(text string) Result {
	res := Result{
		Phrases: []string{},
		Stats: Stats{
			InputLength: utf8.RuneCountInString(text),
			ByType:      map[string]int{},
		},
	}

	if reason := guard(text); reason != "" {
		return e.reject(res, reason)
	}
	res.Stats.TokenCount = e.tokens.CountTokens(text)

	set := make(candidateSet)
	clean := stripMarkdown(text)
	scoreNGrams(tokenize(clean), set)
	extractProblems(clean, set)
	extractTechnical(urlPattern.ReplaceAllString(text, " "), set)
	extractDecisions(clean, set)
	extractActions(clean, set)
	extractCompounds(clean, set)
	res.Stats.CandidateCount = len(set)

	ranked := rank(set)
	pool, filtered := e.selectPhrases(ranked)

	chosen := filtered
	if len(chosen) < e.minPhrases {
		chosen = pool
	}
	if len(chosen) > e.maxPhrases {
		chosen = chosen[:e.maxPhrases]
	}
	if len(chosen) == 0 || len(chosen) < e.minPhrases {
		return e.reject(res, RejectInsufficient)
	}

	for _, c := range chosen {
		res.Phrases = append(res.Phrases, c.Phrase)
		res.Stats.ByType[string(c.Type)]++
	}
	res.Candidates = chosen
	return res
}

func (e *Extractor) reject(res Result, reason string) Result {
	res.Stats.Rejected = true
	res.Stats.RejectReason = reason
	e.logger.Debug("trigger extraction yielded nothing",
		zap.String("reason", reason),
		zap.Int("input_length", res.Stats.InputLength))
	return res
}

// guard 拒绝过短或占位内容过多的输入
func guard(text string) string {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < MinTextLength {
		return RejectTooShort
	}
	lower := strings.ToLower(text)
	hits := 0
	for _, marker := range placeholderMarkers {
		if strings.Contains(lower, marker) {
			hits++
		}
	}
	if hits >= 2 {
		return RejectPlaceholder
	}
	return ""
}

// rank 按分数降序，其次词数少者优先，最后按字典序
func rank(set candidateSet) []Candidate {
	out := make([]Candidate, 0, len(set))
	for _, c := range set {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		wi, wj := strings.Count(out[i].Phrase, " "), strings.Count(out[j].Phrase, " ")
		if wi != wj {
			return wi < wj
		}
		return out[i].Phrase < out[j].Phrase
	})
	return out
}

// selectPhrases 依次遍历排序后的候选，与已接受短语互为子串的候选被丢弃。
// pool 为全部接受的候选，filtered 再去掉只由通用技术词构成的短语。
func (e *Extractor) selectPhrases(ranked []Candidate) (pool, filtered []Candidate) {
	for _, c := range ranked {
		if overlaps(c.Phrase, pool) {
			continue
		}
		pool = append(pool, c)
		if !allTechnicalStopWords(c.Phrase) {
			filtered = append(filtered, c)
			if len(filtered) >= e.maxPhrases {
				break
			}
		}
	}
	return pool, filtered
}

func overlaps(phrase string, accepted []Candidate) bool {
	for _, a := range accepted {
		if strings.Contains(a.Phrase, phrase) || strings.Contains(phrase, a.Phrase) {
			return true
		}
	}
	return false
}

func allTechnicalStopWords(phrase string) bool {
	for _, w := range strings.Fields(phrase) {
		if !isTechnicalStopWord(w) {
			return false
		}
	}
	return true
}
