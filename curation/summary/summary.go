package summary

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/memcurator/curation/triggers"
	"github.com/BaSui01/memcurator/types"
)

// 无信号时的兜底值
const (
	DefaultTask     = "Development session"
	DefaultSolution = "Implementation completed"
	DefaultOutcome  = "Session completed"
)

const (
	maxOutcomes      = 5
	maxTaskLength    = 120
	maxOutcomeLength = 120
	minOutcomeLength = 3
)

// 路径内的点（auth.js）不视为句末
const clause = `(?:[^.!?\n]|\.\w)`

var (
	taskRules = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^\s*(?:i want to|i'd like to|i would like to|i need to|we need to|can you|could you|please|help me|let's|the goal is to|my goal is to)\s+(` + clause + `{3,})`),
		regexp.MustCompile(`(?i)\b((?:implement|add|create|build|fix|refactor|update|write|design|migrate|remove|replace|improve|support)\s+` + clause + `{3,})`),
		regexp.MustCompile(`^\s*(` + clause + `{3,})`),
	}

	solutionRules = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b((?:created|implemented|built|added|wrote|set up|introduced|designed)\s+` + clause + `{0,60}?\b(?:pipeline|system|module|filter|service|handler|extractor|generator|middleware|component|flow|integration|layer|api|cli|parser|cache)s?)\b`),
		regexp.MustCompile(`(?i)\b((?:created|implemented|built|added|fixed|refactored|updated|wrote|replaced)\s+` + clause + `{5,100})`),
		regexp.MustCompile(`(?i)\b(?:i'll|i will|we'll|we will|let me|going to)\s+(` + clause + `{5,100})`),
		regexp.MustCompile(`^\s*(` + clause + `{5,})`),
	}

	outcomeRules = []*regexp.Regexp{
		regexp.MustCompile(`(?im)\b(?:completed|done|finished|fixed|resolved|result|outcome)\s*:[ \t]*([^\n]+)`),
		regexp.MustCompile(`(?m)[✅✓✔]\s*([^\n]+)`),
		regexp.MustCompile(`(?m)^\s*(?:[-*•]|\d+[.)])\s+([^\n]+)`),
	}
)

// Summarizer 从过滤后的消息生成实现摘要
type Summarizer struct {
	triggers *triggers.Extractor
	logger   *zap.Logger
}

// SummarizerOption 配置 Summarizer
type SummarizerOption func(*Summarizer)

// WithTriggerExtractor 替换触发短语提取器
func WithTriggerExtractor(e *triggers.Extractor) SummarizerOption {
	return func(s *Summarizer) {
		if e != nil {
			s.triggers = e
		}
	}
}

// WithLogger 设置日志记录器
func WithLogger(logger *zap.Logger) SummarizerOption {
	return func(s *Summarizer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSummarizer 创建摘要生成器
func NewSummarizer(opts ...SummarizerOption) *Summarizer {
	s := &Summarizer{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	if s.triggers == nil {
		s.triggers = triggers.New(triggers.WithLogger(s.logger))
	}
	s.logger = s.logger.With(zap.String("component", "summarizer"))
	return s
}

// GenerateImplementationSummary 使用默认设置生成摘要
func GenerateImplementationSummary(msgs []types.Message, observations []types.Observation) types.Summary {
	return NewSummarizer().Summarize(msgs, observations)
}

// Summarize 生成摘要，缺少信号时使用默认值，不返回错误
func (s *Summarizer) Summarize(msgs []types.Message, observations []types.Observation) types.Summary {
	kinds := ClassifyMessages(msgs)

	sum := types.Summary{
		Task:           extractTask(msgs, kinds),
		Solution:       extractSolution(msgs, kinds),
		FilesCreated:   []types.FileChangeRecord{},
		FilesModified:  []types.FileChangeRecord{},
		Decisions:      ExtractDecisions(msgs),
		Outcomes:       extractOutcomes(msgs, kinds),
		TriggerPhrases: s.triggers.Extract(types.JoinText(msgs)),
		MessageTypes:   kinds,
	}
	if sum.Decisions == nil {
		sum.Decisions = []types.Decision{}
	}

	for _, rec := range ExtractFileChanges(msgs, observations) {
		if rec.Action == types.FileCreated {
			sum.FilesCreated = append(sum.FilesCreated, rec)
		} else {
			sum.FilesModified = append(sum.FilesModified, rec)
		}
	}

	s.logger.Debug("summary generated",
		zap.Int("messages", len(msgs)),
		zap.Int("files_created", len(sum.FilesCreated)),
		zap.Int("files_modified", len(sum.FilesModified)),
		zap.Int("decisions", len(sum.Decisions)),
		zap.Int("trigger_phrases", len(sum.TriggerPhrases)),
	)
	return sum
}

func extractTask(msgs []types.Message, kinds []types.SemanticType) string {
	for _, want := range []types.SemanticType{types.SemanticIntent, types.SemanticQuestion} {
		for i, m := range msgs {
			if kinds[i] != want {
				continue
			}
			if task := firstCapture(taskRules, m.Text(), maxTaskLength); task != "" {
				return task
			}
		}
	}
	return DefaultTask
}

func extractSolution(msgs []types.Message, kinds []types.SemanticType) string {
	var parts []string
	for i, m := range msgs {
		switch kinds[i] {
		case types.SemanticPlan, types.SemanticImplementation, types.SemanticResult:
			parts = append(parts, strings.TrimSpace(m.Text()))
		}
	}
	if len(parts) == 0 {
		return DefaultSolution
	}
	if sol := firstCapture(solutionRules, strings.Join(parts, "\n"), maxTaskLength); sol != "" {
		return sol
	}
	return DefaultSolution
}

// firstCapture 返回首个命中规则的第一个捕获组
func firstCapture(rules []*regexp.Regexp, text string, limit int) string {
	for _, re := range rules {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if c := strings.TrimRight(collapse(m[1]), " ,;:-"); c != "" {
			return capitalize(truncate(c, limit))
		}
	}
	return ""
}

func extractOutcomes(msgs []types.Message, kinds []types.SemanticType) []string {
	var out []string
	seen := make(map[string]bool)
	for i, m := range msgs {
		if kinds[i] != types.SemanticResult {
			continue
		}
		text := m.Text()
		for _, re := range outcomeRules {
			for _, sm := range re.FindAllStringSubmatch(text, -1) {
				o := truncate(collapse(sm[1]), maxOutcomeLength)
				key := strings.ToLower(o)
				if len([]rune(o)) < minOutcomeLength || seen[key] {
					continue
				}
				seen[key] = true
				out = append(out, o)
				if len(out) == maxOutcomes {
					return out
				}
			}
		}
	}
	if len(out) == 0 {
		return []string{DefaultOutcome}
	}
	return out
}
