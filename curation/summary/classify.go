package summary

import (
	"regexp"
	"strings"

	"github.com/BaSui01/memcurator/types"
)

var (
	// 决策语言只看首行（标题位置）；选项字母只认大写 A-D
	decisionFirstLine = regexp.MustCompile(`(?i:\b(?:decided|decision|chose|chosen|selected|picked|went with|opted for|going with)\b)|^\s*(?:(?i:option)\s+)?[A-D]\s*(?:[-:)]|\s*$)`)

	implementationPattern = regexp.MustCompile(`(?i)\b(?:created|implemented|added|modified|updated|wrote|written|refactored|fixed|removed|deleted|renamed|edited|changed|replaced|moved|extracted)\b`)
	fileEditSyntax        = regexp.MustCompile(`(?m)(?:\b(?:Edit|Write|MultiEdit|NotebookEdit)\(|"file_path"\s*:|^diff --git |^\+\+\+ |^--- a/|\bapply_patch\b)`)

	resultPattern = regexp.MustCompile(`(?i)(?:\b(?:completed|done|finished|works|working|passed|passing|succeeded|successfully|resolved|verified|all tests pass)\b|[✅✓✔])`)

	// 指南型计划与架构型计划都归入 plan
	guidePlanPattern        = regexp.MustCompile(`(?i)(?:\b(?:i'll|i will|let me|we'll|we will|going to|next,? i|plan(?:ning)? to|the plan|step \d|first,|then i)\b|^\s*#+\s*plan\b)`)
	architecturePlanPattern = regexp.MustCompile(`(?i)\b(?:architecture|design(?:ed)? (?:the|a)|approach (?:is|will)|structure (?:is|will)|strategy)\b`)

	intentPattern   = regexp.MustCompile(`(?i)^\s*(?:i want|i'd like|i would like|i need|we need|can you|could you|please|help me|let's|the goal is|my goal|implement|add|create|build|fix|make)\b`)
	// 疑问词或情态动词开头并以 ? 结尾
	questionPattern = regexp.MustCompile(`(?is)^(?:what|why|how|which|when|where|who|should|would|could|can|is|are|do|does|will)\b.*\?$`)
)

// ClassifyMessage 判定单条消息的语义类型
func ClassifyMessage(m types.Message) types.SemanticType {
	return ClassifyText(m.Text())
}

// ClassifyText 判定文本的语义类型，按优先级首个命中者胜出
func ClassifyText(text string) types.SemanticType {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return types.SemanticContext
	}
	firstLine := trimmed
	if i := strings.IndexByte(trimmed, '\n'); i >= 0 {
		firstLine = trimmed[:i]
	}

	switch {
	case decisionFirstLine.MatchString(firstLine):
		return types.SemanticDecision
	case implementationPattern.MatchString(trimmed) || fileEditSyntax.MatchString(trimmed):
		return types.SemanticImplementation
	case resultPattern.MatchString(trimmed):
		return types.SemanticResult
	case guidePlanPattern.MatchString(trimmed), architecturePlanPattern.MatchString(trimmed):
		return types.SemanticPlan
	case intentPattern.MatchString(trimmed):
		return types.SemanticIntent
	case questionPattern.MatchString(trimmed):
		return types.SemanticQuestion
	default:
		return types.SemanticContext
	}
}

// ClassifyMessages 按顺序分类全部消息
func ClassifyMessages(msgs []types.Message) []types.SemanticType {
	out := make([]types.SemanticType, len(msgs))
	for i, m := range msgs {
		out[i] = ClassifyMessage(m)
	}
	return out
}
