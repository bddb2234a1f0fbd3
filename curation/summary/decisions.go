package summary

import (
	"regexp"
	"strings"

	"github.com/BaSui01/memcurator/types"
)

const (
	maxChoiceLength   = 100
	maxContextLength  = 100
	maxQuestionLength = 200
)

// choiceRule 是一条按顺序尝试的选择提取规则
type choiceRule struct {
	name    string
	pattern *regexp.Regexp
}

var choiceRules = []choiceRule{
	{"verb", regexp.MustCompile(`(?i)\b(?:chose|chosen|choose|selected|picked|went with|going with|opted for|decided (?:on|to))\s+([^.\n!?]{2,})`)},
	{"option", regexp.MustCompile(`(?i)^\s*(option\s+[A-D]\b[^.\n!?]*)`)},
	{"letter", regexp.MustCompile(`^\s*([A-D]\s*[-:)]\s*[^.\n!?]+)`)},
}

var (
	questionClause = regexp.MustCompile(`([^.!?\n][^.!?\n]*\?)`)
	firstSentence  = regexp.MustCompile(`^[^.!?\n]+[.!?]?`)
)

// ExtractDecisions 将每条决策消息与其前一条消息中的问题配对
func ExtractDecisions(msgs []types.Message) []types.Decision {
	var out []types.Decision
	for i, m := range msgs {
		if ClassifyMessage(m) != types.SemanticDecision {
			continue
		}
		text := strings.TrimSpace(m.Text())
		d := types.Decision{
			Choice:  extractChoice(text),
			Context: truncate(collapse(text), maxContextLength),
		}
		if i > 0 {
			d.Question = extractQuestion(msgs[i-1].Text())
		}
		out = append(out, d)
	}
	return out
}

func extractQuestion(text string) string {
	m := questionClause.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return truncate(collapse(m[1]), maxQuestionLength)
}

func extractChoice(text string) string {
	for _, rule := range choiceRules {
		if m := rule.pattern.FindStringSubmatch(text); m != nil {
			if c := strings.TrimSpace(m[1]); c != "" {
				return truncate(collapse(c), maxChoiceLength)
			}
		}
	}
	return truncate(collapse(firstSentence.FindString(text)), maxChoiceLength)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate 截断到最多 n 个字符，截断处以 "..." 标记
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return strings.TrimSpace(string(r[:n-3])) + "..."
}
