package filter

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/BaSui01/memcurator/config"
	"github.com/BaSui01/memcurator/types"
)

// NoiseResult 噪声阶段的丢弃计数
type NoiseResult struct {
	Noise int
	Empty int
}

const wrapperTags = `command-name|command-message|command-args|local-command-stdout|local-command-stderr`

var (
	commandPrefix  = regexp.MustCompile(`^(?:Command:\s*|\$\s+|>\s+)`)
	systemReminder = regexp.MustCompile(`(?s)<system-reminder>.*?</system-reminder>`)

	noisePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^\s*$`),
		regexp.MustCompile(`(?i)^(?:user|assistant|system|tool) message$`),
		regexp.MustCompile(`(?i)^\(?no content\)?$`),
		regexp.MustCompile(`(?i)^\[?(?:placeholder|empty|n/a|none|null|undefined|todo)\]?$`),
		regexp.MustCompile(`^(?:\.{1,3}|…)$`),
		regexp.MustCompile(`^(?:<(?:` + wrapperTags + `)>\s*</(?:` + wrapperTags + `)>\s*)+$`),
		regexp.MustCompile(`(?i)^(?:\[image(?:[\s:#][^\]]*)?\]\s*)+$`),
		regexp.MustCompile(`^(?:!\[[^\]]*\]\([^)]*\)\s*)+$`),
		regexp.MustCompile(`(?i)^\[request interrupted by user[^\]]*\]$`),
	}

	wrapperRules = []struct {
		re     *regexp.Regexp
		render func(inner string) string
	}{
		{regexp.MustCompile(`(?s)<command-name>(.*?)</command-name>`), labelled("Command: ")},
		{regexp.MustCompile(`(?s)<command-message>(.*?)</command-message>`), labelled("")},
		{regexp.MustCompile(`(?s)<command-args>(.*?)</command-args>`), labelled("Args: ")},
		{regexp.MustCompile(`(?s)<local-command-stdout>(.*?)</local-command-stdout>`), labelled("Output: ")},
		{regexp.MustCompile(`(?s)<local-command-stderr>(.*?)</local-command-stderr>`), labelled("Error output: ")},
	}

	blankRuns = regexp.MustCompile(`\n{3,}`)
)

func labelled(prefix string) func(string) string {
	return func(inner string) string {
		inner = strings.TrimSpace(inner)
		if inner == "" {
			return ""
		}
		return prefix + inner
	}
}

// IsNoise 判断文本是否为无实质内容的噪声
func IsNoise(text string) bool {
	probe := commandPrefix.ReplaceAllString(strings.TrimSpace(text), "")
	probe = strings.TrimSpace(probe)

	if systemReminder.MatchString(probe) && strings.TrimSpace(systemReminder.ReplaceAllString(probe, "")) == "" {
		return true
	}
	for _, re := range noisePatterns {
		if re.MatchString(probe) {
			return true
		}
	}
	return false
}

// StripWrappers 去掉有用内容外层的无害包装标记
func StripWrappers(text string) string {
	out := systemReminder.ReplaceAllString(text, "")
	for _, rule := range wrapperRules {
		render := rule.render
		re := rule.re
		out = re.ReplaceAllStringFunc(out, func(m string) string {
			return render(re.FindStringSubmatch(m)[1])
		})
	}
	out = blankRuns.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

// UniqueWords 统计长度大于 1 的不同小写单词数
func UniqueWords(text string) int {
	seen := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(strings.ToLower(text), isWordSeparator) {
		if utf8.RuneCountInString(w) > 1 {
			seen[w] = struct{}{}
		}
	}
	return len(seen)
}

func isWordSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
}

func meetsMinimums(text string, cfg config.NoiseConfig) bool {
	return utf8.RuneCountInString(text) >= cfg.MinContentLength && UniqueWords(text) >= cfg.MinUniqueWords
}

// FilterNoise 丢弃噪声与内容过少的消息。剥离过标记的保留消息在 msgs 中原地改写。
func FilterNoise(msgs []types.Message, cfg config.NoiseConfig) ([]types.Message, NoiseResult) {
	var res NoiseResult
	out := make([]types.Message, 0, len(msgs))
	for i := range msgs {
		m := &msgs[i]
		text := m.Text()
		if IsNoise(text) {
			res.Noise++
			continue
		}
		if stripped := StripWrappers(text); stripped != text {
			m.SetText(stripped)
			text = stripped
		}
		if !meetsMinimums(text, cfg) {
			res.Empty++
			continue
		}
		out = append(out, *m)
	}
	return out, res
}
