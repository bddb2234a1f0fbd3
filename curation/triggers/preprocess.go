package triggers

import (
	"regexp"
	"strings"
	"unicode"
)

// breakMarker 词流中的句子分隔符，N-gram 不跨越它
const breakMarker = "__BREAK__"

var (
	codeFence   = regexp.MustCompile("(?s)(?:```|~~~).*?(?:```|~~~)")
	inlineCode  = regexp.MustCompile("`([^`\n]+)`")
	mdImage     = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	mdLink      = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	urlPattern  = regexp.MustCompile(`(?i)\b(?:https?|ftp)://\S+`)
	htmlTag     = regexp.MustCompile(`</?[a-zA-Z][^>\n]*>`)
	mdHeader    = regexp.MustCompile(`(?m)^\s{0,3}#{1,6}\s*`)
	blockquote  = regexp.MustCompile(`(?m)^\s*>\s?`)
	listMarker  = regexp.MustCompile(`(?m)^\s*(?:[-*+]|\d+[.)])\s+`)
	hRule       = regexp.MustCompile(`(?m)^\s*[-*_]{3,}\s*$`)
	boldStars   = regexp.MustCompile(`\*\*([^*\n]+)\*\*`)
	boldUnders  = regexp.MustCompile(`__([^_\n]+)__`)
	italicStars = regexp.MustCompile(`\*([^*\n]+)\*`)

	sentenceBoundary = regexp.MustCompile(`[.!?;:]+(?:\s+|$)|\n+|\|`)
	wordToken        = regexp.MustCompile(`[a-z0-9]+(?:[-_][a-z0-9]+)*`)
)

// stripMarkdown 去除代码块与标记，保留正文和行内标识符
func stripMarkdown(text string) string {
	s := codeFence.ReplaceAllString(text, "\n")
	s = inlineCode.ReplaceAllString(s, "$1")
	s = mdImage.ReplaceAllString(s, "$1")
	s = mdLink.ReplaceAllString(s, "$1")
	s = urlPattern.ReplaceAllString(s, " ")
	s = htmlTag.ReplaceAllString(s, " ")
	s = hRule.ReplaceAllString(s, "\n")
	s = mdHeader.ReplaceAllString(s, "")
	s = blockquote.ReplaceAllString(s, "")
	s = listMarker.ReplaceAllString(s, "")
	s = boldStars.ReplaceAllString(s, "$1")
	s = boldUnders.ReplaceAllString(s, "$1")
	s = italicStars.ReplaceAllString(s, "$1")
	return s
}

// tokenize 将文本小写切词，去掉停用词，并在句子边界插入 breakMarker
func tokenize(clean string) []string {
	var tokens []string
	for i, segment := range sentenceBoundary.Split(clean, -1) {
		if i > 0 && len(tokens) > 0 && tokens[len(tokens)-1] != breakMarker {
			tokens = append(tokens, breakMarker)
		}
		for _, w := range wordToken.FindAllString(strings.ToLower(segment), -1) {
			if keepToken(w) {
				tokens = append(tokens, w)
			}
		}
	}
	return tokens
}

func keepToken(w string) bool {
	if len(w) < 2 || isStopWord(w) {
		return false
	}
	return strings.IndexFunc(w, unicode.IsLetter) >= 0
}

// normalizePhrase 小写化并折叠空白
func normalizePhrase(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// splitIdentifier 把 camelCase、snake_case 等标识符拆成空格分隔的词
func splitIdentifier(id string) string {
	var b strings.Builder
	runes := []rune(id)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte(' ')
			}
		}
		b.WriteRune(r)
	}
	return normalizePhrase(strings.ReplaceAll(b.String(), "_", " "))
}
