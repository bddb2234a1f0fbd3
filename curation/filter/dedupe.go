package filter

import (
	"crypto/md5"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/BaSui01/memcurator/config"
	"github.com/BaSui01/memcurator/types"
)

// similarityWindow 近似去重比较的字符窗口
const similarityWindow = 200

var (
	isoTimestamp = regexp.MustCompile(`(?i)\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}(?::\d{2}(?:\.\d+)?)?(?:Z|[+-]\d{2}:?\d{2})?`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// Normalize 小写化、去除时间戳、折叠空白，并截断到 hashLength 个字符
func Normalize(text string, hashLength int) string {
	s := strings.ToLower(text)
	s = isoTimestamp.ReplaceAllString(s, "")
	s = strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
	if r := []rune(s); hashLength > 0 && len(r) > hashLength {
		s = string(r[:hashLength])
	}
	return s
}

// ContentHash 返回规范化文本的 MD5 十六进制串
func ContentHash(text string, hashLength int) string {
	sum := md5.Sum([]byte(Normalize(text, hashLength)))
	return hex.EncodeToString(sum[:])
}

// Similarity 逐位比较 a、b 小写后前 200 个字符，匹配数除以较长窗口长度
func Similarity(a, b string) float64 {
	ra, rb := window(a), window(b)
	if len(ra) < len(rb) {
		ra, rb = rb, ra
	}
	if len(ra) == 0 {
		return 1.0
	}
	matches := 0
	for i := range rb {
		if rb[i] == ra[i] {
			matches++
		}
	}
	return float64(matches) / float64(len(ra))
}

func window(s string) []rune {
	r := []rune(strings.ToLower(s))
	if len(r) > similarityWindow {
		r = r[:similarityWindow]
	}
	return r
}

// Deduplicate 精确或近似重复的消息只保留最先出现的一条，返回移除数量
func Deduplicate(msgs []types.Message, cfg config.DedupeConfig) ([]types.Message, int) {
	seen := make(map[string]struct{}, len(msgs))
	kept := make([]string, 0, len(msgs))
	out := make([]types.Message, 0, len(msgs))
	removed := 0

	for _, m := range msgs {
		text := m.Text()
		h := ContentHash(text, cfg.HashLength)
		if _, dup := seen[h]; dup {
			removed++
			continue
		}
		if isNearDuplicate(text, kept, cfg.SimilarityThreshold) {
			removed++
			continue
		}
		seen[h] = struct{}{}
		kept = append(kept, text)
		out = append(out, m)
	}
	return out, removed
}

func isNearDuplicate(text string, kept []string, threshold float64) bool {
	for _, k := range kept {
		if Similarity(text, k) >= threshold {
			return true
		}
	}
	return false
}
