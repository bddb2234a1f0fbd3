package anchor

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"sync/atomic"
	"time"
)

// DefaultCategory 分类规范化后为空时使用
const DefaultCategory = "summary"

const (
	hashLength   = 8
	maxSlugWords = 4
	minWordLen   = 3
	emptySlug    = "unnamed"
)

var (
	validID        = regexp.MustCompile(`^[a-z]+-[a-z0-9-]+-[0-9a-f]{8}(?:-\d+)?$`)
	nonAlnum       = regexp.MustCompile(`[^a-z0-9\s]+`)
	nonLetter      = regexp.MustCompile(`[^a-z]+`)
	findingsPrefix = regexp.MustCompile(`(?i)^\s*(?:implemented|discovered|researched)\s+`)
)

var slugStopWords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`
		the and for with from into onto that this these those then than
		are was were been being has have had not but its our your their
		you they them what when where which who how why all any can will
		should would could may might must shall via per about over under
		implement implemented implementing add added adding create created creating
		update updated updating fix fixed fixing make made build built
		use used using handle handled get set run ran new refactor refactored
		remove removed delete deleted change changed improve improved`) {
		slugStopWords[w] = struct{}{}
	}
}

// Clock 返回当前时间
type Clock func() time.Time

// Generator 生成锚点 ID；序号保证同一时刻的调用也不会相撞
type Generator struct {
	clock Clock
	seq   atomic.Uint64
}

// NewGenerator 创建生成器，clock 为 nil 时使用 time.Now
func NewGenerator(clock Clock) *Generator {
	if clock == nil {
		clock = time.Now
	}
	return &Generator{clock: clock}
}

type genOptions struct {
	specNumber string
	context    string
}

// GenerateOption 追加可选的哈希输入
type GenerateOption func(*genOptions)

// WithSpecNumber 将文档编号并入哈希
func WithSpecNumber(n string) GenerateOption {
	return func(o *genOptions) { o.specNumber = n }
}

// WithContext 将额外上下文并入哈希
func WithContext(ctx string) GenerateOption {
	return func(o *genOptions) { o.context = ctx }
}

// Generate 为章节标题生成 {category}-{slug}-{hash}
func (g *Generator) Generate(title, category string, opts ...GenerateOption) string {
	var o genOptions
	for _, opt := range opts {
		opt(&o)
	}

	cat := NormalizeCategory(category)
	slug := Slug(title, cat)

	hashInput := fmt.Sprintf("%s|%s|%d|%d", title, o.context, g.clock().UnixNano(), g.seq.Add(1))
	if o.specNumber != "" {
		hashInput = o.specNumber + "|" + hashInput
	}
	sum := md5.Sum([]byte(hashInput))
	return cat + "-" + slug + "-" + hex.EncodeToString(sum[:])[:hashLength]
}

var defaultGenerator = NewGenerator(nil)

// GenerateAnchorID 使用进程级默认生成器生成 ID
func GenerateAnchorID(title, category string, opts ...GenerateOption) string {
	return defaultGenerator.Generate(title, category, opts...)
}

// NormalizeCategory 小写化分类并只保留字母
func NormalizeCategory(category string) string {
	c := nonLetter.ReplaceAllString(strings.ToLower(category), "")
	if c == "" {
		return DefaultCategory
	}
	return c
}

// Slug 由标题生成 ID 的语义部分。非字母数字字符直接删除，不作为分词边界。
func Slug(title, category string) string {
	t := stripTitlePrefix(title, category)
	t = nonAlnum.ReplaceAllString(strings.ToLower(t), "")

	words := make([]string, 0, maxSlugWords)
	for _, w := range strings.Fields(t) {
		if len(w) < minWordLen || w == category {
			continue
		}
		if _, stop := slugStopWords[w]; stop {
			continue
		}
		words = append(words, w)
		if len(words) == maxSlugWords {
			break
		}
	}
	if len(words) == 0 {
		return emptySlug
	}
	return strings.Join(words, "-")
}

// stripTitlePrefix 去掉标题开头的 "category:" 前缀与发现类动词
func stripTitlePrefix(title, category string) string {
	t := strings.TrimSpace(title)
	if i := strings.IndexByte(t, ':'); i > 0 && strings.EqualFold(strings.TrimSpace(t[:i]), category) {
		t = t[i+1:]
	}
	return findingsPrefix.ReplaceAllString(t, "")
}

// IsValid 判断 id 是否为格式正确的锚点 ID
func IsValid(id string) bool {
	return validID.MatchString(id)
}
