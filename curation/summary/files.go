package summary

import (
	"path"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/BaSui01/memcurator/types"
)

const (
	descriptionWindow = 500
	minDescription    = 5
	maxDescription    = 150
)

var (
	fileExtensions = `go|js|jsx|ts|tsx|mjs|cjs|py|rb|rs|java|kt|swift|c|h|cc|cpp|hpp|cs|php|sh|bash|sql|md|mdx|json|jsonc|yaml|yml|toml|ini|env|html|css|scss|vue|svelte|txt|proto|graphql|lock`
	quotedPath     = regexp.MustCompile("[\"'`]((?:[~./\\w-]+/)*[\\w.-]+\\.(?:" + fileExtensions + "))[\"'`]")
	barePath       = regexp.MustCompile(`(?:^|[\s(\[,:])((?:~/|\.{1,2}/|/)?(?:[\w.-]+/)*[\w-][\w.-]*\.(?:` + fileExtensions + `))\b`)
	homePrefix     = regexp.MustCompile(`^(?:/(?:Users|home)/[^/]+/|~/)`)

	createVerbs = regexp.MustCompile(`(?i)\b(?:created?|creating|new file|wrote|written|writing|add(?:ed)? (?:a |the )?(?:new )?file|scaffold(?:ed)?|generated?)\b`)
	deleteVerbs = regexp.MustCompile(`(?i)\b(?:deleted?|deleting|removed?|removing|rm)\b`)
	readVerbs   = regexp.MustCompile(`(?i)\b(?:read|reading|viewed|viewing|looked at|opened|inspected|checked|reviewed|examined)\b`)
	modifyVerbs = regexp.MustCompile(`(?i)\b(?:modif(?:y|ied|ying)|updated?|updating|edit(?:ed|ing)?|changed?|fixed|refactored|patched|adjusted|tweaked)\b`)

	describeVerbs = regexp.MustCompile(`(?i)\b(?:add(?:ed|s)?|implement(?:ed|s)?|fix(?:ed|es)?|updat(?:ed|es)|refactor(?:ed|s)?|introduc(?:ed|es)|support(?:ed|s)?)\s+([^.\n]{5,100})`)
	genericTail   = regexp.MustCompile(`(?i)^\s*(?:with|to|for|that|which|so that)\s+([^.\n]{5,120})`)
	colonTail     = regexp.MustCompile(`^\s*[:\-–—]\s+([^.\n]{5,120})`)
)

// mention 消息中的一次路径出现
type mention struct {
	path  string
	start int
	end   int
}

func findPaths(text string) []mention {
	var out []mention
	seen := make(map[int]bool)
	for _, re := range []*regexp.Regexp{quotedPath, barePath} {
		for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
			start, end := loc[2], loc[3]
			if seen[start] || isURLPart(text, start) {
				continue
			}
			seen[start] = true
			out = append(out, mention{path: text[start:end], start: start, end: end})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].start < out[j].start })
	return out
}

func isURLPart(text string, start int) bool {
	lead := text[:start]
	if i := strings.LastIndexAny(lead, " \t\n"); i >= 0 {
		lead = lead[i+1:]
	}
	return strings.Contains(lead, "://")
}

// NormalizePath 去掉引号、./ 与主目录前缀
func NormalizePath(p string) string {
	p = strings.Trim(p, "\"'`")
	p = homePrefix.ReplaceAllString(p, "")
	p = strings.TrimPrefix(p, "./")
	return path.Clean(p)
}

// classifyAction 取离路径最近的动词判定动作，默认为 modified
func classifyAction(text string, m mention) types.FileAction {
	lo := m.start - 80
	if lo < 0 {
		lo = 0
	}
	hi := m.end + 40
	if hi > len(text) {
		hi = len(text)
	}
	before, after := text[lo:m.start], text[m.end:hi]

	best, bestDist := types.FileModified, -1
	consider := func(re *regexp.Regexp, action types.FileAction) {
		if locs := re.FindAllStringIndex(before, -1); len(locs) > 0 {
			d := len(before) - locs[len(locs)-1][1]
			if bestDist < 0 || d < bestDist {
				best, bestDist = action, d
			}
		}
		if loc := re.FindStringIndex(after); loc != nil {
			// 后置动词权重较低
			d := loc[0] + 20
			if bestDist < 0 || d < bestDist {
				best, bestDist = action, d
			}
		}
	}
	consider(createVerbs, types.FileCreated)
	consider(deleteVerbs, types.FileDeleted)
	consider(readVerbs, types.FileRead)
	consider(modifyVerbs, types.FileModified)
	return best
}

// describe 在路径附近依次尝试描述提取规则，只命中文件名兜底时返回 false
func describe(text string, m mention, normPath string) (string, bool) {
	hi := m.end + descriptionWindow
	if hi > len(text) {
		hi = len(text)
	}
	after := text[m.end:hi]

	if sm := colonTail.FindStringSubmatch(after); sm != nil {
		if d, ok := validDescription(sm[1]); ok {
			return d, true
		}
	}
	if sm := genericTail.FindStringSubmatch(after); sm != nil {
		if d, ok := validDescription(sm[1]); ok {
			return d, true
		}
	}

	lo := m.start - descriptionWindow
	if lo < 0 {
		lo = 0
	}
	if sm := describeVerbs.FindStringSubmatch(text[lo:hi]); sm != nil {
		phrase := strings.Replace(sm[1], text[m.start:m.end], "", 1)
		phrase = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(phrase), "in "))
		if d, ok := validDescription(phrase); ok {
			return d, true
		}
	}
	return "Updated " + humanizeFilename(normPath), false
}

func validDescription(s string) (string, bool) {
	s = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(s), ",;:"))
	if len(s) < minDescription || len(s) > maxDescription {
		return "", false
	}
	// 单个词通常是文件名本身的残片
	if !strings.ContainsAny(s, " \t") {
		return "", false
	}
	if r := []rune(s)[0]; !unicode.IsLetter(r) && !unicode.IsDigit(r) {
		return "", false
	}
	return capitalize(s), true
}

// humanizeFilename 将 "user-service.ts" 转为 "user service"
func humanizeFilename(p string) string {
	base := path.Base(p)
	if ext := path.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	var b strings.Builder
	prev := rune(0)
	for _, r := range base {
		switch {
		case r == '-' || r == '_' || r == '.':
			b.WriteByte(' ')
		case unicode.IsUpper(r) && unicode.IsLower(prev):
			b.WriteByte(' ')
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(unicode.ToLower(r))
		}
		prev = r
	}
	out := strings.Join(strings.Fields(b.String()), " ")
	if out == "" {
		return base
	}
	return out
}

func capitalize(s string) string {
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// fileTracker 按规范化路径合并提及，保持首次出现顺序
type fileTracker struct {
	order   []string
	records map[string]*trackedFile
}

type trackedFile struct {
	rec      types.FileChangeRecord
	fallback bool
}

func newFileTracker() *fileTracker {
	return &fileTracker{records: make(map[string]*trackedFile)}
}

func (t *fileTracker) observe(p string, action types.FileAction, desc string, real bool) {
	tf, ok := t.records[p]
	if !ok {
		t.order = append(t.order, p)
		t.records[p] = &trackedFile{
			rec:      types.FileChangeRecord{Path: p, Action: action, Description: desc, Mentions: 1},
			fallback: !real,
		}
		return
	}
	tf.rec.Mentions++
	if action == types.FileCreated {
		tf.rec.Action = types.FileCreated
	}
	switch {
	case real && tf.fallback:
		tf.rec.Description, tf.fallback = desc, false
	case real == !tf.fallback && len(desc) > len(tf.rec.Description):
		tf.rec.Description = desc
	}
}

func (t *fileTracker) list() []types.FileChangeRecord {
	out := make([]types.FileChangeRecord, 0, len(t.order))
	for _, p := range t.order {
		out = append(out, t.records[p].rec)
	}
	return out
}

// ExtractFileChanges 先从 implementation 与 result 消息、再从观察记录收集文件变更。
// 只读提及会被跳过，观察记录不覆盖由消息文本得到的记录。
func ExtractFileChanges(msgs []types.Message, observations []types.Observation) []types.FileChangeRecord {
	tracker := newFileTracker()
	for _, m := range msgs {
		switch ClassifyMessage(m) {
		case types.SemanticImplementation, types.SemanticResult:
		default:
			continue
		}
		text := m.Text()
		for _, mt := range findPaths(text) {
			action := classifyAction(text, mt)
			if action == types.FileRead {
				continue
			}
			p := NormalizePath(mt.path)
			desc, real := describe(text, mt, p)
			tracker.observe(p, action, desc, real)
		}
	}

	for _, obs := range observations {
		for _, f := range obs.Files {
			p := NormalizePath(f)
			if _, known := tracker.records[p]; known || p == "." {
				continue
			}
			action := types.FileModified
			if obs.Text != "" && createVerbs.MatchString(obs.Text) {
				action = types.FileCreated
			}
			tracker.observe(p, action, "Updated "+humanizeFilename(p), false)
		}
	}
	return tracker.list()
}
