package triggers

func wordSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// stopWords 在 N-gram 统计前从词流中移除
var stopWords = wordSet(
	"a", "about", "above", "after", "again", "against", "all", "am", "an", "and", "any", "are",
	"as", "at", "be", "because", "been", "before", "being", "below", "between", "both", "but",
	"by", "can", "could", "did", "do", "does", "doing", "don", "down", "during", "each", "few",
	"for", "from", "further", "had", "has", "have", "having", "he", "her", "here", "hers",
	"him", "his", "how", "i", "if", "in", "into", "is", "isn", "it", "its", "itself", "just",
	"let", "ll", "me", "more", "most", "my", "no", "nor", "not", "now", "of", "off", "on",
	"once", "only", "or", "other", "our", "ours", "out", "over", "own", "re", "same", "she",
	"should", "so", "some", "such", "than", "that", "the", "their", "them", "then", "there",
	"these", "they", "this", "those", "through", "to", "too", "under", "until", "up", "us",
	"ve", "very", "was", "we", "were", "what", "when", "where", "which", "while", "who",
	"whom", "why", "will", "with", "would", "you", "your", "yours", "also", "may", "might",
	"must", "shall", "yes", "ok", "okay", "sure", "thanks", "thank", "please", "didn",
	"doesn", "won", "wasn", "aren", "haven", "hasn", "shouldn", "wouldn", "couldn", "etc",
	"via", "within", "without", "onto", "per", "like", "get", "got", "one", "two",
	// markdown 与文件扩展名残留
	"http", "https", "www", "com", "org", "nbsp", "amp", "quot", "gt", "lt",
	"js", "ts", "tsx", "jsx", "py", "md", "json", "jsonc", "yaml", "yml", "sh", "txt",
)

// technicalStopWords 过于通用，不能单独作为触发短语
var technicalStopWords = wordSet(
	"file", "files", "code", "function", "functions", "method", "methods", "data", "line",
	"lines", "value", "values", "type", "types", "thing", "things", "way", "use", "used",
	"using", "make", "made", "need", "needs", "set", "run", "running", "work", "works",
	"working", "time", "new", "want", "see", "look", "next", "first", "step", "done",
	"change", "changes", "changed", "update", "updated", "fix", "fixed", "issue", "issues",
	"problem", "error", "errors", "result", "results", "output", "input", "test", "tests",
	"check", "add", "added", "create", "created", "implement", "implemented",
	"should", "will", "let", "right", "good", "well", "still", "already", "really", "going",
)

// vagueObjects 不能作为动作短语的宾语
var vagueObjects = wordSet(
	"it", "this", "that", "them", "these", "those", "something", "everything", "anything",
	"stuff", "things", "thing", "some", "all", "more", "any", "one", "there", "here",
)

// placeholderMarkers 模拟或占位输出的标志，出现两个及以上即拒绝
var placeholderMarkers = []string{
	"[simulated]",
	"simulation mode",
	"placeholder",
	"lorem ipsum",
	"fallback content",
	"mock response",
	"sample output",
}

// callKeywords 后接 "(" 也不视为函数名
var callKeywords = wordSet(
	"if", "for", "while", "switch", "return", "func", "function", "catch", "print",
	"println", "printf", "len", "make", "new", "append", "require", "import", "typeof",
)

func isStopWord(w string) bool {
	_, ok := stopWords[w]
	return ok
}

func isTechnicalStopWord(w string) bool {
	_, ok := technicalStopWords[w]
	return ok || isStopWord(w)
}
