package triggers

import (
	"regexp"
	"strings"
)

// CandidateType 产生候选短语的提取器类型
type CandidateType string

const (
	TypeNGram     CandidateType = "ngram"
	TypeProblem   CandidateType = "problem"
	TypeTechnical CandidateType = "technical"
	TypeDecision  CandidateType = "decision"
	TypeAction    CandidateType = "action"
	TypeCompound  CandidateType = "compound"
)

// 优先级抽取器的基础分
const (
	scoreProblem      = 3.0
	scoreProblemState = 2.7
	scoreTechnical    = 2.5
	scoreDecision     = 2.0
	scoreAction       = 1.5
	scoreCompound     = 1.3

	maxNGram        = 4
	maxPhraseWords  = 5
	maxPhraseLength = 60
)

// nGramBonus 按 N 索引
var nGramBonus = [maxNGram + 1]float64{0, 1.0, 1.5, 1.8, 2.0}

// Candidate 带评分的候选短语
type Candidate struct {
	Phrase string        `json:"phrase"`
	Score  float64       `json:"score"`
	Type   CandidateType `json:"type"`
	Count  int           `json:"count"`
}

// candidateSet 每个短语只保留最高分的候选
type candidateSet map[string]*Candidate

func (s candidateSet) add(phrase string, score float64, typ CandidateType) {
	phrase = normalizePhrase(phrase)
	if !validPhrase(phrase) {
		return
	}
	c, ok := s[phrase]
	if !ok {
		s[phrase] = &Candidate{Phrase: phrase, Score: score, Type: typ, Count: 1}
		return
	}
	c.Count++
	if score > c.Score {
		c.Score = score
		c.Type = typ
	}
}

func validPhrase(p string) bool {
	if len(p) < 3 || len(p) > maxPhraseLength {
		return false
	}
	words := strings.Fields(p)
	if len(words) > maxPhraseWords {
		return false
	}
	for _, w := range words {
		if !isStopWord(w) {
			return true
		}
	}
	return false
}

// scoreNGrams 在词流上统计 N=1..4 的 N-gram，
// 得分为 count/maxCount(N) 乘以对应 N 的加成
func scoreNGrams(tokens []string, set candidateSet) {
	for n := 1; n <= maxNGram; n++ {
		counts := make(map[string]int)
		maxCount := 0
		for i := 0; i+n <= len(tokens); i++ {
			window := tokens[i : i+n]
			if containsBreak(window) {
				continue
			}
			if n == 1 && len(window[0]) < 3 {
				continue
			}
			phrase := strings.Join(window, " ")
			counts[phrase]++
			if counts[phrase] > maxCount {
				maxCount = counts[phrase]
			}
		}
		for phrase, count := range counts {
			set.add(phrase, float64(count)/float64(maxCount)*nGramBonus[n], TypeNGram)
		}
	}
}

func containsBreak(window []string) bool {
	for _, t := range window {
		if t == breakMarker {
			return true
		}
	}
	return false
}

// =============================================================================
// 优先级抽取器
// =============================================================================

var (
	problemFailure = regexp.MustCompile(`(?i)\b([a-z][a-z0-9_-]{2,})\s+(not working|not loading|not found|fails|failed|failing|broken|crashes|crashed|hangs|times out|timed out|errors out)\b`)
	problemAdjNoun = regexp.MustCompile(`(?i)\b(short|empty|missing|truncated|wrong|incorrect|duplicated?|slow|stale|invalid|broken|corrupt(?:ed)?|infinite|flaky|failing|unhandled)\s+([a-z][a-z0-9_-]{2,})\b`)
	problemState   = regexp.MustCompile(`(?i)\b(simulation|fallback|offline|degraded|debug|dry[- ]run|safe|legacy|read[- ]?only|maintenance)\s+(mode|data|state|content|path|responses?|results?)\b`)

	camelCase   = regexp.MustCompile(`\b[a-z]+(?:[A-Z][a-z0-9]*)+\b`)
	pascalCase  = regexp.MustCompile(`\b[A-Z][a-z0-9]+(?:[A-Z][a-z0-9]*)+\b`)
	snakeCase   = regexp.MustCompile(`\b[a-z][a-z0-9]*(?:_[a-z0-9]+)+\b`)
	funcCall    = regexp.MustCompile(`\b([A-Za-z_][A-Za-z0-9_]{2,})\(`)
	kebabFile   = regexp.MustCompile(`\b([a-z0-9]+(?:-[a-z0-9]+)+)\.[a-z]{1,5}\b`)
	decisionObj = regexp.MustCompile(`(?i)\b(?:chose|chosen|selected|implemented|switched to|opted for|went with|decided (?:on|to use)|adopted|migrated to|replaced [a-z0-9 _-]{1,30}? with)\s+(?:the\s+|a\s+|an\s+)?([a-z][a-z0-9_-]*(?:\s+[a-z][a-z0-9_-]*){0,3})`)
	actionObj   = regexp.MustCompile(`(?i)\b(fix|fixed|add|added|implement|implemented|refactor|refactored|update|updated|remove|removed|create|created|optimi[sz]e|optimi[sz]ed|improve|improved|debug|debugged|migrate|migrated|configure|configured|rename|renamed|extract|extracted)\s+(?:the\s+|a\s+|an\s+)?([a-z][a-z0-9_-]{2,})(?:\s+([a-z][a-z0-9_-]{2,}))?`)

	compoundRole   = regexp.MustCompile(`(?i)\b([a-z][a-z0-9-]{2,})\s+(extractor|service|manager|handler|generator|parser|filter|pipeline|provider|store|controller|validator|builder|processor|loader|client|server|engine|system|module|component|hook|index|cache|queue|worker|middleware|router|scheduler|registry|tokenizer|summarizer)\b`)
	compoundDomain = regexp.MustCompile(`(?i)\b(memory|trigger|anchor|vector|embedding|semantic|context|session|search|retrieval|spec|token)\s+([a-z]{3,})\b`)
)

func extractProblems(text string, set candidateSet) {
	for _, m := range problemFailure.FindAllStringSubmatch(text, -1) {
		if !isStopWord(strings.ToLower(m[1])) {
			set.add(m[1]+" "+m[2], scoreProblem, TypeProblem)
		}
	}
	for _, m := range problemAdjNoun.FindAllStringSubmatch(text, -1) {
		if !isStopWord(strings.ToLower(m[2])) {
			set.add(m[1]+" "+m[2], scoreProblem, TypeProblem)
		}
	}
	for _, m := range problemState.FindAllStringSubmatch(text, -1) {
		set.add(m[0], scoreProblemState, TypeProblem)
	}
}

func extractTechnical(text string, set candidateSet) {
	for _, id := range camelCase.FindAllString(text, -1) {
		set.add(splitIdentifier(id), scoreTechnical, TypeTechnical)
		set.add(id, scoreTechnical*0.9, TypeTechnical)
	}
	for _, id := range pascalCase.FindAllString(text, -1) {
		set.add(splitIdentifier(id), scoreTechnical, TypeTechnical)
		set.add(id, scoreTechnical*0.9, TypeTechnical)
	}
	for _, id := range snakeCase.FindAllString(text, -1) {
		set.add(strings.ReplaceAll(id, "_", " "), scoreTechnical*0.9, TypeTechnical)
	}
	for _, m := range funcCall.FindAllStringSubmatch(text, -1) {
		if _, kw := callKeywords[strings.ToLower(m[1])]; kw {
			continue
		}
		set.add(splitIdentifier(m[1]), scoreTechnical*0.85, TypeTechnical)
	}
	for _, m := range kebabFile.FindAllStringSubmatch(text, -1) {
		set.add(strings.ReplaceAll(m[1], "-", " "), scoreTechnical*0.8, TypeTechnical)
	}
}

func extractDecisions(text string, set candidateSet) {
	for _, m := range decisionObj.FindAllStringSubmatch(text, -1) {
		if obj := leadingContentWords(m[1]); obj != "" {
			set.add(obj, scoreDecision, TypeDecision)
		}
	}
}

// leadingContentWords 截取到第一个停用词之前的词
func leadingContentWords(s string) string {
	var out []string
	for _, w := range strings.Fields(strings.ToLower(s)) {
		if isStopWord(w) {
			break
		}
		out = append(out, w)
	}
	return strings.Join(out, " ")
}

func extractActions(text string, set candidateSet) {
	for _, m := range actionObj.FindAllStringSubmatch(text, -1) {
		obj := strings.ToLower(m[2])
		if _, vague := vagueObjects[obj]; vague || isStopWord(obj) {
			continue
		}
		phrase := strings.ToLower(m[1]) + " " + obj
		if next := strings.ToLower(m[3]); next != "" && !isStopWord(next) {
			phrase += " " + next
		}
		set.add(phrase, scoreAction, TypeAction)
	}
}

func extractCompounds(text string, set candidateSet) {
	for _, m := range compoundRole.FindAllStringSubmatch(text, -1) {
		if !isStopWord(strings.ToLower(m[1])) {
			set.add(m[1]+" "+m[2], scoreCompound, TypeCompound)
		}
	}
	for _, m := range compoundDomain.FindAllStringSubmatch(text, -1) {
		if !isStopWord(strings.ToLower(m[2])) {
			set.add(m[1]+" "+m[2], scoreCompound, TypeCompound)
		}
	}
}
