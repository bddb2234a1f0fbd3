package curation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/memcurator/curation/anchor"
	"github.com/BaSui01/memcurator/testutil"
	"github.com/BaSui01/memcurator/types"
)

func renderSummary(t *testing.T, s types.Summary, lowQuality bool) *Document {
	t.Helper()
	doc := &Document{ID: "doc-1", CreatedAt: fixedTime, Title: s.Task, Summary: s, QualityScore: 42, LowQuality: lowQuality}
	require.NoError(t, render(doc, anchor.NewRegistry(anchor.NewGenerator(testutil.FixedClock(fixedTime)))))
	return doc
}

func TestRender_AllSections(t *testing.T) {
	doc := renderSummary(t, types.Summary{
		Task:     "Add Redis sessions",
		Solution: "Modified session/store.go",
		FilesCreated: []types.FileChangeRecord{
			{Path: "session/redis.go", Action: types.FileCreated, Description: "Redis client wrapper"},
		},
		FilesModified: []types.FileChangeRecord{
			{Path: "session/store.go", Action: types.FileModified, Description: "Use Redis backend"},
			{Path: "session/memory.go", Action: types.FileDeleted},
		},
		Decisions: []types.Decision{
			{Question: "Redis or Postgres?", Choice: "Redis for TTL support"},
			{Choice: "Keep the in-memory fallback"},
		},
		Outcomes:       []string{"sessions persisted"},
		TriggerPhrases: []string{"redis sessions", "session/store.go"},
	}, true)

	var cats []string
	for _, s := range doc.Sections {
		cats = append(cats, s.Category)
	}
	assert.Equal(t, []string{CategoryOverview, CategoryFiles, CategoryDecision, CategoryOutcome, CategoryTriggers}, cats)

	assert.True(t, strings.HasPrefix(doc.Markdown, "---\nid: doc-1\n"))
	assert.Contains(t, doc.Markdown, "# Add Redis sessions\n")
	assert.Contains(t, doc.Markdown, "trigger_phrases: [redis sessions, session/store.go]")

	overview, ok := doc.SectionText(doc.Sections[0].AnchorID)
	require.True(t, ok)
	assert.Contains(t, overview, "_Quality: 42/100_")
	assert.Contains(t, overview, "Low-quality transcript")

	files, _ := doc.SectionText(doc.Sections[1].AnchorID)
	assert.Contains(t, files, "### Created\n\n- `session/redis.go` - Redis client wrapper")
	assert.Contains(t, files, "- `session/memory.go` (deleted)")

	decisions, _ := doc.SectionText(doc.Sections[2].AnchorID)
	assert.Contains(t, decisions, "- **Redis or Postgres?** Redis for TTL support")
	assert.Contains(t, decisions, "- Keep the in-memory fallback")

	triggers, _ := doc.SectionText(doc.Sections[4].AnchorID)
	assert.True(t, strings.HasSuffix(triggers, "redis sessions, session/store.go"))

	assert.Equal(t, len(doc.Sections), strings.Count(doc.Markdown, "<!-- /anchor:"))
	fm := parseFrontMatter(t, doc.Markdown)
	assert.True(t, fm.LowQuality)
	assert.Equal(t, doc.AnchorIDs()[3], fm.Anchors[3].AnchorID)
}

func TestRender_AnchorsUniqueWithSameClock(t *testing.T) {
	doc := renderSummary(t, types.Summary{
		Task:           "x",
		Outcomes:       []string{"a"},
		TriggerPhrases: []string{"p"},
		Decisions:      []types.Decision{{Choice: "c"}},
	}, false)

	seen := make(map[string]bool)
	for _, id := range doc.AnchorIDs() {
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestDocument_SectionTextMissing(t *testing.T) {
	doc := &Document{Markdown: "<!-- anchor:a -->\nbody"}
	_, ok := doc.SectionText("a")
	assert.False(t, ok, "unclosed section")
	_, ok = doc.SectionText("b")
	assert.False(t, ok)
	assert.Empty(t, (&Document{}).AnchorIDs())
}
