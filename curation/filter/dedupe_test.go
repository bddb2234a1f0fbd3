package filter

import (
	"strings"
	"testing"

	"github.com/BaSui01/memcurator/config"
	"github.com/BaSui01/memcurator/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "build passed at on main", Normalize("Build  passed at 2024-05-01T10:00:00Z on\n main", 200))
	assert.Equal(t, "abc", Normalize("ABCDEF", 3))
	assert.Equal(t, Normalize("x 2024-05-01 10:00:00.123+08:00 y", 200), Normalize("x 2023-01-01T00:00 y", 200))
}

func TestContentHash(t *testing.T) {
	a := ContentHash("Build passed at 2024-05-01T10:00:00Z", 200)
	b := ContentHash("build passed at 2025-12-31T23:59:59Z", 200)
	assert.Equal(t, a, b)
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, ContentHash("build failed", 200))
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 1.0, Similarity("Same Text", "same text"))
	assert.Equal(t, 0.0, Similarity("", "abc"))
	assert.InDelta(t, 18.0/22.0, Similarity("alpha beta gamma delta", "alpha beta gamma dzzzz"), 1e-9)
	assert.InDelta(t, 0.5, Similarity("abcd", "abcdwxyz"), 1e-9)

	long := strings.Repeat("a", 300)
	assert.Equal(t, 1.0, Similarity(long, strings.Repeat("a", 200)+strings.Repeat("b", 100)), "only the first 200 runes count")
}

func TestDeduplicate_ExactAndNear(t *testing.T) {
	cfg := config.DefaultFilterConfig().Dedupe
	msgs := []types.Message{
		{Content: "Build passed at 2024-05-01T10:00:00Z on main"},
		{Content: "build passed at 2024-05-02T11:30:00Z on  main"},
		{Content: "Refactored the trigger extractor to use n-grams"},
		{Content: "Refactored the trigger extractor to use n-gramz"},
		{Content: "Completely different sentence about caching"},
	}

	out, removed := Deduplicate(msgs, cfg)

	assert.Equal(t, 2, removed)
	require.Len(t, out, 3)
	assert.Equal(t, msgs[0].Content, out[0].Content, "first seen wins")
	assert.Equal(t, msgs[2].Content, out[1].Content)
	assert.Equal(t, msgs[4].Content, out[2].Content)
}

func TestDeduplicate_ThresholdIsConfigurable(t *testing.T) {
	msgs := []types.Message{
		{Content: "alpha beta gamma delta"},
		{Content: "alpha beta gamma dzzzz"},
	}

	strict := config.DedupeConfig{Enabled: true, HashLength: 200, SimilarityThreshold: 0.85}
	out, removed := Deduplicate(msgs, strict)
	assert.Len(t, out, 2)
	assert.Zero(t, removed)

	loose := config.DedupeConfig{Enabled: true, HashLength: 200, SimilarityThreshold: 0.70}
	out, removed = Deduplicate(msgs, loose)
	assert.Len(t, out, 1)
	assert.Equal(t, 1, removed)
}
