package filter

import (
	"testing"

	"github.com/BaSui01/memcurator/config"
	"github.com/BaSui01/memcurator/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func sessionMessages() []types.Message {
	return []types.Message{
		{Role: types.RoleUser, Prompt: "I want to implement OAuth login"},
		{Role: types.RoleAssistant, Content: "(no content)"},
		{Role: types.RoleAssistant, Content: "I'll create auth.js for OAuth"},
		{Role: types.RoleAssistant, Content: "I'll create auth.js for OAuth"},
		{Role: types.RoleAssistant, Content: "<command-name>/test</command-name> <command-args>auth</command-args>"},
		{Role: types.RoleAssistant, Content: "Created auth.js with OAuth login flow"},
		{Role: types.RoleUser, Content: "ok"},
		{Role: types.RoleAssistant, Content: "Completed: OAuth working"},
	}
}

func TestPipeline_DefaultRun(t *testing.T) {
	p := NewPipeline(nil, nil)
	out := p.Filter(sessionMessages())

	require.Len(t, out, 5)
	assert.Equal(t, "Command: /test Args: auth", out[2].Content)

	stats := p.Stats()
	assert.Equal(t, 8, stats.TotalProcessed)
	assert.Equal(t, 1, stats.Filtered.Noise)
	assert.Equal(t, 1, stats.Filtered.Empty)
	assert.Equal(t, 2, stats.NoiseFiltered)
	assert.Equal(t, 1, stats.DuplicatesRemoved)
	assert.Equal(t, stats.Quality.Score, stats.QualityScore)
	assert.InDelta(t, 5.0/6.0, stats.Quality.Uniqueness, 1e-9, "uniqueness is measured before dedupe")
	assert.GreaterOrEqual(t, stats.QualityScore, 0)
	assert.LessOrEqual(t, stats.QualityScore, 100)
}

func TestPipeline_Disabled(t *testing.T) {
	cfg := config.DefaultFilterConfig()
	cfg.Pipeline.Enabled = false
	p := NewPipeline(cfg, zap.NewNop())

	in := sessionMessages()
	out := p.Filter(in)

	assert.Equal(t, in, out)
	assert.Equal(t, len(in), p.Stats().TotalProcessed)
	assert.False(t, p.IsLowQuality(), "no score without the quality stage")
}

func TestPipeline_StageToggles(t *testing.T) {
	cfg := config.DefaultFilterConfig()
	cfg.Dedupe.Enabled = false
	cfg.Pipeline.Stages = []string{config.StageNoise}

	p := NewPipeline(cfg, nil)
	out := p.Filter(sessionMessages())

	assert.Len(t, out, 6)
	assert.Zero(t, p.Stats().DuplicatesRemoved)
	assert.Zero(t, p.Stats().QualityScore)
}

func TestPipeline_LowQualityWarns(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	cfg := config.DefaultFilterConfig()
	cfg.Quality.WarnThreshold = 90

	p := NewPipeline(cfg, zap.New(core))
	p.Filter([]types.Message{
		{Content: "random chatter about lunch"},
		{Content: "random chatter about lunch"},
	})

	assert.True(t, p.IsLowQuality())
	assert.Equal(t, 1, p.Stats().Filtered.LowQuality)
	assert.Equal(t, 1, logs.FilterMessage("low quality transcript").Len())

	p.ResetStats()
	assert.Equal(t, Stats{}, p.Stats())
	assert.False(t, p.IsLowQuality())
}

func TestPipeline_StatsResetEachRun(t *testing.T) {
	p := NewPipeline(nil, nil)
	p.Filter(sessionMessages())
	p.Filter(sessionMessages())

	stats := p.Stats()
	assert.Equal(t, 8, stats.TotalProcessed)
	assert.Equal(t, 2, stats.NoiseFiltered)
	assert.Equal(t, 1, stats.DuplicatesRemoved)
	assert.Equal(t, 1, stats.Filtered.Duplicate)

	p.Filter([]types.Message{
		{Content: "random chatter about lunch"},
		{Content: "random chatter about lunch"},
		{Content: "(no content)"},
	})
	stats = p.Stats()
	assert.Equal(t, 3, stats.TotalProcessed)
	assert.Equal(t, 1, stats.NoiseFiltered)
	assert.Equal(t, 1, stats.DuplicatesRemoved)
}

func TestPipeline_LowQualityFlagClearedOnNextRun(t *testing.T) {
	p := NewPipeline(nil, nil)
	p.Filter([]types.Message{
		{Content: "random chatter about lunch"},
		{Content: "random chatter about lunch"},
	})
	require.True(t, p.IsLowQuality())

	p.Filter(sessionMessages())
	assert.Equal(t, 0, p.Stats().Filtered.LowQuality)
	assert.False(t, p.IsLowQuality())
}
