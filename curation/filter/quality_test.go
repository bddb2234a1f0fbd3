package filter

import (
	"testing"

	"github.com/BaSui01/memcurator/config"
	"github.com/BaSui01/memcurator/types"

	"github.com/stretchr/testify/assert"
)

func TestAssessQuality_Empty(t *testing.T) {
	b := AssessQuality(nil, config.DefaultFilterConfig().Quality.Factors)
	assert.Equal(t, QualityBreakdown{}, b)
}

func TestAssessQuality_Factors(t *testing.T) {
	factors := config.DefaultFilterConfig().Quality.Factors
	msgs := []types.Message{
		{Content: "Implemented the cache handler in cache.go and fixed the api error"},
		{Content: "We chose redis for the cache because the approach scales the api server; see store.go and db.go and x.go"},
	}

	b := AssessQuality(msgs, factors)

	assert.Equal(t, 1.0, b.Uniqueness)
	assert.Equal(t, 1.0, b.Density, "both messages hit the density cap")
	assert.InDelta(t, 0.75, b.FileRefs, 1e-9, "one ref plus a capped two")
	assert.InDelta(t, 0.5, b.Decisions, 1e-9, "zero plus a capped two")
	assert.Equal(t, 85, b.Score)
}

func TestAssessQuality_WeightsAreNormalized(t *testing.T) {
	msgs := []types.Message{{Content: "plain words without signal"}}
	b := AssessQuality(msgs, config.QualityFactors{Uniqueness: 3})
	assert.Equal(t, 100, b.Score)

	zero := AssessQuality(msgs, config.QualityFactors{})
	assert.Equal(t, 30, zero.Score, "zero weights fall back to defaults")
}

func TestQualityScore_DuplicatesLowerUniqueness(t *testing.T) {
	factors := config.DefaultFilterConfig().Quality.Factors
	dup := types.Message{Content: "random chatter here"}

	assert.Equal(t, 30, QualityScore([]types.Message{dup}, factors))
	assert.Equal(t, 15, QualityScore([]types.Message{dup, dup}, factors))
}

func TestIsLowQuality(t *testing.T) {
	assert.True(t, IsLowQuality(19, 20))
	assert.False(t, IsLowQuality(20, 20))
	assert.False(t, IsLowQuality(0, 0))
}
