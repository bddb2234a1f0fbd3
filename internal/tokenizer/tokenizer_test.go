package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/BaSui01/memcurator/types"
)

func TestEncodingForModel(t *testing.T) {
	tests := []struct {
		model string
		want  string
	}{
		{"gpt-4o", "o200k_base"},
		{"gpt-4o-mini-2024-07-18", "o200k_base"},
		{"gpt-4-0613", "cl100k_base"},
		{"gpt-3.5-turbo-16k", "cl100k_base"},
		{"claude-3", "cl100k_base"},
		{"", "cl100k_base"},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			assert.Equal(t, tt.want, EncodingForModel(tt.model))
		})
	}
}

func TestCounter_FallsBackToEstimate(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	c := newWithEncoding("no_such_encoding", zap.New(core))

	text := "Created auth.js with OAuth login flow"
	assert.Equal(t, types.NewEstimateTokenizer().CountTokens(text), c.CountTokens(text))
	assert.Equal(t, 0, c.CountTokens(""))
	assert.False(t, c.Exact())
	assert.Equal(t, "estimate", c.Name())

	c.CountTokens("again")
	assert.Equal(t, 1, logs.Len(), "warns once")
}

func TestCounter_Tiktoken(t *testing.T) {
	c := New("gpt-4", nil)
	if !c.Exact() {
		t.Skip("tiktoken encoding data not available offline")
	}
	assert.Equal(t, "tiktoken[cl100k_base]", c.Name())
	assert.Equal(t, 2, c.CountTokens("hello world"))
}

var _ types.TokenCounter = (*Counter)(nil)

func TestForModel(t *testing.T) {
	for _, model := range []string{"", EstimateModel} {
		_, ok := ForModel(model, nil).(*types.EstimateTokenizer)
		assert.True(t, ok, "model %q should use the estimate tokenizer", model)
	}

	c, ok := ForModel("gpt-4o", zap.NewNop()).(*Counter)
	assert.True(t, ok)
	assert.Equal(t, "o200k_base", c.encoding)
}
