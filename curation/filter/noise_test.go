package filter

import (
	"testing"

	"github.com/BaSui01/memcurator/config"
	"github.com/BaSui01/memcurator/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsNoise(t *testing.T) {
	noise := []string{
		"",
		"   \n\t",
		"User message",
		"(no content)",
		"[placeholder]",
		"...",
		"…",
		"<command-name></command-name>",
		"<command-name> </command-name><command-args></command-args>",
		"<system-reminder>\nremember the rules\n</system-reminder>",
		"<system-reminder>a</system-reminder>\n<system-reminder>b</system-reminder>",
		"[Image #1]",
		"[Image: screenshot.png] [Image #2]",
		"![diagram](diagram.png)",
		"[Request interrupted by user for tool use]",
		"Command: ...",
	}
	for _, s := range noise {
		assert.True(t, IsNoise(s), "expected noise: %q", s)
	}

	signal := []string{
		"Created auth.js with OAuth login flow",
		"<system-reminder>x</system-reminder> but the build still fails",
		"<command-name>/review</command-name> check the parser",
		"[Image #1] the button overlaps the header",
	}
	for _, s := range signal {
		assert.False(t, IsNoise(s), "expected signal: %q", s)
	}
}

func TestStripWrappers(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"<command-name>/review</command-name>", "Command: /review"},
		{"<command-message>review the parser</command-message>\n<command-args></command-args>", "review the parser"},
		{"<command-name>/test</command-name> <command-args>--all</command-args>", "Command: /test Args: --all"},
		{"<local-command-stdout>ok 12 tests</local-command-stdout>", "Output: ok 12 tests"},
		{"fix it <system-reminder>ignore</system-reminder> now", "fix it  now"},
		{"plain text", "plain text"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StripWrappers(tt.in))
	}
}

func TestUniqueWords(t *testing.T) {
	assert.Equal(t, 0, UniqueWords(""))
	assert.Equal(t, 1, UniqueWords("hello hello HELLO a"))
	assert.Equal(t, 3, UniqueWords("fix the_parser, fix tests!"))
}

func TestFilterNoise_DropsAndMutatesInPlace(t *testing.T) {
	cfg := config.DefaultFilterConfig().Noise
	msgs := []types.Message{
		{Content: "User message"},
		{Content: "ok"},
		{Content: "hello hello"},
		{Prompt: "<command-message>deploy the service</command-message>"},
		{Content: "<command-name>/review</command-name> check the parser"},
		{Content: "Created auth.js with OAuth login flow"},
	}

	out, res := FilterNoise(msgs, cfg)

	assert.Equal(t, 1, res.Noise)
	assert.Equal(t, 2, res.Empty)
	require.Len(t, out, 3)
	assert.Equal(t, "deploy the service", out[0].Prompt)
	assert.Equal(t, "Command: /review check the parser", out[1].Content)

	// 原切片中的幸存消息被就地改写
	assert.Equal(t, "deploy the service", msgs[3].Prompt)
	assert.Empty(t, msgs[3].Content)
	assert.Equal(t, "Command: /review check the parser", msgs[4].Content)
}

func TestFilterNoise_CustomMinimums(t *testing.T) {
	cfg := config.NoiseConfig{Enabled: true, MinContentLength: 20, MinUniqueWords: 4}
	out, res := FilterNoise([]types.Message{
		{Content: "short words here"},
		{Content: "four distinct words present here"},
	}, cfg)

	assert.Equal(t, 1, res.Empty)
	require.Len(t, out, 1)
	assert.Equal(t, "four distinct words present here", out[0].Content)
}
