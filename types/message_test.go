package types

import (
	"testing"
	"time"
)

func TestMessage_TextPrefersPrompt(t *testing.T) {
	t.Parallel()

	m := Message{Prompt: "from prompt", Content: "from content"}
	if m.Text() != "from prompt" {
		t.Fatalf("expected prompt text, got %q", m.Text())
	}
	m.SetText("rewritten")
	if m.Prompt != "rewritten" || m.Content != "from content" {
		t.Fatalf("expected SetText to write prompt only: %+v", m)
	}

	c := NewAssistantMessage("body")
	c.SetText("changed")
	if c.Content != "changed" || c.Prompt != "" {
		t.Fatalf("expected SetText to write content: %+v", c)
	}
}

func TestDecodeTranscript(t *testing.T) {
	t.Parallel()

	data := []byte(`[
		{"role":"user","prompt":"I want to implement OAuth login","timestamp":"2024-05-01T10:00:00Z"},
		{"role":"assistant","content":[{"type":"text","text":"Created auth.js"},{"type":"tool_use"}]},
		{"type":"tool","content":"ran tests","files":["auth.js","auth_test.js"]},
		42,
		{"role":"assistant","content":{"nested":true}}
	]`)

	msgs, err := DecodeTranscript(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(msgs) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(msgs))
	}
	if msgs[0].Text() != "I want to implement OAuth login" {
		t.Fatalf("unexpected first text %q", msgs[0].Text())
	}
	if !msgs[0].Timestamp.Equal(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected timestamp %v", msgs[0].Timestamp)
	}
	if msgs[1].Content != "Created auth.js" {
		t.Fatalf("expected block text, got %q", msgs[1].Content)
	}
	if msgs[2].Role != RoleTool {
		t.Fatalf("expected role from type field, got %q", msgs[2].Role)
	}
	if msgs[3].HasText() {
		t.Fatalf("expected object content to decode as empty")
	}

	obs := ObservationsFromMessages(msgs)
	if len(obs) != 1 || len(obs[0].Files) != 2 || obs[0].Text != "ran tests" {
		t.Fatalf("unexpected observations %+v", obs)
	}
}

func TestDecodeTranscript_RejectsNonArray(t *testing.T) {
	t.Parallel()

	for _, in := range []string{``, `{"role":"user"}`, `"text"`, `[{"role":`} {
		_, err := DecodeTranscript([]byte(in))
		if !IsErrorCode(err, ErrInvalidInput) {
			t.Fatalf("input %q: expected INVALID_INPUT, got %v", in, err)
		}
	}
}

func TestJoinText(t *testing.T) {
	t.Parallel()

	got := JoinText([]Message{NewUserMessage("a"), {}, NewAssistantMessage("b")})
	if got != "a\n\nb" {
		t.Fatalf("unexpected join %q", got)
	}
}
