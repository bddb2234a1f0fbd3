package types

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Role represents the role of a transcript participant.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is a single transcript entry. A message carries its text in either
// Prompt or Content; Prompt wins when both are present.
type Message struct {
	Role      Role      `json:"role,omitempty"`
	Prompt    string    `json:"prompt,omitempty"`
	Content   string    `json:"content,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
	Files     []string  `json:"files,omitempty"`
}

// NewMessage creates a content-bearing message.
func NewMessage(role Role, content string) Message {
	return Message{Role: role, Content: content}
}

// NewUserMessage creates a user message.
func NewUserMessage(content string) Message {
	return NewMessage(RoleUser, content)
}

// NewAssistantMessage creates an assistant message.
func NewAssistantMessage(content string) Message {
	return NewMessage(RoleAssistant, content)
}

// Text returns the message text, preferring Prompt over Content.
func (m Message) Text() string {
	if m.Prompt != "" {
		return m.Prompt
	}
	return m.Content
}

// SetText writes text back to the field Text reads from.
func (m *Message) SetText(text string) {
	if m.Prompt != "" {
		m.Prompt = text
		return
	}
	m.Content = text
}

// HasText reports whether the message carries a prompt or content field.
func (m Message) HasText() bool {
	return m.Prompt != "" || m.Content != ""
}

// Observation is a tool-side record of touched files.
type Observation struct {
	Files []string `json:"files"`
	Text  string   `json:"text,omitempty"`
}

// ObservationsFromMessages collects observations from messages that list files.
func ObservationsFromMessages(msgs []Message) []Observation {
	var out []Observation
	for _, m := range msgs {
		if len(m.Files) == 0 {
			continue
		}
		out = append(out, Observation{Files: append([]string(nil), m.Files...), Text: m.Text()})
	}
	return out
}

// rawMessage mirrors the loose on-disk shape of a transcript entry.
type rawMessage struct {
	Role      string          `json:"role"`
	Type      string          `json:"type"`
	Prompt    json.RawMessage `json:"prompt"`
	Content   json.RawMessage `json:"content"`
	Timestamp string          `json:"timestamp"`
	Files     []string        `json:"files"`
}

// contentBlock is one element of an array-valued content field.
type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// DecodeTranscript parses a JSON array of transcript entries.
// Non-array input yields ErrInvalidInput. Entries that are not objects are skipped;
// text fields that are neither strings nor arrays of text blocks are left empty.
func DecodeTranscript(data []byte) ([]Message, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, NewError(ErrInvalidInput, "transcript must be a JSON array")
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, NewError(ErrInvalidInput, "transcript is not valid JSON").WithCause(err)
	}

	msgs := make([]Message, 0, len(items))
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '{' {
			continue
		}
		var raw rawMessage
		if err := json.Unmarshal(item, &raw); err != nil {
			continue
		}
		msg := Message{
			Role:    Role(firstNonEmpty(raw.Role, raw.Type)),
			Prompt:  decodeText(raw.Prompt),
			Content: decodeText(raw.Content),
			Files:   raw.Files,
		}
		if raw.Timestamp != "" {
			if ts, err := time.Parse(time.RFC3339Nano, raw.Timestamp); err == nil {
				msg.Timestamp = ts
			}
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// JoinText concatenates the text of every message, separated by blank lines.
func JoinText(msgs []Message) string {
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if t := m.Text(); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n\n")
}

func decodeText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var blocks []contentBlock
	if err := json.Unmarshal(raw, &blocks); err == nil {
		var parts []string
		for _, b := range blocks {
			if b.Text != "" && (b.Type == "" || b.Type == "text") {
				parts = append(parts, b.Text)
			}
		}
		return strings.Join(parts, "\n")
	}
	return ""
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
