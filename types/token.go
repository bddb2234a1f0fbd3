package types

import "unicode"

// TokenCounter is the minimal token counting contract.
type TokenCounter interface {
	CountTokens(text string) int
}

// Estimation ratios used when no model encoding is available.
const (
	latinCharsPerToken = 4.0
	hanCharsPerToken   = 1.5
	messageOverhead    = 4
)

// EstimateTokenizer approximates token counts from character classes:
// Han characters are denser than Latin text in BPE vocabularies.
type EstimateTokenizer struct{}

// NewEstimateTokenizer creates a new EstimateTokenizer.
func NewEstimateTokenizer() *EstimateTokenizer { return &EstimateTokenizer{} }

// CountTokens returns 0 for empty text and at least 1 otherwise.
func (*EstimateTokenizer) CountTokens(text string) int {
	if text == "" {
		return 0
	}
	var han, other float64
	for _, r := range text {
		if unicode.Is(unicode.Han, r) {
			han++
		} else {
			other++
		}
	}
	return max(1, int(han/hanCharsPerToken+other/latinCharsPerToken))
}

// CountMessageTokens counts the message text, its file paths and a fixed
// per-message overhead.
func (t *EstimateTokenizer) CountMessageTokens(msg Message) int {
	n := messageOverhead + t.CountTokens(msg.Text())
	for _, f := range msg.Files {
		n += t.CountTokens(f)
	}
	return n
}

// CountMessagesTokens sums CountMessageTokens over msgs.
func (t *EstimateTokenizer) CountMessagesTokens(msgs []Message) int {
	var n int
	for i := range msgs {
		n += t.CountMessageTokens(msgs[i])
	}
	return n
}
