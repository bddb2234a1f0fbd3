package types

import "testing"

func TestEstimateTokenizer_Counting(t *testing.T) {
	t.Parallel()

	tok := NewEstimateTokenizer()

	if got := tok.CountTokens(""); got != 0 {
		t.Fatalf("expected 0 tokens for empty, got %d", got)
	}
	if got := tok.CountTokens("a"); got != 1 {
		t.Fatalf("expected minimum 1 token for non-empty, got %d", got)
	}
	if got := tok.CountTokens("abcdefghijklmnop"); got != 4 {
		t.Fatalf("expected 4 tokens for 16 latin chars, got %d", got)
	}
	if got := tok.CountTokens("记忆检索"); got != 2 {
		t.Fatalf("expected 2 tokens for 4 CJK chars, got %d", got)
	}

	msg := Message{Role: RoleUser, Prompt: "hello world", Files: []string{"auth.js"}}
	if got := tok.CountMessageTokens(msg); got <= tok.CountTokens("hello world") {
		t.Fatalf("expected overhead on message tokens, got %d", got)
	}
	if got := tok.CountMessagesTokens([]Message{msg, msg}); got != 2*tok.CountMessageTokens(msg) {
		t.Fatalf("expected messages tokens to sum, got %d", got)
	}
}
