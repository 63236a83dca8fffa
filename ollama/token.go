package ollama

import (
	"context"

	"github.com/docdex/docdex"
)

// tokensPerChar is the heuristic divisor for estimating tokens (chars/4).
const tokensPerChar = 4

// Compile-time interface verification.
var _ docdex.TokenCounter = (*TokenCounter)(nil)

// TokenCounter estimates token counts for Ollama-served models. Ollama
// exposes no tokenize endpoint, so counts use the common chars/4 heuristic;
// callers should leave headroom in the token limit when pairing this counter
// with a strict backend.
type TokenCounter struct{}

// NewTokenCounter creates a heuristic token counter.
func NewTokenCounter() *TokenCounter {
	return &TokenCounter{}
}

// CountTokens estimates the number of tokens in text.
func (tc *TokenCounter) CountTokens(_ context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	n := len(text) / tokensPerChar
	if n == 0 {
		n = 1
	}
	return n, nil
}
