// Package utils provides token counting utilities shared across the pipeline.
package utils

import (
	"fmt"

	"github.com/tiktoken-go/tokenizer"
)

// CharsPerToken is the character-based fallback estimate (4 chars ≈ 1 token).
const CharsPerToken = 4

// TokenCounter provides token counting for prompt budgeting.
type TokenCounter struct {
	codec tokenizer.Codec
}

// NewTokenCounter creates a token counter. All supported models are close
// enough to GPT-4 tokenization for budgeting purposes.
func NewTokenCounter() (*TokenCounter, error) {
	codec, err := tokenizer.ForModel(tokenizer.GPT4)
	if err != nil {
		return nil, fmt.Errorf("failed to create tokenizer codec: %w", err)
	}
	return &TokenCounter{codec: codec}, nil
}

// CountTokens returns the number of tokens in text, falling back to a
// character estimate when the codec is unavailable.
func (tc *TokenCounter) CountTokens(text string) int {
	if tc == nil || tc.codec == nil {
		return len(text) / CharsPerToken
	}
	count, err := tc.codec.Count(text)
	if err != nil {
		return len(text) / CharsPerToken
	}
	return count
}

// CharBudget converts a token budget to a character budget using the fixed
// chars-per-token estimate. Used to truncate fetched link content.
func CharBudget(tokenBudget int) int {
	return tokenBudget * CharsPerToken
}
