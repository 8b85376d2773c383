package monitor

import "unicode/utf8"

// default calibration, roughly Claude's tokenizer ratio
const defaultCharsPerToken = 4.0

// estimates token counts from text length
type TokenCounter struct {
	charsPerToken float64
}

// creates a token counter with default calibration
func NewTokenCounter() *TokenCounter {
	return &TokenCounter{charsPerToken: defaultCharsPerToken}
}

// estimates tokens in a string
func (tc *TokenCounter) Count(s string) int {
	if s == "" {
		return 0
	}

	// rune count for proper unicode handling
	runeCount := utf8.RuneCountInString(s)
	tokens := int(float64(runeCount) / tc.charsPerToken)

	if tokens == 0 {
		return 1
	}

	return tokens
}
