package rules

import "strings"

// EstimateTokens gives a rough token count using ~1.33 tokens per word.
// Exact tokenization is not required for size warnings.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	words := len(strings.Fields(text))
	tokens := int(float64(words) * 1.33)
	if tokens < 1 && len(text) > 0 {
		tokens = 1
	}
	return tokens
}
