package chunker

import (
	"math"
	"strings"
)

// tokensPerWord is the heuristic ratio between whitespace-delimited words
// and model tokens. The same estimator is used for chunk sizing, overlap
// sizing, and the assembler's budget so sizes never drift between stages.
const tokensPerWord = 1.3

// EstimateTokens estimates the token count of text as words x 1.3,
// rounded up. An empty or whitespace-only string estimates to zero.
func EstimateTokens(text string) int {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	return int(math.Ceil(float64(words) * tokensPerWord))
}

// wordsForTokens inverts the estimate: how many trailing words make up
// roughly the given token count.
func wordsForTokens(tokens int) int {
	if tokens <= 0 {
		return 0
	}
	return int(math.Floor(float64(tokens) / tokensPerWord))
}
