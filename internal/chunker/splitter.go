package chunker

import (
	"regexp"
	"strings"
)

// separator is one candidate split point. Literal separators split on an
// exact substring, keeping the separator at the end of the preceding
// piece. Boundary separators split before each regexp match, keeping the
// match at the head of the following piece. Either way, concatenating the
// pieces reconstructs the input exactly.
type separator struct {
	literal  string
	boundary *regexp.Regexp
}

func literalSeparator(s string) separator {
	return separator{literal: s}
}

func boundarySeparator(re *regexp.Regexp) separator {
	return separator{boundary: re}
}

// cut splits text at this separator. Returns the pieces in order; a
// result of length one means the separator produced no usable split.
func (s separator) cut(text string) []string {
	if s.boundary != nil {
		locs := s.boundary.FindAllStringIndex(text, -1)
		if len(locs) == 0 {
			return []string{text}
		}
		var pieces []string
		prev := 0
		for _, loc := range locs {
			if loc[0] > prev {
				pieces = append(pieces, text[prev:loc[0]])
			}
			prev = loc[0]
		}
		pieces = append(pieces, text[prev:])
		return pieces
	}

	parts := strings.SplitAfter(text, s.literal)
	// SplitAfter can emit a trailing empty piece when text ends with the
	// separator; drop it so every piece carries content.
	if len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

// split recursively divides text into pieces of at most maxTokens
// estimated tokens, trying each separator in order and recursing into
// oversized pieces with the remaining list. It is a pure function: same
// inputs, same output, no shared state.
//
// The degraded flag is true when some piece had no usable separator left
// and was force-split by estimated token position.
func split(text string, maxTokens int, seps []separator) (pieces []string, degraded bool) {
	if EstimateTokens(text) <= maxTokens {
		return []string{text}, false
	}

	if len(seps) == 0 {
		return forceSplit(text, maxTokens), true
	}

	parts := seps[0].cut(text)
	if len(parts) <= 1 {
		// Separator not present; fall through to the next one.
		return split(text, maxTokens, seps[1:])
	}

	for _, part := range parts {
		if EstimateTokens(part) <= maxTokens {
			pieces = append(pieces, part)
			continue
		}
		sub, subDegraded := split(part, maxTokens, seps[1:])
		pieces = append(pieces, sub...)
		degraded = degraded || subDegraded
	}
	return pieces, degraded
}

// forceSplit is the emergency path: divide by estimated token position
// when no separator worked. Pieces are cut at word boundaries where
// possible so the estimate stays meaningful.
func forceSplit(text string, maxTokens int) []string {
	wordsPer := wordsForTokens(maxTokens)
	if wordsPer < 1 {
		wordsPer = 1
	}

	var pieces []string
	remaining := text
	for remaining != "" {
		idx := nthWordEnd(remaining, wordsPer)
		if idx <= 0 || idx >= len(remaining) {
			pieces = append(pieces, remaining)
			break
		}
		pieces = append(pieces, remaining[:idx])
		remaining = remaining[idx:]
	}
	return pieces
}

// nthWordEnd returns the byte offset just past the nth whitespace-
// delimited word, or len(s) if there are fewer words.
func nthWordEnd(s string, n int) int {
	inWord := false
	count := 0
	for i, r := range s {
		isSpace := r == ' ' || r == '\t' || r == '\n' || r == '\r'
		if !isSpace && !inWord {
			inWord = true
		} else if isSpace && inWord {
			inWord = false
			count++
			if count >= n {
				return i
			}
		}
	}
	return len(s)
}

// mergeSmall re-joins consecutive pieces while the combined estimate
// stays at or under maxTokens. Pieces carry their own separators, so
// plain concatenation preserves the original text.
func mergeSmall(pieces []string, maxTokens int) []string {
	if len(pieces) <= 1 {
		return pieces
	}

	merged := make([]string, 0, len(pieces))
	current := pieces[0]
	for _, piece := range pieces[1:] {
		if EstimateTokens(current+piece) <= maxTokens {
			current += piece
			continue
		}
		merged = append(merged, current)
		current = piece
	}
	merged = append(merged, current)
	return merged
}

// overlapTail returns roughly overlapTokens worth of words from the end
// of text, used as the head of the following chunk.
func overlapTail(text string, overlapTokens int) string {
	words := wordsForTokens(overlapTokens)
	if words < 1 {
		return ""
	}
	fields := strings.Fields(text)
	if len(fields) <= words {
		return text
	}
	return strings.Join(fields[len(fields)-words:], " ")
}
