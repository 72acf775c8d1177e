package lexicon

import (
	"strings"
	"unicode"
)

// normalize lowercases a label and collapses internal whitespace, so
// "Open a Fund" and "open   a fund" index to the same key.
func normalize(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}

// extractTokens splits a label into its individual normalized word tokens,
// dropping punctuation, for the coarser token index.
func extractTokens(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]struct{}, len(fields))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		tokens = append(tokens, f)
	}
	return tokens
}

func addToIndex(index map[string][]string, key, concept string) {
	if key == "" {
		return
	}
	for _, existing := range index[key] {
		if existing == concept {
			return
		}
	}
	index[key] = append(index[key], concept)
}
