// Package search implements the library search matching rule shared by
// the browse and search endpoints.
package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTransformer strips combining marks so accented characters compare
// equal to their base form ("Beyoncé" matches "beyonce").
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lower-cases s and removes diacritics.
func Fold(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// Matches reports whether every whitespace-separated token of query
// appears as a substring of the folded haystack fields. Tokens are
// conjunctive and order-independent. A blank query never matches.
func Matches(query string, fields ...string) bool {
	tokens := strings.Fields(Fold(query))
	if len(tokens) == 0 {
		return false
	}

	haystack := Fold(strings.Join(fields, " "))
	for _, token := range tokens {
		if !strings.Contains(haystack, token) {
			return false
		}
	}
	return true
}
