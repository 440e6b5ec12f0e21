// Package normalize folds Vietnamese search text into a diacritic-free,
// lowercase form so that "Cà chua" and "ca chua" hit the same documents.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxLength caps the input considered by Fold and Tokenize. Anything beyond
// it is ignored to bound normalization cost on hostile input.
const MaxLength = 140

// đ/Đ do not decompose under NFD, so they need an explicit mapping.
var dReplacer = strings.NewReplacer("đ", "d", "Đ", "d")

var markStripper = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Fold strips combining diacritical marks, lowercases, and collapses runs of
// whitespace. It is deterministic and idempotent: Fold(Fold(s)) == Fold(s).
func Fold(text string) string {
	text = truncate(text, MaxLength)

	stripped, _, err := transform.String(markStripper, text)
	if err != nil {
		// Malformed input falls back to the untransformed text; lowering and
		// whitespace collapse still apply.
		stripped = text
	}

	stripped = dReplacer.Replace(stripped)
	stripped = strings.ToLower(stripped)

	return strings.Join(strings.Fields(stripped), " ")
}

// Tokenize splits the given strings on non-alphanumeric boundaries, drops
// empties, and deduplicates while preserving first-seen order.
func Tokenize(texts ...string) []string {
	seen := make(map[string]struct{})
	var tokens []string

	for _, text := range texts {
		text = truncate(text, MaxLength)
		for _, tok := range strings.FieldsFunc(text, isBoundary) {
			tok = strings.ToLower(tok)
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			tokens = append(tokens, tok)
		}
	}

	return tokens
}

func isBoundary(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsNumber(r)
}

// truncate cuts text to at most n runes without splitting a rune.
func truncate(text string, n int) string {
	if len(text) <= n {
		return text
	}
	r := []rune(text)
	if len(r) <= n {
		return text
	}
	return string(r[:n])
}
