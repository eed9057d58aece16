package catalog

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize folds a title or artist for comparison: NFKC normalization (so
// full-width and compatibility forms compare equal), lower case, and
// collapsed whitespace. Matching stays exact after folding; nothing fuzzy
// happens here.
func Normalize(value string) string {
	folded := norm.NFKC.String(value)
	folded = strings.ToLower(folded)
	return strings.Join(strings.Fields(folded), " ")
}
