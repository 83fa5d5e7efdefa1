// package match scores metadata service candidates against parsed titles
// and picks the winner.
package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTransform decomposes to NFD, drops combining marks, and recomposes,
// so "Beyoncé" and "Beyonce" normalize identically.
var foldTransform = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize folds a name for comparison: diacritics removed, lowercased,
// punctuation stripped, whitespace collapsed. Comparison only; display
// strings always keep the service's original casing.
func Normalize(s string) string {
	folded, _, err := transform.String(foldTransform, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	lastSpace := true
	for _, r := range strings.ToLower(folded) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case !lastSpace:
			b.WriteRune(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}
