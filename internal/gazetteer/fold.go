package gazetteer

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold normalizes a name for comparison: whitespace is collapsed, accents
// are stripped and case is folded, so "  São  Paulo" and "sao paulo" compare
// equal.
func Fold(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	strip := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if out, _, err := transform.String(strip, s); err == nil {
		s = out
	}
	return cases.Fold().String(s)
}
