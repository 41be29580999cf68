package generic

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// =============================================================================
// TEXT FOLDING - Case and diacritic insensitive comparisons
// =============================================================================

// StripAccents removes combining marks: "SÃO PAULO" becomes "SAO PAULO".
func StripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Upper uppercases s and trims surrounding whitespace.
func Upper(s string) string {
	// Casers keep state, so one per call.
	return cases.Upper(language.Und).String(strings.TrimSpace(s))
}

// Fold uppercases, trims and strips diacritics. Two strings that differ only
// in case, accents or surrounding space fold to the same value.
func Fold(s string) string {
	return StripAccents(Upper(s))
}

// Compact folds s and removes every space and underscore.
func Compact(s string) string {
	f := Fold(s)
	f = strings.ReplaceAll(f, " ", "")
	return strings.ReplaceAll(f, "_", "")
}

// FoldSet is a set of folded tokens used for tolerant flag parsing.
type FoldSet map[string]struct{}

// NewFoldSet folds every value into the set.
func NewFoldSet(values ...string) FoldSet {
	s := make(FoldSet, len(values))
	for _, v := range values {
		s[Fold(v)] = struct{}{}
	}
	return s
}

// Has reports whether the folded form of v is in the set.
func (s FoldSet) Has(v string) bool {
	_, ok := s[Fold(v)]
	return ok
}
