package album

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeLabel canonicalizes a free-text tag or person name before it is
// stored or compared. Leading/trailing whitespace is trimmed; an
// all-uppercase value with at least one letter is kept as-is so acronyms
// like "NYC" survive; everything else is title-cased.
func NormalizeLabel(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if isAllUpper(trimmed) {
		return trimmed
	}
	// Casers carry transform state, so build one per call.
	return cases.Title(language.Und).String(trimmed)
}

// isAllUpper reports whether s contains at least one letter and no
// lowercase letters.
func isAllUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}
