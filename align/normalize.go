package align

import (
	"strings"
	"unicode"
)

// NormalizeText drops all whitespace and case-folds s.
func NormalizeText(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		sb.WriteRune(unicode.ToLower(r))
	}
	return sb.String()
}

// IsPunct reports whether s is non-empty and made only of punctuation.
func IsPunct(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		if !unicode.IsPunct(r) {
			return false
		}
	}
	return true
}
