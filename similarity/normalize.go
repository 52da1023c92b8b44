package similarity

import (
	"strings"
	"unicode"
)

// Normalize lower-cases text and collapses every run of characters that are
// not letters or digits into a single space.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	pendingSpace := false
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		pendingSpace = true
	}
	return b.String()
}

// Truncate returns at most maxChars runes of text. A non-positive maxChars
// disables truncation.
func Truncate(text string, maxChars int) string {
	if maxChars <= 0 {
		return text
	}
	count := 0
	for i := range text {
		if count == maxChars {
			return text[:i]
		}
		count++
	}
	return text
}
