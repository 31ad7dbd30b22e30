package script

import (
	"strings"
	"unicode"
)

// SanitizeTTSText prepares raw script text for synthesis: whitespace runs
// collapse to single spaces, control characters are dropped, and anything
// outside Hangul, Latin letters, digits and basic sentence punctuation is
// removed.
func SanitizeTTSText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	space := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if !allowedTTSRune(r) {
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

func allowedTTSRune(r rune) bool {
	switch {
	case r >= 0xAC00 && r <= 0xD7A3:
		return true
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '.', r == ',', r == '?', r == '!':
		return true
	}
	return false
}
