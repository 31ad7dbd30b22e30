package korean

import (
	"strings"
	"unicode"
)

// compoundTerms maps well-known acronyms to their full Korean phonetic
// spelling. Applied before the per-letter table so "AI" reads as 에이아이
// rather than letter-by-letter noise mid-word.
var compoundTerms = []struct {
	term   string
	hangul string
}{
	{"AI", "에이아이"},
	{"API", "에이피아이"},
	{"URL", "유알엘"},
	{"COVID", "코비드"},
	{"RNA", "알엔에이"},
	{"DNA", "디엔에이"},
}

// letterSounds maps each Latin letter to its Korean phonetic syllable.
var letterSounds = map[rune]string{
	'A': "에이", 'B': "비", 'C': "씨", 'D': "디", 'E': "이",
	'F': "에프", 'G': "지", 'H': "에이치", 'I': "아이", 'J': "제이",
	'K': "케이", 'L': "엘", 'M': "엠", 'N': "엔", 'O': "오",
	'P': "피", 'Q': "큐", 'R': "알", 'S': "에스", 'T': "티",
	'U': "유", 'V': "브이", 'W': "더블유", 'X': "엑스", 'Y': "와이", 'Z': "제트",
}

// Normalize folds text into the canonical Hangul-only form used for tail
// matching: compound terms are substituted first, remaining Latin letters are
// spelled out phonetically, and everything outside the Hangul syllable block
// is stripped. Any input yields a (possibly empty) result.
func Normalize(text string) string {
	for _, c := range compoundTerms {
		text = strings.ReplaceAll(text, c.term, c.hangul)
		text = strings.ReplaceAll(text, strings.ToLower(c.term), c.hangul)
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		upper := unicode.ToUpper(r)
		if sound, ok := letterSounds[upper]; ok {
			b.WriteString(sound)
			continue
		}
		if isHangulSyllable(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isHangulSyllable(r rune) bool {
	return r >= 0xAC00 && r <= 0xD7A3
}
