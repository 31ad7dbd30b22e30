package align

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"castline/internal/korean"
	"castline/internal/stt"
)

const (
	// minCandidateScore is the raw similarity floor for a window to become
	// a candidate at all.
	minCandidateScore = 0.50
	// minWindowSize and maxWindowSize bound the recognized-word windows
	// compared against the utterance tail.
	minWindowSize = 2
	maxWindowSize = 10
)

// Candidate is one scored match of an utterance tail against a window of
// recognized words.
type Candidate struct {
	Score      float64
	EndTime    float64
	Phrase     string
	TimeDiff   float64
	NextCursor int

	combined float64
}

// Matcher finds utterance tails in a recognized word stream. Phrases
// accepted for earlier utterances are remembered and never reused, which
// keeps repeated sentence endings from matching the same audio twice.
type Matcher struct {
	Thresholds     []float64
	SecondsPerChar float64

	used map[string]struct{}
}

// NewMatcher builds a Matcher with the given descending similarity
// thresholds and per-character duration estimate.
func NewMatcher(thresholds []float64, secondsPerChar float64) *Matcher {
	if len(thresholds) == 0 {
		thresholds = []float64{0.70, 0.60, 0.50}
	}
	if secondsPerChar <= 0 {
		secondsPerChar = 0.20
	}
	return &Matcher{
		Thresholds:     thresholds,
		SecondsPerChar: secondsPerChar,
		used:           make(map[string]struct{}),
	}
}

// TailOf returns the normalized tail phrase of text: the last 5 to 7 words
// depending on utterance length.
func TailOf(text string) string {
	words := strings.Fields(text)
	tailLen := len(words) / 3
	if tailLen < 5 {
		tailLen = 5
	}
	if tailLen > 7 {
		tailLen = 7
	}
	if tailLen > len(words) {
		tailLen = len(words)
	}
	return korean.Normalize(strings.Join(words[len(words)-tailLen:], ""))
}

// FindTail searches words from cursor onward for the best match of text's
// tail near expectedStart. It reports false when no window in the search
// range clears the candidate floor.
func (m *Matcher) FindTail(words []stt.Word, text string, cursor int, expectedStart float64) (Candidate, bool) {
	targetTail := TailOf(text)
	if targetTail == "" {
		return Candidate{}, false
	}

	estimated := float64(utf8.RuneCountInString(text)) * m.SecondsPerChar
	windowStart := expectedStart - 1.0
	if windowStart < 0 {
		windowStart = 0
	}
	windowEnd := expectedStart + estimated + 2.0

	seen := make(map[string]struct{})
	var candidates []Candidate
	if cursor < 0 {
		cursor = 0
	}
	for j := cursor; j < len(words); j++ {
		if words[j].Start < windowStart {
			continue
		}
		if words[j].Start > windowEnd {
			break
		}
		for size := minWindowSize; size <= maxWindowSize; size++ {
			if j+size > len(words) {
				continue
			}
			var raw strings.Builder
			for _, w := range words[j : j+size] {
				raw.WriteString(w.Word)
			}
			phrase := korean.Normalize(raw.String())
			if _, ok := m.used[phrase]; ok {
				continue
			}
			if _, ok := seen[phrase]; ok {
				continue
			}
			score := Ratio(targetTail, phrase)
			if score <= minCandidateScore {
				continue
			}
			timeDiff := math.Abs(words[j].Start - expectedStart)
			if timeDiff > estimated+3.0 {
				continue
			}
			seen[phrase] = struct{}{}
			candidates = append(candidates, Candidate{
				Score:      score,
				EndTime:    words[j+size-1].End,
				Phrase:     phrase,
				TimeDiff:   timeDiff,
				NextCursor: j + size,
			})
		}
	}
	if len(candidates) == 0 {
		return Candidate{}, false
	}

	// Time proximity weighs as much as similarity so a repeated phrase
	// later in the track loses to the nearby occurrence.
	for i := range candidates {
		timeScore := 1.0 / (1.0 + candidates[i].TimeDiff)
		candidates[i].combined = candidates[i].Score*0.5 + timeScore*0.5
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].combined > candidates[j].combined
	})

	for _, threshold := range m.Thresholds {
		for _, c := range candidates {
			if c.Score >= threshold {
				m.used[c.Phrase] = struct{}{}
				return c, true
			}
		}
	}
	best := candidates[0]
	m.used[best.Phrase] = struct{}{}
	return best, true
}
