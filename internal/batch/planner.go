// Package batch groups utterance texts into synthesis batches bounded by
// count and cumulative character length.
package batch

import "unicode/utf8"

const (
	// DefaultMaxSize bounds the number of utterances per batch.
	DefaultMaxSize = 50
	// DefaultMaxChars bounds the cumulative rune count per batch.
	DefaultMaxChars = 2500
)

// Plan splits texts into consecutive batches. A batch closes when adding the
// next text would exceed maxSize entries or maxChars cumulative runes. A
// single text longer than maxChars still occupies its own batch; texts are
// never split or reordered. Non-positive limits fall back to the defaults.
func Plan(texts []string, maxSize, maxChars int) [][]string {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	var batches [][]string
	var current []string
	chars := 0
	for _, text := range texts {
		length := utf8.RuneCountInString(text)
		if len(current) > 0 && (len(current)+1 > maxSize || chars+length > maxChars) {
			batches = append(batches, current)
			current = nil
			chars = 0
		}
		current = append(current, text)
		chars += length
	}
	if len(current) > 0 {
		batches = append(batches, current)
	}
	return batches
}
