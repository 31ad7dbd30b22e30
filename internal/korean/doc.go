// Package korean converts mixed-script utterance text into a canonical
// Hangul-only form that can be compared against speech-recognition output.
package korean
