// Package stt turns a synthesized voice track back into word-level
// timestamps. Long tracks are recognized in fixed-size chunks and the word
// times are re-based into track coordinates.
package stt

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"

	"castline/internal/media/wav"
)

// Word is one recognized word with its track-relative time span in seconds.
type Word struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Backend recognizes a chunk of raw 16-bit mono PCM and returns word
// timestamps relative to the chunk start.
type Backend interface {
	Recognize(ctx context.Context, pcm []byte, sampleRate int, language string) ([]Word, error)
}

// DefaultChunkSeconds is the recognition chunk length.
const DefaultChunkSeconds = 50

// minChunkBytes drops trailing slivers too short to carry speech.
const minChunkBytes = 100

// Recognizer splits a track into chunks, recognizes each and merges the
// word lists. A failed chunk is logged and skipped rather than failing the
// whole track; the tail matcher tolerates gaps.
type Recognizer struct {
	backend      Backend
	language     string
	chunkSeconds int
	logger       *slog.Logger
}

// NewRecognizer constructs a Recognizer. chunkSeconds falls back to
// DefaultChunkSeconds when non-positive.
func NewRecognizer(backend Backend, language string, chunkSeconds int, logger *slog.Logger) *Recognizer {
	if chunkSeconds <= 0 {
		chunkSeconds = DefaultChunkSeconds
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Recognizer{backend: backend, language: language, chunkSeconds: chunkSeconds, logger: logger}
}

// Transcribe recognizes the WAV file at path and returns all words in track
// order with track-relative timestamps.
func (r *Recognizer) Transcribe(ctx context.Context, path string) ([]Word, error) {
	file, err := wav.DecodeFile(path)
	if err != nil {
		return nil, err
	}
	if file.Format.Channels != 1 || file.Format.BitsPerSample != 16 {
		return nil, fmt.Errorf("transcribe %s: expected 16-bit mono PCM, got %d-bit %d channel", path, file.Format.BitsPerSample, file.Format.Channels)
	}
	return r.transcribePCM(ctx, file.Data, file.Format.SampleRate)
}

func (r *Recognizer) transcribePCM(ctx context.Context, pcm []byte, sampleRate int) ([]Word, error) {
	bytesPerSecond := sampleRate * 2
	chunkLen := r.chunkSeconds * bytesPerSecond

	var words []Word
	for start := 0; start < len(pcm); start += chunkLen {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := start + chunkLen
		if end > len(pcm) {
			end = len(pcm)
		}
		chunk := pcm[start:end]
		if len(chunk) < minChunkBytes {
			continue
		}
		offset := float64(start) / float64(bytesPerSecond)
		chunkWords, err := r.backend.Recognize(ctx, chunk, sampleRate, r.language)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			r.logger.Warn("chunk recognition failed, skipping",
				slog.Float64("offset", offset),
				slog.Any("error", err))
			continue
		}
		for _, w := range chunkWords {
			words = append(words, Word{
				Word:  w.Word,
				Start: round3(w.Start + offset),
				End:   round3(w.End + offset),
			})
		}
	}
	r.logger.Info("track transcribed", slog.Int("words", len(words)))
	return words, nil
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
