package assemble

import (
	"io"
	"log/slog"
	"math"

	"castline/internal/script"
)

// InterChunkDelay is the editorial gap assumed between consecutive
// utterances when computing start times, in seconds.
const InterChunkDelay = 0.05

// CorrectionThreshold is the computed-vs-measured total mismatch, in
// seconds, beyond which the timeline is rescaled.
const CorrectionThreshold = 1.0

// Entry describes one utterance in the assembled episode.
type Entry struct {
	Speaker    script.Speaker
	Text       string
	StartTime  float64
	Duration   float64
	SourceFile string
}

// BuildTimeline walks utterances in script order, consuming each speaker's
// segments, and assigns cumulative start times with the inter-chunk delay.
// Utterances without a remaining segment are omitted, mirroring Merge.
func BuildTimeline(utterances []script.Utterance, tracks map[script.Speaker]*Track) []Entry {
	next := make(map[script.Speaker]int, len(tracks))
	current := 0.0
	var entries []Entry
	for _, u := range utterances {
		track, ok := tracks[u.Speaker]
		if !ok || track == nil {
			continue
		}
		idx := next[u.Speaker]
		if idx >= len(track.Segments) {
			continue
		}
		next[u.Speaker] = idx + 1
		seg := track.Segments[idx]

		entries = append(entries, Entry{
			Speaker:    u.Speaker,
			Text:       u.Text,
			StartTime:  round3(current),
			Duration:   round3(seg.Duration()),
			SourceFile: track.SourcePath,
		})
		current += seg.Duration() + InterChunkDelay
	}
	return entries
}

// ComputedTotal returns the timeline's own notion of total duration: the
// last entry's start plus its duration, delays included.
func ComputedTotal(entries []Entry) float64 {
	if len(entries) == 0 {
		return 0
	}
	last := entries[len(entries)-1]
	return last.StartTime + last.Duration
}

// TotalDuration returns the sum of entry durations. The merged waveform is
// a pure concatenation of segments, so this is the baseline the measured
// audio duration is compared against; the inter-chunk delays in the start
// times are editorial and never present in the audio.
func TotalDuration(entries []Entry) float64 {
	var sum float64
	for _, e := range entries {
		sum += e.Duration
	}
	return sum
}

// CorrectTimeline rescales entry starts and durations when the measured
// audio duration disagrees with the summed durations by more than
// CorrectionThreshold. Encoder padding and concat rounding accumulate over
// long episodes; scaling keeps chapter links honest.
func CorrectTimeline(entries []Entry, measured float64, logger *slog.Logger) []Entry {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	computed := TotalDuration(entries)
	if computed <= 0 || measured <= 0 {
		return entries
	}
	diff := measured - computed
	if math.Abs(diff) <= CorrectionThreshold {
		logger.Debug("timeline within tolerance",
			slog.Float64("computed", computed),
			slog.Float64("measured", measured))
		return entries
	}

	ratio := measured / computed
	logger.Info("correcting timeline",
		slog.Float64("computed", computed),
		slog.Float64("measured", measured),
		slog.Float64("ratio", ratio))

	corrected := make([]Entry, len(entries))
	for i, e := range entries {
		e.StartTime = round3(e.StartTime * ratio)
		e.Duration = round3(e.Duration * ratio)
		corrected[i] = e
	}
	return corrected
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
