package align

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"unicode/utf8"

	"castline/internal/media/wav"
	"castline/internal/stt"
)

// Segment is one utterance's time span within a voice track, in seconds.
type Segment struct {
	Start float64
	End   float64
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 { return s.End - s.Start }

const (
	// MinSegmentSeconds is the smallest span worth appending when the
	// reconciler pads a shortfall.
	MinSegmentSeconds = 0.5
	// MaxSegmentSeconds is the hard ceiling on a single utterance span.
	// Longer spans mean the matcher latched onto the wrong audio.
	MaxSegmentSeconds = 60.0
)

// Sentinel errors for segment validation failures.
var (
	ErrNegativeSegment  = errors.New("segment has negative duration")
	ErrExcessiveSegment = errors.New("segment exceeds maximum duration")
)

// SegmentFinder walks a track's utterance texts against its recognized
// words and produces one contiguous segment per utterance.
type SegmentFinder struct {
	Matcher    *Matcher
	Refiner    BoundaryRefiner
	MinSegment float64
	MaxSegment float64
	Logger     *slog.Logger
}

// NewSegmentFinder wires a finder with the calibrated defaults.
func NewSegmentFinder(matcher *Matcher, refiner BoundaryRefiner, logger *slog.Logger) *SegmentFinder {
	if matcher == nil {
		matcher = NewMatcher(nil, 0)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &SegmentFinder{
		Matcher:    matcher,
		Refiner:    refiner,
		MinSegment: MinSegmentSeconds,
		MaxSegment: MaxSegmentSeconds,
		Logger:     logger,
	}
}

// Find aligns texts against the track audio and word stream. Segments are
// contiguous: each starts where the previous one ended, and the last always
// ends at the track's end. The result has exactly len(texts) segments unless
// the audio runs out first, which is logged and tolerated.
func (sf *SegmentFinder) Find(file *wav.File, words []stt.Word, texts []string) ([]Segment, error) {
	total := file.DurationSeconds()
	sf.Logger.Info("aligning track", slog.Int("utterances", len(texts)), slog.Float64("seconds", total))

	segments := make([]Segment, 0, len(texts))
	cursor := 0
	currentStart := 0.0

	for i, text := range texts {
		var end float64
		if i == len(texts)-1 {
			end = total
		} else if c, ok := sf.Matcher.FindTail(words, text, cursor, currentStart); ok {
			end = sf.Refiner.Refine(file, c.EndTime)
			cursor = c.NextCursor
		} else {
			// No usable match: estimate from earlier segments, or from
			// text length on the first utterance.
			if len(segments) > 0 {
				end = round3(currentStart + averageDuration(segments))
			} else {
				end = round3(currentStart + float64(utf8.RuneCountInString(text))*0.15)
			}
			sf.Logger.Warn("tail not found, estimating end",
				slog.Int("utterance", i+1),
				slog.Float64("end", end))
		}
		if end > total {
			end = total
		}
		segments = append(segments, Segment{Start: round3(currentStart), End: end})
		currentStart = end
	}

	segments = sf.reconcile(segments, len(texts), total)
	if err := sf.validate(segments); err != nil {
		return nil, err
	}
	return segments, nil
}

// reconcile pads or trims segments so their count matches the utterance
// count where the audio allows it.
func (sf *SegmentFinder) reconcile(segments []Segment, want int, total float64) []Segment {
	if len(segments) == want {
		return segments
	}
	sf.Logger.Warn("segment count mismatch",
		slog.Int("segments", len(segments)),
		slog.Int("utterances", want))

	for len(segments) < want {
		lastEnd := 0.0
		if len(segments) > 0 {
			lastEnd = segments[len(segments)-1].End
		}
		if lastEnd >= total-0.01 {
			sf.Logger.Warn("audio exhausted before all utterances matched",
				slog.Int("matched", len(segments)), slog.Int("utterances", want))
			break
		}
		avg := 5.0
		if len(segments) > 0 {
			avg = averageDuration(segments)
		}
		end := lastEnd + avg
		if end > total {
			end = total
		}
		if end-lastEnd < sf.MinSegment {
			sf.Logger.Warn("remaining audio too short to pad",
				slog.Float64("remaining", end-lastEnd))
			break
		}
		segments = append(segments, Segment{Start: lastEnd, End: end})
		sf.Logger.Info("segment appended", slog.Int("index", len(segments)), slog.Float64("start", lastEnd), slog.Float64("end", end))
	}

	for len(segments) > want {
		segments = segments[:len(segments)-1]
		sf.Logger.Info("segment dropped", slog.Int("remaining", len(segments)))
	}
	return segments
}

// validate rejects impossible spans. Both failure modes indicate the
// alignment drifted badly enough that the assembled audio would be wrong.
func (sf *SegmentFinder) validate(segments []Segment) error {
	for i, seg := range segments {
		d := seg.Duration()
		if d < 0 {
			return fmt.Errorf("segment %d spans %.3fs..%.3fs: %w", i+1, seg.Start, seg.End, ErrNegativeSegment)
		}
		if d > sf.MaxSegment {
			return fmt.Errorf("segment %d runs %.1fs (limit %.0fs): %w", i+1, d, sf.MaxSegment, ErrExcessiveSegment)
		}
	}
	return nil
}

func averageDuration(segments []Segment) float64 {
	if len(segments) == 0 {
		return 0
	}
	var sum float64
	for _, s := range segments {
		sum += s.Duration()
	}
	return sum / float64(len(segments))
}
