package align

import (
	"math"

	"castline/internal/media/wav"
)

// BoundaryRefiner nudges an approximate utterance end to the start of the
// first sustained silence after it, so cuts land between words instead of
// clipping them.
type BoundaryRefiner struct {
	// SilenceThreshold is the mean absolute amplitude below which a window
	// counts as silent.
	SilenceThreshold int
	// MinSilence is the sustained silent time required before accepting a
	// boundary, in seconds.
	MinSilence float64
	// SearchWindow is how far past the approximate end to look, in seconds.
	SearchWindow float64
	// DefaultMargin is added to the approximate end when no silence is
	// found inside the window.
	DefaultMargin float64
}

// DefaultBoundaryRefiner returns the calibrated refiner settings.
func DefaultBoundaryRefiner() BoundaryRefiner {
	return BoundaryRefiner{
		SilenceThreshold: 500,
		MinSilence:       0.05,
		SearchWindow:     1.0,
		DefaultMargin:    0.2,
	}
}

// Refine returns the silence-aligned end time for an utterance whose tail
// was matched at tailEnd seconds. The scan walks 10ms windows with 50%
// overlap; the result is rounded to milliseconds.
func (r BoundaryRefiner) Refine(f *wav.File, tailEnd float64) float64 {
	rate := f.Format.SampleRate
	frames := f.FrameCount()

	startSample := int(tailEnd * float64(rate))
	endSample := int((tailEnd + r.SearchWindow) * float64(rate))
	if endSample > frames {
		endSample = frames
	}
	if startSample < 0 {
		startSample = 0
	}

	windowSize := rate / 100
	if windowSize < 1 || startSample >= endSample {
		return round3(tailEnd + r.DefaultMargin)
	}
	step := windowSize / 2

	segmentLen := endSample - startSample
	silenceStart := -1
	silenceDuration := 0.0
	for i := 0; i+windowSize <= segmentLen; i += step {
		energy := meanAbs(f, startSample+i, windowSize)
		if energy < float64(r.SilenceThreshold) {
			if silenceStart < 0 {
				silenceStart = i
			}
			silenceDuration += float64(step) / float64(rate)
			if silenceDuration >= r.MinSilence {
				return round3(tailEnd + float64(silenceStart)/float64(rate))
			}
		} else {
			silenceStart = -1
			silenceDuration = 0
		}
	}
	return round3(tailEnd + r.DefaultMargin)
}

func meanAbs(f *wav.File, start, count int) float64 {
	var sum float64
	for i := 0; i < count; i++ {
		v := float64(f.Sample(start + i))
		sum += math.Abs(v)
	}
	return sum / float64(count)
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
