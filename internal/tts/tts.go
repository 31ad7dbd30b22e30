// Package tts drives batch speech synthesis for one voice track. The actual
// synthesis backend is injected; this package owns batching text into single
// requests, the retry schedule for transient failures, and assembling the
// per-batch audio into one track file.
package tts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"castline/internal/media/wav"
)

// BatchSeparator joins utterances within one synthesis request. Five
// newlines produce a long enough pause for the recognizer to split on.
const BatchSeparator = "\n\n\n\n\n"

// InterBatchPause is the delay between consecutive backend requests.
const InterBatchPause = time.Second

// ErrRateLimited marks a backend rejection due to quota or rate limiting.
// Backends wrap it so the synthesizer can log the condition distinctly; the
// retry behavior is the same as for any other transient failure.
var ErrRateLimited = errors.New("tts backend rate limited")

// Backend produces raw 16-bit mono PCM for a piece of text.
type Backend interface {
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}

// RetryPolicy is a bounded backoff schedule: attempt n sleeps Delays[n],
// and attempts past the end repeat the final delay indefinitely.
type RetryPolicy struct {
	Delays []time.Duration
}

// DefaultRetryPolicy returns the 2s/4s/8s schedule.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Delays: []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}}
}

// Delay returns the sleep before retry attempt n (0-based).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if len(p.Delays) == 0 {
		return 2 * time.Second
	}
	if attempt >= len(p.Delays) {
		return p.Delays[len(p.Delays)-1]
	}
	if attempt < 0 {
		attempt = 0
	}
	return p.Delays[attempt]
}

// SleepWithContext blocks for d or until ctx is done, returning ctx.Err in
// the latter case.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Stats counts backend interactions across a track synthesis.
type Stats struct {
	APICalls      atomic.Int64
	RateLimitHits atomic.Int64
	Retries       atomic.Int64
}

// Snapshot returns the current counter values.
func (s *Stats) Snapshot() (apiCalls, rateLimitHits, retries int64) {
	return s.APICalls.Load(), s.RateLimitHits.Load(), s.Retries.Load()
}

// Synthesizer turns planned batches into a single WAV track.
type Synthesizer struct {
	backend    Backend
	sampleRate int
	policy     RetryPolicy
	logger     *slog.Logger
	stats      *Stats

	// pause overrides InterBatchPause in tests.
	pause time.Duration
}

// NewSynthesizer constructs a Synthesizer writing sampleRate mono PCM.
func NewSynthesizer(backend Backend, sampleRate int, policy RetryPolicy, logger *slog.Logger) *Synthesizer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Synthesizer{
		backend:    backend,
		sampleRate: sampleRate,
		policy:     policy,
		logger:     logger,
		stats:      &Stats{},
		pause:      InterBatchPause,
	}
}

// Stats exposes the backend interaction counters.
func (s *Synthesizer) Stats() *Stats { return s.stats }

// SynthesizeTrack synthesizes batches with voice and writes the joined audio
// to dest. Each batch is one backend request; transient failures are retried
// on the policy schedule until the request succeeds or ctx is cancelled.
func (s *Synthesizer) SynthesizeTrack(ctx context.Context, batches [][]string, voice, dest string) error {
	if len(batches) == 0 {
		return errors.New("synthesize track: no batches")
	}

	dir := filepath.Dir(dest)
	base := strings.TrimSuffix(filepath.Base(dest), filepath.Ext(dest))
	parts := make([]string, 0, len(batches))
	defer func() {
		for _, part := range parts {
			os.Remove(part)
		}
	}()

	for i, batch := range batches {
		if i > 0 {
			if err := SleepWithContext(ctx, s.pause); err != nil {
				return err
			}
		}
		text := strings.Join(batch, BatchSeparator)
		pcm, err := s.synthesizeBatch(ctx, text, voice, i)
		if err != nil {
			return err
		}
		file := &wav.File{
			Format: wav.Format{Channels: 1, SampleRate: s.sampleRate, BitsPerSample: 16},
			Data:   pcm,
		}
		// A lone batch is the whole track; temp parts exist only to be
		// concatenated.
		target := dest
		if len(batches) > 1 {
			target = filepath.Join(dir, fmt.Sprintf("%s_part%03d.wav", base, i))
			parts = append(parts, target)
		}
		if err := wav.WriteFile(target, file); err != nil {
			return err
		}
		s.logger.Info("batch synthesized",
			slog.Int("batch", i+1),
			slog.Int("batches", len(batches)),
			slog.Int("utterances", len(batch)),
			slog.Float64("seconds", file.DurationSeconds()))
	}

	if len(batches) == 1 {
		return nil
	}
	return wav.Concat(parts, dest)
}

func (s *Synthesizer) synthesizeBatch(ctx context.Context, text, voice string, batch int) ([]byte, error) {
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s.stats.APICalls.Add(1)
		pcm, err := s.backend.Synthesize(ctx, text, voice)
		if err == nil {
			if len(pcm) == 0 {
				err = errors.New("backend returned no audio")
			} else {
				return pcm, nil
			}
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, ErrRateLimited) {
			s.stats.RateLimitHits.Add(1)
		}
		delay := s.policy.Delay(attempt)
		s.stats.Retries.Add(1)
		s.logger.Warn("synthesis failed, retrying",
			slog.Int("batch", batch+1),
			slog.Int("attempt", attempt+1),
			slog.Duration("delay", delay),
			slog.Any("error", err))
		if err := SleepWithContext(ctx, delay); err != nil {
			return nil, err
		}
	}
}
