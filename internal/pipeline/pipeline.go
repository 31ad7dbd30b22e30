// Package pipeline orchestrates a full generation run: synthesis of both
// speaker tracks, recognition, alignment, assembly in script order, MP3
// encoding, and timeline correction.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"castline/internal/align"
	"castline/internal/assemble"
	"castline/internal/batch"
	"castline/internal/config"
	"castline/internal/encode"
	"castline/internal/logging"
	"castline/internal/media/ffprobe"
	"castline/internal/media/wav"
	"castline/internal/runs"
	"castline/internal/script"
	"castline/internal/stt"
	"castline/internal/tts"
)

// Result collects the artifacts and measurements of a completed run.
type Result struct {
	SessionID      string
	MergedWAVPath  string
	MP3Path        string
	TranscriptPath string
	Timeline       []assemble.Entry
	HostSegments   []align.Segment
	GuestSegments  []align.Segment
	Stats          Stats
}

// Stats summarizes backend usage and stage timings for one run.
type Stats struct {
	APICalls       int64
	RateLimitHits  int64
	Retries        int64
	StageDurations map[string]time.Duration
}

// Generator runs the pipeline. Synthesis and recognition backends are
// injected; everything else is owned here.
type Generator struct {
	cfg        *config.Config
	ttsBackend tts.Backend
	sttBackend stt.Backend
	store      *runs.Store
	logger     *slog.Logger
	sessionID  string
	scriptPath string
	skipEncode bool

	runID int64
}

// Option adjusts Generator construction.
type Option func(*Generator)

// WithStore records run checkpoints in the ledger.
func WithStore(store *runs.Store) Option {
	return func(g *Generator) { g.store = store }
}

// WithSessionID pins the session id instead of generating one.
func WithSessionID(id string) Option {
	return func(g *Generator) { g.sessionID = id }
}

// WithScriptPath records the source script path on the ledger row.
func WithScriptPath(path string) Option {
	return func(g *Generator) { g.scriptPath = path }
}

// WithoutEncoding skips the MP3 encode and duration probe. The merged WAV
// becomes the final artifact; used when ffmpeg is unavailable and in tests.
func WithoutEncoding() Option {
	return func(g *Generator) { g.skipEncode = true }
}

// New constructs a Generator.
func New(cfg *config.Config, ttsBackend tts.Backend, sttBackend stt.Backend, logger *slog.Logger, opts ...Option) *Generator {
	if logger == nil {
		logger = logging.NewNop()
	}
	g := &Generator{
		cfg:        cfg,
		ttsBackend: ttsBackend,
		sttBackend: sttBackend,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.sessionID == "" {
		g.sessionID = strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	}
	return g
}

// SessionID returns the run's session identifier.
func (g *Generator) SessionID() string { return g.sessionID }

// Generate runs the full pipeline over utterances and returns the artifacts.
// On failure the ledger row, when present, is marked failed with the cause.
func (g *Generator) Generate(ctx context.Context, utterances []script.Utterance) (*Result, error) {
	result, err := g.generate(ctx, utterances)
	if err != nil && g.store != nil && g.runID != 0 {
		if markErr := g.store.MarkFailed(ctx, g.runID, err); markErr != nil {
			g.logger.Warn("failed to record run failure", slog.Any("error", markErr))
		}
	}
	return result, err
}

func (g *Generator) generate(ctx context.Context, utterances []script.Utterance) (*Result, error) {
	if len(utterances) == 0 {
		return nil, script.ErrNoUtterances
	}
	if g.store != nil {
		run, err := g.store.Create(ctx, g.sessionID, g.scriptPath)
		if err != nil {
			return nil, err
		}
		g.runID = run.ID
	}

	logger := logging.WithComponent(g.logger, "pipeline").With(slog.String("session", g.sessionID))
	logger.Info("run started",
		slog.Int("utterances", len(utterances)),
		slog.Int("host", len(script.TextsFor(utterances, script.Host))),
		slog.Int("guest", len(script.TextsFor(utterances, script.Guest))))

	stats := Stats{StageDurations: make(map[string]time.Duration)}
	result := &Result{SessionID: g.sessionID}
	tracks := make(map[script.Speaker]*assemble.Track)

	for _, sp := range []struct {
		speaker script.Speaker
		voice   string
	}{
		{script.Host, g.cfg.TTS.HostVoice},
		{script.Guest, g.cfg.TTS.GuestVoice},
	} {
		texts := script.TextsFor(utterances, sp.speaker)
		if len(texts) == 0 {
			continue
		}
		track, err := g.processTrack(ctx, sp.speaker, sp.voice, texts, &stats)
		if err != nil {
			return nil, fmt.Errorf("%s track: %w", sp.speaker, err)
		}
		tracks[sp.speaker] = track
	}

	result.HostSegments = segmentsOf(tracks[script.Host])
	result.GuestSegments = segmentsOf(tracks[script.Guest])

	// Assembly.
	g.checkpoint(ctx, runs.StageAssemble)
	assembleStart := time.Now()
	mergedPath := filepath.Join(g.cfg.Paths.OutputDir, fmt.Sprintf("podcast_final_%s.wav", g.sessionID))
	if err := assemble.Merge(utterances, tracks, mergedPath); err != nil {
		return nil, err
	}
	result.MergedWAVPath = mergedPath
	entries := assemble.BuildTimeline(utterances, tracks)
	stats.StageDurations["assemble"] = time.Since(assembleStart)

	merged, err := wav.DecodeFile(mergedPath)
	if err != nil {
		return nil, err
	}
	measured := merged.DurationSeconds()

	// Encoding and duration verification.
	if !g.skipEncode {
		g.checkpoint(ctx, runs.StageEncode)
		encodeStart := time.Now()
		mp3Path := filepath.Join(g.cfg.Paths.OutputDir, fmt.Sprintf("podcast_episode_%s.mp3", g.sessionID))
		if err := encode.ToMP3(ctx, g.cfg.FFmpegBinary(), mergedPath, mp3Path); err != nil {
			return nil, err
		}
		result.MP3Path = mp3Path
		if probe, err := ffprobe.Inspect(ctx, g.cfg.FFprobeBinary(), mp3Path); err != nil {
			logger.Warn("duration probe failed, using frame count", slog.Any("error", err))
		} else if d := probe.DurationSeconds(); d > 0 {
			logger.Debug("durations compared",
				slog.Float64("wav", measured),
				slog.Float64("encoded", d))
			measured = d
		}
		stats.StageDurations["encode"] = time.Since(encodeStart)
	}

	// Timeline correction and transcript.
	g.checkpoint(ctx, runs.StageFinalize)
	entries = assemble.CorrectTimeline(entries, measured, logging.WithComponent(g.logger, "timeline"))
	result.Timeline = entries

	transcriptBase := fmt.Sprintf("podcast_episode_%s.txt", g.sessionID)
	transcriptPath := filepath.Join(g.cfg.Paths.OutputDir, transcriptBase)
	if err := assemble.WriteTranscript(transcriptPath, entries, nil); err != nil {
		return nil, err
	}
	result.TranscriptPath = transcriptPath

	// Per-speaker tracks are intermediates; only the assembled artifacts
	// survive the run.
	for _, track := range tracks {
		if track.SourcePath != "" {
			if err := os.Remove(track.SourcePath); err != nil && !os.IsNotExist(err) {
				logger.Warn("failed to remove track file", slog.String("path", track.SourcePath), slog.Any("error", err))
			}
		}
	}

	result.Stats = stats
	if g.store != nil && g.runID != 0 {
		artifact := result.MP3Path
		if artifact == "" {
			artifact = result.MergedWAVPath
		}
		if err := g.store.MarkCompleted(ctx, g.runID, artifact, transcriptPath); err != nil {
			logger.Warn("failed to record run completion", slog.Any("error", err))
		}
	}

	logger.Info("run finished",
		slog.Float64("seconds", measured),
		slog.Int64("api_calls", stats.APICalls),
		slog.Int64("rate_limit_hits", stats.RateLimitHits),
		slog.Int64("retries", stats.Retries))
	for stage, d := range stats.StageDurations {
		logger.Debug("stage timing", slog.String("stage", stage), slog.Duration("took", d))
	}
	return result, nil
}

// processTrack synthesizes, recognizes and aligns one speaker's utterances.
func (g *Generator) processTrack(ctx context.Context, speaker script.Speaker, voice string, texts []string, stats *Stats) (*assemble.Track, error) {
	logger := logging.WithComponent(g.logger, string(speaker))

	g.checkpoint(ctx, runs.StageSynthesize)
	synthStart := time.Now()
	batches := batch.Plan(texts, g.cfg.Batch.MaxSize, g.cfg.Batch.MaxChars)
	logger.Info("synthesizing", slog.Int("utterances", len(texts)), slog.Int("batches", len(batches)))

	synth := tts.NewSynthesizer(g.ttsBackend, g.cfg.TTS.SampleRate, g.retryPolicy(), logger)
	trackPath := filepath.Join(g.cfg.Paths.DataDir, fmt.Sprintf("%s_%s.wav", speaker, g.sessionID))
	if err := synth.SynthesizeTrack(ctx, batches, voice, trackPath); err != nil {
		return nil, err
	}
	apiCalls, rateHits, retries := synth.Stats().Snapshot()
	stats.APICalls += apiCalls
	stats.RateLimitHits += rateHits
	stats.Retries += retries
	stats.StageDurations["synthesize"] += time.Since(synthStart)

	g.checkpoint(ctx, runs.StageRecognize)
	recognizeStart := time.Now()
	recognizer := stt.NewRecognizer(g.sttBackend, g.cfg.STT.Language, g.cfg.STT.ChunkSeconds, logger)
	words, err := recognizer.Transcribe(ctx, trackPath)
	if err != nil {
		return nil, err
	}
	stats.StageDurations["recognize"] += time.Since(recognizeStart)

	g.checkpoint(ctx, runs.StageAlign)
	alignStart := time.Now()
	file, err := wav.DecodeFile(trackPath)
	if err != nil {
		return nil, err
	}
	finder := align.NewSegmentFinder(
		align.NewMatcher(g.cfg.Align.TailThresholds, g.cfg.Align.SecondsPerChar),
		g.boundaryRefiner(),
		logger,
	)
	finder.MinSegment = g.cfg.Align.MinSegmentSeconds
	finder.MaxSegment = g.cfg.Align.MaxSegmentSeconds
	segments, err := finder.Find(file, words, texts)
	if err != nil {
		return nil, err
	}
	stats.StageDurations["align"] += time.Since(alignStart)

	return &assemble.Track{File: file, Segments: segments, SourcePath: trackPath}, nil
}

func (g *Generator) retryPolicy() tts.RetryPolicy {
	delays := make([]time.Duration, 0, len(g.cfg.TTS.RetryDelaysSeconds))
	for _, s := range g.cfg.TTS.RetryDelaysSeconds {
		delays = append(delays, time.Duration(s)*time.Second)
	}
	if len(delays) == 0 {
		return tts.DefaultRetryPolicy()
	}
	return tts.RetryPolicy{Delays: delays}
}

func (g *Generator) boundaryRefiner() align.BoundaryRefiner {
	return align.BoundaryRefiner{
		SilenceThreshold: g.cfg.Align.SilenceThreshold,
		MinSilence:       g.cfg.Align.MinSilenceSeconds,
		SearchWindow:     g.cfg.Align.BoundaryWindowSeconds,
		DefaultMargin:    g.cfg.Align.DefaultMarginSeconds,
	}
}

func (g *Generator) checkpoint(ctx context.Context, stage runs.Stage) {
	if g.store == nil || g.runID == 0 {
		return
	}
	if err := g.store.SetStage(ctx, g.runID, stage); err != nil {
		g.logger.Warn("failed to checkpoint stage", slog.String("stage", stage), slog.Any("error", err))
	}
}

func segmentsOf(track *assemble.Track) []align.Segment {
	if track == nil {
		return nil
	}
	return track.Segments
}
