package pipeline

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"castline/internal/align"
	"castline/internal/config"
	"castline/internal/runs"
	"castline/internal/script"
	"castline/internal/stt"
)

// silenceTTS emits one second of silence per utterance in the batch.
type silenceTTS struct {
	calls int
}

func (f *silenceTTS) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	f.calls++
	utterances := strings.Count(text, "\n\n\n\n\n") + 1
	return make([]byte, utterances*24000*2), nil
}

// emptySTT recognizes nothing, forcing estimated boundaries.
type emptySTT struct{}

func (emptySTT) Recognize(ctx context.Context, pcm []byte, sampleRate int, language string) ([]stt.Word, error) {
	return nil, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.DataDir = t.TempDir()
	cfg.Paths.OutputDir = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()
	return &cfg
}

func dialogue() []script.Utterance {
	return []script.Utterance{
		{Speaker: script.Host, Text: "첫 질문입니다"},
		{Speaker: script.Guest, Text: "첫 답변입니다"},
		{Speaker: script.Host, Text: "둘째 질문입니다"},
		{Speaker: script.Guest, Text: "둘째 답변입니다"},
	}
}

func TestGenerateEndToEnd(t *testing.T) {
	cfg := testConfig(t)
	store, err := runs.Open(cfg.Paths.DataDir)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	backend := &silenceTTS{}
	g := New(cfg, backend, emptySTT{}, nil,
		WithStore(store),
		WithSessionID("test1234"),
		WithScriptPath("/tmp/script.txt"),
		WithoutEncoding())

	result, err := g.Generate(context.Background(), dialogue())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if result.SessionID != "test1234" {
		t.Errorf("session id = %q", result.SessionID)
	}
	if _, err := os.Stat(result.MergedWAVPath); err != nil {
		t.Errorf("merged wav missing: %v", err)
	}
	if _, err := os.Stat(result.TranscriptPath); err != nil {
		t.Errorf("transcript missing: %v", err)
	}
	if result.MP3Path != "" {
		t.Errorf("mp3 produced despite WithoutEncoding: %q", result.MP3Path)
	}
	if len(result.Timeline) != 4 {
		t.Errorf("timeline entries = %d, want 4", len(result.Timeline))
	}
	if len(result.HostSegments) != 2 || len(result.GuestSegments) != 2 {
		t.Errorf("segments = %d host, %d guest", len(result.HostSegments), len(result.GuestSegments))
	}
	if backend.calls != 2 {
		t.Errorf("tts calls = %d, want 2 (one batch per speaker)", backend.calls)
	}
	if result.Stats.APICalls != 2 {
		t.Errorf("api calls = %d", result.Stats.APICalls)
	}

	// Intermediates are gone; the transcript names both speakers.
	if matches, _ := os.ReadDir(cfg.Paths.DataDir); len(matches) > 0 {
		for _, m := range matches {
			if strings.HasSuffix(m.Name(), ".wav") {
				t.Errorf("leftover intermediate: %s", m.Name())
			}
		}
	}
	raw, err := os.ReadFile(result.TranscriptPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), "「진행자」") || !strings.Contains(string(raw), "「게스트」") {
		t.Errorf("transcript missing speaker labels:\n%s", raw)
	}

	run, err := store.GetBySession(context.Background(), "test1234")
	if err != nil {
		t.Fatal(err)
	}
	if run == nil || run.Status != runs.StatusCompleted {
		t.Errorf("ledger run = %+v", run)
	}
	if run.AudioPath != result.MergedWAVPath || run.TranscriptPath != result.TranscriptPath {
		t.Errorf("ledger artifacts = %q, %q", run.AudioPath, run.TranscriptPath)
	}
}

func TestGenerateHostOnly(t *testing.T) {
	cfg := testConfig(t)
	g := New(cfg, &silenceTTS{}, emptySTT{}, nil, WithoutEncoding())

	result, err := g.Generate(context.Background(), []script.Utterance{
		{Speaker: script.Host, Text: "혼자 말하는 에피소드입니다"},
		{Speaker: script.Host, Text: "게스트 없이 진행합니다"},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(result.GuestSegments) != 0 {
		t.Errorf("guest segments = %d, want 0", len(result.GuestSegments))
	}
	if len(result.Timeline) != 2 {
		t.Errorf("timeline entries = %d", len(result.Timeline))
	}
}

func TestGenerateNoUtterances(t *testing.T) {
	cfg := testConfig(t)
	g := New(cfg, &silenceTTS{}, emptySTT{}, nil, WithoutEncoding())
	if _, err := g.Generate(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty dialogue")
	}
}

// longTTS emits more audio than any sane utterance, tripping the segment
// duration ceiling during alignment.
type longTTS struct{}

func (longTTS) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	return make([]byte, 70*24000*2), nil
}

func TestGenerateMarksRunFailed(t *testing.T) {
	cfg := testConfig(t)
	store, err := runs.Open(cfg.Paths.DataDir)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	g := New(cfg, longTTS{}, emptySTT{}, nil, WithStore(store), WithSessionID("failrun"), WithoutEncoding())
	_, err = g.Generate(context.Background(), []script.Utterance{
		{Speaker: script.Host, Text: "한 문장입니다"},
	})
	if !errors.Is(err, align.ErrExcessiveSegment) {
		t.Fatalf("expected ErrExcessiveSegment, got %v", err)
	}
	run, err := store.GetBySession(context.Background(), "failrun")
	if err != nil {
		t.Fatal(err)
	}
	if run == nil || run.Status != runs.StatusFailed {
		t.Errorf("ledger run = %+v", run)
	}
	if run != nil && !strings.Contains(run.ErrorMessage, "segment") {
		t.Errorf("error message = %q", run.ErrorMessage)
	}
}
