package stt

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"castline/internal/media/wav"
)

type fakeBackend struct {
	chunks   int
	failOn   map[int]bool
	perChunk []Word
}

func (f *fakeBackend) Recognize(ctx context.Context, pcm []byte, sampleRate int, language string) ([]Word, error) {
	idx := f.chunks
	f.chunks++
	if f.failOn[idx] {
		return nil, errors.New("recognition backend error")
	}
	out := make([]Word, len(f.perChunk))
	copy(out, f.perChunk)
	return out, nil
}

func writeTrack(t *testing.T, seconds float64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "track.wav")
	f := &wav.File{
		Format: wav.Format{Channels: 1, SampleRate: 24000, BitsPerSample: 16},
		Data:   make([]byte, int(seconds*24000)*2),
	}
	if err := wav.WriteFile(path, f); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTranscribeRebasesChunkTimestamps(t *testing.T) {
	backend := &fakeBackend{perChunk: []Word{{Word: "안녕", Start: 0.1, End: 0.5}}}
	r := NewRecognizer(backend, "ko-KR", 50, nil)

	// 120s track splits into 50s + 50s + 20s chunks.
	words, err := r.Transcribe(context.Background(), writeTrack(t, 120))
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if backend.chunks != 3 {
		t.Fatalf("chunks recognized = %d, want 3", backend.chunks)
	}
	if len(words) != 3 {
		t.Fatalf("words = %d, want 3", len(words))
	}
	wantStarts := []float64{0.1, 50.1, 100.1}
	for i, w := range words {
		if math.Abs(w.Start-wantStarts[i]) > 1e-9 {
			t.Errorf("word %d start = %v, want %v", i, w.Start, wantStarts[i])
		}
		if math.Abs((w.End-w.Start)-0.4) > 1e-9 {
			t.Errorf("word %d span changed: %v..%v", i, w.Start, w.End)
		}
	}
}

func TestTranscribeSkipsFailedChunks(t *testing.T) {
	backend := &fakeBackend{
		failOn:   map[int]bool{1: true},
		perChunk: []Word{{Word: "네", Start: 0, End: 0.3}},
	}
	r := NewRecognizer(backend, "ko-KR", 50, nil)
	words, err := r.Transcribe(context.Background(), writeTrack(t, 150))
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if len(words) != 2 {
		t.Errorf("words = %d, want 2 (middle chunk skipped)", len(words))
	}
}

func TestTranscribeSkipsTinyTrailingChunk(t *testing.T) {
	backend := &fakeBackend{perChunk: []Word{{Word: "어", Start: 0, End: 0.1}}}
	r := NewRecognizer(backend, "ko-KR", 50, nil)

	// 50s plus one frame: the 2-byte trailing chunk is below the floor.
	path := filepath.Join(t.TempDir(), "track.wav")
	f := &wav.File{
		Format: wav.Format{Channels: 1, SampleRate: 24000, BitsPerSample: 16},
		Data:   make([]byte, 50*24000*2+2),
	}
	if err := wav.WriteFile(path, f); err != nil {
		t.Fatal(err)
	}
	words, err := r.Transcribe(context.Background(), path)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if backend.chunks != 1 {
		t.Errorf("chunks recognized = %d, want 1", backend.chunks)
	}
	if len(words) != 1 {
		t.Errorf("words = %d, want 1", len(words))
	}
}

func TestTranscribeRejectsStereo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stereo.wav")
	f := &wav.File{
		Format: wav.Format{Channels: 2, SampleRate: 24000, BitsPerSample: 16},
		Data:   make([]byte, 9600),
	}
	if err := wav.WriteFile(path, f); err != nil {
		t.Fatal(err)
	}
	if _, err := NewRecognizer(&fakeBackend{}, "ko-KR", 50, nil).Transcribe(context.Background(), path); err == nil {
		t.Fatal("expected error for stereo input")
	}
}

func TestTranscribeCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRecognizer(&fakeBackend{}, "ko-KR", 50, nil).Transcribe(ctx, writeTrack(t, 60))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
