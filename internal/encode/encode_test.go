package encode

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fakeFFmpeg writes a stand-in binary that copies the input (arg 4) to the
// output (arg 10), matching the real invocation's argument order.
func fakeFFmpeg(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ffmpeg")
	script := "#!/bin/sh\ncp \"$4\" \"${10}\"\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestToMP3InvokesEncoder(t *testing.T) {
	dir := t.TempDir()
	wavPath := filepath.Join(dir, "in.wav")
	mp3Path := filepath.Join(dir, "out.mp3")
	if err := os.WriteFile(wavPath, []byte("pcm-ish"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := ToMP3(context.Background(), fakeFFmpeg(t), wavPath, mp3Path); err != nil {
		t.Fatalf("ToMP3: %v", err)
	}
	raw, err := os.ReadFile(mp3Path)
	if err != nil {
		t.Fatalf("output missing: %v", err)
	}
	if string(raw) != "pcm-ish" {
		t.Errorf("output = %q", raw)
	}
}

func TestToMP3SurfacesEncoderFailure(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "ffmpeg")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\necho 'no such codec' >&2\nexit 1\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	err := ToMP3(context.Background(), bin, filepath.Join(dir, "a.wav"), filepath.Join(dir, "b.mp3"))
	if err == nil || !strings.Contains(err.Error(), "no such codec") {
		t.Errorf("err = %v", err)
	}
}

func TestToMP3RejectsEmptyPaths(t *testing.T) {
	if err := ToMP3(context.Background(), "", "", "out.mp3"); err == nil {
		t.Fatal("expected error for empty wav path")
	}
}
