package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func tonePCM(rate int, seconds float64, amplitude int16) []byte {
	frames := int(seconds * float64(rate))
	data := make([]byte, frames*2)
	for i := 0; i < frames; i++ {
		v := int16(float64(amplitude) * math.Sin(2*math.Pi*440*float64(i)/float64(rate)))
		binary.LittleEndian.PutUint16(data[i*2:], uint16(v))
	}
	return data
}

func testFile(seconds float64) *File {
	return &File{
		Format: Format{Channels: 1, SampleRate: 24000, BitsPerSample: 16},
		Data:   tonePCM(24000, seconds, 8000),
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	orig := testFile(1.5)
	var buf bytes.Buffer
	if err := Encode(&buf, orig); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Format != orig.Format {
		t.Errorf("format mismatch: %+v != %+v", decoded.Format, orig.Format)
	}
	if !bytes.Equal(decoded.Data, orig.Data) {
		t.Error("PCM data changed in round trip")
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("definitely not audio data")))
	if !errors.Is(err, ErrNotWAV) {
		t.Errorf("expected ErrNotWAV, got %v", err)
	}
}

func TestDurationSeconds(t *testing.T) {
	f := testFile(2.0)
	if got := f.DurationSeconds(); math.Abs(got-2.0) > 1e-9 {
		t.Errorf("DurationSeconds = %v, want 2.0", got)
	}
}

func TestExtractRange(t *testing.T) {
	f := testFile(3.0)
	part := f.ExtractRange(1.0, 2.0)
	if got := part.DurationSeconds(); math.Abs(got-1.0) > 1e-6 {
		t.Errorf("extracted duration = %v, want 1.0", got)
	}
	// Sample-accurate: the extracted data starts at frame rate*1.0.
	start := 24000 * f.Format.BytesPerFrame()
	if !bytes.Equal(part.Data, f.Data[start:start+len(part.Data)]) {
		t.Error("extracted bytes do not match source range")
	}
}

func TestExtractRangeClamps(t *testing.T) {
	f := testFile(1.0)
	part := f.ExtractRange(-0.5, 5.0)
	if part.FrameCount() != f.FrameCount() {
		t.Errorf("clamped extraction has %d frames, want %d", part.FrameCount(), f.FrameCount())
	}
	if empty := f.ExtractRange(0.9, 0.1); empty.FrameCount() != 0 {
		t.Errorf("inverted range yielded %d frames", empty.FrameCount())
	}
}

func TestConcat(t *testing.T) {
	dir := t.TempDir()
	a, b := testFile(1.0), testFile(0.5)
	pathA := filepath.Join(dir, "a.wav")
	pathB := filepath.Join(dir, "b.wav")
	for path, f := range map[string]*File{pathA: a, pathB: b} {
		if err := WriteFile(path, f); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
	dest := filepath.Join(dir, "merged.wav")
	if err := Concat([]string{pathA, pathB}, dest); err != nil {
		t.Fatalf("Concat: %v", err)
	}
	merged, err := DecodeFile(dest)
	if err != nil {
		t.Fatalf("DecodeFile: %v", err)
	}
	if got := merged.DurationSeconds(); math.Abs(got-1.5) > 1e-6 {
		t.Errorf("merged duration = %v, want 1.5", got)
	}
	want := append(append([]byte{}, a.Data...), b.Data...)
	if !bytes.Equal(merged.Data, want) {
		t.Error("merged PCM does not equal the concatenation of inputs")
	}
}

func TestConcatFormatMismatch(t *testing.T) {
	dir := t.TempDir()
	a := testFile(0.2)
	b := &File{Format: Format{Channels: 2, SampleRate: 44100, BitsPerSample: 16}, Data: make([]byte, 400)}
	pathA := filepath.Join(dir, "a.wav")
	pathB := filepath.Join(dir, "b.wav")
	if err := WriteFile(pathA, a); err != nil {
		t.Fatal(err)
	}
	if err := WriteFile(pathB, b); err != nil {
		t.Fatal(err)
	}
	err := Concat([]string{pathA, pathB}, filepath.Join(dir, "out.wav"))
	if err == nil {
		t.Fatal("expected format mismatch error")
	}
}

func TestDecodeFileMissing(t *testing.T) {
	_, err := DecodeFile(filepath.Join(t.TempDir(), "missing.wav"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}
