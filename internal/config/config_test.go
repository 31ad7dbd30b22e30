package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.TTS.SampleRate != 24000 {
		t.Errorf("sample rate default = %d", cfg.TTS.SampleRate)
	}
	if cfg.Batch.MaxSize != 50 || cfg.Batch.MaxChars != 2500 {
		t.Errorf("batch defaults = %d, %d", cfg.Batch.MaxSize, cfg.Batch.MaxChars)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.toml")
	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Error("exists should be false for a missing file")
	}
	if resolved != path {
		t.Errorf("resolved path = %q, want %q", resolved, path)
	}
	if cfg.STT.Language != "ko-KR" {
		t.Errorf("language default = %q", cfg.STT.Language)
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[tts]
host_voice = "Charon"
sample_rate = 16000

[align]
tail_thresholds = [0.8, 0.6]

[logging]
format = "json"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected exists")
	}
	if cfg.TTS.HostVoice != "Charon" || cfg.TTS.SampleRate != 16000 {
		t.Errorf("tts overrides not applied: %+v", cfg.TTS)
	}
	if cfg.TTS.GuestVoice != "Leda" {
		t.Errorf("guest voice default lost: %q", cfg.TTS.GuestVoice)
	}
	if len(cfg.Align.TailThresholds) != 2 || cfg.Align.TailThresholds[0] != 0.8 {
		t.Errorf("align override not applied: %v", cfg.Align.TailThresholds)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("logging format = %q", cfg.Logging.Format)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"sample rate too low", func(c *Config) { c.TTS.SampleRate = 4000 }, "sample_rate"},
		{"chunk seconds out of range", func(c *Config) { c.STT.ChunkSeconds = 300 }, "chunk_seconds"},
		{"increasing thresholds", func(c *Config) { c.Align.TailThresholds = []float64{0.5, 0.7} }, "non-increasing"},
		{"min >= max segment", func(c *Config) { c.Align.MinSegmentSeconds = 90 }, "min_segment_seconds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			if err := cfg.normalize(); err != nil {
				t.Fatal(err)
			}
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate = %v, want error containing %q", err, tt.want)
			}
		})
	}
}

func TestExpandPathTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err := ExpandPath("~/x")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if got != filepath.Join(home, "x") {
		t.Errorf("ExpandPath = %q", got)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
	if !exists {
		t.Fatal("sample config not found after creation")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("sample config invalid: %v", err)
	}
}
