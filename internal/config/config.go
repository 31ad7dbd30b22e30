package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir   string `toml:"data_dir"`
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
}

// TTS contains speech synthesis settings. Command names the external
// synthesis bridge the generate command shells out to; see tts.CommandBackend
// for the contract.
type TTS struct {
	HostVoice          string   `toml:"host_voice"`
	GuestVoice         string   `toml:"guest_voice"`
	Model              string   `toml:"model"`
	Region             string   `toml:"region"`
	SampleRate         int      `toml:"sample_rate"`
	RetryDelaysSeconds []int    `toml:"retry_delays_seconds"`
	Command            []string `toml:"command"`
}

// STT contains speech recognition settings. Command follows the same bridge
// convention as TTS.Command; see stt.CommandBackend.
type STT struct {
	Language     string   `toml:"language"`
	ChunkSeconds int      `toml:"chunk_seconds"`
	Command      []string `toml:"command"`
}

// Align contains the alignment tuning knobs. The defaults match the values
// the pipeline was calibrated with; changing them shifts the
// precision/recall balance of tail matching and boundary refinement.
type Align struct {
	TailThresholds        []float64 `toml:"tail_thresholds"`
	SilenceThreshold      int       `toml:"silence_threshold"`
	MinSilenceSeconds     float64   `toml:"min_silence_seconds"`
	BoundaryWindowSeconds float64   `toml:"boundary_window_seconds"`
	DefaultMarginSeconds  float64   `toml:"default_margin_seconds"`
	SecondsPerChar        float64   `toml:"seconds_per_char"`
	MinSegmentSeconds     float64   `toml:"min_segment_seconds"`
	MaxSegmentSeconds     float64   `toml:"max_segment_seconds"`
}

// Batch contains synthesis batch limits.
type Batch struct {
	MaxSize  int `toml:"max_size"`
	MaxChars int `toml:"max_chars"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for castline.
//
// Sections by subsystem:
//   - Paths: working, output and log directories
//   - TTS: synthesis voices, model and retry schedule
//   - STT: recognition language and chunking
//   - Align: tail matching and boundary refinement tuning
//   - Batch: synthesis batch limits
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	TTS     TTS     `toml:"tts"`
	STT     STT     `toml:"stt"`
	Align   Align   `toml:"align"`
	Batch   Batch   `toml:"batch"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/castline/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean reports
// whether a file was actually found at the resolved path.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		if err := toml.NewDecoder(file).Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("castline.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a generation run writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.OutputDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable name used for MP3 encoding.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for duration
// verification.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
