package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTTS()
	c.normalizeSTT()
	c.normalizeAlign()
	c.normalizeBatch()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTTS() {
	c.TTS.HostVoice = strings.TrimSpace(c.TTS.HostVoice)
	if c.TTS.HostVoice == "" {
		c.TTS.HostVoice = defaultHostVoice
	}
	c.TTS.GuestVoice = strings.TrimSpace(c.TTS.GuestVoice)
	if c.TTS.GuestVoice == "" {
		c.TTS.GuestVoice = defaultGuestVoice
	}
	c.TTS.Model = strings.TrimSpace(c.TTS.Model)
	if c.TTS.Model == "" {
		c.TTS.Model = defaultTTSModel
	}
	c.TTS.Region = strings.TrimSpace(c.TTS.Region)
	if c.TTS.Region == "" {
		c.TTS.Region = defaultTTSRegion
	}
	if c.TTS.SampleRate <= 0 {
		c.TTS.SampleRate = defaultSampleRate
	}
	if len(c.TTS.RetryDelaysSeconds) == 0 {
		c.TTS.RetryDelaysSeconds = []int{2, 4, 8}
	}
}

func (c *Config) normalizeSTT() {
	c.STT.Language = strings.TrimSpace(c.STT.Language)
	if c.STT.Language == "" {
		c.STT.Language = defaultSTTLanguage
	}
	if c.STT.ChunkSeconds <= 0 {
		c.STT.ChunkSeconds = defaultChunkSeconds
	}
}

func (c *Config) normalizeAlign() {
	d := Default().Align
	if len(c.Align.TailThresholds) == 0 {
		c.Align.TailThresholds = d.TailThresholds
	}
	if c.Align.SilenceThreshold <= 0 {
		c.Align.SilenceThreshold = d.SilenceThreshold
	}
	if c.Align.MinSilenceSeconds <= 0 {
		c.Align.MinSilenceSeconds = d.MinSilenceSeconds
	}
	if c.Align.BoundaryWindowSeconds <= 0 {
		c.Align.BoundaryWindowSeconds = d.BoundaryWindowSeconds
	}
	if c.Align.DefaultMarginSeconds <= 0 {
		c.Align.DefaultMarginSeconds = d.DefaultMarginSeconds
	}
	if c.Align.SecondsPerChar <= 0 {
		c.Align.SecondsPerChar = d.SecondsPerChar
	}
	if c.Align.MinSegmentSeconds <= 0 {
		c.Align.MinSegmentSeconds = d.MinSegmentSeconds
	}
	if c.Align.MaxSegmentSeconds <= 0 {
		c.Align.MaxSegmentSeconds = d.MaxSegmentSeconds
	}
}

func (c *Config) normalizeBatch() {
	if c.Batch.MaxSize <= 0 {
		c.Batch.MaxSize = defaultBatchMaxSize
	}
	if c.Batch.MaxChars <= 0 {
		c.Batch.MaxChars = defaultBatchMaxChars
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "console", "json", "auto":
	default:
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
