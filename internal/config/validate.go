package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTTS(); err != nil {
		return err
	}
	if err := c.validateSTT(); err != nil {
		return err
	}
	if err := c.validateAlign(); err != nil {
		return err
	}
	return c.validateBatch()
}

func (c *Config) validateTTS() error {
	if c.TTS.SampleRate < 8000 || c.TTS.SampleRate > 48000 {
		return fmt.Errorf("tts.sample_rate %d is outside the supported 8000..48000 range", c.TTS.SampleRate)
	}
	for _, d := range c.TTS.RetryDelaysSeconds {
		if d <= 0 {
			return errors.New("tts.retry_delays_seconds entries must be positive")
		}
	}
	return nil
}

func (c *Config) validateSTT() error {
	if c.STT.ChunkSeconds < 5 || c.STT.ChunkSeconds > 60 {
		return fmt.Errorf("stt.chunk_seconds %d is outside the supported 5..60 range", c.STT.ChunkSeconds)
	}
	return nil
}

func (c *Config) validateAlign() error {
	prev := 1.0
	for _, th := range c.Align.TailThresholds {
		if th <= 0 || th > 1 {
			return errors.New("align.tail_thresholds entries must be in (0, 1]")
		}
		if th > prev {
			return errors.New("align.tail_thresholds must be non-increasing")
		}
		prev = th
	}
	if c.Align.MinSegmentSeconds >= c.Align.MaxSegmentSeconds {
		return errors.New("align.min_segment_seconds must be less than align.max_segment_seconds")
	}
	return nil
}

func (c *Config) validateBatch() error {
	if c.Batch.MaxSize <= 0 {
		return errors.New("batch.max_size must be positive")
	}
	if c.Batch.MaxChars <= 0 {
		return errors.New("batch.max_chars must be positive")
	}
	return nil
}
