package config

const (
	defaultDataDir   = "~/.local/share/castline"
	defaultOutputDir = "~/.local/share/castline/output"
	defaultLogDir    = "~/.local/share/castline/logs"

	defaultHostVoice  = "Kore"
	defaultGuestVoice = "Leda"
	defaultTTSModel   = "gemini-2.5-flash-preview-tts"
	defaultTTSRegion  = "us-central1"
	defaultSampleRate = 24000

	defaultSTTLanguage   = "ko-KR"
	defaultChunkSeconds  = 50
	defaultBatchMaxSize  = 50
	defaultBatchMaxChars = 2500

	defaultLogFormat = "auto"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		TTS: TTS{
			HostVoice:          defaultHostVoice,
			GuestVoice:         defaultGuestVoice,
			Model:              defaultTTSModel,
			Region:             defaultTTSRegion,
			SampleRate:         defaultSampleRate,
			RetryDelaysSeconds: []int{2, 4, 8},
		},
		STT: STT{
			Language:     defaultSTTLanguage,
			ChunkSeconds: defaultChunkSeconds,
		},
		Align: Align{
			TailThresholds:        []float64{0.70, 0.60, 0.50},
			SilenceThreshold:      500,
			MinSilenceSeconds:     0.05,
			BoundaryWindowSeconds: 1.0,
			DefaultMarginSeconds:  0.2,
			SecondsPerChar:        0.20,
			MinSegmentSeconds:     0.5,
			MaxSegmentSeconds:     60.0,
		},
		Batch: Batch{
			MaxSize:  defaultBatchMaxSize,
			MaxChars: defaultBatchMaxChars,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
