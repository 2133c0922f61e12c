package config

const (
	defaultConfigPath            = "~/.config/transcriber/config.toml"
	defaultStagingDir            = "~/.local/share/transcriber/staging"
	defaultOutputDir             = "~/transcripts"
	defaultLogDir                = "~/.local/share/transcriber/logs"
	defaultStateDir              = "~/.local/share/transcriber"
	defaultWhisperXModel         = "medium"
	defaultWhisperXVADMethod     = "silero"
	defaultTranslationBaseURL    = "https://openrouter.ai/api/v1/chat/completions"
	defaultTranslationModel      = "google/gemini-3-flash-preview"
	defaultTranslationTimeout    = 60
	defaultTranslationBatchSize  = 40
	defaultStorageBucket         = "transcripts"
	defaultStorageRegion         = "us-east-1"
	defaultStoragePresignMinutes = 24 * 60
	defaultHistoryRetentionDays  = 90
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultLogRetentionDays      = 30
	maxStoragePresignMinutes     = 7 * 24 * 60
	maxTranslationBatchSize      = 200
	translationAPIKeyEnv         = "TRANSCRIBER_TRANSLATE_API_KEY"
	storageAccessKeyEnv          = "TRANSCRIBER_STORAGE_ACCESS_KEY"
	storageSecretKeyEnv          = "TRANSCRIBER_STORAGE_SECRET_KEY"
	huggingFaceTokenEnv          = "HF_TOKEN"
	openRouterAPIKeyFallbackEnv  = "OPENROUTER_API_KEY"
	defaultFormatsTxt            = "txt"
	defaultFormatsSrt            = "srt"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			OutputDir:  defaultOutputDir,
			LogDir:     defaultLogDir,
			StateDir:   defaultStateDir,
		},
		WhisperX: WhisperX{
			Model:     defaultWhisperXModel,
			VADMethod: defaultWhisperXVADMethod,
		},
		Translation: Translation{
			BaseURL:        defaultTranslationBaseURL,
			Model:          defaultTranslationModel,
			TimeoutSeconds: defaultTranslationTimeout,
			BatchSize:      defaultTranslationBatchSize,
		},
		Output: Output{
			Formats: []string{defaultFormatsTxt, defaultFormatsSrt},
			Bundle:  true,
		},
		Storage: Storage{
			Bucket:         defaultStorageBucket,
			Region:         defaultStorageRegion,
			UseSSL:         true,
			PresignMinutes: defaultStoragePresignMinutes,
		},
		History: History{
			Enabled:       true,
			RetentionDays: defaultHistoryRetentionDays,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
