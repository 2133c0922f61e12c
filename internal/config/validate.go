package config

import (
	"errors"
	"fmt"
	"strings"

	langpkg "transcriber/internal/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateWhisperX(); err != nil {
		return err
	}
	if err := c.validateTranslation(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateWhisperX() error {
	switch c.WhisperX.VADMethod {
	case "silero":
	case "pyannote":
		if c.WhisperX.HFToken == "" {
			return fmt.Errorf("whisperx.hf_token is required when whisperx.vad_method is pyannote (or set %s)", huggingFaceTokenEnv)
		}
	default:
		return fmt.Errorf("whisperx.vad_method: unsupported value %q (want silero or pyannote)", c.WhisperX.VADMethod)
	}
	if c.WhisperX.Language != "" {
		if !langpkg.IsRecognizable(c.WhisperX.Language) {
			return fmt.Errorf("whisperx.language: %q is not a language the recognizer supports", c.WhisperX.Language)
		}
	}
	return nil
}

func (c *Config) validateTranslation() error {
	if !c.Translation.Enabled {
		return nil
	}
	if c.Translation.TargetLanguage == "" {
		return errors.New("translation.target_language must be set when translation.enabled is true")
	}
	if _, err := langpkg.Parse(c.Translation.TargetLanguage); err != nil {
		return fmt.Errorf("translation.target_language: %w", err)
	}
	if c.Translation.APIKey == "" {
		return fmt.Errorf("translation.api_key is required when translation.enabled is true (or set %s)", translationAPIKeyEnv)
	}
	if c.Translation.BatchSize > maxTranslationBatchSize {
		return fmt.Errorf("translation.batch_size must be at most %d", maxTranslationBatchSize)
	}
	return nil
}

func (c *Config) validateOutput() error {
	for _, format := range c.Output.Formats {
		if format != defaultFormatsTxt && format != defaultFormatsSrt {
			return fmt.Errorf("output.formats: unsupported format %q (want txt or srt)", format)
		}
	}
	return nil
}

func (c *Config) validateStorage() error {
	if !c.Storage.Enabled {
		return nil
	}
	if c.Storage.Endpoint == "" {
		return errors.New("storage.endpoint must be set when storage.enabled is true")
	}
	if strings.Contains(c.Storage.Endpoint, "://") {
		return errors.New("storage.endpoint must be host[:port] without a scheme; use storage.use_ssl instead")
	}
	if c.Storage.AccessKey == "" || c.Storage.SecretKey == "" {
		return fmt.Errorf("storage.access_key and storage.secret_key are required when storage.enabled is true (or set %s/%s)", storageAccessKeyEnv, storageSecretKeyEnv)
	}
	if c.Storage.PresignMinutes > maxStoragePresignMinutes {
		return fmt.Errorf("storage.presign_minutes must be at most %d", maxStoragePresignMinutes)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (want console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must be zero or positive")
	}
	return nil
}
