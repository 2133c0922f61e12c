package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"transcriber/internal/config"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("TRANSCRIBER_ENV", "")
	t.Setenv("TRANSCRIBER_TRANSLATE_API_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("TRANSCRIBER_STORAGE_ACCESS_KEY", "")
	t.Setenv("TRANSCRIBER_STORAGE_SECRET_KEY", "")
	t.Setenv("HF_TOKEN", "")
	t.Chdir(t.TempDir())
	return home
}

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	home := isolate(t)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if want := filepath.Join(home, ".config", "transcriber", "config.toml"); resolved != want {
		t.Fatalf("resolved = %q, want %q", resolved, want)
	}
	if want := filepath.Join(home, ".local", "share", "transcriber", "staging"); cfg.Paths.StagingDir != want {
		t.Fatalf("unexpected staging dir: got %q want %q", cfg.Paths.StagingDir, want)
	}
	if cfg.Paths.OutputDir != filepath.Join(home, "transcripts") {
		t.Fatalf("unexpected output dir: %q", cfg.Paths.OutputDir)
	}
	if cfg.WhisperX.Model != "medium" {
		t.Fatalf("expected medium model by default, got %q", cfg.WhisperX.Model)
	}
	if cfg.WhisperX.VADMethod != "silero" {
		t.Fatalf("expected silero VAD by default, got %q", cfg.WhisperX.VADMethod)
	}
	if cfg.Translation.Enabled {
		t.Fatal("expected translation disabled by default")
	}
	if got := strings.Join(cfg.Output.Formats, ","); got != "txt,srt" {
		t.Fatalf("unexpected default formats %q", got)
	}
	if !cfg.Output.Bundle {
		t.Fatal("expected bundle enabled by default")
	}
	if cfg.Storage.Enabled {
		t.Fatal("expected storage disabled by default")
	}
	if cfg.HistoryPath() != filepath.Join(home, ".local", "share", "transcriber", "history.db") {
		t.Fatalf("unexpected history path %q", cfg.HistoryPath())
	}
}

func TestLoadCustomPathAndNormalization(t *testing.T) {
	isolate(t)
	t.Setenv("TRANSCRIBER_TRANSLATE_API_KEY", "from-env")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
output_dir = "` + filepath.Join(dir, "out") + `"

[whisperx]
model = " Large-V3 "
language = "JA"

[translation]
enabled = true
target_language = "en-GB"

[output]
formats = ["SRT", "srt", " txt "]
bundle = false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected existing config at %q, got %q (exists=%v)", path, resolved, exists)
	}
	if cfg.WhisperX.Model != "large-v3" {
		t.Fatalf("model not normalized: %q", cfg.WhisperX.Model)
	}
	if cfg.WhisperX.Language != "ja" {
		t.Fatalf("language not normalized: %q", cfg.WhisperX.Language)
	}
	if cfg.Translation.APIKey != "from-env" {
		t.Fatalf("expected api key from env, got %q", cfg.Translation.APIKey)
	}
	if got := strings.Join(cfg.Output.Formats, ","); got != "srt,txt" {
		t.Fatalf("formats not deduplicated: %q", got)
	}
	if cfg.Output.Bundle {
		t.Fatal("expected bundle disabled")
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	isolate(t)
	envPath := filepath.Join(t.TempDir(), "secrets.env")
	if err := os.WriteFile(envPath, []byte("TRANSCRIBER_TRANSLATE_API_KEY=dotenv-key\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv("TRANSCRIBER_ENV", envPath)
	// t.Setenv registered an empty value; drop it so godotenv can set it.
	os.Unsetenv("TRANSCRIBER_TRANSLATE_API_KEY")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Translation.APIKey != "dotenv-key" {
		t.Fatalf("expected key from .env, got %q", cfg.Translation.APIKey)
	}
}

func TestValidateRejectsBadSettings(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"translation without target", func(c *config.Config) {
			c.Translation.Enabled = true
			c.Translation.APIKey = "k"
		}, "translation.target_language"},
		{"translation bad language", func(c *config.Config) {
			c.Translation.Enabled = true
			c.Translation.APIKey = "k"
			c.Translation.TargetLanguage = "not a language!"
		}, "translation.target_language"},
		{"translation without key", func(c *config.Config) {
			c.Translation.Enabled = true
			c.Translation.TargetLanguage = "fr"
		}, "translation.api_key"},
		{"vtt output", func(c *config.Config) {
			c.Output.Formats = []string{"vtt"}
		}, "output.formats"},
		{"storage without endpoint", func(c *config.Config) {
			c.Storage.Enabled = true
		}, "storage.endpoint"},
		{"storage with scheme", func(c *config.Config) {
			c.Storage.Enabled = true
			c.Storage.Endpoint = "https://minio.local"
		}, "without a scheme"},
		{"storage without keys", func(c *config.Config) {
			c.Storage.Enabled = true
			c.Storage.Endpoint = "minio.local:9000"
		}, "storage.access_key"},
		{"pyannote without token", func(c *config.Config) {
			c.WhisperX.VADMethod = "pyannote"
		}, "whisperx.hf_token"},
		{"unknown log format", func(c *config.Config) {
			c.Logging.Format = "xml"
		}, "logging.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error containing %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestSampleConfigParsesAndValidates(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	var decoded config.Config
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if err := toml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("sample is not valid TOML: %v", err)
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
}

func TestEnsureDirectories(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StagingDir = filepath.Join(root, "staging")
	cfg.Paths.LogDir = filepath.Join(root, "logs")
	cfg.Paths.StateDir = filepath.Join(root, "state")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StagingDir, cfg.Paths.LogDir, cfg.Paths.StateDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s", dir)
		}
	}
}
