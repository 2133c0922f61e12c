package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"transcriber/internal/config"
)

// ConfigOption adjusts the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config whose directories live under a per-test temp
// dir. The output directory is created; the formatter refuses a missing one.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StagingDir = filepath.Join(base, "staging")
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Output.Bundle = false
	cfgVal.Storage.Enabled = false
	if err := os.MkdirAll(cfgVal.Paths.OutputDir, 0o755); err != nil {
		t.Fatalf("mkdir output dir: %v", err)
	}

	for _, opt := range opts {
		opt(&cfgVal)
	}
	return &cfgVal
}

// WithBundle turns on zip bundling.
func WithBundle() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Output.Bundle = true
	}
}
