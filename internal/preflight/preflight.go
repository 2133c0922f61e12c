package preflight

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"transcriber/internal/config"
	"transcriber/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the directory and remote checks that apply to cfg.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Staging directory", cfg.Paths.StagingDir),
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
	}
	if cfg.Translation.Enabled {
		results = append(results, CheckTranslation(ctx, cfg.Translation))
	}
	if cfg.Storage.Enabled {
		results = append(results, CheckStorageFromConfig(ctx, cfg.Storage))
	}
	return results
}

// ErrNotReady is wrapped by Require when a required check fails.
var ErrNotReady = errors.New("preflight failed")

// Require returns an error naming every failed result and every missing
// required dependency, or nil when all passed.
func Require(results []Result, statuses []deps.Status) error {
	var failed []string
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		}
	}
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			failed = append(failed, fmt.Sprintf("%s: %s", s.Name, s.Detail))
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrNotReady, strings.Join(failed, "; "))
}
