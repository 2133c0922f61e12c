package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"transcriber/internal/config"
	"transcriber/internal/deps"
	"transcriber/internal/storage"
	"transcriber/internal/translate"
	"transcriber/internal/whisperx"
)

// CheckTranslation verifies that the chat completion API is reachable and
// the key is valid. It uses a 30-second timeout and a single attempt.
func CheckTranslation(ctx context.Context, cfg config.Translation) Result {
	const name = "Translation API"
	if cfg.APIKey == "" {
		return Result{Name: name, Detail: "API key missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client := translate.FromConfig(cfg, translate.WithRetryMaxAttempts(1))
	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeRemoteError(err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("API reachable (%s)", client.Model())}
}

// BucketChecker is the part of *storage.Publisher the storage check needs.
type BucketChecker interface {
	CheckBucket(ctx context.Context) (bool, error)
	Bucket() string
}

// CheckStorage verifies the object store answers and reports whether the
// bucket exists yet. A missing bucket passes; the first publish creates it.
func CheckStorage(ctx context.Context, checker BucketChecker) Result {
	const name = "Object storage"
	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := checker.CheckBucket(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: summarizeRemoteError(err)}
	}
	if !exists {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("bucket %q will be created on first publish", checker.Bucket())}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("bucket %q reachable", checker.Bucket())}
}

// CheckStorageFromConfig connects with the [storage] settings and runs
// CheckStorage.
func CheckStorageFromConfig(ctx context.Context, cfg config.Storage) Result {
	publisher, err := storage.FromConfig(cfg, nil)
	if err != nil {
		return Result{Name: "Object storage", Detail: err.Error()}
	}
	return CheckStorage(ctx, publisher)
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	if path == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates the external programs the pipeline runs.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries([]deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Required to extract audio from video uploads",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Inspects uploads for audio streams and duration",
			Optional:    true,
		},
		{
			Name:        "uvx",
			Command:     whisperx.UVXCommand,
			Description: "Required for WhisperX-driven transcription",
		},
	})
}

// summarizeRemoteError produces a short summary for health check failures.
func summarizeRemoteError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (service unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (service unreachable)"
	}
	return err.Error()
}
