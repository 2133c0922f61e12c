package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// DefaultFFmpeg is used when no ffmpeg binary is configured.
const DefaultFFmpeg = "ffmpeg"

// CommandRunner executes an external command. Tests substitute it.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// Extractor pulls the audio track out of a media file with ffmpeg.
type Extractor struct {
	binary string
	run    CommandRunner
}

// NewExtractor returns an Extractor using binary (DefaultFFmpeg when empty).
func NewExtractor(binary string) *Extractor {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = DefaultFFmpeg
	}
	return &Extractor{binary: binary, run: runCommand}
}

// WithCommandRunner replaces the command runner (for testing).
func (e *Extractor) WithCommandRunner(runner CommandRunner) {
	if runner != nil {
		e.run = runner
	}
}

// Binary returns the ffmpeg command in use.
func (e *Extractor) Binary() string {
	return e.binary
}

// ExtractAudio writes the first audio stream of source to dest as a mono
// 16 kHz WAV. The destination directory is created when missing.
func (e *Extractor) ExtractAudio(ctx context.Context, source, dest string) error {
	if strings.TrimSpace(source) == "" {
		return fmt.Errorf("extract audio: source path required")
	}
	if strings.TrimSpace(dest) == "" {
		return fmt.Errorf("extract audio: destination path required")
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("extract audio: ensure destination dir: %w", err)
	}
	if err := e.run(ctx, e.binary, ExtractArgs(source, dest)...); err != nil {
		return fmt.Errorf("extract audio: %w", err)
	}
	return nil
}

// ExtractArgs builds the ffmpeg arguments used by ExtractAudio.
func ExtractArgs(source, dest string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		dest,
	}
}

func runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}
