package whisperx

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"transcriber/internal/config"
	langpkg "transcriber/internal/language"
	"transcriber/internal/logging"
	"transcriber/internal/transcript"
)

// CommandRunner executes an external command.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// Service provides WhisperX transcription. It is safe for sequential reuse
// across jobs; settings are fixed at construction.
type Service struct {
	cfg           Config
	logger        *slog.Logger
	commandRunner CommandRunner
}

// NewService creates a WhisperX service with the given configuration.
func NewService(cfg Config, logger *slog.Logger) (*Service, error) {
	cfg.Model = strings.ToLower(strings.TrimSpace(cfg.Model))
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if err := ValidateModel(cfg.Model); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.Command) == "" {
		cfg.Command = UVXCommand
	}
	if cfg.VADMethod == "" {
		cfg.VADMethod = VADMethodSilero
	}
	return &Service{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "whisperx"),
	}, nil
}

// FromConfig builds a service from the [whisperx] config section.
func FromConfig(w config.WhisperX, logger *slog.Logger) (*Service, error) {
	return NewService(Config{
		Model:       w.Model,
		Language:    w.Language,
		CUDAEnabled: w.CUDAEnabled,
		VADMethod:   w.VADMethod,
		HFToken:     w.HFToken,
	}, logger)
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner CommandRunner) {
	s.commandRunner = runner
}

// Model returns the configured model name.
func (s *Service) Model() string {
	return s.cfg.Model
}

// Command returns the launcher binary.
func (s *Service) Command() string {
	return s.cfg.Command
}

// CUDAEnabled returns whether CUDA is enabled.
func (s *Service) CUDAEnabled() bool {
	return s.cfg.CUDAEnabled
}

// Transcribe runs recognition on audioPath, writing WhisperX artifacts to
// workDir, and returns the decoded transcript. language overrides the
// configured hint when non-empty.
func (s *Service) Transcribe(ctx context.Context, audioPath, workDir, language string) (transcript.Transcript, error) {
	if strings.TrimSpace(audioPath) == "" {
		return transcript.Transcript{}, fmt.Errorf("transcribe: source path required")
	}
	if workDir == "" {
		workDir = filepath.Dir(audioPath)
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return transcript.Transcript{}, fmt.Errorf("transcribe: ensure output dir: %w", err)
	}
	if strings.TrimSpace(language) == "" {
		language = s.cfg.Language
	}

	args := s.buildArgs(audioPath, workDir, language)
	logger := logging.WithContext(ctx, s.logger)
	logger.Info("whisperx transcription started",
		logging.String("model", s.cfg.Model),
		logging.String("language", langpkg.ToISO2(language)),
		logging.Bool("cuda", s.cfg.CUDAEnabled),
		logging.String(logging.FieldEventType, "transcription_start"),
	)
	started := time.Now()
	if err := s.run(ctx, s.cfg.Command, args...); err != nil {
		return transcript.Transcript{}, fmt.Errorf("whisperx: %w", err)
	}

	baseName := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	jsonPath := filepath.Join(workDir, baseName+".json")
	result, err := transcript.LoadWhisperJSON(jsonPath)
	if err != nil {
		return transcript.Transcript{}, fmt.Errorf("whisperx: load result %s: %w", jsonPath, err)
	}
	if result.Language == "" {
		result.Language = langpkg.ToISO2(language)
	}
	logger.Info("whisperx transcription completed",
		logging.Segments(len(result.Segments)),
		logging.String("detected_language", result.Language),
		logging.Elapsed(time.Since(started)),
		logging.String(logging.FieldEventType, "transcription_complete"),
	)
	return result, nil
}

// run executes a command, using the custom runner if set.
func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec

	// Torch 2.6 defaults torch.load to weights_only, which pyannote checkpoints fail.
	if os.Getenv("TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD") == "" {
		cmd.Env = append(os.Environ(), "TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1")
	}

	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// buildArgs constructs the uvx command arguments for WhisperX.
func (s *Service) buildArgs(source, outputDir, language string) []string {
	args := make([]string, 0, 40)

	if s.cfg.CUDAEnabled {
		args = append(args,
			"--index-url", CUDAIndexURL,
			"--extra-index-url", PypiIndexURL,
		)
	} else {
		args = append(args, "--index-url", PypiIndexURL)
	}

	args = append(args,
		"whisperx",
		source,
		"--model", s.cfg.Model,
		"--batch_size", BatchSize,
		"--output_dir", outputDir,
		"--output_format", OutputFormat,
		"--segment_resolution", SegmentResolution,
		"--chunk_size", ChunkSize,
		"--vad_onset", VADOnset,
		"--vad_offset", VADOffset,
		"--beam_size", BeamSize,
		"--best_of", BestOf,
		"--temperature", Temperature,
		"--patience", Patience,
	)

	args = append(args, "--vad_method", s.cfg.VADMethod)
	if s.cfg.VADMethod == VADMethodPyannote && s.cfg.HFToken != "" {
		args = append(args, "--hf_token", s.cfg.HFToken)
	}

	if lang := langpkg.ToISO2(language); lang != "" {
		args = append(args, "--language", lang)
	}

	if s.cfg.CUDAEnabled {
		args = append(args, "--device", CUDADevice)
	} else {
		args = append(args, "--device", CPUDevice, "--compute_type", CPUComputeType)
	}

	return args
}
