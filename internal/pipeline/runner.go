package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"transcriber/internal/bundle"
	"transcriber/internal/config"
	"transcriber/internal/history"
	"transcriber/internal/logging"
	"transcriber/internal/media"
	"transcriber/internal/storage"
	"transcriber/internal/subtitles"
	"transcriber/internal/textutil"
	"transcriber/internal/transcript"
	"transcriber/internal/translate"
	"transcriber/internal/whisperx"
	"transcriber/internal/workspace"
)

// Transcriber turns an audio file into a transcript.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, workDir, language string) (transcript.Transcript, error)
	Model() string
}

// AudioExtractor writes the audio track of a video file to a WAV.
type AudioExtractor interface {
	ExtractAudio(ctx context.Context, source, dest string) error
}

// Prober inspects an upload's streams.
type Prober interface {
	Probe(ctx context.Context, path string) (media.ProbeResult, error)
}

// Translator rewrites segment texts into a target language.
type Translator interface {
	Translate(ctx context.Context, tr transcript.Transcript, target string) (transcript.Transcript, error)
}

// Publisher uploads finished artifacts.
type Publisher interface {
	Publish(ctx context.Context, jobID string, files []string) ([]storage.Object, error)
}

// Runner executes transcription jobs.
type Runner struct {
	stagingDir  string
	stateDir    string
	logger      *slog.Logger
	transcriber Transcriber
	extractor   AudioExtractor
	prober      Prober
	translator  Translator
	publisher   Publisher
	history     *history.Store
	formatter   *subtitles.Formatter
}

// Option customizes a Runner.
type Option func(*Runner)

// WithTranscriber replaces the WhisperX service.
func WithTranscriber(t Transcriber) Option { return func(r *Runner) { r.transcriber = t } }

// WithExtractor replaces the ffmpeg extractor.
func WithExtractor(e AudioExtractor) Option { return func(r *Runner) { r.extractor = e } }

// WithProber replaces the ffprobe prober. A nil prober skips probing.
func WithProber(p Prober) Option { return func(r *Runner) { r.prober = p } }

// WithTranslator replaces the translator.
func WithTranslator(t Translator) Option { return func(r *Runner) { r.translator = t } }

// WithPublisher replaces the object storage publisher.
func WithPublisher(p Publisher) Option { return func(r *Runner) { r.publisher = p } }

// WithHistory records every run in store.
func WithHistory(store *history.Store) Option { return func(r *Runner) { r.history = store } }

// New builds a runner from cfg. Services not supplied through opts are
// constructed from their config sections; translation and publishing are
// only wired when enabled.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("pipeline: config required")
	}
	r := &Runner{
		stagingDir: cfg.Paths.StagingDir,
		stateDir:   cfg.Paths.StateDir,
		logger:     logging.NewComponentLogger(logger, "pipeline"),
		formatter:  subtitles.NewFormatter(logger),
		extractor:  media.NewExtractor(cfg.FFmpegBinary()),
		prober:     media.NewProber(cfg.FFprobeBinary()),
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.transcriber == nil {
		svc, err := whisperx.FromConfig(cfg.WhisperX, logger)
		if err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
		r.transcriber = svc
	}
	if r.translator == nil && cfg.Translation.Enabled {
		client := translate.FromConfig(cfg.Translation)
		r.translator = translate.NewTranslator(client, cfg.Translation.BatchSize, logger)
	}
	if r.publisher == nil && cfg.Storage.Enabled {
		publisher, err := storage.FromConfig(cfg.Storage, logger)
		if err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
		r.publisher = publisher
	}
	return r, nil
}

// Run executes req. On failure the returned error is a *StageError and the
// history row, when recorded, carries the failed stage.
func (r *Runner) Run(ctx context.Context, req Request) (Result, error) {
	started := time.Now()
	formats, err := r.validate(req)
	if err != nil {
		return Result{}, stageErr(StageStage, err)
	}

	job, err := workspace.New(r.stagingDir)
	if err != nil {
		return Result{}, stageErr(StageStage, err)
	}
	ctx = logging.WithJobID(ctx, job.ID)
	logger := logging.WithContext(ctx, r.logger)

	result := Result{JobID: job.ID, Source: req.Source, Model: r.transcriber.Model()}
	r.begin(ctx, logger, job.ID, req)

	if req.KeepWorkDir {
		result.WorkDir = job.Dir
	}
	defer func() {
		if req.KeepWorkDir {
			return
		}
		if cleanupErr := job.Cleanup(); cleanupErr != nil {
			logging.WarnWithContext(logger, "workspace cleanup failed", "workspace_cleanup_failed",
				logging.Error(cleanupErr),
				logging.String(logging.FieldErrorHint, "remove the directory or run transcriber clean"),
				logging.String(logging.FieldImpact, "staging directory keeps an orphaned job folder"),
			)
		}
	}()

	logger.Info("job started",
		logging.String("source", req.Source),
		logging.String("model", result.Model),
		logging.String("output_dir", req.OutputDir),
		logging.String(logging.FieldEventType, "job_start"),
	)

	if err := r.execute(ctx, job, req, formats, &result); err != nil {
		r.fail(ctx, logger, job.ID, err)
		return result, err
	}

	result.Elapsed = time.Since(started)
	r.complete(ctx, logger, job.ID, result)
	logger.Info("job completed",
		logging.Segments(len(result.Transcript.Segments)),
		logging.String("language", result.Transcript.Language),
		logging.Int("outputs", len(result.Outputs)),
		logging.Elapsed(result.Elapsed),
		logging.String(logging.FieldEventType, "job_complete"),
	)
	return result, nil
}

func (r *Runner) validate(req Request) ([]subtitles.Format, error) {
	if strings.TrimSpace(req.Source) == "" {
		return nil, errors.New("source path required")
	}
	info, err := os.Stat(req.Source)
	if err != nil {
		return nil, fmt.Errorf("inspect source: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("source %s is a directory", req.Source)
	}
	if !media.IsSupportedUpload(req.Source) {
		return nil, fmt.Errorf("%w: %s (accepted: %s)", ErrUnsupportedUpload,
			filepath.Base(req.Source), strings.Join(media.UploadExtensions(), ", "))
	}
	if strings.TrimSpace(req.OutputDir) == "" {
		return nil, errors.New("output directory required")
	}
	if len(req.Formats) == 0 {
		return nil, errors.New("at least one output format required")
	}
	formats := make([]subtitles.Format, 0, len(req.Formats))
	seen := make(map[subtitles.Format]struct{}, len(req.Formats))
	for _, value := range req.Formats {
		format, err := subtitles.ParseFormat(value)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[format]; dup {
			continue
		}
		seen[format] = struct{}{}
		formats = append(formats, format)
	}
	if strings.TrimSpace(req.TranslateTo) != "" && r.translator == nil {
		return nil, fmt.Errorf("translation %w", ErrNotConfigured)
	}
	if req.Publish && r.publisher == nil {
		return nil, fmt.Errorf("object storage %w", ErrNotConfigured)
	}
	return formats, nil
}

func (r *Runner) execute(ctx context.Context, job *workspace.Job, req Request, formats []subtitles.Format, result *Result) error {
	var staged string
	if err := r.step(ctx, StageStage, func(context.Context) (err error) {
		staged, err = job.Stage(req.Source)
		return err
	}); err != nil {
		return err
	}

	audio := staged
	if err := r.step(ctx, StageExtract, func(ctx context.Context) error {
		if err := r.probe(ctx, staged); err != nil {
			return err
		}
		if !media.IsVideo(staged) {
			return nil
		}
		audio = job.Path("audio", "audio.wav")
		return r.extractor.ExtractAudio(ctx, staged, audio)
	}); err != nil {
		return err
	}

	var tr transcript.Transcript
	if err := r.step(ctx, StageTranscribe, func(ctx context.Context) (err error) {
		tr, err = r.transcriber.Transcribe(ctx, audio, job.Path("whisperx"), req.Language)
		return err
	}); err != nil {
		return err
	}

	if target := strings.TrimSpace(req.TranslateTo); target != "" {
		if err := r.step(ctx, StageTranslate, func(ctx context.Context) (err error) {
			tr, err = r.translator.Translate(ctx, tr, target)
			return err
		}); err != nil {
			return err
		}
	}
	result.Transcript = tr

	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return stageErr(StageFormat, fmt.Errorf("ensure output dir: %w", err))
	}
	lock, err := workspace.LockOutputDir(ctx, r.stateDir, req.OutputDir)
	if err != nil {
		return stageErr(StageFormat, err)
	}
	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil {
			r.logger.Debug("output lock release failed", logging.Error(unlockErr))
		}
	}()

	if err := r.step(ctx, StageFormat, func(context.Context) error {
		for _, format := range formats {
			path, err := r.formatter.Convert(tr.Segments, string(format), req.OutputDir, req.Verbose)
			if err != nil {
				return err
			}
			result.Outputs = append(result.Outputs, path)
		}
		return nil
	}); err != nil {
		return err
	}

	if req.Bundle {
		if err := r.step(ctx, StageBundle, func(context.Context) error {
			dest := filepath.Join(req.OutputDir, bundleName(req.Source, job.ID))
			_, err := bundle.Create(dest, result.Outputs, bundle.Manifest{
				JobID:          job.ID,
				Source:         filepath.Base(req.Source),
				Model:          result.Model,
				Language:       tr.Language,
				TargetLanguage: strings.TrimSpace(req.TranslateTo),
				Segments:       len(tr.Segments),
				DurationSec:    tr.Duration(),
				CreatedAt:      time.Now().UTC(),
			})
			if err != nil {
				return err
			}
			result.BundlePath = dest
			return nil
		}); err != nil {
			return err
		}
	}

	if req.Publish {
		files := append([]string(nil), result.Outputs...)
		if result.BundlePath != "" {
			files = append(files, result.BundlePath)
		}
		if err := r.step(ctx, StagePublish, func(ctx context.Context) (err error) {
			result.Published, err = r.publisher.Publish(ctx, job.ID, files)
			return err
		}); err != nil {
			return err
		}
	}
	return nil
}

// step runs fn with stage-scoped logging and wraps its error.
func (r *Runner) step(ctx context.Context, stage string, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return stageErr(stage, err)
	}
	stageCtx := logging.WithStage(ctx, stage)
	logger := logging.WithContext(stageCtx, r.logger)
	logger.Debug("stage started", logging.String(logging.FieldEventType, "stage_start"))
	started := time.Now()
	if err := fn(stageCtx); err != nil {
		return stageErr(stage, err)
	}
	logger.Info("stage completed",
		logging.Elapsed(time.Since(started)),
		logging.String(logging.FieldEventType, "stage_complete"),
	)
	return nil
}

// probe rejects uploads without audio. A missing ffprobe only skips the check.
func (r *Runner) probe(ctx context.Context, path string) error {
	if r.prober == nil {
		return nil
	}
	probed, err := r.prober.Probe(ctx, path)
	if errors.Is(err, exec.ErrNotFound) {
		logging.WarnWithContext(logging.WithContext(ctx, r.logger), "ffprobe unavailable; skipping stream check", "probe_skipped",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "install ffprobe or set TRANSCRIBER_FFPROBE"),
			logging.String(logging.FieldImpact, "uploads without audio fail later in transcription"),
		)
		return nil
	}
	if err != nil {
		return err
	}
	if probed.AudioStreamCount() == 0 {
		return fmt.Errorf("%w in %s", ErrNoAudio, filepath.Base(path))
	}
	return nil
}

func (r *Runner) begin(ctx context.Context, logger *slog.Logger, id string, req Request) {
	if r.history == nil {
		return
	}
	err := r.history.Begin(ctx, history.Job{
		ID:             id,
		Source:         req.Source,
		Model:          r.transcriber.Model(),
		Language:       req.Language,
		TargetLanguage: req.TranslateTo,
		OutputDir:      req.OutputDir,
	})
	if err != nil {
		logging.WarnWithContext(logger, "history record failed", "history_begin_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "job will not appear in transcriber history"),
		)
	}
}

func (r *Runner) complete(ctx context.Context, logger *slog.Logger, id string, result Result) {
	if r.history == nil {
		return
	}
	urls := make([]string, 0, len(result.Published))
	for _, obj := range result.Published {
		urls = append(urls, obj.URL)
	}
	err := r.history.Complete(ctx, id, history.Outcome{
		Language:    result.Transcript.Language,
		Outputs:     result.Outputs,
		BundlePath:  result.BundlePath,
		Published:   urls,
		Segments:    len(result.Transcript.Segments),
		DurationSec: result.Transcript.Duration(),
	})
	if err != nil {
		logging.WarnWithContext(logger, "history update failed", "history_complete_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "job stays marked running in history"),
		)
	}
}

func (r *Runner) fail(ctx context.Context, logger *slog.Logger, id string, cause error) {
	stage := FailedStage(cause)
	logging.ErrorWithContext(logger, "job failed", "job_failed",
		logging.String(logging.FieldStage, stage),
		logging.Error(cause),
	)
	if r.history == nil {
		return
	}
	// Record the failure even when ctx was cancelled.
	if err := r.history.Fail(context.WithoutCancel(ctx), id, stage, cause); err != nil {
		logger.Debug("history failure update failed", logging.Error(err))
	}
}

func bundleName(source, jobID string) string {
	stem := textutil.Stem(source)
	if stem == "" {
		stem = "transcript"
	}
	short := jobID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("%s-%s.zip", stem, short)
}
