package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"transcriber/internal/config"
	"transcriber/internal/pipeline"
	"transcriber/internal/preflight"
)

type transcribeOptions struct {
	model       string
	language    string
	translateTo string
	outputDir   string
	formats     []string
	noBundle    bool
	publish     bool
	keepWorkDir bool
	verbose     bool
}

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	var opts transcribeOptions

	cmd := &cobra.Command{
		Use:   "transcribe <file>",
		Short: "Transcribe an audio or video file to text and subtitles",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("provide the file to transcribe. Example: transcriber transcribe interview.mp4")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := filepath.Abs(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("resolve source: %w", err)
			}
			if _, err := os.Stat(source); err != nil {
				if os.IsNotExist(err) {
					return fmt.Errorf("source file %q not found", source)
				}
				return fmt.Errorf("stat source: %w", err)
			}

			base, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			cfg, err := opts.apply(cmd, base)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(cfg.Paths.OutputDir, 0o755); err != nil {
				return fmt.Errorf("ensure output directory: %w", err)
			}

			dirs := []preflight.Result{
				preflight.CheckDirectoryAccess("Staging directory", cfg.Paths.StagingDir),
				preflight.CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
			}
			if err := preflight.Require(dirs, preflight.CheckSystemDeps(cfg)); err != nil {
				return fmt.Errorf("%w (run `transcriber status` for details)", err)
			}

			logger, err := ctx.logger(cfg, opts.verbose)
			if err != nil {
				return err
			}
			store, err := ctx.openHistory(cfg)
			if err != nil {
				return err
			}
			runnerOpts := []pipeline.Option{}
			if store != nil {
				defer store.Close()
				runnerOpts = append(runnerOpts, pipeline.WithHistory(store))
			}
			runner, err := pipeline.New(cfg, logger, runnerOpts...)
			if err != nil {
				return err
			}

			req := pipeline.RequestFromConfig(cfg, source)
			req.Verbose = opts.verbose
			result, err := runner.Run(cmd.Context(), req)
			if err != nil {
				if stage := pipeline.FailedStage(err); stage != "" {
					return fmt.Errorf("transcription failed during %s: %w", stage, err)
				}
				return err
			}
			printResult(cmd.OutOrStdout(), result)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.model, "model", "m", "", "WhisperX model (tiny, base, small, medium, large-v3, ...)")
	flags.StringVarP(&opts.language, "language", "l", "", "Spoken language hint (empty detects automatically)")
	flags.StringVarP(&opts.translateTo, "translate-to", "t", "", "Translate the transcript into this language")
	flags.StringVarP(&opts.outputDir, "output-dir", "o", "", "Directory for output.txt, output.srt, and the bundle")
	flags.StringSliceVarP(&opts.formats, "format", "f", nil, "Output format (txt or srt); repeatable")
	flags.BoolVar(&opts.noBundle, "no-bundle", false, "Skip the zip bundle")
	flags.BoolVar(&opts.publish, "publish", false, "Upload results to the configured object storage")
	flags.BoolVar(&opts.keepWorkDir, "keep-workdir", false, "Keep the staging directory for inspection")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log progress at debug level")
	return cmd
}

// apply returns a copy of base with the command's flags folded in and
// revalidated.
func (o transcribeOptions) apply(cmd *cobra.Command, base *config.Config) (*config.Config, error) {
	cfg := *base
	cfg.Output.Formats = append([]string(nil), base.Output.Formats...)

	if model := strings.TrimSpace(o.model); model != "" {
		cfg.WhisperX.Model = model
	}
	if cmd.Flags().Changed("language") {
		cfg.WhisperX.Language = strings.TrimSpace(o.language)
	}
	if target := strings.TrimSpace(o.translateTo); target != "" {
		cfg.Translation.Enabled = true
		cfg.Translation.TargetLanguage = target
	}
	if dir := strings.TrimSpace(o.outputDir); dir != "" {
		expanded, err := config.ExpandPath(dir)
		if err != nil {
			return nil, fmt.Errorf("resolve output dir: %w", err)
		}
		cfg.Paths.OutputDir = expanded
	}
	if len(o.formats) > 0 {
		formats := make([]string, 0, len(o.formats))
		for _, f := range o.formats {
			formats = append(formats, strings.ToLower(strings.TrimSpace(f)))
		}
		cfg.Output.Formats = formats
	}
	if o.noBundle {
		cfg.Output.Bundle = false
	}
	if o.publish {
		cfg.Storage.Enabled = true
	}
	if o.keepWorkDir {
		cfg.Output.KeepWorkDir = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func printResult(out io.Writer, result pipeline.Result) {
	tr := result.Transcript
	fmt.Fprintf(out, "Job %s completed in %s\n", result.JobID, result.Elapsed.Round(100*time.Millisecond))
	fmt.Fprintf(out, "  Language:  %s\n", valueOrDash(tr.Language))
	fmt.Fprintf(out, "  Segments:  %d (%s)\n", len(tr.Segments), formatClock(tr.Duration()))
	for _, path := range result.Outputs {
		fmt.Fprintf(out, "  Output:    %s\n", path)
	}
	if result.BundlePath != "" {
		fmt.Fprintf(out, "  Bundle:    %s\n", result.BundlePath)
	}
	for _, obj := range result.Published {
		fmt.Fprintf(out, "  Published: %s\n", obj.URL)
	}
	if result.WorkDir != "" {
		fmt.Fprintf(out, "  Work dir:  %s\n", result.WorkDir)
	}
}
