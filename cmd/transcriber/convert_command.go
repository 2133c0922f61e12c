package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"transcriber/internal/config"
	"transcriber/internal/fileutil"
	"transcriber/internal/subtitles"
	"transcriber/internal/transcript"
	"transcriber/internal/workspace"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var formats []string
	var outputDir string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "convert <segments.json|subtitles.srt>",
		Short: "Write txt/srt outputs from WhisperX JSON or an existing SRT",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("provide a WhisperX JSON or SRT file. Example: transcriber convert talk.json --format srt")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			segments, err := loadSegments(strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}

			dir := cfg.Paths.OutputDir
			if strings.TrimSpace(outputDir) != "" {
				if dir, err = config.ExpandPath(outputDir); err != nil {
					return fmt.Errorf("resolve output dir: %w", err)
				}
			}
			if len(formats) == 0 {
				formats = cfg.Output.Formats
			}

			logger, err := ctx.logger(cfg, verbose)
			if err != nil {
				return err
			}
			// A missing directory is reported by the formatter itself.
			if isDir, _ := fileutil.IsDir(dir); isDir {
				lock, err := workspace.LockOutputDir(cmd.Context(), cfg.Paths.StateDir, dir)
				if err != nil {
					return err
				}
				defer lock.Unlock()
			}

			formatter := subtitles.NewFormatter(logger)
			out := cmd.OutOrStdout()
			for _, format := range formats {
				path, err := formatter.Convert(segments, format, dir, verbose)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Wrote %s (%d segments)\n", path, len(segments))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&formats, "format", "f", nil, "Output format (txt or srt); repeatable")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Existing directory to write output.<format> into")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log each written file")
	return cmd
}

// loadSegments reads WhisperX JSON, or SRT when the extension says so.
func loadSegments(path string) ([]transcript.Segment, error) {
	if path == "" {
		return nil, fmt.Errorf("input path is required")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("inspect input: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".srt") {
		cues, err := subtitles.ParseSRTFile(path)
		if err != nil {
			return nil, err
		}
		return subtitles.CuesToSegments(cues), nil
	}
	tr, err := transcript.LoadWhisperJSON(path)
	if err != nil {
		return nil, err
	}
	return tr.Segments, nil
}
