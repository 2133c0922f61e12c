package pipeline

import (
	"time"

	"transcriber/internal/config"
	"transcriber/internal/storage"
	"transcriber/internal/transcript"
)

// Request describes one transcription job.
type Request struct {
	// Source is the upload to transcribe.
	Source string
	// OutputDir receives output.<format> and the bundle.
	OutputDir string
	Formats   []string
	// Language is a recognition hint; empty lets WhisperX detect it.
	Language string
	// TranslateTo is a target language; empty skips translation.
	TranslateTo string
	Bundle      bool
	Publish     bool
	KeepWorkDir bool
	Verbose     bool
}

// RequestFromConfig fills a request for source from the configured defaults.
func RequestFromConfig(cfg *config.Config, source string) Request {
	req := Request{
		Source:      source,
		OutputDir:   cfg.Paths.OutputDir,
		Formats:     append([]string(nil), cfg.Output.Formats...),
		Language:    cfg.WhisperX.Language,
		Bundle:      cfg.Output.Bundle,
		Publish:     cfg.Storage.Enabled,
		KeepWorkDir: cfg.Output.KeepWorkDir,
	}
	if cfg.Translation.Enabled {
		req.TranslateTo = cfg.Translation.TargetLanguage
	}
	return req
}

// Result summarizes a completed job.
type Result struct {
	JobID      string
	Source     string
	Model      string
	Transcript transcript.Transcript
	Outputs    []string
	BundlePath string
	Published  []storage.Object
	// WorkDir is set only when the workspace was kept.
	WorkDir string
	Elapsed time.Duration
}
