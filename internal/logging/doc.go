// Package logging assembles structured slog loggers for the transcriber CLI
// and pipeline.
//
// It owns the console and JSON handlers, level and output plumbing, and the
// context helpers that tag log lines with the job ID and pipeline stage. A
// no-op logger is provided for tests and for callers that do not care about
// output.
package logging
