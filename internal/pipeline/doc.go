// Package pipeline runs one transcription job end to end.
//
// A Runner stages the upload into a fresh workspace, extracts audio from
// video containers, transcribes with WhisperX, optionally translates the
// segments, writes each requested output format, and optionally bundles and
// publishes the results. Every run is recorded in the job history when a
// store is attached.
//
// Failures are wrapped in *StageError so callers can report which step
// broke. The output lock serializes jobs that write to the same directory.
package pipeline
