// Package preflight provides readiness checks for the directories, external
// programs, and remote services a transcription job depends on.
//
// The status command prints every check; the pipeline runs RunAll before a
// job and refuses to start when a required check fails, rather than
// discovering a missing ffmpeg after staging a large upload.
//
// Each remote check is gated by its config toggle; disabled features are
// skipped.
package preflight
