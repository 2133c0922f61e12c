// Package history records transcription jobs in a local SQLite database.
//
// A job row is written when the pipeline starts (status running) and
// finalized as completed or failed. Rows left running by a crashed process
// are marked failed by MarkInterrupted when the next run opens the store.
// The schema is versioned; a mismatch is reported as ErrSchemaMismatch
// rather than migrated.
package history
