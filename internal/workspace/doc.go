// Package workspace manages per-job scratch directories and the lock that
// serializes writers of a shared output directory.
//
// Each job gets <staging_dir>/<uuid>. The upload is copied in, intermediate
// audio and recognizer artifacts are written there, and the whole directory
// is removed when the job finishes unless the caller keeps it. Directories
// left behind by crashed runs are swept by CleanStale.
package workspace
