// Package deps checks that the external programs the pipeline runs (ffmpeg,
// ffprobe, uvx) can be found.
package deps
