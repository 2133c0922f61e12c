// Command transcriber turns audio and video files into plain-text and SRT
// transcripts using WhisperX.
//
// Typical use:
//
//	transcriber transcribe interview.mp4
//	transcriber transcribe lecture.mkv --translate-to de --publish
//	transcriber convert segments.json --format srt --output-dir ./out
//	transcriber history
//	transcriber status
//
// Configuration is read from ~/.config/transcriber/config.toml (see
// `transcriber config init`); flags override individual settings per run.
package main
