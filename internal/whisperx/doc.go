// Package whisperx runs WhisperX speech recognition through uvx.
//
// A Service is built once from configuration and reused for every job; it
// carries the model choice, device, and VAD settings. Transcribe invokes the
// recognizer with JSON output and loads the result as a transcript.
package whisperx
