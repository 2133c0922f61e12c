// Package media classifies uploaded files and prepares their audio for
// recognition.
//
// Video detection is by file extension only. Extraction shells out to
// ffmpeg and produces the mono 16 kHz PCM WAV the recognizer expects;
// Probe wraps ffprobe for stream counts and duration.
package media
