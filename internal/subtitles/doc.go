// Package subtitles turns transcript segments into the plain-text and SubRip
// files a transcription job hands back to the user.
//
// Formatter.Convert is the entry point: it renders the requested format in
// memory, then writes output.txt or output.srt into an existing directory
// through a temp file and rename so a failed call leaves no partial file.
// ParseSRT reads SubRip back into segments and is the inverse of the SRT
// renderer to millisecond precision.
//
// Segment timing is emitted as given. Overlapping segments and end times
// before start times pass through uncorrected.
package subtitles
