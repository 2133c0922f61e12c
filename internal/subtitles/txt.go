package subtitles

import (
	"io"
	"strings"

	"transcriber/internal/transcript"
)

// WriteTXT writes one line per segment: the trimmed text with embedded line
// breaks folded into spaces, terminated by a newline. Timestamps are not
// included and an empty segment list writes nothing.
func WriteTXT(w io.Writer, segments []transcript.Segment) error {
	for _, seg := range segments {
		if _, err := io.WriteString(w, txtLine(seg.Text)+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func txtLine(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if !strings.ContainsAny(text, "\n\r") {
		return strings.TrimSpace(text)
	}
	lines := strings.FieldsFunc(text, func(r rune) bool { return r == '\n' || r == '\r' })
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, " ")
}
