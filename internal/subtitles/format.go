package subtitles

import "strings"

// Format names an output representation.
type Format string

const (
	FormatTXT Format = "txt"
	FormatSRT Format = "srt"
)

// OutputBaseName is the fixed file stem every Convert call writes.
const OutputBaseName = "output"

// Formats lists the supported formats in the order jobs produce them.
func Formats() []Format {
	return []Format{FormatTXT, FormatSRT}
}

// ParseFormat accepts "txt" or "srt" in any case, ignoring surrounding
// whitespace.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case FormatTXT:
		return FormatTXT, nil
	case FormatSRT:
		return FormatSRT, nil
	default:
		return "", &UnsupportedFormatError{Format: value}
	}
}

// FileName returns the output file name for the format, e.g. output.srt.
func (f Format) FileName() string {
	return OutputBaseName + "." + string(f)
}

// ContentType returns the MIME type used when publishing the file.
func (f Format) ContentType() string {
	switch f {
	case FormatSRT:
		return "application/x-subrip; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}
