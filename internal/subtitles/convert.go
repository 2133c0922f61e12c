package subtitles

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"transcriber/internal/fileutil"
	"transcriber/internal/logging"
	"transcriber/internal/transcript"
)

// Formatter writes transcript segments to output files. It holds no state
// between calls; the logger only receives progress when a call is verbose.
type Formatter struct {
	logger *slog.Logger
}

// NewFormatter returns a Formatter reporting through logger (nil discards).
func NewFormatter(logger *slog.Logger) *Formatter {
	return &Formatter{logger: logging.NewComponentLogger(logger, "formatter")}
}

// Render returns the file content for segments in the given format.
func Render(segments []transcript.Segment, format Format) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case FormatTXT:
		err = WriteTXT(&buf, segments)
	case FormatSRT:
		err = WriteSRT(&buf, segments)
	default:
		return nil, &UnsupportedFormatError{Format: string(format)}
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Convert writes segments to <outputDir>/output.<format> and returns that
// path. The directory must already exist. An unsupported format fails before
// anything touches the filesystem; a write failure leaves any previous
// output file in place and no temporary file behind.
func (f *Formatter) Convert(segments []transcript.Segment, format, outputDir string, verbose bool) (string, error) {
	parsed, err := ParseFormat(format)
	if err != nil {
		return "", err
	}
	if err := checkOutputDir(outputDir); err != nil {
		return "", err
	}

	data, err := Render(segments, parsed)
	if err != nil {
		return "", err
	}

	target := filepath.Join(outputDir, parsed.FileName())
	if verbose {
		f.logger.Info("writing transcript output",
			logging.String("format", string(parsed)),
			logging.Path(target),
			logging.Segments(len(segments)),
		)
	}
	if err := fileutil.WriteFileAtomic(target, data, 0o644); err != nil {
		return "", &FilesystemError{Op: "write", Path: target, Err: err}
	}
	if verbose {
		f.logger.Info("transcript output written",
			logging.Path(target),
			logging.Int("bytes", len(data)),
			logging.String(logging.FieldEventType, "output_written"),
		)
	}
	return target, nil
}

func checkOutputDir(dir string) error {
	if dir == "" {
		return &FilesystemError{Op: "stat", Path: dir, Err: errors.New("output directory not set")}
	}
	info, err := os.Stat(dir)
	if err != nil {
		return &FilesystemError{Op: "stat", Path: dir, Err: err}
	}
	if !info.IsDir() {
		return &FilesystemError{Op: "stat", Path: dir, Err: errors.New("not a directory")}
	}
	return nil
}
