package subtitles

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is matched by every *UnsupportedFormatError.
	ErrUnsupportedFormat = errors.New("unsupported output format")
	// ErrFilesystem is matched by every *FilesystemError.
	ErrFilesystem = errors.New("output filesystem error")
	// ErrInvalidTiming is returned for timestamps that cannot be rendered.
	ErrInvalidTiming = errors.New("invalid segment timing")
)

// UnsupportedFormatError reports a format name other than txt or srt.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("%s %q (want txt or srt)", ErrUnsupportedFormat, e.Format)
}

func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}

// FilesystemError reports a missing or unwritable output directory or a
// failed write. Err holds the underlying cause.
type FilesystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error {
	return e.Err
}

func (e *FilesystemError) Is(target error) bool {
	return target == ErrFilesystem
}

// TimingError names the segment whose start or end could not be rendered.
type TimingError struct {
	Segment int
	Field   string
	Err     error
}

func (e *TimingError) Error() string {
	return fmt.Sprintf("segment %d %s: %v", e.Segment, e.Field, e.Err)
}

func (e *TimingError) Unwrap() error {
	return e.Err
}
