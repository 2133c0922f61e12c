package media

import (
	"path/filepath"
	"slices"
	"strings"
)

var videoExtensions = []string{
	".mp4", ".mpg", ".mov", ".mkv", ".avi", ".flv", ".wmv", ".webm",
	".mpeg", ".m4v", ".3gp", ".3g2", ".f4v", ".f4p", ".f4a", ".f4b",
}

var uploadExtensions = []string{
	".mp4", ".wav", ".mp3", ".avi", ".mov", ".mkv", ".mpg", ".mpeg", ".mp2",
}

// IsVideo reports whether path carries a video container extension. The
// comparison ignores case.
func IsVideo(path string) bool {
	return slices.Contains(videoExtensions, extension(path))
}

// IsSupportedUpload reports whether path has one of the accepted upload
// extensions.
func IsSupportedUpload(path string) bool {
	return slices.Contains(uploadExtensions, extension(path))
}

// UploadExtensions returns the accepted upload extensions without the
// leading dot, for help text.
func UploadExtensions() []string {
	out := make([]string, len(uploadExtensions))
	for i, ext := range uploadExtensions {
		out[i] = strings.TrimPrefix(ext, ".")
	}
	return out
}

func extension(path string) string {
	return strings.ToLower(filepath.Ext(strings.TrimSpace(path)))
}
