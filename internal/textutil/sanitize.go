package textutil

import (
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// maxNameBytes caps staged names below the common 255-byte filesystem limit.
const maxNameBytes = 200

var unsafeReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// FileName turns an upload's base name into one that is safe to stage on any
// filesystem. Unicode is normalized to NFC so names from macOS uploads match
// their typed form. Control characters are removed and whitespace runs
// collapse to one space. Leading dots are dropped so the result is never
// hidden or a relative path element. The extension survives truncation
// because media detection relies on it. Empty input, or a name with nothing
// usable left, yields "".
func FileName(name string) string {
	name = clean(name)
	if name == "" {
		return ""
	}
	ext := filepath.Ext(name)
	stem := strings.TrimRight(strings.TrimSuffix(name, ext), ". ")
	if stem == "" {
		return ""
	}
	if ext == "." {
		ext = ""
	}
	return truncate(stem, maxNameBytes-len(ext)) + ext
}

// Stem returns the sanitized base name of path without its extension, for
// naming bundles after the source upload.
func Stem(path string) string {
	base := filepath.Base(strings.TrimSpace(path))
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return strings.TrimRight(clean(strings.TrimSuffix(base, filepath.Ext(base))), ". ")
}

func clean(name string) string {
	name = norm.NFC.String(name)
	var b strings.Builder
	b.Grow(len(name))
	space := false
	for _, r := range unsafeReplacer.Replace(name) {
		switch {
		case unicode.IsSpace(r):
			space = true
			continue
		case r == utf8.RuneError || unicode.IsControl(r):
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return strings.TrimLeft(b.String(), ". ")
}

// truncate cuts s to at most limit bytes without splitting a rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return strings.TrimRight(s[:cut], ". ")
}
