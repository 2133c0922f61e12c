package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteUpload creates an upload named name in a fresh temp dir and returns
// its path. The content is a placeholder; tests stub every stage that would
// decode it. Names with subdirectories are rejected so callers cannot
// accidentally write outside the temp dir.
func WriteUpload(t testing.TB, name string) string {
	t.Helper()

	if name == "" || filepath.Base(name) != name {
		t.Fatalf("upload name %q must be a bare file name", name)
	}
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("media"), 0o644); err != nil {
		t.Fatalf("write upload %s: %v", name, err)
	}
	return path
}
