package bundle

import (
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestCreateAndReadManifest(t *testing.T) {
	dir := t.TempDir()
	txt := writeFile(t, dir, "output.txt", "Hello\nworld\n")
	srt := writeFile(t, dir, "output.srt", "1\n00:00:00,000 --> 00:00:01,500\nHello\n\n")
	dest := filepath.Join(dir, "out", "transcript.zip")
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		t.Fatal(err)
	}

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	manifest, err := Create(dest, []string{txt, srt}, Manifest{
		JobID:     "job-1",
		Source:    "talk.mp4",
		Model:     "medium",
		Language:  "en",
		Segments:  2,
		CreatedAt: created,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(manifest.Files) != 2 || manifest.Files[0].Name != "output.txt" || manifest.Files[0].Bytes != 12 {
		t.Fatalf("unexpected manifest files %+v", manifest.Files)
	}

	zr, err := zip.OpenReader(dest)
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	defer zr.Close()
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
		if f.Name == "output.txt" {
			rc, err := f.Open()
			if err != nil {
				t.Fatal(err)
			}
			data, _ := io.ReadAll(rc)
			rc.Close()
			if string(data) != "Hello\nworld\n" {
				t.Fatalf("archived content %q", data)
			}
		}
	}
	if !slices.Equal(names, []string{"output.txt", "output.srt", ManifestName}) {
		t.Fatalf("entries = %v", names)
	}

	read, err := ReadManifest(dest)
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if read.JobID != "job-1" || read.Source != "talk.mp4" || !read.CreatedAt.Equal(created) || len(read.Files) != 2 {
		t.Fatalf("unexpected manifest %+v", read)
	}
}

func TestCreateRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "output.txt", "a")
	sub := filepath.Join(dir, "sub")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	b := writeFile(t, sub, "output.txt", "b")
	dest := filepath.Join(dir, "b.zip")

	if _, err := Create(dest, []string{a, b}, Manifest{}); err == nil {
		t.Fatal("expected duplicate entry error")
	}
	reserved := writeFile(t, sub, ManifestName, "x")
	if _, err := Create(dest, []string{reserved}, Manifest{}); err == nil {
		t.Fatal("expected reserved name error")
	}
	if _, err := Create(dest, []string{filepath.Join(dir, "missing.txt")}, Manifest{}); err == nil {
		t.Fatal("expected missing file error")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Fatal("failed Create must not leave a bundle behind")
	}
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".txt" && e.Name() != "sub" {
			t.Fatalf("unexpected leftover %s", e.Name())
		}
	}
}

func TestReadManifestMissing(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "plain.zip")
	f, err := os.Create(dest)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	if _, err := zw.Create("other.txt"); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()
	if _, err := ReadManifest(dest); err == nil {
		t.Fatal("expected missing manifest error")
	}
}
