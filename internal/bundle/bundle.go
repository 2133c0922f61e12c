package bundle

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
	"gopkg.in/yaml.v3"

	"transcriber/internal/fileutil"
)

// ManifestName is the archive entry holding the manifest.
const ManifestName = "manifest.yaml"

// Manifest describes the job that produced a bundle.
type Manifest struct {
	JobID          string    `yaml:"job_id"`
	Source         string    `yaml:"source"`
	Model          string    `yaml:"model,omitempty"`
	Language       string    `yaml:"language,omitempty"`
	TargetLanguage string    `yaml:"target_language,omitempty"`
	Segments       int       `yaml:"segments"`
	DurationSec    float64   `yaml:"duration_seconds"`
	CreatedAt      time.Time `yaml:"created_at"`
	Files          []File    `yaml:"files"`
}

// File is one archived artifact.
type File struct {
	Name  string `yaml:"name"`
	Bytes int64  `yaml:"bytes"`
}

// Create writes a zip at dest holding each path in files (stored under its
// base name) followed by the manifest. The Files list of manifest is filled
// in from the archived entries. dest is replaced atomically.
func Create(dest string, files []string, manifest Manifest) (Manifest, error) {
	if strings.TrimSpace(dest) == "" {
		return manifest, errors.New("bundle: destination required")
	}
	seen := make(map[string]struct{}, len(files))
	for _, path := range files {
		name := filepath.Base(path)
		if name == ManifestName {
			return manifest, fmt.Errorf("bundle: %s is reserved", ManifestName)
		}
		if _, dup := seen[name]; dup {
			return manifest, fmt.Errorf("bundle: duplicate entry %s", name)
		}
		seen[name] = struct{}{}
	}
	if manifest.CreatedAt.IsZero() {
		manifest.CreatedAt = time.Now().UTC()
	}
	manifest.Files = manifest.Files[:0]

	err := fileutil.WriteAtomic(dest, 0o644, func(w io.Writer) error {
		zw := zip.NewWriter(w)
		for _, path := range files {
			size, err := addFile(zw, path, manifest.CreatedAt)
			if err != nil {
				return err
			}
			manifest.Files = append(manifest.Files, File{Name: filepath.Base(path), Bytes: size})
		}
		data, err := yaml.Marshal(manifest)
		if err != nil {
			return fmt.Errorf("encode manifest: %w", err)
		}
		entry, err := zw.CreateHeader(header(ManifestName, manifest.CreatedAt))
		if err != nil {
			return err
		}
		if _, err := entry.Write(data); err != nil {
			return err
		}
		return zw.Close()
	})
	if err != nil {
		return manifest, fmt.Errorf("bundle: %w", err)
	}
	return manifest, nil
}

func addFile(zw *zip.Writer, path string, modified time.Time) (int64, error) {
	src, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer src.Close()
	entry, err := zw.CreateHeader(header(filepath.Base(path), modified))
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(entry, src)
	if err != nil {
		return 0, fmt.Errorf("archive %s: %w", path, err)
	}
	return n, nil
}

func header(name string, modified time.Time) *zip.FileHeader {
	return &zip.FileHeader{Name: name, Method: zip.Deflate, Modified: modified}
}

// ReadManifest opens the bundle at path and decodes its manifest.
func ReadManifest(path string) (Manifest, error) {
	var manifest Manifest
	zr, err := zip.OpenReader(path)
	if err != nil {
		return manifest, fmt.Errorf("open bundle: %w", err)
	}
	defer zr.Close()
	for _, f := range zr.File {
		if f.Name != ManifestName {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return manifest, fmt.Errorf("open manifest: %w", err)
		}
		defer rc.Close()
		if err := yaml.NewDecoder(rc).Decode(&manifest); err != nil {
			return manifest, fmt.Errorf("decode manifest: %w", err)
		}
		return manifest, nil
	}
	return manifest, fmt.Errorf("bundle %s: %s not found", path, ManifestName)
}
