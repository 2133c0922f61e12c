package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"transcriber/internal/fileutil"
	"transcriber/internal/textutil"
)

// Job is one job's scratch directory.
type Job struct {
	ID  string
	Dir string
}

// New creates a fresh job directory under root.
func New(root string) (*Job, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.New("workspace: staging root required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("workspace: ensure staging root: %w", err)
	}
	id := uuid.NewString()
	dir := filepath.Join(root, id)
	if err := os.Mkdir(dir, 0o755); err != nil {
		return nil, fmt.Errorf("workspace: create job dir: %w", err)
	}
	return &Job{ID: id, Dir: dir}, nil
}

// Stage copies the upload into the job directory and returns the staged
// path. The file name is sanitized; the extension is kept so media type
// detection still works on the copy.
func (j *Job) Stage(upload string) (string, error) {
	name := textutil.FileName(filepath.Base(upload))
	if name == "" || name == "." {
		return "", fmt.Errorf("workspace: invalid upload name %q", upload)
	}
	dest := filepath.Join(j.Dir, "input", name)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("workspace: ensure input dir: %w", err)
	}
	if err := fileutil.CopyFileVerified(upload, dest); err != nil {
		return "", fmt.Errorf("workspace: stage %s: %w", upload, err)
	}
	return dest, nil
}

// Path joins elem onto the job directory.
func (j *Job) Path(elem ...string) string {
	return filepath.Join(append([]string{j.Dir}, elem...)...)
}

// Cleanup removes the job directory and everything in it.
func (j *Job) Cleanup() error {
	if j == nil || j.Dir == "" {
		return nil
	}
	if err := os.RemoveAll(j.Dir); err != nil {
		return fmt.Errorf("workspace: remove %s: %w", j.Dir, err)
	}
	return nil
}
