package workspace

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

// lockDirName is the directory under the state dir that holds output locks.
const lockDirName = "locks"

const lockRetryDelay = 200 * time.Millisecond

// OutputLock holds an exclusive lock on an output directory.
type OutputLock struct {
	lock *flock.Flock
}

// OutputLockPath returns the lock file guarding outputDir. Lock files live in
// stateDir, named by a hash of the resolved output path, so the user's output
// directory only ever receives transcripts. Two spellings of the same
// directory (relative, symlinked) map to the same lock.
func OutputLockPath(stateDir, outputDir string) (string, error) {
	if strings.TrimSpace(stateDir) == "" {
		return "", errors.New("lock output dir: state directory not configured")
	}
	abs, err := filepath.Abs(outputDir)
	if err != nil {
		return "", fmt.Errorf("lock output dir %s: %w", outputDir, err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	sum := sha256.Sum256([]byte(abs))
	return filepath.Join(stateDir, lockDirName, hex.EncodeToString(sum[:8])+".lock"), nil
}

// LockOutputDir blocks until it holds the lock for outputDir or ctx ends.
// Jobs writing the same output directory take this lock around their
// writes so two runs never interleave output.txt and output.srt.
func LockOutputDir(ctx context.Context, stateDir, outputDir string) (*OutputLock, error) {
	path, err := OutputLockPath(stateDir, outputDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("lock output dir %s: %w", outputDir, err)
	}
	lock := flock.New(path)
	ok, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("lock output dir %s: %w", outputDir, err)
	}
	if !ok {
		return nil, fmt.Errorf("lock output dir %s: not acquired", outputDir)
	}
	return &OutputLock{lock: lock}, nil
}

// Unlock releases the lock. The lock file stays in the state directory so a
// waiting process never locks an unlinked inode.
func (l *OutputLock) Unlock() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
