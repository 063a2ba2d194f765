package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/sethvargo/go-retry"
	"github.com/spf13/afero"
)

const (
	// HeaderFilePermissions defines the permissions for generated headers
	HeaderFilePermissions = 0644
	// LockTimeout defines the default maximum time to wait for a lock
	LockTimeout = 30 * time.Second
	// LockRetryInterval defines the interval between lock retry attempts
	LockRetryInterval = 100 * time.Millisecond
)

// ErrLockTimeout is returned when the header lock stays busy past the timeout.
var ErrLockTimeout = errors.New("could not acquire lock within timeout")

var errLockBusy = errors.New("lock is held by another process")

// HeaderRepository defines the interface for persisting generated headers.
type HeaderRepository interface {
	// Write creates or fully replaces the file at path.
	Write(ctx context.Context, path string, data []byte) error
}

// FileHeaderRepository writes headers through an afero filesystem.
type FileHeaderRepository struct {
	fs          afero.Fs
	lockDir     string
	lockTimeout time.Duration
}

// HeaderOption configures a FileHeaderRepository.
type HeaderOption func(*FileHeaderRepository)

// WithLockDir serializes writers through lock files in dir. An empty dir
// disables locking, which is what in-memory filesystems want.
func WithLockDir(dir string) HeaderOption {
	return func(r *FileHeaderRepository) {
		r.lockDir = dir
	}
}

// WithLockTimeout bounds how long Write waits for the lock.
func WithLockTimeout(timeout time.Duration) HeaderOption {
	return func(r *FileHeaderRepository) {
		r.lockTimeout = timeout
	}
}

// NewFileHeaderRepository creates a new header repository on fs.
func NewFileHeaderRepository(fs afero.Fs, opts ...HeaderOption) *FileHeaderRepository {
	r := &FileHeaderRepository{
		fs:          fs,
		lockTimeout: LockTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Write stores data at path, truncating any previous content. The target is
// opened in place while the lock is held, so its permissions are honored.
func (r *FileHeaderRepository) Write(ctx context.Context, path string, data []byte) error {
	if r.lockDir != "" {
		lock := flock.New(r.getLockFilename(path))
		if err := r.acquireLock(ctx, lock); err != nil {
			return fmt.Errorf("failed to acquire lock for %s: %w", path, err)
		}
		defer func() {
			if unlockErr := lock.Unlock(); unlockErr != nil {
				// Log error but don't fail the operation
				fmt.Fprintf(os.Stderr, "warning: failed to unlock file: %v\n", unlockErr)
			}
		}()
	}
	return r.writeFile(path, data)
}

// writeFile opens name for writing and closes it on every path.
func (r *FileHeaderRepository) writeFile(name string, data []byte) (err error) {
	f, err := r.fs.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, HeaderFilePermissions)
	if err != nil {
		return fmt.Errorf("failed to open header file for writing: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close header file: %w", closeErr)
		}
	}()
	if _, err = f.Write(data); err != nil {
		return fmt.Errorf("failed to write header file: %w", err)
	}
	return nil
}

// acquireLock polls for an exclusive lock until it is free or the timeout passes.
func (r *FileHeaderRepository) acquireLock(ctx context.Context, lock *flock.Flock) error {
	backoff := retry.WithMaxDuration(r.lockTimeout, retry.NewConstant(LockRetryInterval))
	err := retry.Do(ctx, backoff, func(_ context.Context) error {
		locked, err := lock.TryLock()
		if err != nil {
			return err
		}
		if !locked {
			return retry.RetryableError(errLockBusy)
		}
		return nil
	})
	if errors.Is(err, errLockBusy) {
		return ErrLockTimeout
	}
	return err
}

// getLockFilename maps a header path to a stable lock file name.
func (r *FileHeaderRepository) getLockFilename(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	sum := sha256.Sum256([]byte(abs))
	return filepath.Join(r.lockDir, "git-version-header-"+hex.EncodeToString(sum[:8])+".lock")
}
