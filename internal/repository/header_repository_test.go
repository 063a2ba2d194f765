package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileHeaderRepository_Write(t *testing.T) {
	t.Run("Should create the header file", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, fs.MkdirAll("include", 0755))
		repo := NewFileHeaderRepository(fs)
		err := repo.Write(context.Background(), "include/version.h", []byte("#define A 1\n"))
		require.NoError(t, err)
		data, err := afero.ReadFile(fs, "include/version.h")
		require.NoError(t, err)
		assert.Equal(t, "#define A 1\n", string(data))
	})
	t.Run("Should fully overwrite an existing file", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "version.h", []byte("a much longer previous header body\n"), 0644))
		repo := NewFileHeaderRepository(fs)
		require.NoError(t, repo.Write(context.Background(), "version.h", []byte("short\n")))
		data, err := afero.ReadFile(fs, "version.h")
		require.NoError(t, err)
		assert.Equal(t, "short\n", string(data))
	})
	t.Run("Should leave only the header in the directory", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, fs.MkdirAll("out", 0755))
		repo := NewFileHeaderRepository(fs)
		require.NoError(t, repo.Write(context.Background(), "out/version.h", []byte("x")))
		entries, err := afero.ReadDir(fs, "out")
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "version.h", entries[0].Name())
	})
	t.Run("Should fail when the directory is missing", func(t *testing.T) {
		fs := afero.NewOsFs()
		path := filepath.Join(t.TempDir(), "missing", "version.h")
		repo := NewFileHeaderRepository(fs)
		err := repo.Write(context.Background(), path, []byte("x"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to open header file")
		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr))
	})
	t.Run("Should fail on a read-only filesystem and keep the header", func(t *testing.T) {
		base := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(base, "version.h", []byte("old\n"), 0644))
		repo := NewFileHeaderRepository(afero.NewReadOnlyFs(base))
		err := repo.Write(context.Background(), "version.h", []byte("new\n"))
		require.Error(t, err)
		data, err := afero.ReadFile(base, "version.h")
		require.NoError(t, err)
		assert.Equal(t, "old\n", string(data))
	})
	t.Run("Should refuse to replace a read-only header", func(t *testing.T) {
		if os.Geteuid() == 0 {
			t.Skip("file permissions are not enforced for root")
		}
		path := filepath.Join(t.TempDir(), "version.h")
		require.NoError(t, os.WriteFile(path, []byte("old\n"), 0644))
		require.NoError(t, os.Chmod(path, 0444))
		repo := NewFileHeaderRepository(afero.NewOsFs(), WithLockDir(t.TempDir()))
		err := repo.Write(context.Background(), path, []byte("new\n"))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrPermission)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "old\n", string(data))
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0444), info.Mode().Perm())
	})
	t.Run("Should update a writable header in a read-only directory", func(t *testing.T) {
		if os.Geteuid() == 0 {
			t.Skip("file permissions are not enforced for root")
		}
		dir := t.TempDir()
		path := filepath.Join(dir, "version.h")
		require.NoError(t, os.WriteFile(path, []byte("old\n"), 0644))
		require.NoError(t, os.Chmod(dir, 0555))
		t.Cleanup(func() { _ = os.Chmod(dir, 0755) })
		repo := NewFileHeaderRepository(afero.NewOsFs(), WithLockDir(t.TempDir()))
		require.NoError(t, repo.Write(context.Background(), path, []byte("new\n")))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "new\n", string(data))
	})
	t.Run("Should write through the lock on disk", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "version.h")
		repo := NewFileHeaderRepository(afero.NewOsFs(), WithLockDir(t.TempDir()))
		require.NoError(t, repo.Write(context.Background(), path, []byte("locked\n")))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "locked\n", string(data))
	})
	t.Run("Should time out when another writer holds the lock", func(t *testing.T) {
		lockDir := t.TempDir()
		path := filepath.Join(t.TempDir(), "version.h")
		repo := NewFileHeaderRepository(
			afero.NewOsFs(),
			WithLockDir(lockDir),
			WithLockTimeout(250*time.Millisecond),
		)
		held := flock.New(repo.getLockFilename(path))
		locked, err := held.TryLock()
		require.NoError(t, err)
		require.True(t, locked)
		t.Cleanup(func() { _ = held.Unlock() })
		err = repo.Write(context.Background(), path, []byte("x"))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrLockTimeout)
		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr))
	})
}

func TestFileHeaderRepository_getLockFilename(t *testing.T) {
	t.Run("Should be stable for the same path", func(t *testing.T) {
		repo := NewFileHeaderRepository(afero.NewMemMapFs(), WithLockDir("/locks"))
		assert.Equal(t, repo.getLockFilename("a/version.h"), repo.getLockFilename("a/version.h"))
		assert.NotEqual(t, repo.getLockFilename("a/version.h"), repo.getLockFilename("b/version.h"))
		assert.Equal(t, "/locks", filepath.Dir(repo.getLockFilename("a/version.h")))
	})
}
