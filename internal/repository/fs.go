package repository

import "github.com/spf13/afero"

// FileSystemRepository is the filesystem generated headers are written to.
// Production uses the OS filesystem; tests swap in afero.NewMemMapFs.

type FileSystemRepository interface {
	afero.Fs
}
