// Package filex holds go-billy helpers shared by the upload pipeline.
package filex

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// Open returns a billy filesystem bound to root, creating root if missing.
// Paths passed to the returned filesystem are relative to root and cannot
// escape it.
func Open(root string) (billy.Filesystem, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", root, err)
	}
	return osfs.New(root, osfs.WithBoundOS()), nil
}

// Exists reports whether path exists. Stat errors other than "not exist"
// are returned as-is.
func Exists(fs billy.Basic, path string) (bool, error) {
	_, err := fs.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
}

// IsDir reports whether path exists and is a directory.
func IsDir(fs billy.Basic, path string) (bool, error) {
	fi, err := fs.Stat(path)
	switch {
	case err == nil:
		return fi.IsDir(), nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
}

// EnsureDir creates dir and any missing parents.
func EnsureDir(fs billy.Dir, dir string) error {
	if err := fs.MkdirAll(dir, 0o770); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

// Syncer is implemented by billy files backed by *os.File.
type Syncer interface {
	Sync() error
}

// Sync flushes f to stable storage when the backing file supports it.
// In-memory files report false and no error.
func Sync(f billy.File) (bool, error) {
	s, ok := f.(Syncer)
	if !ok {
		return false, nil
	}
	if err := s.Sync(); err != nil {
		return true, fmt.Errorf("sync %s: %w", f.Name(), err)
	}
	return true, nil
}
