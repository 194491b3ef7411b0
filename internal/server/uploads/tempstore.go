package uploads

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dmitrijs2005/oasis/internal/common"
	"github.com/dmitrijs2005/oasis/internal/filex"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

const (
	// TmpDirName holds one scratch directory per in-flight upload.
	TmpDirName = "tmp"
	// FilesDirName holds combined files.
	FilesDirName = "files"
)

func ioError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, common.ErrIO, err)
}

// TempStore writes slices into per-upload scratch directories.
type TempStore struct {
	fs billy.Filesystem
}

func NewTempStore(fs billy.Filesystem) *TempStore {
	return &TempStore{fs: fs}
}

// Dir is the scratch directory of an upload, relative to the storage root.
func (s *TempStore) Dir(uploadID string) string {
	return filepath.Join(TmpDirName, uploadID)
}

// SlicePath is the file holding slice index of an upload.
func (s *TempStore) SlicePath(uploadID string, index uint64) string {
	return filepath.Join(TmpDirName, uploadID, strconv.FormatUint(index, 10))
}

// CreateDir creates the scratch directory of a new upload.
func (s *TempStore) CreateDir(uploadID string) error {
	if err := filex.EnsureDir(s.fs, s.Dir(uploadID)); err != nil {
		return ioError("create scratch dir", err)
	}
	return nil
}

// HasDir reports whether the scratch directory of uploadID exists.
func (s *TempStore) HasDir(uploadID string) (bool, error) {
	ok, err := filex.IsDir(s.fs, s.Dir(uploadID))
	if err != nil {
		return false, ioError("check scratch dir", err)
	}
	return ok, nil
}

// WriteSlice stores data as slice index of uploadID, replacing any previous
// content of that slice. The scratch directory must already exist.
func (s *TempStore) WriteSlice(data []byte, uploadID string, index uint64) error {
	ok, err := s.HasDir(uploadID)
	if err != nil {
		return err
	}
	if !ok {
		return ioError("write slice", fmt.Errorf("scratch dir missing for upload %s", uploadID))
	}

	f, err := s.fs.OpenFile(s.SlicePath(uploadID, index), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o640)
	if err != nil {
		return ioError("open slice", err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return ioError(fmt.Sprintf("write slice %d", index), err)
	}
	if err := f.Close(); err != nil {
		return ioError(fmt.Sprintf("close slice %d", index), err)
	}
	return nil
}

// OpenSlice opens slice index of uploadID for reading.
func (s *TempStore) OpenSlice(uploadID string, index uint64) (billy.File, error) {
	f, err := s.fs.Open(s.SlicePath(uploadID, index))
	if err != nil {
		return nil, ioError(fmt.Sprintf("open slice %d", index), err)
	}
	return f, nil
}

// RemoveDir deletes the scratch directory tree of uploadID. A missing
// directory is not an error.
func (s *TempStore) RemoveDir(uploadID string) error {
	if err := util.RemoveAll(s.fs, s.Dir(uploadID)); err != nil {
		return ioError("remove scratch dir", err)
	}
	return nil
}

// Purge deletes every scratch directory. The registry lives in memory, so
// after a restart all of them are orphans.
func (s *TempStore) Purge() error {
	if err := util.RemoveAll(s.fs, TmpDirName); err != nil {
		return ioError("purge scratch dirs", err)
	}
	return nil
}
