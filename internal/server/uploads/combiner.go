package uploads

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/oasis/internal/filex"
	"github.com/dmitrijs2005/oasis/internal/server/models"
	"github.com/go-git/go-billy/v5"
	"github.com/google/uuid"
)

// Combiner assembles accepted slices into the final file.
type Combiner struct {
	fs          billy.Filesystem
	store       *TempStore
	maxAttempts int
	newSuffix   func() string
}

func NewCombiner(fs billy.Filesystem, store *TempStore, maxAttempts int) *Combiner {
	if maxAttempts < 0 {
		maxAttempts = DefaultMaxCollisionAttempts
	}
	return &Combiner{
		fs:          fs,
		store:       store,
		maxAttempts: maxAttempts,
		newSuffix:   uuid.NewString,
	}
}

// Combine appends slices 0..task.CurrentIndex-1 into a fresh file under the
// files directory and returns its name. On success the scratch directory is
// removed. On failure the partially written destination is left in place
// and the scratch directory is kept.
func (c *Combiner) Combine(task models.UploadTask) (string, error) {
	ok, err := c.store.HasDir(task.UploadID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ioError("combine", fmt.Errorf("scratch dir missing for upload %s", task.UploadID))
	}

	if err := filex.EnsureDir(c.fs, FilesDirName); err != nil {
		return "", ioError("combine", err)
	}

	name, err := UniqueName(c.fs, FilesDirName, task.Filename, c.maxAttempts, c.newSuffix)
	if err != nil {
		return "", err
	}

	dst, err := c.fs.OpenFile(filepath.Join(FilesDirName, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return "", ioError("create destination", err)
	}

	if err := c.appendSlices(dst, task); err != nil {
		_ = dst.Close()
		return "", err
	}

	if _, err := filex.Sync(dst); err != nil {
		_ = dst.Close()
		return "", ioError("flush destination", err)
	}
	if err := dst.Close(); err != nil {
		return "", ioError("close destination", err)
	}

	if err := c.store.RemoveDir(task.UploadID); err != nil {
		return "", err
	}

	return name, nil
}

func (c *Combiner) appendSlices(dst io.Writer, task models.UploadTask) error {
	for i := uint64(0); i < task.CurrentIndex; i++ {
		src, err := c.store.OpenSlice(task.UploadID, i)
		if err != nil {
			return err
		}
		_, err = io.Copy(dst, src)
		_ = src.Close()
		if err != nil {
			return ioError(fmt.Sprintf("append slice %d", i), err)
		}
	}
	return nil
}
