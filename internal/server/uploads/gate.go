package uploads

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/oasis/internal/common"
	"github.com/dmitrijs2005/oasis/internal/server/models"
)

// FolderOwnerFinder resolves the owner of a folder.
type FolderOwnerFinder interface {
	FindFolderOwner(ctx context.Context, folderID int64) (int64, error)
}

// Gate runs the per-request checks in front of the coordinator.
type Gate struct {
	owners FolderOwnerFinder
}

func NewGate(owners FolderOwnerFinder) *Gate {
	return &Gate{owners: owners}
}

func validFilename(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\\\x00")
}

// ValidateBegin checks that identity may open an upload of req. A folder
// that does not exist is treated as not owned; other lookup errors are
// returned unchanged.
func (g *Gate) ValidateBegin(ctx context.Context, identity models.Identity, req models.BeginRequest) error {
	if !identity.CanWrite() {
		return reject(ReasonNoPermission)
	}
	if req.Filename == "" {
		return reject(ReasonEmptyFilename)
	}
	if !validFilename(req.Filename) {
		return reject(ReasonBadFilename)
	}
	if req.Size == 0 {
		return reject(ReasonEmptySize)
	}

	owner, err := g.owners.FindFolderOwner(ctx, req.ParentID)
	if errors.Is(err, common.ErrorNotFound) {
		return reject(ReasonParentNotOwned)
	}
	if err != nil {
		return fmt.Errorf("find owner of folder %d: %w", req.ParentID, err)
	}
	if owner != identity.UID {
		return reject(ReasonParentNotOwned)
	}
	return nil
}

// ValidateSlice checks permission and the task state, then defers to the
// package-level ValidateSlice. Ownership is re-checked on every slice.
func (g *Gate) ValidateSlice(identity models.Identity, task *models.UploadTask, slice models.SliceRequest) error {
	if !identity.CanWrite() {
		return reject(ReasonNoPermission)
	}
	if task.OwnerID != identity.UID {
		return reject(ReasonOwnerMismatch)
	}
	if !task.State.AcceptsSlices() {
		return reject(ReasonNotReceiving)
	}
	return ValidateSlice(slice, task, identity.UID)
}

// ValidateFinish checks that identity may finish task in its current state.
func (g *Gate) ValidateFinish(identity models.Identity, task *models.UploadTask) error {
	if !identity.CanWrite() {
		return reject(ReasonNoPermission)
	}
	if task.OwnerID != identity.UID {
		return reject(ReasonOwnerMismatch)
	}
	if !task.State.CanFinish() {
		return reject(ReasonNotFinishable)
	}
	return nil
}
