package uploads

import (
	"github.com/dmitrijs2005/oasis/internal/cryptox"
	"github.com/dmitrijs2005/oasis/internal/server/models"
)

// ValidateSlice decides whether slice may be appended to task on behalf of
// requesterUID. Checks run in order (ownership, index, fingerprint) and stop
// at the first failure, which is returned as a *Rejection. The task is not
// modified.
func ValidateSlice(slice models.SliceRequest, task *models.UploadTask, requesterUID int64) error {
	if task.OwnerID != requesterUID {
		return reject(ReasonOwnerMismatch)
	}
	if slice.Index != task.CurrentIndex {
		return reject(ReasonIndexConflict)
	}
	if !cryptox.MatchFingerprint(slice.Data, slice.Hash) {
		return reject(ReasonHashMismatch)
	}
	return nil
}
