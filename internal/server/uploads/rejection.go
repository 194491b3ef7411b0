package uploads

import (
	"errors"

	"github.com/dmitrijs2005/oasis/internal/common"
)

// Reason names why a request was rejected.
type Reason string

const (
	ReasonNoPermission   Reason = "no_permission"
	ReasonEmptyFilename  Reason = "empty_filename"
	ReasonBadFilename    Reason = "bad_filename"
	ReasonEmptySize      Reason = "empty_size"
	ReasonParentNotOwned Reason = "parent_not_owned"
	ReasonOwnerMismatch  Reason = "owner_mismatch"
	ReasonIndexConflict  Reason = "index_conflict"
	ReasonHashMismatch   Reason = "hash_mismatch"
	ReasonNotReceiving   Reason = "not_receiving"
	ReasonNotFinishable  Reason = "not_finishable"
)

// Rejection is a client-facing refusal. It is never retried by the server.
type Rejection struct {
	Reason Reason
}

func reject(reason Reason) error {
	return &Rejection{Reason: reason}
}

func (r *Rejection) Error() string {
	return "upload rejected: " + string(r.Reason)
}

func (r *Rejection) Is(target error) bool {
	return target == common.ErrRejected
}

// RejectionReason extracts the reason from err when it is a rejection.
func RejectionReason(err error) (Reason, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r.Reason, true
	}
	return "", false
}
