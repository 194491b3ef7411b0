package models

import "time"

// UploadState is the lifecycle position of an upload task.
//
//	Created -> Receiving -> Finishing -> Done
//	                                  -> Failed -> Finishing (retry)
//	Created/Receiving/Failed -> Aborted (stale, evicted by the reaper)
type UploadState string

const (
	UploadCreated   UploadState = "created"
	UploadReceiving UploadState = "receiving"
	UploadFinishing UploadState = "finishing"
	UploadDone      UploadState = "done"
	UploadFailed    UploadState = "failed"
	UploadAborted   UploadState = "aborted"
)

// AcceptsSlices reports whether slices may still be appended.
func (s UploadState) AcceptsSlices() bool {
	return s == UploadCreated || s == UploadReceiving
}

// CanFinish reports whether a finish request may start a combine.
func (s UploadState) CanFinish() bool {
	return s == UploadCreated || s == UploadReceiving || s == UploadFailed
}

// UploadTask tracks one in-flight chunked upload.
type UploadTask struct {
	UploadID     string
	Filename     string
	FileType     FileType
	ParentID     int64
	OwnerID      int64
	Size         uint64
	CurrentIndex uint64
	// Path is the resolved file name under the files directory. Empty
	// until the combine succeeds.
	Path      string
	State     UploadState
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Record converts a combined task into the row handed to persistence.
func (t UploadTask) Record() *FileRecord {
	return &FileRecord{
		Filename: t.Filename,
		FileType: t.FileType,
		Path:     t.Path,
		Size:     t.Size,
		OwnerID:  t.OwnerID,
		ParentID: t.ParentID,
	}
}

// BeginRequest opens an upload.
type BeginRequest struct {
	Filename string `json:"filename"`
	ParentID int64  `json:"parent_id"`
	Size     uint64 `json:"size"`
}

// BeginResponse returns the id the client uses for slices and finish.
type BeginResponse struct {
	UploadID string `json:"upload_id"`
}

// SliceRequest is one ordered chunk of the file. Index and Hash travel as
// query parameters, Data as the raw request body.
type SliceRequest struct {
	Index uint64
	Hash  string
	Data  []byte
}

// FinishRequest asks the server to combine the accepted slices.
type FinishRequest struct {
	UploadID string `json:"upload_id"`
}
