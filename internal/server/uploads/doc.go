// Package uploads implements resumable, chunked uploads.
//
// A client opens an upload (Begin), streams ordered slices (PutSlice), and
// asks the server to assemble them (Finish). In-flight uploads live in the
// Registry; their slices live in a per-upload scratch directory
// <root>/tmp/<upload_id>/<index> managed by TempStore. The Combiner appends
// the slices in index order into <root>/files/<name>, picking a name that
// does not collide with existing files, and then drops the scratch
// directory.
//
// Each task has its own lock. A slice is validated, written and counted
// while that lock is held, so at most one slice per upload is in flight and
// slices are accepted strictly in order. Distinct uploads proceed in
// parallel.
//
// Client mistakes (foreign task, wrong index, corrupted slice) are returned
// as *Rejection values matching common.ErrRejected. Anything else is a
// fault: common.ErrIO for filesystem trouble, common.ErrorNotFound for an
// unknown upload id, or whatever an external collaborator returned.
package uploads
