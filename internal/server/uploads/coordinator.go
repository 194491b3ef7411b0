package uploads

import (
	"context"
	"errors"
	"path"
	"time"

	"github.com/dmitrijs2005/oasis/internal/common"
	"github.com/dmitrijs2005/oasis/internal/logging"
	"github.com/dmitrijs2005/oasis/internal/server/models"
)

// CommitFunc persists a combined task. It runs after the combine and
// before the task is deregistered.
type CommitFunc func(ctx context.Context, task models.UploadTask) error

// Coordinator drives uploads through begin, slice and finish.
type Coordinator struct {
	registry *Registry
	store    *TempStore
	combiner *Combiner
	gate     *Gate
	logger   logging.Logger
}

func NewCoordinator(registry *Registry, store *TempStore, combiner *Combiner, gate *Gate, l logging.Logger) *Coordinator {
	return &Coordinator{
		registry: registry,
		store:    store,
		combiner: combiner,
		gate:     gate,
		logger:   l.With("module", "uploads"),
	}
}

func (c *Coordinator) logFailure(ctx context.Context, msg string, err error, args ...any) {
	if reason, ok := RejectionReason(err); ok {
		c.logger.Warn(ctx, msg, append(args, "reason", string(reason))...)
		return
	}
	c.logger.Error(ctx, msg, append(args, "error", err)...)
}

// Begin validates req and registers a new upload owned by identity.
func (c *Coordinator) Begin(ctx context.Context, identity models.Identity, req models.BeginRequest) (models.UploadTask, error) {
	if err := c.gate.ValidateBegin(ctx, identity, req); err != nil {
		c.logFailure(ctx, "begin refused", err, "uid", identity.UID, "filename", req.Filename)
		return models.UploadTask{}, err
	}

	task, err := c.registry.Create(req.Filename, req.ParentID, req.Size, identity.UID)
	if err != nil {
		c.logFailure(ctx, "begin failed", err, "uid", identity.UID, "filename", req.Filename)
		return models.UploadTask{}, err
	}

	c.logger.Info(ctx, "upload started",
		"upload_id", task.UploadID, "uid", identity.UID, "filename", task.Filename, "size", task.Size)
	return task, nil
}

// PutSlice validates slice, stores it and advances the task, all under the
// task lock. A failed write leaves the index unchanged so the client can
// resend the same slice.
func (c *Coordinator) PutSlice(ctx context.Context, identity models.Identity, uploadID string, slice models.SliceRequest) error {
	err := c.registry.update(uploadID, func(t *models.UploadTask) error {
		if err := c.gate.ValidateSlice(identity, t, slice); err != nil {
			return err
		}
		if err := c.store.WriteSlice(slice.Data, t.UploadID, slice.Index); err != nil {
			return err
		}
		c.registry.advance(t)
		return nil
	})
	if err != nil {
		c.logFailure(ctx, "slice refused", err, "upload_id", uploadID, "index", slice.Index)
		return err
	}

	c.logger.Debug(ctx, "slice accepted", "upload_id", uploadID, "index", slice.Index, "bytes", len(slice.Data))
	return nil
}

// Finish combines the accepted slices and hands the result to commit. On
// success the task is deregistered and returned in the Done state. On
// failure it stays registered as Failed and Finish may be called again; a
// retry after a failed commit reuses the already combined file.
func (c *Coordinator) Finish(ctx context.Context, identity models.Identity, uploadID string, commit CommitFunc) (models.UploadTask, error) {
	var task models.UploadTask
	err := c.registry.update(uploadID, func(t *models.UploadTask) error {
		if err := c.gate.ValidateFinish(identity, t); err != nil {
			return err
		}
		t.State = models.UploadFinishing
		t.UpdatedAt = c.registry.now()
		task = *t
		return nil
	})
	if err != nil {
		c.logFailure(ctx, "finish refused", err, "upload_id", uploadID)
		return models.UploadTask{}, err
	}

	if task.Path == "" {
		path, err := c.combiner.Combine(task)
		if err != nil {
			c.fail(ctx, uploadID, err)
			return models.UploadTask{}, err
		}
		task.Path = path
		if err := c.registry.update(uploadID, func(t *models.UploadTask) error {
			t.Path = path
			return nil
		}); err != nil {
			return models.UploadTask{}, err
		}
	}

	if commit != nil {
		if err := commit(ctx, task); err != nil {
			c.fail(ctx, uploadID, err)
			return models.UploadTask{}, err
		}
	}

	c.registry.Remove(uploadID)
	task.State = models.UploadDone
	task.UpdatedAt = c.registry.now()

	c.logger.Info(ctx, "upload finished",
		"upload_id", uploadID, "path", task.Path, "slices", task.CurrentIndex, "size", task.Size)
	return task, nil
}

func (c *Coordinator) fail(ctx context.Context, uploadID string, cause error) {
	c.logFailure(ctx, "finish failed", cause, "upload_id", uploadID)
	err := c.registry.update(uploadID, func(t *models.UploadTask) error {
		t.State = models.UploadFailed
		t.UpdatedAt = c.registry.now()
		return nil
	})
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		c.logger.Error(ctx, "mark upload failed", "upload_id", uploadID, "error", err)
	}
}

// Lookup returns a snapshot of a registered task.
func (c *Coordinator) Lookup(uploadID string) (models.UploadTask, error) {
	return c.registry.Lookup(uploadID)
}

// Reap evicts uploads idle since before now-ttl and deletes their scratch
// directories. It returns the evicted tasks.
func (c *Coordinator) Reap(ctx context.Context, ttl time.Duration) []models.UploadTask {
	evicted := c.registry.evictStale(c.registry.now().Add(-ttl))
	for _, t := range evicted {
		if t.Path != "" {
			// combined but never committed
			c.logger.Warn(ctx, "stale upload left an unrecorded file",
				"upload_id", t.UploadID, "uid", t.OwnerID, "path", path.Join(FilesDirName, t.Path))
		}
		if err := c.store.RemoveDir(t.UploadID); err != nil {
			c.logger.Error(ctx, "remove stale scratch dir", "upload_id", t.UploadID, "error", err)
			continue
		}
		c.logger.Info(ctx, "stale upload aborted",
			"upload_id", t.UploadID, "uid", t.OwnerID, "slices", t.CurrentIndex)
	}
	return evicted
}
