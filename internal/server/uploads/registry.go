package uploads

import (
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/oasis/internal/common"
	"github.com/dmitrijs2005/oasis/internal/server/models"
	"github.com/google/uuid"
)

type entry struct {
	mu      sync.Mutex
	task    models.UploadTask
	removed bool
}

// Registry tracks in-flight uploads by id.
//
// The map is guarded by an RWMutex; every task has its own mutex, taken by
// update for the whole read-check-write cycle of one request.
type Registry struct {
	mu    sync.RWMutex
	tasks map[string]*entry
	store *TempStore

	now   func() time.Time
	newID func() string
}

func NewRegistry(store *TempStore) *Registry {
	return &Registry{
		tasks: make(map[string]*entry),
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Create registers a new task and creates its scratch directory.
func (r *Registry) Create(filename string, parentID int64, size uint64, ownerID int64) (models.UploadTask, error) {
	if filename == "" || size == 0 {
		return models.UploadTask{}, fmt.Errorf("create upload: empty filename or size: %w", common.ErrorUnauthorized)
	}

	now := r.now()

	r.mu.Lock()
	id := r.newID()
	for r.tasks[id] != nil {
		id = r.newID()
	}
	e := &entry{task: models.UploadTask{
		UploadID:  id,
		Filename:  filename,
		FileType:  models.InferFileType(filename),
		ParentID:  parentID,
		OwnerID:   ownerID,
		Size:      size,
		State:     models.UploadCreated,
		CreatedAt: now,
		UpdatedAt: now,
	}}
	// Hold the task while its directory is created so no request sees it
	// half-built.
	e.mu.Lock()
	r.tasks[id] = e
	r.mu.Unlock()
	defer e.mu.Unlock()

	if err := r.store.CreateDir(id); err != nil {
		e.removed = true
		r.mu.Lock()
		delete(r.tasks, id)
		r.mu.Unlock()
		return models.UploadTask{}, err
	}

	return e.task, nil
}

func (r *Registry) get(id string) (*entry, error) {
	r.mu.RLock()
	e, ok := r.tasks[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("upload %s: %w", id, common.ErrorNotFound)
	}
	return e, nil
}

// Lookup returns a copy of the task registered under id.
func (r *Registry) Lookup(id string) (models.UploadTask, error) {
	var task models.UploadTask
	err := r.update(id, func(t *models.UploadTask) error {
		task = *t
		return nil
	})
	return task, err
}

// Advance moves the task to the next expected slice.
func (r *Registry) Advance(id string) error {
	return r.update(id, func(t *models.UploadTask) error {
		r.advance(t)
		return nil
	})
}

func (r *Registry) advance(t *models.UploadTask) {
	t.CurrentIndex++
	t.State = models.UploadReceiving
	t.UpdatedAt = r.now()
}

// update runs fn with the task locked. Changes fn makes are kept even when
// it returns an error.
func (r *Registry) update(id string, fn func(t *models.UploadTask) error) error {
	e, err := r.get(id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return fmt.Errorf("upload %s: %w", id, common.ErrorNotFound)
	}
	return fn(&e.task)
}

// Remove deregisters id. Removing an unknown id is a no-op.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	e, ok := r.tasks[id]
	delete(r.tasks, id)
	r.mu.Unlock()
	if !ok {
		return
	}

	e.mu.Lock()
	e.removed = true
	e.mu.Unlock()
}

// Len returns the number of registered tasks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}

// evictStale deregisters every idle task last touched before cutoff, except
// tasks being combined or busy with a request, and marks them aborted.
func (r *Registry) evictStale(cutoff time.Time) []models.UploadTask {
	r.mu.Lock()
	defer r.mu.Unlock()

	var evicted []models.UploadTask
	for id, e := range r.tasks {
		if !e.mu.TryLock() {
			continue
		}
		if e.task.State != models.UploadFinishing && e.task.UpdatedAt.Before(cutoff) {
			e.task.State = models.UploadAborted
			e.task.UpdatedAt = r.now()
			e.removed = true
			delete(r.tasks, id)
			evicted = append(evicted, e.task)
		}
		e.mu.Unlock()
	}
	return evicted
}
