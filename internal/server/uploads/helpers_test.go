package uploads

import (
	"context"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/oasis/internal/common"
	"github.com/dmitrijs2005/oasis/internal/cryptox"
	"github.com/dmitrijs2005/oasis/internal/logging"
	"github.com/dmitrijs2005/oasis/internal/server/models"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

type logEntry struct {
	level string
	msg   string
	args  []any
}

// recordingLogger keeps Warn and Error calls.
type recordingLogger struct {
	nopLogger
	mu      sync.Mutex
	entries []logEntry
}

func (r *recordingLogger) Warn(_ context.Context, msg string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, logEntry{level: "warn", msg: msg, args: args})
}

func (r *recordingLogger) Error(_ context.Context, msg string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, logEntry{level: "error", msg: msg, args: args})
}

func (r *recordingLogger) With(...any) logging.Logger { return r }

func (r *recordingLogger) find(msg string) (logEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.msg == msg {
			return e, true
		}
	}
	return logEntry{}, false
}

// fakeOwners maps folder id -> owner uid.
type fakeOwners struct {
	owners map[int64]int64
	err    error
}

func (f fakeOwners) FindFolderOwner(_ context.Context, folderID int64) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	owner, ok := f.owners[folderID]
	if !ok {
		return 0, common.ErrorNotFound
	}
	return owner, nil
}

var (
	alice = models.Identity{UID: 1, Permission: 1}
	bob   = models.Identity{UID: 2, Permission: 1}
)

type harness struct {
	fs       billy.Filesystem
	store    *TempStore
	registry *Registry
	combiner *Combiner
	coord    *Coordinator
	clock    *fakeClock
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newHarness(t *testing.T) *harness {
	t.Helper()

	fs := memfs.New()
	store := NewTempStore(fs)
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	registry := NewRegistry(store)
	registry.now = clock.Now
	combiner := NewCombiner(fs, store, DefaultMaxCollisionAttempts)
	gate := NewGate(fakeOwners{owners: map[int64]int64{10: alice.UID, 20: bob.UID}})

	return &harness{
		fs:       fs,
		store:    store,
		registry: registry,
		combiner: combiner,
		coord:    NewCoordinator(registry, store, combiner, gate, nopLogger{}),
		clock:    clock,
	}
}

func slice(index uint64, data string) models.SliceRequest {
	return models.SliceRequest{
		Index: index,
		Hash:  cryptox.Fingerprint([]byte(data)),
		Data:  []byte(data),
	}
}

func readFile(t *testing.T, fs billy.Filesystem, path string) string {
	t.Helper()
	f, err := fs.Open(path)
	require.NoError(t, err)
	defer f.Close()
	b, err := io.ReadAll(f)
	require.NoError(t, err)
	return string(b)
}

func filesPath(name string) string {
	return filepath.Join(FilesDirName, name)
}
