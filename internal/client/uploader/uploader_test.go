package uploader

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/oasis/internal/common"
	"github.com/dmitrijs2005/oasis/internal/logging"
	"github.com/dmitrijs2005/oasis/internal/netx"
	"github.com/dmitrijs2005/oasis/internal/server/auth"
	"github.com/dmitrijs2005/oasis/internal/server/models"
	"github.com/dmitrijs2005/oasis/internal/server/rest"
	"github.com/dmitrijs2005/oasis/internal/server/uploads"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "uploader-secret"

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

type owners map[int64]int64

func (o owners) FindFolderOwner(_ context.Context, id int64) (int64, error) {
	uid, ok := o[id]
	if !ok {
		return 0, common.ErrorNotFound
	}
	return uid, nil
}

type coordinatorAPI struct {
	c *uploads.Coordinator
}

func (a coordinatorAPI) Begin(ctx context.Context, id models.Identity, req models.BeginRequest) (string, error) {
	task, err := a.c.Begin(ctx, id, req)
	return task.UploadID, err
}

func (a coordinatorAPI) PutSlice(ctx context.Context, id models.Identity, uploadID string, s models.SliceRequest) error {
	return a.c.PutSlice(ctx, id, uploadID, s)
}

func (a coordinatorAPI) Finish(ctx context.Context, id models.Identity, uploadID string) (*models.FileRecord, error) {
	task, err := a.c.Finish(ctx, id, uploadID, nil)
	if err != nil {
		return nil, err
	}
	return task.Record(), nil
}

func newServer(t *testing.T) (http.Handler, billy.Filesystem, string) {
	t.Helper()
	fs := memfs.New()
	store := uploads.NewTempStore(fs)
	coord := uploads.NewCoordinator(
		uploads.NewRegistry(store),
		store,
		uploads.NewCombiner(fs, store, uploads.DefaultMaxCollisionAttempts),
		uploads.NewGate(owners{5: 1}),
		nopLogger{},
	)
	h := rest.NewServer("", coordinatorAPI{c: coord}, auth.NewValidator(secret), 64, nopLogger{}).Handler()

	tok, err := auth.GenerateToken(models.Identity{UID: 1, Permission: 1}, []byte(secret), time.Hour)
	require.NoError(t, err)
	return h, fs, tok
}

func readAll(t *testing.T, fs billy.Filesystem, path string) string {
	t.Helper()
	f, err := fs.Open(path)
	require.NoError(t, err)
	defer f.Close()
	b, err := io.ReadAll(f)
	require.NoError(t, err)
	return string(b)
}

func TestUploadFile_EndToEnd(t *testing.T) {
	h, fs, tok := newServer(t)
	ts := httptest.NewServer(h)
	defer ts.Close()

	content := strings.Repeat("0123456789", 25) // 250 bytes -> 4 slices of 64
	path := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	u := New(Options{BaseURL: ts.URL + "/", Token: tok, SliceBytes: 64, Client: ts.Client()}, nopLogger{})

	rec, err := u.UploadFile(context.Background(), path, 5)
	require.NoError(t, err)

	assert.Equal(t, "report.pdf", rec.Path)
	assert.Equal(t, "pdf", rec.FileType)
	assert.Equal(t, uint64(250), rec.Size)
	assert.Equal(t, content, readAll(t, fs, "files/report.pdf"))

	// same name again
	rec, err = u.UploadFile(context.Background(), path, 5)
	require.NoError(t, err)
	assert.Equal(t, "report-0.pdf", rec.Path)
}

func TestUpload_ExactMultipleOfSliceSize(t *testing.T) {
	h, fs, tok := newServer(t)
	ts := httptest.NewServer(h)
	defer ts.Close()

	content := strings.Repeat("x", 128)
	u := New(Options{BaseURL: ts.URL, Token: tok, SliceBytes: 64, Client: ts.Client()}, nopLogger{})

	rec, err := u.Upload(context.Background(), strings.NewReader(content), "x.bin", 128, 5)
	require.NoError(t, err)
	assert.Equal(t, content, readAll(t, fs, "files/"+rec.Path))
}

func TestUpload_RetriesServerErrors(t *testing.T) {
	h, fs, tok := newServer(t)

	var slicePosts atomic.Int32
	flaky := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.RawQuery, "index=1") && slicePosts.Add(1) == 1 {
			http.Error(w, "try later", http.StatusServiceUnavailable)
			return
		}
		h.ServeHTTP(w, r)
	})
	ts := httptest.NewServer(flaky)
	defer ts.Close()

	u := New(Options{BaseURL: ts.URL, Token: tok, SliceBytes: 4, Retries: 3, Client: ts.Client()}, nopLogger{})

	rec, err := u.Upload(context.Background(), strings.NewReader("abcdefgh"), "a.txt", 8, 5)
	require.NoError(t, err)
	assert.Equal(t, "abcdefgh", readAll(t, fs, "files/"+rec.Path))
	assert.Equal(t, int32(2), slicePosts.Load())
}

func TestUpload_LostResponseIsNotResent(t *testing.T) {
	h, fs, tok := newServer(t)

	// the first slice is stored but its response is replaced by a 502
	var dropped atomic.Bool
	lossy := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.RawQuery, "index=0") && dropped.CompareAndSwap(false, true) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, r)
			http.Error(w, "bad gateway", http.StatusBadGateway)
			return
		}
		h.ServeHTTP(w, r)
	})
	ts := httptest.NewServer(lossy)
	defer ts.Close()

	u := New(Options{BaseURL: ts.URL, Token: tok, SliceBytes: 4, Retries: 2, Client: ts.Client()}, nopLogger{})

	rec, err := u.Upload(context.Background(), strings.NewReader("abcdefgh"), "a.txt", 8, 5)
	require.NoError(t, err)
	assert.Equal(t, "abcdefgh", readAll(t, fs, "files/"+rec.Path))
}

func TestUpload_RejectionIsNotRetried(t *testing.T) {
	h, _, tok := newServer(t)
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		h.ServeHTTP(w, r)
	}))
	defer ts.Close()

	u := New(Options{BaseURL: ts.URL, Token: tok, Retries: 5, Client: ts.Client()}, nopLogger{})

	// folder 9 does not belong to the caller
	_, err := u.Upload(context.Background(), strings.NewReader("abc"), "a.txt", 3, 9)
	require.Error(t, err)

	var se *netx.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadRequest, se.Code)
	assert.Contains(t, se.Body, "parent_not_owned")
	assert.Equal(t, int32(1), calls.Load())
}

func TestUpload_EmptyFile(t *testing.T) {
	u := New(Options{BaseURL: "http://unused"}, nopLogger{})

	_, err := u.Upload(context.Background(), strings.NewReader(""), "a.txt", 0, 1)
	assert.True(t, errors.Is(err, ErrEmptyFile))
}

func TestRetry_StopsOnCancel(t *testing.T) {
	u := New(Options{Retries: 5, RetryDelay: time.Hour}, nopLogger{})
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := u.retry(ctx, "op", func(int) error {
		calls++
		cancel()
		return &netx.StatusError{Code: http.StatusServiceUnavailable}
	})
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 1, calls)
}

func TestNew_Defaults(t *testing.T) {
	u := New(Options{BaseURL: "http://x/"}, nopLogger{})
	assert.Equal(t, "http://x", u.baseURL)
	assert.Equal(t, 1, u.retries)
	assert.Equal(t, int64(1<<20), u.sliceBytes)
	assert.NotNil(t, u.client)
}

func TestUpload_LostFinishResponse(t *testing.T) {
	h, fs, tok := newServer(t)

	var dropped atomic.Bool
	lossy := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/upload/finish" && dropped.CompareAndSwap(false, true) {
			h.ServeHTTP(httptest.NewRecorder(), r)
			http.Error(w, "bad gateway", http.StatusBadGateway)
			return
		}
		h.ServeHTTP(w, r)
	})
	ts := httptest.NewServer(lossy)
	defer ts.Close()

	u := New(Options{BaseURL: ts.URL, Token: tok, SliceBytes: 4, Retries: 2, Client: ts.Client()}, nopLogger{})

	rec, err := u.Upload(context.Background(), strings.NewReader("abcdefgh"), "a.txt", 8, 5)
	require.NoError(t, err)
	assert.True(t, rec.Unconfirmed)
	assert.Equal(t, "a.txt", rec.Filename)
	assert.Equal(t, uint64(8), rec.Size)
	assert.Equal(t, "abcdefgh", readAll(t, fs, "files/a.txt"))
}

func TestUpload_FinishNotFoundOnFirstAttemptFails(t *testing.T) {
	h, _, tok := newServer(t)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/upload/finish" {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}
		h.ServeHTTP(w, r)
	}))
	defer ts.Close()

	u := New(Options{BaseURL: ts.URL, Token: tok, Retries: 3, Client: ts.Client()}, nopLogger{})

	_, err := u.Upload(context.Background(), strings.NewReader("abc"), "a.txt", 3, 5)
	var se *netx.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Code)
}
