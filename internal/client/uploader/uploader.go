// Package uploader sends a local file to an Oasis server through the
// begin / slice / finish protocol.
package uploader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/oasis/internal/cryptox"
	"github.com/dmitrijs2005/oasis/internal/logging"
	"github.com/dmitrijs2005/oasis/internal/netx"
)

var ErrEmptyFile = errors.New("empty files cannot be uploaded")

type beginRequest struct {
	Filename string `json:"filename"`
	ParentID int64  `json:"parent_id"`
	Size     uint64 `json:"size"`
}

type beginResponse struct {
	UploadID string `json:"upload_id"`
}

type finishRequest struct {
	UploadID string `json:"upload_id"`
}

// FileRecord is the server's description of the stored file.
type FileRecord struct {
	ID       int64  `json:"file_id"`
	Filename string `json:"filename"`
	FileType string `json:"file_type"`
	Path     string `json:"path"`
	Size     uint64 `json:"size"`
	OwnerID  int64  `json:"owner_id"`
	ParentID int64  `json:"parent_id"`

	// Unconfirmed is set when the finish response was lost and the server
	// no longer knew the upload on retry. The file was most likely stored,
	// but ID and Path are unknown.
	Unconfirmed bool `json:"unconfirmed,omitempty"`
}

type Options struct {
	BaseURL    string
	Token      string
	SliceBytes int64
	Retries    int
	RetryDelay time.Duration
	Client     *http.Client
}

type Uploader struct {
	client     *http.Client
	baseURL    string
	token      string
	sliceBytes int64
	retries    int
	retryDelay time.Duration
	logger     logging.Logger
}

func New(opts Options, l logging.Logger) *Uploader {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}
	retries := opts.Retries
	if retries < 1 {
		retries = 1
	}
	sliceBytes := opts.SliceBytes
	if sliceBytes <= 0 {
		sliceBytes = 1 << 20
	}
	return &Uploader{
		client:     client,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		token:      opts.Token,
		sliceBytes: sliceBytes,
		retries:    retries,
		retryDelay: opts.RetryDelay,
		logger:     l.With("module", "uploader"),
	}
}

// UploadFile uploads the file at path into folder parentID under its base
// name.
func (u *Uploader) UploadFile(ctx context.Context, path string, parentID int64) (*FileRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	return u.Upload(ctx, f, filepath.Base(path), uint64(fi.Size()), parentID)
}

// Upload streams size bytes from r as filename into folder parentID.
func (u *Uploader) Upload(ctx context.Context, r io.Reader, filename string, size uint64, parentID int64) (*FileRecord, error) {
	if size == 0 {
		return nil, ErrEmptyFile
	}

	var begun beginResponse
	err := u.retry(ctx, "begin", func(int) error {
		return netx.PostJSON(ctx, u.client, u.baseURL+"/api/upload/before", u.token,
			beginRequest{Filename: filename, ParentID: parentID, Size: size}, &begun)
	})
	if err != nil {
		return nil, fmt.Errorf("begin upload: %w", err)
	}
	u.logger.Info(ctx, "upload started", "upload_id", begun.UploadID, "filename", filename, "size", size)

	buf := make([]byte, u.sliceBytes)
	var index uint64
	for {
		n, readErr := io.ReadFull(r, buf)
		if n > 0 {
			if err := u.sendSlice(ctx, begun.UploadID, index, buf[:n]); err != nil {
				return nil, err
			}
			index++
		}
		if errors.Is(readErr, io.EOF) || errors.Is(readErr, io.ErrUnexpectedEOF) {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("read %s: %w", filename, readErr)
		}
	}

	var record FileRecord
	err = u.retry(ctx, "finish", func(attempt int) error {
		err := netx.PostJSON(ctx, u.client, u.baseURL+"/api/upload/finish", u.token,
			finishRequest{UploadID: begun.UploadID}, &record)
		// a finished upload is deregistered, so a retry of a finish that
		// went through gets 404
		var se *netx.StatusError
		if attempt > 1 && errors.As(err, &se) && se.Code == http.StatusNotFound {
			record = FileRecord{Filename: filename, Size: size, ParentID: parentID, Unconfirmed: true}
			return nil
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("finish upload: %w", err)
	}
	if record.Unconfirmed {
		u.logger.Warn(ctx, "finish response lost, upload presumed stored", "upload_id", begun.UploadID)
		return &record, nil
	}

	u.logger.Info(ctx, "upload finished", "upload_id", begun.UploadID, "path", record.Path, "slices", index)
	return &record, nil
}

func (u *Uploader) sliceURL(uploadID string, index uint64, hash string) string {
	q := url.Values{}
	q.Set("index", fmt.Sprint(index))
	q.Set("hash", hash)
	return u.baseURL + "/api/upload/" + url.PathEscape(uploadID) + "?" + q.Encode()
}

// sendSlice posts one slice. When a retry is answered with an index
// conflict the previous attempt reached the server and was accepted.
func (u *Uploader) sendSlice(ctx context.Context, uploadID string, index uint64, data []byte) error {
	target := u.sliceURL(uploadID, index, cryptox.Fingerprint(data))

	err := u.retry(ctx, "slice", func(attempt int) error {
		err := netx.PostBytes(ctx, u.client, target, u.token, data)
		var se *netx.StatusError
		if attempt > 1 && errors.As(err, &se) && se.Code == http.StatusBadRequest && strings.Contains(se.Body, "index_conflict") {
			return nil
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("slice %d: %w", index, err)
	}

	u.logger.Debug(ctx, "slice sent", "upload_id", uploadID, "index", index, "bytes", len(data))
	return nil
}

func retryable(err error) bool {
	var se *netx.StatusError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// retry runs fn up to u.retries times while it fails with a network error
// or a retryable status. fn gets the 1-based attempt number.
func (u *Uploader) retry(ctx context.Context, op string, fn func(attempt int) error) error {
	var err error
	for attempt := 1; attempt <= u.retries; attempt++ {
		err = fn(attempt)
		if err == nil || !retryable(err) || attempt == u.retries {
			return err
		}

		u.logger.Warn(ctx, "request failed, retrying", "op", op, "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(u.retryDelay):
		}
	}
	return err
}
