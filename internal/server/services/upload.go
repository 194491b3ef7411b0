package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/oasis/internal/dbx"
	"github.com/dmitrijs2005/oasis/internal/logging"
	"github.com/dmitrijs2005/oasis/internal/server/models"
	"github.com/dmitrijs2005/oasis/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/oasis/internal/server/uploads"
)

// Mirror copies a finished file to secondary storage and returns its key.
type Mirror interface {
	Mirror(ctx context.Context, file *models.FileRecord) (string, error)
}

// FolderOwners answers folder ownership lookups from the files table.
type FolderOwners struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewFolderOwners(db *sql.DB, repomanager repomanager.RepositoryManager) *FolderOwners {
	return &FolderOwners{db: db, repomanager: repomanager}
}

func (f *FolderOwners) FindFolderOwner(ctx context.Context, folderID int64) (int64, error) {
	return f.repomanager.Files(f.db).FindFolderOwner(ctx, folderID)
}

// UploadService runs the begin/slice/finish flow and persists finished
// uploads.
type UploadService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	coordinator *uploads.Coordinator
	mirror      Mirror
	logger      logging.Logger
}

// NewUploadService wires the service. mirror may be nil.
func NewUploadService(db *sql.DB, repomanager repomanager.RepositoryManager, coordinator *uploads.Coordinator, mirror Mirror, l logging.Logger) *UploadService {
	return &UploadService{
		db:          db,
		repomanager: repomanager,
		coordinator: coordinator,
		mirror:      mirror,
		logger:      l.With("module", "upload_service"),
	}
}

// Begin opens an upload and returns its id.
func (s *UploadService) Begin(ctx context.Context, identity models.Identity, req models.BeginRequest) (string, error) {
	task, err := s.coordinator.Begin(ctx, identity, req)
	if err != nil {
		return "", err
	}
	return task.UploadID, nil
}

// PutSlice stores one slice of an upload.
func (s *UploadService) PutSlice(ctx context.Context, identity models.Identity, uploadID string, slice models.SliceRequest) error {
	return s.coordinator.PutSlice(ctx, identity, uploadID, slice)
}

// Finish combines the upload, records it in the files table and, when a
// mirror is configured, copies it to object storage. A mirror failure is
// logged and does not fail the request.
func (s *UploadService) Finish(ctx context.Context, identity models.Identity, uploadID string) (*models.FileRecord, error) {
	var record *models.FileRecord

	_, err := s.coordinator.Finish(ctx, identity, uploadID, func(ctx context.Context, task models.UploadTask) error {
		rec := task.Record()
		rec.CreatedAt = task.UpdatedAt
		err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			_, err := s.repomanager.Files(tx).Insert(ctx, rec)
			return err
		})
		if err != nil {
			return fmt.Errorf("insert file record: %w", err)
		}
		record = rec
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.mirror != nil {
		if key, err := s.mirror.Mirror(ctx, record); err != nil {
			s.logger.Error(ctx, "mirror failed", "file_id", record.ID, "path", record.Path, "error", err)
		} else {
			s.logger.Debug(ctx, "mirror stored", "file_id", record.ID, "key", key)
		}
	}

	return record, nil
}
