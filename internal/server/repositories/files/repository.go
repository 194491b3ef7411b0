package files

import (
	"context"

	"github.com/dmitrijs2005/oasis/internal/server/models"
)

// Repository persists finished uploads and answers folder ownership lookups.
type Repository interface {
	Insert(ctx context.Context, file *models.FileRecord) (int64, error)
	FindFolderOwner(ctx context.Context, folderID int64) (int64, error)
}
