// Package files implements the files table repository over dbx.DBTX for both
// Postgres and SQLite.
package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/dmitrijs2005/oasis/internal/common"
	"github.com/dmitrijs2005/oasis/internal/dbx"
	"github.com/dmitrijs2005/oasis/internal/server/models"
)

const filesTable = "files"

// SQLRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

// NewSQLRepository constructs a repository bound to the given DBTX.
func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

// Insert stores a finished upload and returns the new file_id.
func (r *SQLRepository) Insert(ctx context.Context, file *models.FileRecord) (int64, error) {
	if file.Size > uint64(1<<63-1) {
		return 0, fmt.Errorf("file size %d overflows bigint", file.Size)
	}

	query, args, err := r.dialect.Builder().
		Insert(filesTable).
		Columns("filename", "file_type", "path", "size", "owner_id", "parent_id").
		Values(file.Filename, string(file.FileType), file.Path, int64(file.Size), file.OwnerID, file.ParentID).
		Suffix("RETURNING file_id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert: %w", err)
	}

	var id int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to insert file: %w", err)
	}

	file.ID = id
	return id, nil
}

// FindFolderOwner returns owner_id of the folder row folderID.
// common.ErrorNotFound is returned when no such folder exists.
func (r *SQLRepository) FindFolderOwner(ctx context.Context, folderID int64) (int64, error) {
	query, args, err := r.dialect.Builder().
		Select("owner_id").
		From(filesTable).
		Where(sq.Eq{"file_id": folderID}).
		Where(sq.Eq{"file_type": string(models.FileTypeDir)}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build select: %w", err)
	}

	var owner int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&owner); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrorNotFound
		}
		return 0, fmt.Errorf("failed to select folder owner: %w", err)
	}
	return owner, nil
}
