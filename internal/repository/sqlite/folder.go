package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/snipvault/snipvault/internal/apperror"
	"github.com/snipvault/snipvault/internal/model"
	"github.com/snipvault/snipvault/internal/repository"
)

// compile-time check that *DB implements repository.FolderRepository
var _ repository.FolderRepository = (*DB)(nil)

// Folders are strictly single-owner, so every statement in this file is
// scoped by user_id.
func (db *DB) CreateFolder(ctx context.Context, folder *model.Folder) error {
	now := time.Now()
	folder.ID = xid.New().String()
	folder.CreatedAt = now
	folder.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO folders (id, user_id, name, description, color, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		folder.ID,
		folder.UserID,
		folder.Name,
		folder.Description,
		folder.Color,
		folder.CreatedAt,
		folder.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting folder: %w", err)
	}

	return nil
}

func (db *DB) GetFolderByID(ctx context.Context, id, userID string) (*model.Folder, error) {
	var f model.Folder

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, name, description, color, created_at, updated_at
		 FROM folders
		 WHERE id = ? AND user_id = ?`,
		id, userID,
	).Scan(
		&f.ID,
		&f.UserID,
		&f.Name,
		&f.Description,
		&f.Color,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFoundMsg("folder not found or you do not have permission to view it")
		}
		return nil, fmt.Errorf("sqlite: getting folder %s: %w", id, err)
	}

	return &f, nil
}

func (db *DB) ListFoldersByUser(ctx context.Context, userID string) ([]model.Folder, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, name, description, color, created_at, updated_at
		 FROM folders
		 WHERE user_id = ?
		 ORDER BY name ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing folders: %w", err)
	}
	defer rows.Close()

	folders := []model.Folder{}
	for rows.Next() {
		var f model.Folder
		if err := rows.Scan(
			&f.ID, &f.UserID, &f.Name, &f.Description, &f.Color,
			&f.CreatedAt, &f.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning folder row: %w", err)
		}
		folders = append(folders, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating folders: %w", err)
	}

	return folders, nil
}

func (db *DB) UpdateFolder(ctx context.Context, folder *model.Folder) error {
	folder.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE folders
		 SET name = ?, description = ?, color = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		folder.Name,
		folder.Description,
		folder.Color,
		folder.UpdatedAt,
		folder.ID,
		folder.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating folder %s: %w", folder.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFoundMsg("folder not found or you do not have permission to edit it")
	}

	return nil
}

// DeleteFolder detaches the folder's snippets before deleting the folder
// row, all in one transaction. Ordering matters: the reassignment must land
// before the delete so the folder FK on snippets never dangles. If either
// statement fails the deferred rollback leaves folder and snippets exactly
// as they were.
func (db *DB) DeleteFolder(ctx context.Context, id, userID string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE snippets SET folder_id = NULL, updated_at = ?
		 WHERE folder_id = ? AND user_id = ?`,
		time.Now(), id, userID,
	); err != nil {
		return fmt.Errorf("sqlite: detaching snippets from folder %s: %w", id, err)
	}

	result, err := tx.ExecContext(ctx,
		`DELETE FROM folders WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting folder %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		// Rollback also undoes the snippet detachment above.
		return apperror.NotFoundMsg("folder not found or you do not have permission to delete it")
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing folder delete: %w", err)
	}

	return nil
}
