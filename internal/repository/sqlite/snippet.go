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

// compile-time check that *DB implements repository.SnippetRepository
var _ repository.SnippetRepository = (*DB)(nil)

const snippetColumns = `
	s.id, s.user_id, s.title, s.description, s.code,
	COALESCE(s.language_id, ''), COALESCE(s.folder_id, ''), COALESCE(s.project_id, ''),
	s.is_favorite, s.is_public, s.created_at, s.updated_at,
	COALESCE(l.name, ''), COALESCE(l.slug, ''), COALESCE(f.name, ''), COALESCE(p.name, '')`

const snippetJoins = `
	FROM snippets s
	LEFT JOIN languages l ON s.language_id = l.id
	LEFT JOIN folders f ON s.folder_id = f.id
	LEFT JOIN projects p ON s.project_id = p.id`

// CreateSnippet inserts the snippet and its tag set in one transaction. When
// the snippet targets a project the creator's membership is checked first,
// inside the same transaction, so a concurrent removal can't slip a snippet
// into a project the user just left.
func (db *DB) CreateSnippet(ctx context.Context, snippet *model.Snippet, tags []string) error {
	now := time.Now()
	snippet.ID = xid.New().String()
	snippet.CreatedAt = now
	snippet.UpdatedAt = now

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if snippet.ProjectID != "" {
		var role model.Role
		err := tx.QueryRowContext(ctx,
			`SELECT role FROM project_members WHERE project_id = ? AND user_id = ?`,
			snippet.ProjectID, snippet.UserID,
		).Scan(&role)
		if err == sql.ErrNoRows {
			return apperror.Forbidden("you are not a member of this project")
		}
		if err != nil {
			return fmt.Errorf("sqlite: checking project membership: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snippets (id, user_id, title, description, code, language_id, folder_id, project_id, is_favorite, is_public, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snippet.ID,
		snippet.UserID,
		snippet.Title,
		snippet.Description,
		snippet.Code,
		nullable(snippet.LanguageID),
		nullable(snippet.FolderID),
		nullable(snippet.ProjectID),
		snippet.IsFavorite,
		snippet.IsPublic,
		snippet.CreatedAt,
		snippet.UpdatedAt,
	); err != nil {
		if isForeignKeyViolation(err) {
			return apperror.ValidationFailed("languageId", "referenced language, folder, or project does not exist")
		}
		return fmt.Errorf("sqlite: inserting snippet: %w", err)
	}

	if err := syncTags(ctx, tx, snippet.ID, tags); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing snippet create: %w", err)
	}

	snippet.Tags = tags
	return nil
}

// UpdateSnippet rewrites every scalar field, both association fields, and the
// full tag set in one transaction. The permission check runs against the
// stored row, not the payload: the snippet owner may always edit, and on
// project snippets so may the project's owner or an admin.
func (db *DB) UpdateSnippet(ctx context.Context, actorID string, snippet *model.Snippet, tags []string) error {
	snippet.UpdatedAt = time.Now()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := authorizeSnippetWrite(ctx, tx, snippet.ID, actorID); err != nil {
		return err
	}

	// Moving a snippet into a project requires membership in the target
	// project, checked in the same transaction.
	if snippet.ProjectID != "" {
		var role model.Role
		err := tx.QueryRowContext(ctx,
			`SELECT role FROM project_members WHERE project_id = ? AND user_id = ?`,
			snippet.ProjectID, actorID,
		).Scan(&role)
		if err == sql.ErrNoRows {
			return apperror.Forbidden("you are not a member of this project")
		}
		if err != nil {
			return fmt.Errorf("sqlite: checking project membership: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE snippets
		 SET title = ?, description = ?, code = ?, language_id = ?, folder_id = ?, project_id = ?,
		     is_favorite = ?, is_public = ?, updated_at = ?
		 WHERE id = ?`,
		snippet.Title,
		snippet.Description,
		snippet.Code,
		nullable(snippet.LanguageID),
		nullable(snippet.FolderID),
		nullable(snippet.ProjectID),
		snippet.IsFavorite,
		snippet.IsPublic,
		snippet.UpdatedAt,
		snippet.ID,
	); err != nil {
		if isForeignKeyViolation(err) {
			return apperror.ValidationFailed("languageId", "referenced language, folder, or project does not exist")
		}
		return fmt.Errorf("sqlite: updating snippet %s: %w", snippet.ID, err)
	}

	if err := syncTags(ctx, tx, snippet.ID, tags); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing snippet update: %w", err)
	}

	snippet.Tags = tags
	return nil
}

// GetSnippetByID applies the visibility rule: a snippet is readable when it
// is public, owned by the caller, or in a project the caller belongs to.
// Anything else is NotFound.
func (db *DB) GetSnippetByID(ctx context.Context, id, userID string) (*model.Snippet, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+snippetColumns+snippetJoins+`
		 WHERE s.id = ?
		   AND (s.is_public = 1
		        OR s.user_id = ?
		        OR EXISTS (SELECT 1 FROM project_members pm
		                   WHERE pm.project_id = s.project_id AND pm.user_id = ?))`,
		id, userID, userID,
	)

	s, err := scanSnippet(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFoundMsg("snippet not found")
		}
		return nil, fmt.Errorf("sqlite: getting snippet %s: %w", id, err)
	}

	if err := db.loadTags(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// ListSnippets returns the union of the user's own snippets and snippets in
// projects the user belongs to, narrowed by the filter.
func (db *DB) ListSnippets(ctx context.Context, userID string, filter repository.SnippetFilter) ([]model.Snippet, error) {
	query := `SELECT ` + snippetColumns + snippetJoins + `
		 WHERE (s.user_id = ?
		        OR EXISTS (SELECT 1 FROM project_members pm
		                   WHERE pm.project_id = s.project_id AND pm.user_id = ?))`
	args := []any{userID, userID}

	if filter.Search != "" {
		query += ` AND (s.title LIKE ? OR s.description LIKE ?)`
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}
	if filter.LanguageSlug != "" {
		query += ` AND l.slug = ?`
		args = append(args, filter.LanguageSlug)
	}
	if filter.FolderID != "" {
		query += ` AND s.folder_id = ?`
		args = append(args, filter.FolderID)
	}
	if filter.ProjectID != "" {
		query += ` AND s.project_id = ?`
		args = append(args, filter.ProjectID)
	}
	if filter.FavoriteOnly {
		query += ` AND s.is_favorite = 1 AND s.user_id = ?`
		args = append(args, userID)
	}

	// Sort column comes from a fixed whitelist, never from the request
	// string directly.
	switch filter.Sort {
	case "created_at":
		query += ` ORDER BY s.created_at DESC`
	case "title":
		query += ` ORDER BY s.title COLLATE NOCASE ASC`
	default:
		query += ` ORDER BY s.updated_at DESC`
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing snippets: %w", err)
	}
	defer rows.Close()

	snippets := []model.Snippet{}
	for rows.Next() {
		s, err := scanSnippet(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning snippet row: %w", err)
		}
		snippets = append(snippets, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating snippets: %w", err)
	}

	for i := range snippets {
		if err := db.loadTags(ctx, &snippets[i]); err != nil {
			return nil, err
		}
	}

	return snippets, nil
}

// DeleteSnippet removes the snippet and its tags after re-checking the write
// permission inside the transaction.
func (db *DB) DeleteSnippet(ctx context.Context, id, actorID string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := authorizeSnippetWrite(ctx, tx, id, actorID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM snippet_tags WHERE snippet_id = ?`, id,
	); err != nil {
		return fmt.Errorf("sqlite: deleting tags for snippet %s: %w", id, err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM snippets WHERE id = ?`, id,
	); err != nil {
		return fmt.Errorf("sqlite: deleting snippet %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing snippet delete: %w", err)
	}

	return nil
}

// DetachSnippetFromFolder nulls folder_id on a snippet the user owns. The
// single scoped UPDATE is the ownership check.
func (db *DB) DetachSnippetFromFolder(ctx context.Context, id, userID string) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE snippets SET folder_id = NULL, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		time.Now(), id, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: detaching snippet %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFoundMsg("snippet not found")
	}

	return nil
}

// authorizeSnippetWrite decides whether the actor may modify the stored
// snippet: the owner always may, and on project snippets so may members with
// owner or admin rank. Non-members get NotFound — the same answer as a
// missing snippet — while members without rank get Forbidden.
func authorizeSnippetWrite(ctx context.Context, tx *sql.Tx, snippetID, actorID string) error {
	var ownerID, projectID string
	var role model.Role
	err := tx.QueryRowContext(ctx,
		`SELECT s.user_id, COALESCE(s.project_id, ''), COALESCE(pm.role, '')
		 FROM snippets s
		 LEFT JOIN project_members pm ON pm.project_id = s.project_id AND pm.user_id = ?
		 WHERE s.id = ?`,
		actorID, snippetID,
	).Scan(&ownerID, &projectID, &role)
	if err != nil {
		if err == sql.ErrNoRows {
			return apperror.NotFoundMsg("snippet not found")
		}
		return fmt.Errorf("sqlite: loading snippet %s for authorization: %w", snippetID, err)
	}

	if ownerID == actorID {
		return nil
	}
	if projectID != "" && role != "" {
		if role.CanManageSnippets() {
			return nil
		}
		return apperror.Forbidden("only the snippet owner or a project owner or admin can modify this snippet")
	}
	return apperror.NotFoundMsg("snippet not found")
}

// syncTags replaces the snippet's tag set: delete everything, insert the new
// set. Dumb and idempotent — retrying a failed sync converges on the same
// rows, and the composite primary key can't be violated by the fresh insert.
func syncTags(ctx context.Context, tx *sql.Tx, snippetID string, tags []string) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM snippet_tags WHERE snippet_id = ?`, snippetID,
	); err != nil {
		return fmt.Errorf("sqlite: clearing tags for snippet %s: %w", snippetID, err)
	}

	for _, tag := range tags {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO snippet_tags (snippet_id, tag) VALUES (?, ?)`,
			snippetID, tag,
		); err != nil {
			return fmt.Errorf("sqlite: inserting tag %q for snippet %s: %w", tag, snippetID, err)
		}
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnippet(row rowScanner) (*model.Snippet, error) {
	var s model.Snippet
	err := row.Scan(
		&s.ID, &s.UserID, &s.Title, &s.Description, &s.Code,
		&s.LanguageID, &s.FolderID, &s.ProjectID,
		&s.IsFavorite, &s.IsPublic, &s.CreatedAt, &s.UpdatedAt,
		&s.LanguageName, &s.LanguageSlug, &s.FolderName, &s.ProjectName,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (db *DB) loadTags(ctx context.Context, s *model.Snippet) error {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT tag FROM snippet_tags WHERE snippet_id = ? ORDER BY tag ASC`,
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: loading tags for snippet %s: %w", s.ID, err)
	}
	defer rows.Close()

	tags := []string{}
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return fmt.Errorf("sqlite: scanning tag row: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("sqlite: iterating tags: %w", err)
	}

	s.Tags = tags
	return nil
}
