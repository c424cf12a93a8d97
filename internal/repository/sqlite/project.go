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

// compile-time check that *DB implements repository.ProjectRepository
var _ repository.ProjectRepository = (*DB)(nil)

// CreateProject inserts the project row and the creator's owner membership
// in a single transaction. A project is never visible without its owner
// membership — the one-owner invariant holds from the first commit.
func (db *DB) CreateProject(ctx context.Context, project *model.Project, ownerID string) error {
	now := time.Now()
	project.ID = xid.New().String()
	project.CreatedAt = now
	project.UpdatedAt = now

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO projects (id, name, description, color, is_public, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		project.ID,
		project.Name,
		project.Description,
		project.Color,
		project.IsPublic,
		project.CreatedAt,
		project.UpdatedAt,
	); err != nil {
		return fmt.Errorf("sqlite: inserting project: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO project_members (project_id, user_id, role, created_at)
		 VALUES (?, ?, ?, ?)`,
		project.ID, ownerID, model.RoleOwner, now,
	); err != nil {
		return fmt.Errorf("sqlite: inserting owner membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing project create: %w", err)
	}

	project.Role = model.RoleOwner
	return nil
}

// ListProjectsForUser returns the projects the user is a member of, with the
// user's own role and the full member list attached.
func (db *DB) ListProjectsForUser(ctx context.Context, userID string) ([]model.Project, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT p.id, p.name, p.description, p.color, p.is_public, p.created_at, p.updated_at, pm.role
		 FROM projects p
		 INNER JOIN project_members pm ON p.id = pm.project_id
		 WHERE pm.user_id = ?
		 ORDER BY p.name ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing projects: %w", err)
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.Color, &p.IsPublic,
			&p.CreatedAt, &p.UpdatedAt, &p.Role,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning project row: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating projects: %w", err)
	}

	for i := range projects {
		members, err := db.ListProjectMembers(ctx, projects[i].ID)
		if err != nil {
			return nil, err
		}
		projects[i].Members = members
	}

	return projects, nil
}

// GetProjectRole looks up the caller's membership row. No row means
// NotFound — deliberately the same answer whether the project is missing or
// the caller simply isn't in it, so probing ids reveals nothing.
func (db *DB) GetProjectRole(ctx context.Context, projectID, userID string) (model.Role, error) {
	var role model.Role
	err := db.conn.QueryRowContext(ctx,
		`SELECT role FROM project_members WHERE project_id = ? AND user_id = ?`,
		projectID, userID,
	).Scan(&role)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", apperror.NotFoundMsg("project not found")
		}
		return "", fmt.Errorf("sqlite: getting project role: %w", err)
	}
	return role, nil
}

func (db *DB) UpdateProject(ctx context.Context, project *model.Project) error {
	project.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE projects
		 SET name = ?, description = ?, color = ?, is_public = ?, updated_at = ?
		 WHERE id = ?`,
		project.Name,
		project.Description,
		project.Color,
		project.IsPublic,
		project.UpdatedAt,
		project.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating project %s: %w", project.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFoundMsg("project not found")
	}

	return nil
}

// DeleteProject runs the full cascade in one transaction, in a fixed order:
// detach snippets (project_id -> NULL, they survive as personal snippets),
// delete memberships (meaningless without the project), delete the project.
// Any failure rolls the whole thing back.
func (db *DB) DeleteProject(ctx context.Context, projectID string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE snippets SET project_id = NULL, updated_at = ? WHERE project_id = ?`,
		time.Now(), projectID,
	); err != nil {
		return fmt.Errorf("sqlite: detaching snippets from project %s: %w", projectID, err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM project_members WHERE project_id = ?`,
		projectID,
	); err != nil {
		return fmt.Errorf("sqlite: deleting memberships for project %s: %w", projectID, err)
	}

	result, err := tx.ExecContext(ctx,
		`DELETE FROM projects WHERE id = ?`,
		projectID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting project %s: %w", projectID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFoundMsg("project not found")
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing project delete: %w", err)
	}

	return nil
}

// AddProjectMember inserts a membership row. The composite primary key
// makes a duplicate membership a constraint violation, which surfaces as a
// domain Conflict.
func (db *DB) AddProjectMember(ctx context.Context, member *model.Member) error {
	member.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO project_members (project_id, user_id, role, created_at)
		 VALUES (?, ?, ?, ?)`,
		member.ProjectID,
		member.UserID,
		member.Role,
		member.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user is already a member of this project")
		}
		if isForeignKeyViolation(err) {
			return apperror.ValidationFailed("projectId", "referenced project or user does not exist")
		}
		return fmt.Errorf("sqlite: inserting membership: %w", err)
	}

	return nil
}

func (db *DB) RemoveProjectMember(ctx context.Context, projectID, userID string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM project_members WHERE project_id = ? AND user_id = ?`,
		projectID, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting membership: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFoundMsg("membership not found")
	}

	return nil
}

func (db *DB) ListProjectMembers(ctx context.Context, projectID string) ([]model.Member, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT pm.project_id, pm.user_id, pm.role, pm.created_at, u.email, u.full_name
		 FROM project_members pm
		 INNER JOIN users u ON pm.user_id = u.id
		 WHERE pm.project_id = ?
		 ORDER BY pm.created_at ASC`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing members: %w", err)
	}
	defer rows.Close()

	members := []model.Member{}
	for rows.Next() {
		var m model.Member
		if err := rows.Scan(
			&m.ProjectID, &m.UserID, &m.Role, &m.CreatedAt, &m.Email, &m.FullName,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning member row: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating members: %w", err)
	}

	return members, nil
}
