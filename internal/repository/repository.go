// Package repository declares the storage ports the service layer depends
// on. The sqlite sub-package is the only implementation; tests inject an
// in-memory instance of it.
//
// Multi-statement operations (project create, folder/project delete, snippet
// create/update/delete) are single methods here so each implementation can
// wrap them in one transaction — callers never see a half-applied write.
package repository

import (
	"context"

	"github.com/snipvault/snipvault/internal/model"
)

// SnippetFilter narrows ListSnippets results. Zero values mean "no filter".
type SnippetFilter struct {
	Search       string // substring match on title/description
	LanguageSlug string
	FolderID     string
	ProjectID    string
	FavoriteOnly bool
	Sort         string // updated_at (default), created_at, or title
}

type UserRepository interface {
	// CreateUser inserts a new user. Returns a Conflict error when the
	// email is already registered (case-insensitive).
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// UpsertGitHubUser inserts or updates a user keyed by GitHub ID,
	// preserving the internal ID across logins.
	UpsertGitHubUser(ctx context.Context, user *model.User) error
}

type FolderRepository interface {
	CreateFolder(ctx context.Context, folder *model.Folder) error
	// GetFolderByID is scoped to the owner: other users get NotFound,
	// never a row.
	GetFolderByID(ctx context.Context, id, userID string) (*model.Folder, error)
	ListFoldersByUser(ctx context.Context, userID string) ([]model.Folder, error)
	UpdateFolder(ctx context.Context, folder *model.Folder) error
	// DeleteFolder detaches every snippet in the folder (folder_id -> NULL)
	// and removes the folder row, atomically. Snippets are never deleted.
	DeleteFolder(ctx context.Context, id, userID string) error
}

type ProjectRepository interface {
	// CreateProject inserts the project and the creator's owner membership
	// in one transaction, establishing the one-owner invariant at birth.
	CreateProject(ctx context.Context, project *model.Project, ownerID string) error
	ListProjectsForUser(ctx context.Context, userID string) ([]model.Project, error)
	// GetProjectRole returns the user's membership role on the project, or
	// NotFound when no membership row exists. The caller cannot distinguish
	// a missing project from a project it doesn't belong to.
	GetProjectRole(ctx context.Context, projectID, userID string) (model.Role, error)
	UpdateProject(ctx context.Context, project *model.Project) error
	// DeleteProject detaches the project's snippets (project_id -> NULL),
	// removes every membership, and removes the project row, atomically.
	DeleteProject(ctx context.Context, projectID string) error
	// AddProjectMember inserts a membership row. Returns a Conflict error
	// when the user is already a member.
	AddProjectMember(ctx context.Context, member *model.Member) error
	// RemoveProjectMember deletes a membership row; NotFound when absent.
	RemoveProjectMember(ctx context.Context, projectID, userID string) error
	ListProjectMembers(ctx context.Context, projectID string) ([]model.Member, error)
}

type SnippetRepository interface {
	// CreateSnippet inserts the snippet row and its normalized tag set in
	// one transaction. When the snippet targets a project, the creator's
	// membership is verified inside the same transaction; non-members get
	// Forbidden and nothing is written.
	CreateSnippet(ctx context.Context, snippet *model.Snippet, tags []string) error
	// UpdateSnippet rewrites all scalar fields, both association fields,
	// and the full tag set in one transaction. The permission check
	// (snippet owner, or owner/admin rank on the snippet's current project)
	// runs inside the transaction against the stored row, not the payload.
	UpdateSnippet(ctx context.Context, actorID string, snippet *model.Snippet, tags []string) error
	// GetSnippetByID applies the visibility rule: public, owned, or in a
	// project the user belongs to. Everything else is NotFound.
	GetSnippetByID(ctx context.Context, id, userID string) (*model.Snippet, error)
	// ListSnippets returns the union of the user's own snippets and
	// snippets in projects the user is a member of, narrowed by the filter.
	ListSnippets(ctx context.Context, userID string, filter SnippetFilter) ([]model.Snippet, error)
	// DeleteSnippet removes the snippet and its tags after re-checking
	// permission inside the transaction.
	DeleteSnippet(ctx context.Context, id, actorID string) error
	// DetachSnippetFromFolder nulls folder_id for a snippet the user owns.
	DetachSnippetFromFolder(ctx context.Context, id, userID string) error
}

type LanguageRepository interface {
	ListLanguages(ctx context.Context) ([]model.Language, error)
}
