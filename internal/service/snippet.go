package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/snipvault/snipvault/internal/apperror"
	"github.com/snipvault/snipvault/internal/model"
	"github.com/snipvault/snipvault/internal/repository"
)

const (
	MaxSnippetTitleLength = 200
	MaxCodeLength         = 100000 // ~100KB of code
)

// SnippetInput carries the client-supplied fields of a snippet write. The
// same shape serves create and update: updates rewrite every field, so a
// PUT with an omitted field clears it.
type SnippetInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Code        string   `json:"code"`
	LanguageID  string   `json:"languageId"`
	FolderID    string   `json:"folderId"`
	ProjectID   string   `json:"projectId"`
	IsFavorite  bool     `json:"isFavorite"`
	IsPublic    bool     `json:"isPublic"`
	Tags        []string `json:"tags"`
}

// SnippetService handles snippet writes and the visibility-scoped reads.
// Association and shape rules are enforced here, before any transaction
// begins; ownership and rank checks live in the repository, inside the
// transaction, where they can't race a concurrent membership change.
type SnippetService struct {
	snippets repository.SnippetRepository
	logger   *slog.Logger
}

func NewSnippetService(snippets repository.SnippetRepository, logger *slog.Logger) *SnippetService {
	return &SnippetService{snippets: snippets, logger: logger}
}

// validate normalizes the input in place and rejects malformed writes.
func (in *SnippetInput) validate() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)

	if in.Title == "" {
		return apperror.ValidationFailed("title", "snippet title is required")
	}
	if len(in.Title) > MaxSnippetTitleLength {
		return apperror.ValidationFailed("title", "snippet title must be 200 characters or fewer")
	}
	if in.Code == "" {
		return apperror.ValidationFailed("code", "snippet code is required")
	}
	if len(in.Code) > MaxCodeLength {
		return apperror.ValidationFailed("code", "snippet code must be 100KB or fewer")
	}
	// A snippet lives in a folder or a project, never both.
	if in.FolderID != "" && in.ProjectID != "" {
		return apperror.ValidationFailed("folderId", "a snippet cannot be in both a folder and a project")
	}
	in.Tags = model.NormalizeTags(in.Tags)
	return nil
}

func (s *SnippetService) Create(ctx context.Context, userID string, in SnippetInput) (*model.Snippet, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	snippet := &model.Snippet{
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		Code:        in.Code,
		LanguageID:  in.LanguageID,
		FolderID:    in.FolderID,
		ProjectID:   in.ProjectID,
		IsFavorite:  in.IsFavorite,
		IsPublic:    in.IsPublic,
	}
	if err := s.snippets.CreateSnippet(ctx, snippet, in.Tags); err != nil {
		return nil, err
	}

	s.logger.Info("snippet created", "snippetID", snippet.ID, "userID", userID)
	return s.snippets.GetSnippetByID(ctx, snippet.ID, userID)
}

func (s *SnippetService) Get(ctx context.Context, id, userID string) (*model.Snippet, error) {
	return s.snippets.GetSnippetByID(ctx, id, userID)
}

func (s *SnippetService) List(ctx context.Context, userID string, filter repository.SnippetFilter) ([]model.Snippet, error) {
	return s.snippets.ListSnippets(ctx, userID, filter)
}

func (s *SnippetService) Update(ctx context.Context, id, actorID string, in SnippetInput) (*model.Snippet, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	snippet := &model.Snippet{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Code:        in.Code,
		LanguageID:  in.LanguageID,
		FolderID:    in.FolderID,
		ProjectID:   in.ProjectID,
		IsFavorite:  in.IsFavorite,
		IsPublic:    in.IsPublic,
	}
	if err := s.snippets.UpdateSnippet(ctx, actorID, snippet, in.Tags); err != nil {
		return nil, err
	}

	s.logger.Info("snippet updated", "snippetID", id, "actorID", actorID)
	return s.snippets.GetSnippetByID(ctx, id, actorID)
}

func (s *SnippetService) Delete(ctx context.Context, id, actorID string) error {
	if err := s.snippets.DeleteSnippet(ctx, id, actorID); err != nil {
		return err
	}
	s.logger.Info("snippet deleted", "snippetID", id, "actorID", actorID)
	return nil
}

// RemoveFromFolder detaches the snippet from its folder without touching any
// other field.
func (s *SnippetService) RemoveFromFolder(ctx context.Context, id, userID string) (*model.Snippet, error) {
	if err := s.snippets.DetachSnippetFromFolder(ctx, id, userID); err != nil {
		return nil, err
	}
	return s.snippets.GetSnippetByID(ctx, id, userID)
}
