package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/snipvault/snipvault/internal/apperror"
	"github.com/snipvault/snipvault/internal/model"
	"github.com/snipvault/snipvault/internal/repository"
)

const MaxFolderNameLength = 100

// FolderService handles the single-owner snippet folders. All authorization
// is ownership scoping, which the repository enforces in its WHERE clauses;
// the service only validates shape.
type FolderService struct {
	folders repository.FolderRepository
	logger  *slog.Logger
}

func NewFolderService(folders repository.FolderRepository, logger *slog.Logger) *FolderService {
	return &FolderService{folders: folders, logger: logger}
}

func (s *FolderService) Create(ctx context.Context, userID, name, description, color string) (*model.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "folder name is required")
	}
	if len(name) > MaxFolderNameLength {
		return nil, apperror.ValidationFailed("name", "folder name must be 100 characters or fewer")
	}
	if color == "" {
		color = model.DefaultFolderColor
	}

	folder := &model.Folder{
		UserID:      userID,
		Name:        name,
		Description: strings.TrimSpace(description),
		Color:       color,
	}
	if err := s.folders.CreateFolder(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder created", "folderID", folder.ID, "userID", userID)
	return folder, nil
}

func (s *FolderService) Get(ctx context.Context, id, userID string) (*model.Folder, error) {
	return s.folders.GetFolderByID(ctx, id, userID)
}

func (s *FolderService) List(ctx context.Context, userID string) ([]model.Folder, error) {
	return s.folders.ListFoldersByUser(ctx, userID)
}

func (s *FolderService) Update(ctx context.Context, id, userID, name, description, color string) (*model.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "folder name is required")
	}
	if len(name) > MaxFolderNameLength {
		return nil, apperror.ValidationFailed("name", "folder name must be 100 characters or fewer")
	}
	if color == "" {
		color = model.DefaultFolderColor
	}

	folder := &model.Folder{
		ID:          id,
		UserID:      userID,
		Name:        name,
		Description: strings.TrimSpace(description),
		Color:       color,
	}
	if err := s.folders.UpdateFolder(ctx, folder); err != nil {
		return nil, err
	}
	return folder, nil
}

// Delete removes the folder; its snippets are detached, never deleted.
func (s *FolderService) Delete(ctx context.Context, id, userID string) error {
	if err := s.folders.DeleteFolder(ctx, id, userID); err != nil {
		return err
	}
	s.logger.Info("folder deleted", "folderID", id, "userID", userID)
	return nil
}
