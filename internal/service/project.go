package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/snipvault/snipvault/internal/apperror"
	"github.com/snipvault/snipvault/internal/model"
	"github.com/snipvault/snipvault/internal/repository"
)

const MaxProjectNameLength = 100

// ProjectService handles shared projects and their memberships. Every
// operation except Create starts with a role lookup; a caller with no
// membership row gets NotFound from the lookup itself, so a project's
// existence is never revealed to outsiders.
type ProjectService struct {
	projects repository.ProjectRepository
	users    repository.UserRepository
	logger   *slog.Logger
}

func NewProjectService(projects repository.ProjectRepository, users repository.UserRepository, logger *slog.Logger) *ProjectService {
	return &ProjectService{projects: projects, users: users, logger: logger}
}

func (s *ProjectService) Create(ctx context.Context, ownerID, name, description, color string, isPublic bool) (*model.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "project name is required")
	}
	if len(name) > MaxProjectNameLength {
		return nil, apperror.ValidationFailed("name", "project name must be 100 characters or fewer")
	}
	if color == "" {
		color = model.DefaultProjectColor
	}

	project := &model.Project{
		Name:        name,
		Description: strings.TrimSpace(description),
		Color:       color,
		IsPublic:    isPublic,
	}
	if err := s.projects.CreateProject(ctx, project, ownerID); err != nil {
		return nil, err
	}

	s.logger.Info("project created", "projectID", project.ID, "ownerID", ownerID)
	return project, nil
}

func (s *ProjectService) List(ctx context.Context, userID string) ([]model.Project, error) {
	return s.projects.ListProjectsForUser(ctx, userID)
}

// Update requires owner or admin rank.
func (s *ProjectService) Update(ctx context.Context, actorID, projectID, name, description, color string, isPublic bool) (*model.Project, error) {
	role, err := s.projects.GetProjectRole(ctx, projectID, actorID)
	if err != nil {
		return nil, err
	}
	if !role.CanManageProject() {
		return nil, apperror.Forbidden("only the project owner or an admin can update the project")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "project name is required")
	}
	if len(name) > MaxProjectNameLength {
		return nil, apperror.ValidationFailed("name", "project name must be 100 characters or fewer")
	}
	if color == "" {
		color = model.DefaultProjectColor
	}

	project := &model.Project{
		ID:          projectID,
		Name:        name,
		Description: strings.TrimSpace(description),
		Color:       color,
		IsPublic:    isPublic,
	}
	if err := s.projects.UpdateProject(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// Delete is owner-only. The repository cascade detaches the project's
// snippets and removes every membership in the same transaction.
func (s *ProjectService) Delete(ctx context.Context, actorID, projectID string) error {
	role, err := s.projects.GetProjectRole(ctx, projectID, actorID)
	if err != nil {
		return err
	}
	if role != model.RoleOwner {
		return apperror.Forbidden("only the project owner can delete the project")
	}

	if err := s.projects.DeleteProject(ctx, projectID); err != nil {
		return err
	}

	s.logger.Info("project deleted", "projectID", projectID, "actorID", actorID)
	return nil
}

// AddMember invites a user by email. Only owners and admins may invite, and
// the granted role is admin or member — there is exactly one owner, created
// with the project and never granted afterwards.
func (s *ProjectService) AddMember(ctx context.Context, actorID, projectID, email, roleStr string) (*model.Member, error) {
	actorRole, err := s.projects.GetProjectRole(ctx, projectID, actorID)
	if err != nil {
		return nil, err
	}
	if !actorRole.CanManageProject() {
		return nil, apperror.Forbidden("only the project owner or an admin can add members")
	}

	role, ok := model.ParseRole(roleStr)
	if !ok || role == model.RoleOwner {
		return nil, apperror.ValidationFailed("role", "role must be admin or member")
	}

	target, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}

	member := &model.Member{
		ProjectID: projectID,
		UserID:    target.ID,
		Role:      role,
		Email:     target.Email,
		FullName:  target.FullName,
	}
	if err := s.projects.AddProjectMember(ctx, member); err != nil {
		return nil, err
	}

	s.logger.Info("project member added",
		"projectID", projectID, "memberID", target.ID, "role", role, "actorID", actorID)
	return member, nil
}

// RemoveMember enforces the removal rights table: owners remove admins and
// members, admins remove members, members remove nobody. Self-removal is
// rejected outright — an owner leaving would orphan the project.
func (s *ProjectService) RemoveMember(ctx context.Context, actorID, projectID, targetUserID string) error {
	if actorID == targetUserID {
		return apperror.ValidationFailed("userId", "you cannot remove yourself from a project")
	}

	actorRole, err := s.projects.GetProjectRole(ctx, projectID, actorID)
	if err != nil {
		return err
	}

	targetRole, err := s.projects.GetProjectRole(ctx, projectID, targetUserID)
	if err != nil {
		return err
	}

	if !actorRole.CanRemove(targetRole) {
		return apperror.Forbidden("you do not have permission to remove this member")
	}

	if err := s.projects.RemoveProjectMember(ctx, projectID, targetUserID); err != nil {
		return err
	}

	s.logger.Info("project member removed",
		"projectID", projectID, "memberID", targetUserID, "actorID", actorID)
	return nil
}

// ListMembers requires membership of any rank.
func (s *ProjectService) ListMembers(ctx context.Context, actorID, projectID string) ([]model.Member, error) {
	if _, err := s.projects.GetProjectRole(ctx, projectID, actorID); err != nil {
		return nil, err
	}
	return s.projects.ListProjectMembers(ctx, projectID)
}
