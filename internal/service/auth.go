// Package service holds the business rules between the HTTP handlers and the
// repositories. Services validate input, make permission decisions, and
// return domain errors; they know nothing about HTTP or SQL.
package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/snipvault/snipvault/internal/apperror"
	"github.com/snipvault/snipvault/internal/auth"
	"github.com/snipvault/snipvault/internal/model"
	"github.com/snipvault/snipvault/internal/repository"
)

const (
	MinPasswordLength = 6
	MaxFullNameLength = 100
)

// AuthService handles registration, login, and the GitHub OAuth account
// linkage.
type AuthService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	tokens    *auth.TokenService
	logger    *slog.Logger
}

func NewAuthService(users repository.UserRepository, passwords *auth.PasswordService, tokens *auth.TokenService, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
		logger:    logger,
	}
}

// Register creates a password account and returns the user plus a signed
// token, so registration doubles as the first login.
func (s *AuthService) Register(ctx context.Context, email, password, fullName string) (*model.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	fullName = strings.TrimSpace(fullName)

	if email == "" || !strings.Contains(email, "@") {
		return nil, "", apperror.ValidationFailed("email", "a valid email address is required")
	}
	if len(password) < MinPasswordLength {
		return nil, "", apperror.ValidationFailed("password", "password must be at least 6 characters")
	}
	if len(fullName) > MaxFullNameLength {
		return nil, "", apperror.ValidationFailed("fullName", "full name must be 100 characters or fewer")
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, "", apperror.ValidationFailed("password", "password must be 72 bytes or fewer")
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("user registered", "userID", user.ID)
	return user, token, nil
}

// Login verifies the credentials and returns the user plus a signed token.
// A missing account and a wrong password produce the same Unauthorized
// answer, so login can't be used to enumerate emails.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	email = strings.TrimSpace(email)

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, "", apperror.Unauthorized("invalid email or password")
	}

	if user.PasswordHash == "" {
		// OAuth-only account: there is no password to check.
		return nil, "", apperror.Unauthorized("invalid email or password")
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, "", apperror.Unauthorized("invalid email or password")
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("user logged in", "userID", user.ID)
	return user, token, nil
}

// LoginWithGitHub upserts the account for a verified GitHub profile and
// returns the user plus a signed token. GitHub may hide the email; the login
// is substituted so the NOT NULL + UNIQUE email column holds.
func (s *AuthService) LoginWithGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*model.User, string, error) {
	email := ghUser.Email
	if email == "" {
		email = ghUser.Login + "@users.noreply.github.com"
	}

	user := &model.User{
		Email:     email,
		FullName:  ghUser.Login,
		AvatarURL: ghUser.AvatarURL,
		GitHubID:  ghUser.ID,
	}
	if err := s.users.UpsertGitHubUser(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("user logged in via github", "userID", user.ID, "githubLogin", ghUser.Login)
	return user, token, nil
}

// GetUser returns the profile behind a validated token's subject.
func (s *AuthService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	return s.users.GetUserByID(ctx, userID)
}
