// Package model defines the domain types used throughout the application.
package model

import "time"

// User represents a registered account.
//
// Two sign-in paths populate this struct: email/password registration
// (PasswordHash set, GitHubID zero) and GitHub OAuth (GitHubID set,
// PasswordHash empty). Both end up with the same internal xid identity, so
// everything downstream of auth is provider-agnostic.
type User struct {
	ID           string    `json:"id"        db:"id"`
	Email        string    `json:"email"     db:"email"`
	PasswordHash string    `json:"-"         db:"password_hash"` // never serialized
	FullName     string    `json:"fullName"  db:"full_name"`
	AvatarURL    string    `json:"avatarUrl" db:"avatar_url"`
	GitHubID     int64     `json:"-"         db:"github_id"` // zero when not linked
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}
