package model

import "time"

// DefaultProjectColor is applied when a project is created without one.
const DefaultProjectColor = "#10B981"

// Project is a shared snippet container. Unlike folders, projects have no
// single owner column — ownership is a membership row with RoleOwner, and
// exactly one such row exists per project for the project's whole lifetime.
type Project struct {
	ID          string    `json:"id"          db:"id"`
	Name        string    `json:"name"        db:"name"`
	Description string    `json:"description" db:"description"`
	Color       string    `json:"color"       db:"color"`
	IsPublic    bool      `json:"isPublic"    db:"is_public"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt"   db:"updated_at"`

	// Role is the requesting user's membership role, populated by list/get
	// queries. Empty when not relevant to the query.
	Role Role `json:"role,omitempty" db:"-"`
	// Members is populated by list/get queries that join project_members.
	Members []Member `json:"members,omitempty" db:"-"`
}

// Member is one (project, user, role) membership row.
type Member struct {
	ProjectID string    `json:"projectId" db:"project_id"`
	UserID    string    `json:"userId"    db:"user_id"`
	Role      Role      `json:"role"      db:"role"`
	Email     string    `json:"email,omitempty"    db:"-"` // joined from users
	FullName  string    `json:"fullName,omitempty" db:"-"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
