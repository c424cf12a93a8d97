package model

import "time"

// Snippet is a saved piece of code. It is owned by exactly one user and
// optionally lives in one folder OR one project, never both. The pair is
// rewritten together on every update; the only independent mutation is the
// detach-from-folder operation.
type Snippet struct {
	ID          string    `json:"id"          db:"id"`
	UserID      string    `json:"userId"      db:"user_id"`
	Title       string    `json:"title"       db:"title"`
	Description string    `json:"description" db:"description"`
	Code        string    `json:"code"        db:"code"`
	LanguageID  string    `json:"languageId"  db:"language_id"` // empty = unspecified
	FolderID    string    `json:"folderId"    db:"folder_id"`   // empty = none
	ProjectID   string    `json:"projectId"   db:"project_id"`  // empty = none
	IsFavorite  bool      `json:"isFavorite"  db:"is_favorite"`
	IsPublic    bool      `json:"isPublic"    db:"is_public"`
	Tags        []string  `json:"tags"        db:"-"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt"   db:"updated_at"`

	// Joined display fields, populated by read queries.
	LanguageName string `json:"languageName,omitempty" db:"-"`
	LanguageSlug string `json:"languageSlug,omitempty" db:"-"`
	FolderName   string `json:"folderName,omitempty"   db:"-"`
	ProjectName  string `json:"projectName,omitempty"  db:"-"`
}
