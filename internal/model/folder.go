package model

import "time"

// DefaultFolderColor is applied when a folder is created without one.
const DefaultFolderColor = "#3B82F6"

// Folder is a strict single-owner snippet container. There is no sharing:
// every query against folders is scoped by user_id.
type Folder struct {
	ID          string    `json:"id"          db:"id"`
	UserID      string    `json:"userId"      db:"user_id"`
	Name        string    `json:"name"        db:"name"`
	Description string    `json:"description" db:"description"`
	Color       string    `json:"color"       db:"color"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt"   db:"updated_at"`
}
