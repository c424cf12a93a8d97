package sqlite

import (
	"context"
	"testing"

	"github.com/snipvault/snipvault/internal/model"
)

// newTestDB opens a fresh in-memory database for one test. t.Cleanup closes
// it when the test (or subtest) finishes.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, email string) *model.User {
	t.Helper()
	user := &model.User{
		Email:        email,
		PasswordHash: "not-a-real-hash",
		FullName:     "Test User",
	}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user %s: %v", email, err)
	}
	return user
}

func createTestFolder(t *testing.T, db *DB, userID, name string) *model.Folder {
	t.Helper()
	folder := &model.Folder{
		UserID: userID,
		Name:   name,
		Color:  model.DefaultFolderColor,
	}
	if err := db.CreateFolder(context.Background(), folder); err != nil {
		t.Fatalf("failed to create test folder %s: %v", name, err)
	}
	return folder
}

func createTestProject(t *testing.T, db *DB, ownerID, name string) *model.Project {
	t.Helper()
	project := &model.Project{
		Name:  name,
		Color: model.DefaultProjectColor,
	}
	if err := db.CreateProject(context.Background(), project, ownerID); err != nil {
		t.Fatalf("failed to create test project %s: %v", name, err)
	}
	return project
}

func addTestMember(t *testing.T, db *DB, projectID, userID string, role model.Role) {
	t.Helper()
	member := &model.Member{ProjectID: projectID, UserID: userID, Role: role}
	if err := db.AddProjectMember(context.Background(), member); err != nil {
		t.Fatalf("failed to add test member: %v", err)
	}
}

func createTestSnippet(t *testing.T, db *DB, snippet *model.Snippet, tags []string) *model.Snippet {
	t.Helper()
	if err := db.CreateSnippet(context.Background(), snippet, tags); err != nil {
		t.Fatalf("failed to create test snippet %s: %v", snippet.Title, err)
	}
	return snippet
}

// languageID resolves a seeded language slug to its generated id.
func languageID(t *testing.T, db *DB, slug string) string {
	t.Helper()
	var id string
	if err := db.conn.QueryRow(`SELECT id FROM languages WHERE slug = ?`, slug).Scan(&id); err != nil {
		t.Fatalf("failed to look up language %s: %v", slug, err)
	}
	return id
}
