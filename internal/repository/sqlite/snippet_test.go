package sqlite

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/snipvault/snipvault/internal/apperror"
	"github.com/snipvault/snipvault/internal/model"
	"github.com/snipvault/snipvault/internal/repository"
)

func TestCreateSnippet_WithTags(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice@example.com")

	snippet := createTestSnippet(t, db, &model.Snippet{
		UserID:     alice.ID,
		Title:      "useDebounce",
		Code:       "export function useDebounce() {}",
		LanguageID: languageID(t, db, "typescript"),
	}, []string{"react", "hooks"})

	got, err := db.GetSnippetByID(context.Background(), snippet.ID, alice.ID)
	if err != nil {
		t.Fatalf("GetSnippetByID() error = %v", err)
	}
	if !reflect.DeepEqual(got.Tags, []string{"hooks", "react"}) {
		t.Errorf("tags = %v, want [hooks react]", got.Tags)
	}
	if got.LanguageSlug != "typescript" {
		t.Errorf("language slug not joined: got %q", got.LanguageSlug)
	}
}

func TestCreateSnippet_InProjectRequiresMembership(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")
	project := createTestProject(t, db, alice.ID, "API Toolkit")

	snippet := &model.Snippet{
		UserID:    bob.ID,
		Title:     "sneaky",
		Code:      "x",
		ProjectID: project.ID,
	}
	err := db.CreateSnippet(context.Background(), snippet, []string{"tag"})
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("CreateSnippet() as non-member: got %v, want ErrForbidden", err)
	}

	// Nothing was written.
	_, err = db.GetSnippetByID(context.Background(), snippet.ID, bob.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("snippet exists after forbidden create: err = %v", err)
	}
}

func TestCreateSnippet_BadLanguageRollsBack(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice@example.com")

	snippet := &model.Snippet{
		UserID:     alice.ID,
		Title:      "broken",
		Code:       "x",
		LanguageID: "no-such-language",
	}
	err := db.CreateSnippet(context.Background(), snippet, []string{"tag"})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("CreateSnippet() with bad language: got %v, want ErrValidation", err)
	}

	// The whole write rolled back — no snippet row, no tag rows.
	snippets, err := db.ListSnippets(context.Background(), alice.ID, repository.SnippetFilter{})
	if err != nil {
		t.Fatalf("ListSnippets() error = %v", err)
	}
	if len(snippets) != 0 {
		t.Errorf("partial write survived rollback: %d snippets", len(snippets))
	}
}

func TestUpdateSnippet_ReplacesTagSet(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice@example.com")

	snippet := createTestSnippet(t, db, &model.Snippet{
		UserID: alice.ID,
		Title:  "useDebounce",
		Code:   "v1",
	}, []string{"react", "hooks"})

	snippet.Code = "v2"
	if err := db.UpdateSnippet(context.Background(), alice.ID, snippet, []string{"performance"}); err != nil {
		t.Fatalf("UpdateSnippet() error = %v", err)
	}

	got, err := db.GetSnippetByID(context.Background(), snippet.ID, alice.ID)
	if err != nil {
		t.Fatalf("GetSnippetByID() error = %v", err)
	}
	if got.Code != "v2" {
		t.Errorf("code = %q, want v2", got.Code)
	}
	// Old tags are gone, not merged.
	if !reflect.DeepEqual(got.Tags, []string{"performance"}) {
		t.Errorf("tags = %v, want [performance]", got.Tags)
	}
}

func TestUpdateSnippet_ProjectPermissions(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	admin := createTestUser(t, db, "admin@example.com")
	member := createTestUser(t, db, "member@example.com")
	outsider := createTestUser(t, db, "outsider@example.com")
	project := createTestProject(t, db, owner.ID, "API Toolkit")
	addTestMember(t, db, project.ID, admin.ID, model.RoleAdmin)
	addTestMember(t, db, project.ID, member.ID, model.RoleMember)

	snippet := createTestSnippet(t, db, &model.Snippet{
		UserID:    member.ID,
		Title:     "retry helper",
		Code:      "v1",
		ProjectID: project.ID,
	}, nil)

	edit := func(actorID, code string) error {
		s := *snippet
		s.Code = code
		return db.UpdateSnippet(context.Background(), actorID, &s, nil)
	}

	// The snippet owner and project owner/admin may edit.
	if err := edit(member.ID, "by-owner"); err != nil {
		t.Errorf("UpdateSnippet() by snippet owner: %v", err)
	}
	if err := edit(admin.ID, "by-admin"); err != nil {
		t.Errorf("UpdateSnippet() by project admin: %v", err)
	}
	if err := edit(owner.ID, "by-project-owner"); err != nil {
		t.Errorf("UpdateSnippet() by project owner: %v", err)
	}

	// A plain member who doesn't own the snippet is refused.
	other := createTestUser(t, db, "other-member@example.com")
	addTestMember(t, db, project.ID, other.ID, model.RoleMember)
	if err := edit(other.ID, "nope"); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("UpdateSnippet() by plain member: got %v, want ErrForbidden", err)
	}

	// A non-member can't even learn the snippet exists.
	if err := edit(outsider.ID, "nope"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdateSnippet() by outsider: got %v, want ErrNotFound", err)
	}
}

func TestGetSnippetByID_Visibility(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")
	carol := createTestUser(t, db, "carol@example.com")
	project := createTestProject(t, db, alice.ID, "API Toolkit")
	addTestMember(t, db, project.ID, bob.ID, model.RoleMember)

	private := createTestSnippet(t, db, &model.Snippet{
		UserID: alice.ID, Title: "private", Code: "x",
	}, nil)
	public := createTestSnippet(t, db, &model.Snippet{
		UserID: alice.ID, Title: "public", Code: "x", IsPublic: true,
	}, nil)
	inProject := createTestSnippet(t, db, &model.Snippet{
		UserID: alice.ID, Title: "shared", Code: "x", ProjectID: project.ID,
	}, nil)

	// Public: visible to anyone.
	if _, err := db.GetSnippetByID(context.Background(), public.ID, carol.ID); err != nil {
		t.Errorf("public snippet not visible to stranger: %v", err)
	}
	// Private: owner only.
	if _, err := db.GetSnippetByID(context.Background(), private.ID, carol.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("private snippet visible to stranger: err = %v", err)
	}
	// Project: members see it, strangers don't.
	if _, err := db.GetSnippetByID(context.Background(), inProject.ID, bob.ID); err != nil {
		t.Errorf("project snippet not visible to member: %v", err)
	}
	if _, err := db.GetSnippetByID(context.Background(), inProject.ID, carol.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("project snippet visible to stranger: err = %v", err)
	}
}

func TestListSnippets_UnionAndFilters(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")
	project := createTestProject(t, db, bob.ID, "Shared")
	addTestMember(t, db, project.ID, alice.ID, model.RoleMember)

	goID := languageID(t, db, "go")
	tsID := languageID(t, db, "typescript")

	createTestSnippet(t, db, &model.Snippet{
		UserID: alice.ID, Title: "own go", Code: "x", LanguageID: goID, IsFavorite: true,
	}, nil)
	createTestSnippet(t, db, &model.Snippet{
		UserID: alice.ID, Title: "own ts", Code: "x", LanguageID: tsID,
	}, nil)
	createTestSnippet(t, db, &model.Snippet{
		UserID: bob.ID, Title: "bob shared", Code: "x", ProjectID: project.ID,
	}, nil)
	createTestSnippet(t, db, &model.Snippet{
		UserID: bob.ID, Title: "bob private", Code: "x",
	}, nil)

	list := func(f repository.SnippetFilter) []model.Snippet {
		t.Helper()
		snippets, err := db.ListSnippets(context.Background(), alice.ID, f)
		if err != nil {
			t.Fatalf("ListSnippets(%+v) error = %v", f, err)
		}
		return snippets
	}

	if got := list(repository.SnippetFilter{}); len(got) != 3 {
		t.Errorf("unfiltered list = %d snippets, want 3 (own + shared)", len(got))
	}
	if got := list(repository.SnippetFilter{LanguageSlug: "go"}); len(got) != 1 || got[0].Title != "own go" {
		t.Errorf("language filter returned %d snippets", len(got))
	}
	if got := list(repository.SnippetFilter{Search: "shared"}); len(got) != 1 || got[0].Title != "bob shared" {
		t.Errorf("search filter returned %d snippets", len(got))
	}
	if got := list(repository.SnippetFilter{FavoriteOnly: true}); len(got) != 1 || got[0].Title != "own go" {
		t.Errorf("favorite filter returned %d snippets", len(got))
	}
	if got := list(repository.SnippetFilter{ProjectID: project.ID}); len(got) != 1 || got[0].Title != "bob shared" {
		t.Errorf("project filter returned %d snippets", len(got))
	}
}

func TestDeleteSnippet(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")

	snippet := createTestSnippet(t, db, &model.Snippet{
		UserID: alice.ID, Title: "doomed", Code: "x",
	}, []string{"tag"})

	// A stranger can't delete — and can't learn the snippet exists.
	err := db.DeleteSnippet(context.Background(), snippet.ID, bob.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("DeleteSnippet() by stranger: got %v, want ErrNotFound", err)
	}

	if err := db.DeleteSnippet(context.Background(), snippet.ID, alice.ID); err != nil {
		t.Fatalf("DeleteSnippet() by owner error = %v", err)
	}

	_, err = db.GetSnippetByID(context.Background(), snippet.ID, alice.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetSnippetByID() after delete: got %v, want ErrNotFound", err)
	}

	// Tag rows went with it.
	var count int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM snippet_tags WHERE snippet_id = ?`, snippet.ID).Scan(&count); err != nil {
		t.Fatalf("counting tags: %v", err)
	}
	if count != 0 {
		t.Errorf("tag rows survive snippet delete: %d", count)
	}
}

func TestDetachSnippetFromFolder(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")
	folder := createTestFolder(t, db, alice.ID, "Utilities")

	snippet := createTestSnippet(t, db, &model.Snippet{
		UserID: alice.ID, Title: "debounce", Code: "x", FolderID: folder.ID,
	}, nil)

	err := db.DetachSnippetFromFolder(context.Background(), snippet.ID, bob.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("DetachSnippetFromFolder() by non-owner: got %v, want ErrNotFound", err)
	}

	if err := db.DetachSnippetFromFolder(context.Background(), snippet.ID, alice.ID); err != nil {
		t.Fatalf("DetachSnippetFromFolder() error = %v", err)
	}

	got, err := db.GetSnippetByID(context.Background(), snippet.ID, alice.ID)
	if err != nil {
		t.Fatalf("GetSnippetByID() error = %v", err)
	}
	if got.FolderID != "" {
		t.Errorf("folderID = %q after detach, want empty", got.FolderID)
	}
}
