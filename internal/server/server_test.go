package server_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snipvault/snipvault/internal/model"
	"github.com/snipvault/snipvault/internal/server"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv, err := server.New(server.Config{
		Port:        0,
		DBPath:      ":memory:",
		JWTSecret:   "test-secret-at-least-16-chars",
		FrontendURL: "http://localhost:5173",
	}, logger)
	require.NoError(t, err)
	return srv.Handler()
}

// do performs one request against the router. A non-empty token is sent as a
// bearer header; body is JSON-encoded when present.
func do(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v), "body: %s", rr.Body.String())
	return v
}

type authResponse struct {
	User  model.User `json:"user"`
	Token string     `json:"token"`
}

// register creates an account through the API and returns its token.
func register(t *testing.T, h http.Handler, email string) (model.User, string) {
	t.Helper()
	rr := do(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    email,
		"password": "secret123",
		"fullName": "Test User",
	})
	require.Equal(t, http.StatusCreated, rr.Code, "body: %s", rr.Body.String())
	res := decode[authResponse](t, rr)
	return res.User, res.Token
}

func TestAuthFlow(t *testing.T) {
	h := newTestServer(t)

	user, token := register(t, h, "alice@example.com")
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEmpty(t, token)

	t.Run("me with token", func(t *testing.T) {
		rr := do(t, h, http.MethodGet, "/api/auth/me", token, nil)
		assert.Equal(t, http.StatusOK, rr.Code)
		me := decode[model.User](t, rr)
		assert.Equal(t, user.ID, me.ID)
	})

	t.Run("me without token", func(t *testing.T) {
		rr := do(t, h, http.MethodGet, "/api/auth/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("login", func(t *testing.T) {
		rr := do(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email": "alice@example.com", "password": "secret123",
		})
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("login with wrong password", func(t *testing.T) {
		rr := do(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email": "alice@example.com", "password": "wrong-password",
		})
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("duplicate registration", func(t *testing.T) {
		rr := do(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{
			"email": "ALICE@example.com", "password": "secret123",
		})
		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	h := newTestServer(t)

	for _, path := range []string{"/api/folders", "/api/projects", "/api/snippets"} {
		rr := do(t, h, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, "GET %s without token", path)
	}

	// Languages are public reference data.
	rr := do(t, h, http.MethodGet, "/api/languages", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	languages := decode[[]model.Language](t, rr)
	assert.NotEmpty(t, languages)
}

func TestProjectAuthorization(t *testing.T) {
	h := newTestServer(t)
	_, ownerToken := register(t, h, "owner@example.com")
	member, memberToken := register(t, h, "member@example.com")
	_, strangerToken := register(t, h, "stranger@example.com")

	rr := do(t, h, http.MethodPost, "/api/projects", ownerToken, map[string]any{
		"name": "API Toolkit",
	})
	require.Equal(t, http.StatusCreated, rr.Code, "body: %s", rr.Body.String())
	project := decode[model.Project](t, rr)

	rr = do(t, h, http.MethodPost, "/api/projects/"+project.ID+"/members", ownerToken, map[string]string{
		"email": "member@example.com", "role": "member",
	})
	require.Equal(t, http.StatusCreated, rr.Code, "body: %s", rr.Body.String())

	t.Run("member cannot delete project", func(t *testing.T) {
		rr := do(t, h, http.MethodDelete, "/api/projects/"+project.ID, memberToken, nil)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("stranger probing gets 404, not 403", func(t *testing.T) {
		rr := do(t, h, http.MethodDelete, "/api/projects/"+project.ID, strangerToken, nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("member cannot invite", func(t *testing.T) {
		rr := do(t, h, http.MethodPost, "/api/projects/"+project.ID+"/members", memberToken, map[string]string{
			"email": "stranger@example.com", "role": "member",
		})
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("duplicate invite conflicts", func(t *testing.T) {
		rr := do(t, h, http.MethodPost, "/api/projects/"+project.ID+"/members", ownerToken, map[string]string{
			"email": "member@example.com", "role": "member",
		})
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("owner removes member", func(t *testing.T) {
		rr := do(t, h, http.MethodDelete,
			fmt.Sprintf("/api/projects/%s/members/%s", project.ID, member.ID), ownerToken, nil)
		assert.Equal(t, http.StatusNoContent, rr.Code)

		// The removed member no longer sees the project.
		rr = do(t, h, http.MethodGet, "/api/projects/"+project.ID+"/members", memberToken, nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("owner deletes project", func(t *testing.T) {
		rr := do(t, h, http.MethodDelete, "/api/projects/"+project.ID, ownerToken, nil)
		assert.Equal(t, http.StatusNoContent, rr.Code)
	})
}

func TestSnippetLifecycle(t *testing.T) {
	h := newTestServer(t)
	_, token := register(t, h, "alice@example.com")

	rr := do(t, h, http.MethodPost, "/api/folders", token, map[string]string{"name": "Hooks"})
	require.Equal(t, http.StatusCreated, rr.Code)
	folder := decode[model.Folder](t, rr)

	rr = do(t, h, http.MethodPost, "/api/snippets", token, map[string]any{
		"title":    "useDebounce",
		"code":     "export function useDebounce() {}",
		"folderId": folder.ID,
		"tags":     []string{"React", " Hooks ", "react"},
	})
	require.Equal(t, http.StatusCreated, rr.Code, "body: %s", rr.Body.String())
	snippet := decode[model.Snippet](t, rr)
	assert.ElementsMatch(t, []string{"react", "hooks"}, snippet.Tags, "tags normalized and deduplicated")
	assert.Equal(t, "Hooks", snippet.FolderName)

	t.Run("update replaces tags", func(t *testing.T) {
		rr := do(t, h, http.MethodPut, "/api/snippets/"+snippet.ID, token, map[string]any{
			"title":    "useDebounce",
			"code":     "v2",
			"folderId": folder.ID,
			"tags":     []string{"performance"},
		})
		require.Equal(t, http.StatusOK, rr.Code, "body: %s", rr.Body.String())
		updated := decode[model.Snippet](t, rr)
		assert.Equal(t, []string{"performance"}, updated.Tags)
		assert.Equal(t, "v2", updated.Code)
	})

	t.Run("both folder and project rejected", func(t *testing.T) {
		rr := do(t, h, http.MethodPost, "/api/snippets", token, map[string]any{
			"title":     "invalid",
			"code":      "x",
			"folderId":  folder.ID,
			"projectId": "some-project",
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("remove from folder", func(t *testing.T) {
		rr := do(t, h, http.MethodPatch, "/api/snippets/"+snippet.ID+"/remove-from-folder", token, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		detached := decode[model.Snippet](t, rr)
		assert.Empty(t, detached.FolderID)
	})

	t.Run("delete", func(t *testing.T) {
		rr := do(t, h, http.MethodDelete, "/api/snippets/"+snippet.ID, token, nil)
		assert.Equal(t, http.StatusNoContent, rr.Code)

		rr = do(t, h, http.MethodGet, "/api/snippets/"+snippet.ID, token, nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestSnippetVisibilityAcrossUsers(t *testing.T) {
	h := newTestServer(t)
	_, aliceToken := register(t, h, "alice@example.com")
	_, bobToken := register(t, h, "bob@example.com")

	rr := do(t, h, http.MethodPost, "/api/snippets", aliceToken, map[string]any{
		"title": "private", "code": "x",
	})
	require.Equal(t, http.StatusCreated, rr.Code)
	private := decode[model.Snippet](t, rr)

	rr = do(t, h, http.MethodPost, "/api/snippets", aliceToken, map[string]any{
		"title": "public", "code": "x", "isPublic": true,
	})
	require.Equal(t, http.StatusCreated, rr.Code)
	public := decode[model.Snippet](t, rr)

	rr = do(t, h, http.MethodGet, "/api/snippets/"+private.ID, bobToken, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code, "private snippet must not leak")

	rr = do(t, h, http.MethodGet, "/api/snippets/"+public.ID, bobToken, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	// Bob's list contains only his own and shared snippets — neither of
	// Alice's personal snippets, public or not.
	rr = do(t, h, http.MethodGet, "/api/snippets", bobToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[[]model.Snippet](t, rr)
	assert.Empty(t, list)
}
