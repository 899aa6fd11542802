package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/taskmanager/internal/repository"
	"github.com/yourorg/taskmanager/internal/security"
	"github.com/yourorg/taskmanager/internal/security/auth"
	"github.com/yourorg/taskmanager/internal/security/middleware"
	"github.com/yourorg/taskmanager/internal/service"
)

const testPassword = "Password1!"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testServer struct {
	server   *httptest.Server
	accounts *service.AccountService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := repository.NewMemoryStore()
	accountService := service.NewAccountService(store, nil)
	issueService := service.NewIssueService(store, nil)

	tokenManager := auth.NewTokenManager("test-secret", "taskmanager-test")
	authService := service.NewAuthService(accountService, tokenManager, time.Hour, nil)
	authorizer := security.NewAuthorizer(issueService, nil)

	log := testLogger()
	accountHandler := NewAccountHandler(accountService, authorizer, log)
	authHandler := NewAuthHandler(authService, nil, log)
	issueHandler := NewIssueHandler(issueService, authorizer, log)
	commentHandler := NewCommentHandler(issueService, authorizer, log)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /accounts", accountHandler.Create)
	mux.HandleFunc("GET /accounts", accountHandler.List)
	mux.HandleFunc("GET /accounts/me", accountHandler.Me)
	mux.HandleFunc("PUT /accounts", accountHandler.Update)
	mux.HandleFunc("DELETE /accounts", accountHandler.DeleteOwn)
	mux.HandleFunc("DELETE /accounts/{id}", accountHandler.DeleteByID)
	mux.HandleFunc("POST /auth/login", authHandler.Login)
	mux.HandleFunc("POST /issues", issueHandler.Create)
	mux.HandleFunc("GET /issues", issueHandler.List)
	mux.HandleFunc("GET /issues/{id}", issueHandler.Get)
	mux.HandleFunc("PUT /issues/{id}", issueHandler.Update)
	mux.HandleFunc("PATCH /issues/{id}", issueHandler.Patch)
	mux.HandleFunc("DELETE /issues/{id}", issueHandler.Delete)
	mux.HandleFunc("POST /issues/{id}/comments", commentHandler.Add)
	mux.HandleFunc("GET /issues/{id}/comments", commentHandler.List)
	mux.HandleFunc("PATCH /issues/{id}/comments/{cid}", commentHandler.Patch)
	mux.HandleFunc("DELETE /issues/{id}/comments/{cid}", commentHandler.Delete)

	server := httptest.NewServer(middleware.JWTMiddleware(tokenManager, testLogger())(mux))
	t.Cleanup(server.Close)

	return &testServer{server: server, accounts: accountService}
}

func (ts *testServer) register(t *testing.T, email string) {
	t.Helper()
	resp := ts.do(t, "", "POST", "/accounts", map[string]string{
		"email":    email,
		"password": testPassword,
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func (ts *testServer) registerAdmin(t *testing.T, email string) {
	t.Helper()
	require.NoError(t, ts.accounts.EnsureAdmin(context.Background(), email, testPassword))
}

func (ts *testServer) login(t *testing.T, email string) string {
	t.Helper()
	resp := ts.do(t, "", "POST", "/auth/login", map[string]string{
		"email":    email,
		"password": testPassword,
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	require.NotEmpty(t, result.Token)
	return result.Token
}

func (ts *testServer) do(t *testing.T, token, method, path string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, ts.server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.server.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestRegisterAndLoginFlow(t *testing.T) {
	ts := newTestServer(t)

	ts.register(t, "alice@example.com")
	token := ts.login(t, "alice@example.com")

	resp := ts.do(t, token, "GET", "/accounts/me", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	me := decodeBody[service.AccountResponse](t, resp)
	assert.Equal(t, "alice@example.com", me.Email)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ts := newTestServer(t)

	ts.register(t, "alice@example.com")
	resp := ts.do(t, "", "POST", "/accounts", map[string]string{
		"email":    "alice@example.com",
		"password": testPassword,
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestRegisterWeakPassword(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, "", "POST", "/accounts", map[string]string{
		"email":    "alice@example.com",
		"password": "short",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLoginBadCredentials(t *testing.T) {
	ts := newTestServer(t)

	ts.register(t, "alice@example.com")
	resp := ts.do(t, "", "POST", "/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "Wrong1!aa",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, "", "GET", "/issues", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest("GET", ts.server.URL+"/issues", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp2, err := ts.server.Client().Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp2.StatusCode)
}

func TestIssueCreateRequiresAdmin(t *testing.T) {
	ts := newTestServer(t)

	ts.register(t, "user@example.com")
	token := ts.login(t, "user@example.com")

	resp := ts.do(t, token, "POST", "/issues", map[string]any{"title": "Fix login"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestIssueReadDeniedBeforeLookup(t *testing.T) {
	ts := newTestServer(t)

	ts.registerAdmin(t, "admin@example.com")
	ts.register(t, "outsider@example.com")
	adminToken := ts.login(t, "admin@example.com")
	outsiderToken := ts.login(t, "outsider@example.com")

	resp := ts.do(t, adminToken, "POST", "/issues", map[string]any{"title": "Fix login"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	issue := decodeBody[service.IssueResponse](t, resp)

	// neither author nor assignee: a 403, not a 404, and no body leak
	resp = ts.do(t, outsiderToken, "GET", fmt.Sprintf("/issues/%d", issue.ID), nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestIssueLifecycle(t *testing.T) {
	ts := newTestServer(t)

	ts.registerAdmin(t, "admin@example.com")
	ts.register(t, "dev@example.com")
	adminToken := ts.login(t, "admin@example.com")
	devToken := ts.login(t, "dev@example.com")

	// admin resolves the assignee account id
	resp := ts.do(t, devToken, "GET", "/accounts/me", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	dev := decodeBody[service.AccountResponse](t, resp)

	resp = ts.do(t, adminToken, "POST", "/issues", map[string]any{
		"title":       "Fix login",
		"description": "users cannot log in",
		"idAssignee":  dev.ID,
		"priority":    "LOW",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	issue := decodeBody[service.IssueResponse](t, resp)
	require.NotNil(t, issue.Assignee)
	assert.Equal(t, dev.ID, issue.Assignee.ID)

	// the assignee may read and patch
	resp = ts.do(t, devToken, "GET", fmt.Sprintf("/issues/%d", issue.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = ts.do(t, devToken, "PATCH", fmt.Sprintf("/issues/%d", issue.ID), map[string]any{
		"priority": "HIGH",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	patched := decodeBody[service.IssueResponse](t, resp)
	assert.EqualValues(t, "HIGH", patched.Priority)
	assert.EqualValues(t, "BACKLOG", patched.Status)
	assert.Equal(t, "Fix login", patched.Title)
	require.NotNil(t, patched.Description)

	// full replace drops the fields the payload omits
	resp = ts.do(t, devToken, "PUT", fmt.Sprintf("/issues/%d", issue.ID), map[string]any{
		"title": "Fix login",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	replaced := decodeBody[service.IssueResponse](t, resp)
	assert.Nil(t, replaced.Description)
	assert.Nil(t, replaced.Assignee)

	// only the author may delete, admin or not
	resp = ts.do(t, devToken, "DELETE", fmt.Sprintf("/issues/%d", issue.ID), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = ts.do(t, adminToken, "DELETE", fmt.Sprintf("/issues/%d", issue.ID), nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = ts.do(t, adminToken, "GET", fmt.Sprintf("/issues/%d", issue.ID), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestIssueValidation(t *testing.T) {
	ts := newTestServer(t)

	ts.registerAdmin(t, "admin@example.com")
	token := ts.login(t, "admin@example.com")

	cases := []struct {
		name    string
		payload map[string]any
	}{
		{"missing title", map[string]any{"priority": "HIGH"}},
		{"blank title", map[string]any{"title": "   "}},
		{"bad status", map[string]any{"title": "x", "currentStatus": "SHIPPED"}},
		{"bad priority", map[string]any{"title": "x", "priority": "URGENT"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := ts.do(t, token, "POST", "/issues", tc.payload)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestIssueCreateUnknownAssigneeID(t *testing.T) {
	ts := newTestServer(t)

	ts.registerAdmin(t, "admin@example.com")
	token := ts.login(t, "admin@example.com")

	resp := ts.do(t, token, "POST", "/issues", map[string]any{
		"title":      "Fix login",
		"idAssignee": 999,
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "Assigned user not exist")
}

func TestCommentLifecycle(t *testing.T) {
	ts := newTestServer(t)

	ts.registerAdmin(t, "admin@example.com")
	ts.register(t, "dev@example.com")
	adminToken := ts.login(t, "admin@example.com")
	devToken := ts.login(t, "dev@example.com")

	resp := ts.do(t, devToken, "GET", "/accounts/me", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	dev := decodeBody[service.AccountResponse](t, resp)

	resp = ts.do(t, adminToken, "POST", "/issues", map[string]any{
		"title":      "Fix login",
		"idAssignee": dev.ID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	issue := decodeBody[service.IssueResponse](t, resp)

	resp = ts.do(t, devToken, "POST", fmt.Sprintf("/issues/%d/comments", issue.ID), map[string]string{
		"content": "on it",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	comment := decodeBody[service.CommentResponse](t, resp)

	// only the comment author edits, admins included
	resp = ts.do(t, adminToken, "PATCH", fmt.Sprintf("/issues/%d/comments/%d", issue.ID, comment.ID), map[string]string{
		"content": "rewritten",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = ts.do(t, devToken, "PATCH", fmt.Sprintf("/issues/%d/comments/%d", issue.ID, comment.ID), map[string]string{
		"content": "done actually",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	edited := decodeBody[service.CommentResponse](t, resp)
	assert.Equal(t, "done actually", edited.Content)

	resp = ts.do(t, devToken, "GET", fmt.Sprintf("/issues/%d/comments", issue.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = ts.do(t, devToken, "DELETE", fmt.Sprintf("/issues/%d/comments/%d", issue.ID, comment.ID), nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()
}

func TestAccountDeleteRequiresAdmin(t *testing.T) {
	ts := newTestServer(t)

	ts.register(t, "alice@example.com")
	ts.register(t, "bob@example.com")
	aliceToken := ts.login(t, "alice@example.com")

	resp := ts.do(t, aliceToken, "GET", "/accounts/me", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	alice := decodeBody[service.AccountResponse](t, resp)

	resp = ts.do(t, aliceToken, "DELETE", fmt.Sprintf("/accounts/%d", alice.ID+1), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// self-deletion needs no privilege
	resp = ts.do(t, aliceToken, "DELETE", "/accounts", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()
}
