package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"conduit/internal/config"
	"conduit/internal/database"
	"conduit/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestServer(t *testing.T) (*fiber.App, *Server) {
	return newTestServerWithPrefix(t, "Token")
}

func newTestServerWithPrefix(t *testing.T, tokenPrefix string) (*fiber.App, *Server) {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		Port:          "8585",
		JWTSecret:     "test-secret-used-only-in-tests-123",
		TokenPrefix:   tokenPrefix,
		TokenTTLHours: 1,
		Env:           "test",
	}

	srv, err := NewServerWithDeps(cfg, db, nil)
	require.NoError(t, err)

	app := fiber.New()
	srv.SetupMiddleware(app)
	srv.SetupRoutes(app)
	return app, srv
}

func jsonReq(t *testing.T, method, path string, payload any) *http.Request {
	t.Helper()
	if payload == nil {
		return httptest.NewRequest(method, path, nil)
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func authReq(t *testing.T, method, path, token string, payload any) *http.Request {
	t.Helper()
	req := jsonReq(t, method, path, payload)
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	return req
}

func doReq(t *testing.T, app *fiber.App, req *http.Request, wantStatus int, dest any) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, wantStatus, resp.StatusCode)
	if dest != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
	}
}

// registerUser signs up a user through the API and returns its token.
func registerUser(t *testing.T, app *fiber.App, username string) string {
	t.Helper()

	payload := map[string]any{"user": map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	}}

	var body userEnvelope
	doReq(t, app, jsonReq(t, http.MethodPost, "/api/users", payload), http.StatusCreated, &body)
	require.NotEmpty(t, body.User.Token)
	return body.User.Token
}

// createArticle publishes an article through the API and returns its body.
func createArticle(t *testing.T, app *fiber.App, token, title string, tags []string) articleBody {
	t.Helper()

	payload := map[string]any{"article": map[string]any{
		"title":       title,
		"description": "desc",
		"body":        "body",
		"tagList":     tags,
	}}

	var body articleEnvelope
	doReq(t, app, authReq(t, http.MethodPost, "/api/articles", token, payload), http.StatusCreated, &body)
	return body.Article
}

func decodeErrorBody(t *testing.T, app *fiber.App, req *http.Request, wantStatus int) []string {
	t.Helper()

	var body models.ErrorResponse
	doReq(t, app, req, wantStatus, &body)
	require.NotEmpty(t, body.Errors.Body)
	return body.Errors.Body
}

func TestHealthEndpoints(t *testing.T) {
	app, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Readiness reports healthy with the database up; Redis is optional.
	req = httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
