package server

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateComment(t *testing.T) {
	app, _ := newTestServer(t)
	jakeToken := registerUser(t, app, "jake")
	article := createArticle(t, app, jakeToken, "Commentable", nil)

	t.Run("Success", func(t *testing.T) {
		payload := map[string]any{"comment": map[string]string{"body": "Nice post!"}}

		var body commentEnvelope
		doReq(t, app, authReq(t, http.MethodPost, "/api/articles/"+article.Slug+"/comments", jakeToken, payload),
			http.StatusCreated, &body)
		assert.Equal(t, "Nice post!", body.Comment.Body)
		assert.Equal(t, "jake", body.Comment.Author.Username)
		assert.NotZero(t, body.Comment.ID)
	})

	t.Run("Empty Body", func(t *testing.T) {
		payload := map[string]any{"comment": map[string]string{"body": ""}}
		decodeErrorBody(t, app,
			authReq(t, http.MethodPost, "/api/articles/"+article.Slug+"/comments", jakeToken, payload),
			http.StatusUnprocessableEntity)
	})

	t.Run("Missing Article", func(t *testing.T) {
		payload := map[string]any{"comment": map[string]string{"body": "to nowhere"}}
		decodeErrorBody(t, app,
			authReq(t, http.MethodPost, "/api/articles/no-such-slug/comments", jakeToken, payload),
			http.StatusNotFound)
	})

	t.Run("Requires Auth", func(t *testing.T) {
		payload := map[string]any{"comment": map[string]string{"body": "anon"}}
		req := jsonReq(t, http.MethodPost, "/api/articles/"+article.Slug+"/comments", payload)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestGetComments(t *testing.T) {
	app, _ := newTestServer(t)
	jakeToken := registerUser(t, app, "jake")
	article := createArticle(t, app, jakeToken, "Discussed", nil)

	for _, text := range []string{"first", "second"} {
		payload := map[string]any{"comment": map[string]string{"body": text}}
		var body commentEnvelope
		doReq(t, app, authReq(t, http.MethodPost, "/api/articles/"+article.Slug+"/comments", jakeToken, payload),
			http.StatusCreated, &body)
	}

	t.Run("Anonymous", func(t *testing.T) {
		var body commentsEnvelope
		doReq(t, app, jsonReq(t, http.MethodGet, "/api/articles/"+article.Slug+"/comments", nil),
			http.StatusOK, &body)
		require.Len(t, body.Comments, 2)
		for _, c := range body.Comments {
			assert.Equal(t, "jake", c.Author.Username)
			assert.False(t, c.Author.Following)
		}
	})

	t.Run("Missing Article", func(t *testing.T) {
		decodeErrorBody(t, app,
			jsonReq(t, http.MethodGet, "/api/articles/no-such-slug/comments", nil), http.StatusNotFound)
	})
}

func TestDeleteComment(t *testing.T) {
	app, _ := newTestServer(t)
	jakeToken := registerUser(t, app, "jake")
	annToken := registerUser(t, app, "ann")
	article := createArticle(t, app, jakeToken, "Moderated", nil)

	payload := map[string]any{"comment": map[string]string{"body": "delete me"}}
	var created commentEnvelope
	doReq(t, app, authReq(t, http.MethodPost, "/api/articles/"+article.Slug+"/comments", jakeToken, payload),
		http.StatusCreated, &created)

	commentPath := fmt.Sprintf("/api/articles/%s/comments/%d", article.Slug, created.Comment.ID)

	t.Run("Not Owner", func(t *testing.T) {
		decodeErrorBody(t, app,
			authReq(t, http.MethodDelete, commentPath, annToken, nil), http.StatusForbidden)
	})

	t.Run("Bad ID", func(t *testing.T) {
		decodeErrorBody(t, app,
			authReq(t, http.MethodDelete, "/api/articles/"+article.Slug+"/comments/abc", jakeToken, nil),
			http.StatusUnprocessableEntity)
	})

	t.Run("Owner", func(t *testing.T) {
		req := authReq(t, http.MethodDelete, commentPath, jakeToken, nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		var body commentsEnvelope
		doReq(t, app, jsonReq(t, http.MethodGet, "/api/articles/"+article.Slug+"/comments", nil),
			http.StatusOK, &body)
		assert.Empty(t, body.Comments)
	})

	t.Run("Already Deleted", func(t *testing.T) {
		decodeErrorBody(t, app,
			authReq(t, http.MethodDelete, commentPath, jakeToken, nil), http.StatusNotFound)
	})
}
