package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateArticle(t *testing.T) {
	app, _ := newTestServer(t)
	token := registerUser(t, app, "jake")

	t.Run("Success", func(t *testing.T) {
		article := createArticle(t, app, token, "How to Train Your Dragon", []string{"dragons", "training"})
		assert.Equal(t, "how-to-train-your-dragon", article.Slug)
		assert.Equal(t, "jake", article.Author.Username)
		assert.ElementsMatch(t, []string{"dragons", "training"}, article.TagList)
		assert.Equal(t, int64(0), article.FavoritesCount)
		assert.False(t, article.Favorited)
	})

	t.Run("Duplicate Title", func(t *testing.T) {
		payload := map[string]any{"article": map[string]any{
			"title":       "How to Train Your Dragon",
			"description": "desc",
			"body":        "body",
		}}
		decodeErrorBody(t, app,
			authReq(t, http.MethodPost, "/api/articles", token, payload), http.StatusUnprocessableEntity)
	})

	t.Run("Missing Title", func(t *testing.T) {
		payload := map[string]any{"article": map[string]any{
			"description": "desc",
			"body":        "body",
		}}
		decodeErrorBody(t, app,
			authReq(t, http.MethodPost, "/api/articles", token, payload), http.StatusUnprocessableEntity)
	})

	t.Run("Requires Auth", func(t *testing.T) {
		payload := map[string]any{"article": map[string]any{"title": "x", "body": "y"}}
		req := jsonReq(t, http.MethodPost, "/api/articles", payload)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestGetArticle(t *testing.T) {
	app, _ := newTestServer(t)
	token := registerUser(t, app, "jake")
	created := createArticle(t, app, token, "Anonymous Readable", nil)

	t.Run("Anonymous", func(t *testing.T) {
		var body articleEnvelope
		doReq(t, app, jsonReq(t, http.MethodGet, "/api/articles/"+created.Slug, nil), http.StatusOK, &body)
		assert.Equal(t, created.Slug, body.Article.Slug)
		assert.False(t, body.Article.Author.Following)
	})

	t.Run("Not Found", func(t *testing.T) {
		decodeErrorBody(t, app,
			jsonReq(t, http.MethodGet, "/api/articles/no-such-slug", nil), http.StatusNotFound)
	})
}

func TestListArticles(t *testing.T) {
	app, _ := newTestServer(t)
	jakeToken := registerUser(t, app, "jake")
	annToken := registerUser(t, app, "ann")

	createArticle(t, app, jakeToken, "Go Concurrency", []string{"go"})
	createArticle(t, app, jakeToken, "Fiber Routing", []string{"go", "web"})
	annArticle := createArticle(t, app, annToken, "Cooking With Gas", []string{"cooking"})

	// ann favorites her own article so the favorited filter has a hit.
	var favd articleEnvelope
	doReq(t, app, authReq(t, http.MethodPost, "/api/articles/"+annArticle.Slug+"/favorite", annToken, nil),
		http.StatusOK, &favd)
	require.Equal(t, int64(1), favd.Article.FavoritesCount)

	t.Run("All", func(t *testing.T) {
		var body articlesEnvelope
		doReq(t, app, jsonReq(t, http.MethodGet, "/api/articles", nil), http.StatusOK, &body)
		assert.Equal(t, int64(3), body.ArticlesCount)
		assert.Len(t, body.Articles, 3)
	})

	t.Run("By Tag", func(t *testing.T) {
		var body articlesEnvelope
		doReq(t, app, jsonReq(t, http.MethodGet, "/api/articles?tag=go", nil), http.StatusOK, &body)
		assert.Equal(t, int64(2), body.ArticlesCount)
		for _, a := range body.Articles {
			assert.Contains(t, a.TagList, "go")
		}
	})

	t.Run("By Author", func(t *testing.T) {
		var body articlesEnvelope
		doReq(t, app, jsonReq(t, http.MethodGet, "/api/articles?author=ann", nil), http.StatusOK, &body)
		assert.Equal(t, int64(1), body.ArticlesCount)
		assert.Equal(t, "ann", body.Articles[0].Author.Username)
	})

	t.Run("By Favoriter", func(t *testing.T) {
		var body articlesEnvelope
		doReq(t, app, jsonReq(t, http.MethodGet, "/api/articles?favorited=ann", nil), http.StatusOK, &body)
		assert.Equal(t, int64(1), body.ArticlesCount)
		assert.Equal(t, annArticle.Slug, body.Articles[0].Slug)
	})

	t.Run("Pagination", func(t *testing.T) {
		var body articlesEnvelope
		doReq(t, app, jsonReq(t, http.MethodGet, "/api/articles?limit=2&offset=2", nil), http.StatusOK, &body)
		assert.Equal(t, int64(3), body.ArticlesCount)
		assert.Len(t, body.Articles, 1)
	})

	t.Run("Unknown Tag", func(t *testing.T) {
		var body articlesEnvelope
		doReq(t, app, jsonReq(t, http.MethodGet, "/api/articles?tag=nope", nil), http.StatusOK, &body)
		assert.Equal(t, int64(0), body.ArticlesCount)
		assert.Empty(t, body.Articles)
	})
}

func TestUpdateArticle(t *testing.T) {
	app, _ := newTestServer(t)
	jakeToken := registerUser(t, app, "jake")
	annToken := registerUser(t, app, "ann")
	created := createArticle(t, app, jakeToken, "Original Title", nil)

	t.Run("Not Owner", func(t *testing.T) {
		payload := map[string]any{"article": map[string]any{"title": "Stolen"}}
		decodeErrorBody(t, app,
			authReq(t, http.MethodPut, "/api/articles/"+created.Slug, annToken, payload), http.StatusForbidden)
	})

	t.Run("Partial Body Update", func(t *testing.T) {
		payload := map[string]any{"article": map[string]any{"body": "updated body"}}

		var body articleEnvelope
		doReq(t, app, authReq(t, http.MethodPut, "/api/articles/"+created.Slug, jakeToken, payload),
			http.StatusOK, &body)
		assert.Equal(t, "updated body", body.Article.Body)
		assert.Equal(t, created.Slug, body.Article.Slug)
	})

	t.Run("Title Change Regenerates Slug", func(t *testing.T) {
		payload := map[string]any{"article": map[string]any{"title": "Brand New Title"}}

		var body articleEnvelope
		doReq(t, app, authReq(t, http.MethodPut, "/api/articles/"+created.Slug, jakeToken, payload),
			http.StatusOK, &body)
		assert.Equal(t, "brand-new-title", body.Article.Slug)

		decodeErrorBody(t, app,
			jsonReq(t, http.MethodGet, "/api/articles/"+created.Slug, nil), http.StatusNotFound)
	})
}

func TestDeleteArticle(t *testing.T) {
	app, _ := newTestServer(t)
	jakeToken := registerUser(t, app, "jake")
	annToken := registerUser(t, app, "ann")
	created := createArticle(t, app, jakeToken, "Short Lived", nil)

	t.Run("Not Owner", func(t *testing.T) {
		decodeErrorBody(t, app,
			authReq(t, http.MethodDelete, "/api/articles/"+created.Slug, annToken, nil), http.StatusForbidden)
	})

	t.Run("Owner", func(t *testing.T) {
		req := authReq(t, http.MethodDelete, "/api/articles/"+created.Slug, jakeToken, nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		decodeErrorBody(t, app,
			jsonReq(t, http.MethodGet, "/api/articles/"+created.Slug, nil), http.StatusNotFound)
	})
}

func TestFavoriteArticle(t *testing.T) {
	app, _ := newTestServer(t)
	jakeToken := registerUser(t, app, "jake")
	annToken := registerUser(t, app, "ann")
	created := createArticle(t, app, jakeToken, "Favorite Me", nil)

	t.Run("Favorite", func(t *testing.T) {
		var body articleEnvelope
		doReq(t, app, authReq(t, http.MethodPost, "/api/articles/"+created.Slug+"/favorite", annToken, nil),
			http.StatusOK, &body)
		assert.True(t, body.Article.Favorited)
		assert.Equal(t, int64(1), body.Article.FavoritesCount)
	})

	t.Run("Duplicate Favorite", func(t *testing.T) {
		decodeErrorBody(t, app,
			authReq(t, http.MethodPost, "/api/articles/"+created.Slug+"/favorite", annToken, nil),
			http.StatusUnprocessableEntity)
	})

	t.Run("Viewer Relative", func(t *testing.T) {
		var body articleEnvelope
		doReq(t, app, authReq(t, http.MethodGet, "/api/articles/"+created.Slug, jakeToken, nil),
			http.StatusOK, &body)
		assert.False(t, body.Article.Favorited)
		assert.Equal(t, int64(1), body.Article.FavoritesCount)
	})

	t.Run("Unfavorite", func(t *testing.T) {
		var body articleEnvelope
		doReq(t, app, authReq(t, http.MethodDelete, "/api/articles/"+created.Slug+"/favorite", annToken, nil),
			http.StatusOK, &body)
		assert.False(t, body.Article.Favorited)
		assert.Equal(t, int64(0), body.Article.FavoritesCount)
	})

	t.Run("Unfavorite Without Favorite", func(t *testing.T) {
		decodeErrorBody(t, app,
			authReq(t, http.MethodDelete, "/api/articles/"+created.Slug+"/favorite", annToken, nil),
			http.StatusUnprocessableEntity)
	})
}

func TestGetFeed(t *testing.T) {
	app, _ := newTestServer(t)
	jakeToken := registerUser(t, app, "jake")
	annToken := registerUser(t, app, "ann")
	registerUser(t, app, "celeb")
	celebToken := loginUser(t, app, "celeb")

	createArticle(t, app, celebToken, "Celeb Post One", nil)
	createArticle(t, app, celebToken, "Celeb Post Two", nil)
	createArticle(t, app, annToken, "Ann Post", nil)

	var profile profileEnvelope
	doReq(t, app, authReq(t, http.MethodPost, "/api/profiles/celeb/follow", jakeToken, nil),
		http.StatusOK, &profile)
	require.True(t, profile.Profile.Following)

	t.Run("Followed Authors Only", func(t *testing.T) {
		var body articlesEnvelope
		doReq(t, app, authReq(t, http.MethodGet, "/api/articles/feed", jakeToken, nil), http.StatusOK, &body)
		assert.Equal(t, int64(2), body.ArticlesCount)
		for _, a := range body.Articles {
			assert.Equal(t, "celeb", a.Author.Username)
			assert.True(t, a.Author.Following)
		}
	})

	t.Run("Empty Without Follows", func(t *testing.T) {
		var body articlesEnvelope
		doReq(t, app, authReq(t, http.MethodGet, "/api/articles/feed", annToken, nil), http.StatusOK, &body)
		assert.Equal(t, int64(0), body.ArticlesCount)
	})

	t.Run("Requires Auth", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/articles/feed", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func loginUser(t *testing.T, app *fiber.App, username string) string {
	t.Helper()

	payload := map[string]any{"user": map[string]string{
		"email":    username + "@example.com",
		"password": "password123",
	}}

	var body userEnvelope
	doReq(t, app, jsonReq(t, http.MethodPost, "/api/users/login", payload), http.StatusOK, &body)
	return body.User.Token
}
