package server

import (
	"conduit/internal/models"
	"conduit/internal/observability"
	"conduit/internal/repository"
	"conduit/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListArticles handles GET /api/articles
func (s *Server) ListArticles(c *fiber.Ctx) error {
	viewer := s.optionalUser(c)
	page := parsePagination(c, defaultPageLimit)

	filter := repository.ArticleFilter{
		Tag:       c.Query("tag"),
		Author:    c.Query("author"),
		Favorited: c.Query("favorited"),
		Limit:     page.Limit,
		Offset:    page.Offset,
	}

	articles, total, err := s.articleService.List(c.Context(), filter, viewer)
	if err != nil {
		return s.respondError(c, err)
	}

	observability.ArticleReads.WithLabelValues("list").Inc()
	return c.JSON(newArticlesEnvelope(articles, total))
}

// GetFeed handles GET /api/articles/feed
func (s *Server) GetFeed(c *fiber.Ctx) error {
	viewer := s.currentUser(c)
	page := parsePagination(c, defaultPageLimit)

	articles, total, err := s.articleService.Feed(c.Context(), viewer, page.Limit, page.Offset)
	if err != nil {
		return s.respondError(c, err)
	}

	observability.ArticleReads.WithLabelValues("feed").Inc()
	return c.JSON(newArticlesEnvelope(articles, total))
}

// GetArticle handles GET /api/articles/:slug
func (s *Server) GetArticle(c *fiber.Ctx) error {
	viewer := s.optionalUser(c)

	article, err := s.articleService.Get(c.Context(), c.Params("slug"), viewer)
	if err != nil {
		return s.respondError(c, err)
	}

	observability.ArticleReads.WithLabelValues("slug").Inc()
	return c.JSON(articleEnvelope{Article: newArticleBody(article)})
}

// CreateArticle handles POST /api/articles
func (s *Server) CreateArticle(c *fiber.Ctx) error {
	author := s.currentUser(c)

	var req struct {
		Article struct {
			Title       string   `json:"title"`
			Description string   `json:"description"`
			Body        string   `json:"body"`
			TagList     []string `json:"tagList"`
		} `json:"article"`
	}
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, models.NewValidationError("invalid request body"))
	}

	article, err := s.articleService.Create(c.Context(), author, service.CreateArticleInput{
		Title:       req.Article.Title,
		Description: req.Article.Description,
		Body:        req.Article.Body,
		TagList:     req.Article.TagList,
	})
	if err != nil {
		return s.respondError(c, err)
	}

	observability.ArticleWrites.WithLabelValues("create").Inc()
	return c.Status(fiber.StatusCreated).JSON(articleEnvelope{Article: newArticleBody(article)})
}

// UpdateArticle handles PUT /api/articles/:slug
func (s *Server) UpdateArticle(c *fiber.Ctx) error {
	viewer := s.currentUser(c)

	var req struct {
		Article struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Body        string `json:"body"`
		} `json:"article"`
	}
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, models.NewValidationError("invalid request body"))
	}

	article, err := s.articleService.Update(c.Context(), c.Params("slug"), viewer, service.UpdateArticleInput{
		Title:       req.Article.Title,
		Description: req.Article.Description,
		Body:        req.Article.Body,
	})
	if err != nil {
		return s.respondError(c, err)
	}

	observability.ArticleWrites.WithLabelValues("update").Inc()
	return c.JSON(articleEnvelope{Article: newArticleBody(article)})
}

// DeleteArticle handles DELETE /api/articles/:slug
func (s *Server) DeleteArticle(c *fiber.Ctx) error {
	viewer := s.currentUser(c)

	if err := s.articleService.Delete(c.Context(), c.Params("slug"), viewer); err != nil {
		return s.respondError(c, err)
	}

	observability.ArticleWrites.WithLabelValues("delete").Inc()
	return c.SendStatus(fiber.StatusNoContent)
}

// FavoriteArticle handles POST /api/articles/:slug/favorite
func (s *Server) FavoriteArticle(c *fiber.Ctx) error {
	viewer := s.currentUser(c)

	article, err := s.articleService.Favorite(c.Context(), c.Params("slug"), viewer)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(articleEnvelope{Article: newArticleBody(article)})
}

// UnfavoriteArticle handles DELETE /api/articles/:slug/favorite
func (s *Server) UnfavoriteArticle(c *fiber.Ctx) error {
	viewer := s.currentUser(c)

	article, err := s.articleService.Unfavorite(c.Context(), c.Params("slug"), viewer)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(articleEnvelope{Article: newArticleBody(article)})
}
