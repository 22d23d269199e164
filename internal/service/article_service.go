package service

import (
	"context"

	"conduit/internal/models"
	"conduit/internal/repository"

	"github.com/gosimple/slug"
)

// ArticleService provides article CRUD, listing and favoriting business logic.
type ArticleService struct {
	articleRepo repository.ArticleRepository
	followRepo  repository.FollowRepository
}

// NewArticleService returns a new ArticleService.
func NewArticleService(articleRepo repository.ArticleRepository, followRepo repository.FollowRepository) *ArticleService {
	return &ArticleService{articleRepo: articleRepo, followRepo: followRepo}
}

// CreateArticleInput is the payload for publishing an article.
type CreateArticleInput struct {
	Title       string
	Description string
	Body        string
	TagList     []string
}

// UpdateArticleInput carries optional article fields; each non-empty field
// replaces the current value. A new title regenerates the slug.
type UpdateArticleInput struct {
	Title       string
	Description string
	Body        string
}

const maxTitleLen = 300

// Create publishes a new article for author. The slug is derived from the
// title and must not collide with an existing article.
func (s *ArticleService) Create(ctx context.Context, author *models.User, in CreateArticleInput) (*models.Article, error) {
	if in.Title == "" {
		return nil, models.NewValidationError("title is required")
	}
	if len(in.Title) > maxTitleLen {
		return nil, models.NewValidationError("title too long (max 300 characters)")
	}
	if in.Body == "" {
		return nil, models.NewValidationError("body is required")
	}

	articleSlug := slug.Make(in.Title)
	exists, err := s.articleRepo.SlugExists(ctx, articleSlug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, models.NewConflictError("an article with this title already exists")
	}

	article := &models.Article{
		Slug:        articleSlug,
		Title:       in.Title,
		Description: in.Description,
		Body:        in.Body,
		AuthorID:    author.ID,
	}
	if err := s.articleRepo.Create(ctx, article, in.TagList); err != nil {
		return nil, err
	}

	// A just-created article has no favorites and its author profile is
	// already in hand; skip the re-fetch.
	article.Author = *author
	article.Favorited = false
	article.FavoritesCount = 0
	return article, nil
}

// Get returns the article for slug with viewer-relative derived fields.
func (s *ArticleService) Get(ctx context.Context, slugParam string, viewer *models.User) (*models.Article, error) {
	article, err := s.articleRepo.GetBySlug(ctx, slugParam, viewerID(viewer))
	if err != nil {
		return nil, err
	}
	if err := s.hydrateFollowing(ctx, viewer, article); err != nil {
		return nil, err
	}
	return article, nil
}

// List returns filtered, paginated articles plus the unpaginated total.
func (s *ArticleService) List(ctx context.Context, f repository.ArticleFilter, viewer *models.User) ([]*models.Article, int64, error) {
	articles, total, err := s.articleRepo.List(ctx, f, viewerID(viewer))
	if err != nil {
		return nil, 0, err
	}
	if err := s.hydrateFollowing(ctx, viewer, articles...); err != nil {
		return nil, 0, err
	}
	return articles, total, nil
}

// Feed returns articles authored by users the viewer follows.
func (s *ArticleService) Feed(ctx context.Context, viewer *models.User, limit, offset int) ([]*models.Article, int64, error) {
	articles, total, err := s.articleRepo.Feed(ctx, viewer.ID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if err := s.hydrateFollowing(ctx, viewer, articles...); err != nil {
		return nil, 0, err
	}
	return articles, total, nil
}

// Update applies a partial update to the viewer's own article. The article
// must exist (404) and belong to the viewer (403); a changed title must not
// produce a colliding slug.
func (s *ArticleService) Update(ctx context.Context, slugParam string, viewer *models.User, in UpdateArticleInput) (*models.Article, error) {
	article, err := s.articleRepo.GetBySlug(ctx, slugParam, viewer.ID)
	if err != nil {
		return nil, err
	}
	if article.AuthorID != viewer.ID {
		return nil, models.NewForbiddenError("you do not own this article")
	}

	if in.Title != "" && in.Title != article.Title {
		if len(in.Title) > maxTitleLen {
			return nil, models.NewValidationError("title too long (max 300 characters)")
		}
		newSlug := slug.Make(in.Title)
		if newSlug != article.Slug {
			exists, err := s.articleRepo.SlugExists(ctx, newSlug)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, models.NewConflictError("an article with this title already exists")
			}
		}
		article.Title = in.Title
		article.Slug = newSlug
	}
	if in.Description != "" {
		article.Description = in.Description
	}
	if in.Body != "" {
		article.Body = in.Body
	}

	if err := s.articleRepo.Update(ctx, article, slugParam); err != nil {
		return nil, err
	}
	return s.Get(ctx, article.Slug, viewer)
}

// Delete removes the viewer's own article.
func (s *ArticleService) Delete(ctx context.Context, slugParam string, viewer *models.User) error {
	article, err := s.articleRepo.GetBySlug(ctx, slugParam, viewer.ID)
	if err != nil {
		return err
	}
	if article.AuthorID != viewer.ID {
		return models.NewForbiddenError("you do not own this article")
	}
	return s.articleRepo.Delete(ctx, article.Slug, viewer.ID)
}

// Favorite marks the article as favorited by viewer. Favoriting an already
// favorited article is a conflict, never a double count.
func (s *ArticleService) Favorite(ctx context.Context, slugParam string, viewer *models.User) (*models.Article, error) {
	article, err := s.articleRepo.GetBySlug(ctx, slugParam, viewer.ID)
	if err != nil {
		return nil, err
	}

	favorited, err := s.articleRepo.IsFavorited(ctx, viewer.ID, article.ID)
	if err != nil {
		return nil, err
	}
	if favorited {
		return nil, models.NewConflictError("article already favorited")
	}

	if err := s.articleRepo.Favorite(ctx, viewer.ID, article); err != nil {
		return nil, err
	}
	return s.Get(ctx, article.Slug, viewer)
}

// Unfavorite removes the viewer's favorite from the article.
func (s *ArticleService) Unfavorite(ctx context.Context, slugParam string, viewer *models.User) (*models.Article, error) {
	article, err := s.articleRepo.GetBySlug(ctx, slugParam, viewer.ID)
	if err != nil {
		return nil, err
	}

	favorited, err := s.articleRepo.IsFavorited(ctx, viewer.ID, article.ID)
	if err != nil {
		return nil, err
	}
	if !favorited {
		return nil, models.NewConflictError("article not favorited")
	}

	if err := s.articleRepo.Unfavorite(ctx, viewer.ID, article); err != nil {
		return nil, err
	}
	return s.Get(ctx, article.Slug, viewer)
}

// hydrateFollowing fills the author.following flag for a page of articles
// using a single batched follow lookup.
func (s *ArticleService) hydrateFollowing(ctx context.Context, viewer *models.User, articles ...*models.Article) error {
	if viewer == nil || len(articles) == 0 {
		return nil
	}

	authorIDs := make([]uint, 0, len(articles))
	for _, a := range articles {
		authorIDs = append(authorIDs, a.AuthorID)
	}

	following, err := s.followRepo.FollowingIDs(ctx, viewer.ID, authorIDs)
	if err != nil {
		return err
	}
	for _, a := range articles {
		a.Author.Following = following[a.AuthorID]
	}
	return nil
}

func viewerID(viewer *models.User) uint {
	if viewer == nil {
		return 0
	}
	return viewer.ID
}
