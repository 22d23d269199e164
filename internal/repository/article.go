package repository

import (
	"context"
	"errors"

	"conduit/internal/cache"
	"conduit/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ArticleFilter holds the optional query filters for listing articles.
type ArticleFilter struct {
	Tag       string
	Author    string
	Favorited string
	Limit     int
	Offset    int
}

// ArticleRepository defines the interface for article data operations
type ArticleRepository interface {
	Create(ctx context.Context, article *models.Article, tagNames []string) error
	GetBySlug(ctx context.Context, slug string, viewerID uint) (*models.Article, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context, filter ArticleFilter, viewerID uint) ([]*models.Article, int64, error)
	Feed(ctx context.Context, viewerID uint, limit, offset int) ([]*models.Article, int64, error)
	Update(ctx context.Context, article *models.Article, previousSlug string) error
	Delete(ctx context.Context, slug string, authorID uint) error
	Favorite(ctx context.Context, userID uint, article *models.Article) error
	Unfavorite(ctx context.Context, userID uint, article *models.Article) error
	IsFavorited(ctx context.Context, userID, articleID uint) (bool, error)
}

// articleRepository implements ArticleRepository
type articleRepository struct {
	db *gorm.DB
}

// NewArticleRepository creates a new article repository
func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{db: db}
}

// applyArticleDetails attaches the computed favorites_count and favorited
// columns to the SELECT. favorited is relative to viewerID and constant
// false for anonymous requests.
func (r *articleRepository) applyArticleDetails(db *gorm.DB, viewerID uint) *gorm.DB {
	selectQuery := "articles.*, " +
		"(SELECT COUNT(*) FROM favorites WHERE favorites.article_id = articles.id) as favorites_count"

	if viewerID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM favorites WHERE favorites.article_id = articles.id AND favorites.user_id = ?) as favorited", viewerID)
	}

	return db.Select(selectQuery + ", false as favorited")
}

// applyFilter appends the optional tag, author and favorited joins. Each
// predicate is bound to its parameter by the query builder at append time,
// so filter order never desynchronizes from parameter order.
func (r *articleRepository) applyFilter(db *gorm.DB, f ArticleFilter) *gorm.DB {
	if f.Tag != "" {
		db = db.
			Joins("JOIN article_tags ON article_tags.article_id = articles.id").
			Joins("JOIN tags ON tags.id = article_tags.tag_id").
			Where("tags.name = ?", f.Tag)
	}
	if f.Author != "" {
		db = db.
			Joins("JOIN users authors ON authors.id = articles.author_id").
			Where("authors.username = ?", f.Author)
	}
	if f.Favorited != "" {
		db = db.
			Joins("JOIN favorites favs ON favs.article_id = articles.id").
			Joins("JOIN users favoriters ON favoriters.id = favs.user_id").
			Where("favoriters.username = ?", f.Favorited)
	}
	return db
}

// Create inserts the article, lazily creates any new tags and links them,
// all in a single transaction so the row and its tag links are all-or-nothing.
func (r *articleRepository) Create(ctx context.Context, article *models.Article, tagNames []string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := ensureTags(tx, tagNames)
		if err != nil {
			return err
		}
		article.Tags = tags

		// Tags were just persisted; only create the join rows.
		return tx.Omit("Tags.*").Create(article).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}

	if len(tagNames) > 0 {
		cache.InvalidateTagList(ctx)
	}
	return nil
}

// GetBySlug loads one article with its computed columns. Anonymous reads
// are viewer-independent, so they go through the cache; authenticated reads
// always hit the database because favorited is relative to the viewer.
func (r *articleRepository) GetBySlug(ctx context.Context, slug string, viewerID uint) (*models.Article, error) {
	if viewerID == 0 {
		var article models.Article
		err := cache.Aside(ctx, cache.ArticleKey(slug), &article, cache.ArticleTTL, func() error {
			fetched, err := r.getBySlug(ctx, slug, 0)
			if err != nil {
				return err
			}
			article = *fetched
			return nil
		})
		if err != nil {
			return nil, err
		}
		return &article, nil
	}
	return r.getBySlug(ctx, slug, viewerID)
}

func (r *articleRepository) getBySlug(ctx context.Context, slug string, viewerID uint) (*models.Article, error) {
	var article models.Article
	err := r.applyArticleDetails(r.db.WithContext(ctx), viewerID).
		Preload("Author").
		Preload("Tags").
		Where("articles.slug = ?", slug).
		First(&article).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("article")
		}
		return nil, models.NewInternalError(err)
	}
	return &article, nil
}

func (r *articleRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Article{}).
		Where("slug = ?", slug).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *articleRepository) List(ctx context.Context, f ArticleFilter, viewerID uint) ([]*models.Article, int64, error) {
	var total int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.Article{}), f).
		Distinct("articles.id").
		Count(&total).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var articles []*models.Article
	err = r.applyArticleDetails(r.applyFilter(r.db.WithContext(ctx).Model(&models.Article{}), f), viewerID).
		Preload("Author").
		Preload("Tags").
		Order("articles.created_at DESC").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&articles).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return articles, total, nil
}

// Feed returns articles authored by users the viewer follows, newest first.
func (r *articleRepository) Feed(ctx context.Context, viewerID uint, limit, offset int) ([]*models.Article, int64, error) {
	followed := "articles.author_id IN (SELECT followee_id FROM follows WHERE follower_id = ?)"

	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Article{}).
		Where(followed, viewerID).
		Count(&total).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var articles []*models.Article
	err = r.applyArticleDetails(r.db.WithContext(ctx).Model(&models.Article{}), viewerID).
		Preload("Author").
		Preload("Tags").
		Where(followed, viewerID).
		Order("articles.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&articles).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return articles, total, nil
}

// Update saves the article and drops its cache entry. When the slug changed,
// the entry under the previous slug is dropped too so renamed articles stop
// serving from it.
func (r *articleRepository) Update(ctx context.Context, article *models.Article, previousSlug string) error {
	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Save(article).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateArticle(ctx, article.Slug)
	if previousSlug != "" && previousSlug != article.Slug {
		cache.InvalidateArticle(ctx, previousSlug)
	}
	return nil
}

// Delete removes the article matched by slug+author along with its
// favorites, comments and tag links. No-op when nothing matches.
func (r *articleRepository) Delete(ctx context.Context, slug string, authorID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var article models.Article
		err := tx.Where("slug = ? AND author_id = ?", slug, authorID).First(&article).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := tx.Where("article_id = ?", article.ID).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("article_id = ?", article.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM article_tags WHERE article_id = ?", article.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&article).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}

	cache.InvalidateArticle(ctx, slug)
	return nil
}

func (r *articleRepository) Favorite(ctx context.Context, userID uint, article *models.Article) error {
	fav := &models.Favorite{UserID: userID, ArticleID: article.ID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(fav).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateArticle(ctx, article.Slug)
	return nil
}

func (r *articleRepository) Unfavorite(ctx context.Context, userID uint, article *models.Article) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND article_id = ?", userID, article.ID).
		Delete(&models.Favorite{}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateArticle(ctx, article.Slug)
	return nil
}

func (r *articleRepository) IsFavorited(ctx context.Context, userID, articleID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Favorite{}).
		Where("user_id = ? AND article_id = ?", userID, articleID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}
