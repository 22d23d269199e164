package repository

import (
	"context"
	"testing"
	"time"

	"conduit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommentRepository(db)
	articleRepo := NewArticleRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	reader := createTestUser(t, db, "reader")
	article := createTestArticle(t, db, articleRepo, author, "commented", nil, time.Time{})

	t.Run("Create Loads Author", func(t *testing.T) {
		comment := &models.Comment{Body: "first!", AuthorID: reader.ID, ArticleID: article.ID}
		require.NoError(t, repo.Create(ctx, comment))
		assert.NotZero(t, comment.ID)
		assert.Equal(t, "reader", comment.Author.Username)
	})

	t.Run("ListByArticle Newest First", func(t *testing.T) {
		old := &models.Comment{Body: "older", AuthorID: author.ID, ArticleID: article.ID}
		require.NoError(t, repo.Create(ctx, old))
		require.NoError(t, db.Model(&models.Comment{}).
			Where("id = ?", old.ID).
			Update("created_at", time.Now().Add(-time.Hour)).Error)

		comments, err := repo.ListByArticle(ctx, article.ID)
		require.NoError(t, err)
		require.Len(t, comments, 2)
		assert.Equal(t, "first!", comments[0].Body)
		assert.Equal(t, "older", comments[1].Body)
		assert.Equal(t, "reader", comments[0].Author.Username)
	})

	t.Run("GetByID Not Found", func(t *testing.T) {
		_, err := repo.GetByID(ctx, 999)
		require.Error(t, err)

		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeNotFound, appErr.Code)
	})

	t.Run("Delete Scoped To Author", func(t *testing.T) {
		comment := &models.Comment{Body: "mine", AuthorID: reader.ID, ArticleID: article.ID}
		require.NoError(t, repo.Create(ctx, comment))

		// The wrong author cannot delete the row.
		require.NoError(t, repo.Delete(ctx, comment.ID, author.ID))
		_, err := repo.GetByID(ctx, comment.ID)
		require.NoError(t, err)

		require.NoError(t, repo.Delete(ctx, comment.ID, reader.ID))
		_, err = repo.GetByID(ctx, comment.ID)
		require.Error(t, err)
	})
}

func TestCommentRepository_EmptyArticle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommentRepository(db)

	comments, err := repo.ListByArticle(context.Background(), 42)
	require.NoError(t, err)
	assert.Empty(t, comments)
}
