package service

import (
	"context"
	"testing"

	"conduit/internal/models"
	"conduit/internal/repository"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// testEnv bundles the sqlite-backed repositories and services under test.
type testEnv struct {
	db       *gorm.DB
	users    *UserService
	profiles *ProfileService
	articles *ArticleService
	comments *CommentService

	articleRepo repository.ArticleRepository
	followRepo  repository.FollowRepository
}

func setupServices(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Tag{},
		&models.Article{},
		&models.Favorite{},
		&models.Follow{},
		&models.Comment{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	articleRepo := repository.NewArticleRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	followRepo := repository.NewFollowRepository(db)

	return &testEnv{
		db:          db,
		users:       NewUserService(userRepo),
		profiles:    NewProfileService(userRepo, followRepo),
		articles:    NewArticleService(articleRepo, followRepo),
		comments:    NewCommentService(commentRepo, articleRepo, followRepo),
		articleRepo: articleRepo,
		followRepo:  followRepo,
	}
}

func (e *testEnv) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: string(hashed),
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *testEnv) createArticle(t *testing.T, author *models.User, title string, tags []string) *models.Article {
	t.Helper()
	article, err := e.articles.Create(context.Background(), author, CreateArticleInput{
		Title:   title,
		Body:    "body",
		TagList: tags,
	})
	require.NoError(t, err)
	return article
}

func assertErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, code, appErr.Code)
}
