package seed

import (
	"testing"
	"time"

	"conduit/internal/database"
	"conduit/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSeedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestFactory_CreateUser(t *testing.T) {
	db := setupSeedDB(t)
	f := NewFactory(db)

	user, err := f.CreateUser()
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if user.ID == 0 {
		t.Fatalf("user not persisted: %+v", user)
	}
	if user.Username == "" || user.Email == "" {
		t.Fatalf("missing generated fields: %+v", user)
	}

	override, err := f.CreateUser(func(u *models.User) {
		u.Username = "fixedname"
	})
	if err != nil {
		t.Fatalf("create user with override: %v", err)
	}
	if override.Username != "fixedname" {
		t.Fatalf("override not applied: %s", override.Username)
	}
}

func TestFactory_CreateArticle(t *testing.T) {
	db := setupSeedDB(t)
	f := NewFactory(db)

	author, err := f.CreateUser()
	if err != nil {
		t.Fatalf("create author: %v", err)
	}

	article, err := f.CreateArticle(author)
	if err != nil {
		t.Fatalf("create article: %v", err)
	}
	if article.Slug == "" || article.AuthorID != author.ID {
		t.Fatalf("unexpected article: %+v", article)
	}
	if len(article.Tags) < 1 || len(article.Tags) > 3 {
		t.Fatalf("expected 1-3 tags, got %d", len(article.Tags))
	}
	if time.Since(article.CreatedAt) > 91*24*time.Hour {
		t.Fatalf("created_at too old: %v", article.CreatedAt)
	}
}

func TestSeeder_Run(t *testing.T) {
	db := setupSeedDB(t)
	s := NewSeeder(db)

	if err := s.Run(Options{NumUsers: 5, NumArticles: 8, ShouldClean: true}); err != nil {
		t.Fatalf("seed run: %v", err)
	}

	var users, articles int64
	if err := db.Model(&models.User{}).Count(&users).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if err := db.Model(&models.Article{}).Count(&articles).Error; err != nil {
		t.Fatalf("count articles: %v", err)
	}
	if users != 5 {
		t.Fatalf("expected 5 users, got %d", users)
	}
	if articles != 8 {
		t.Fatalf("expected 8 articles, got %d", articles)
	}

	// Re-running with clean starts from scratch rather than accumulating.
	if err := s.Run(Options{NumUsers: 2, NumArticles: 3, ShouldClean: true}); err != nil {
		t.Fatalf("second seed run: %v", err)
	}
	if err := db.Model(&models.User{}).Count(&users).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if users != 2 {
		t.Fatalf("expected 2 users after clean, got %d", users)
	}
}
