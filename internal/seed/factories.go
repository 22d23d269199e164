// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"conduit/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/gosimple/slug"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password assigned to every generated user.
const DefaultPassword = "password123"

var tagPool = []string{
	"go", "programming", "webdev", "tutorial", "career", "productivity",
	"databases", "testing", "devops", "cloud", "security", "opensource",
	"api", "architecture", "performance", "frontend", "backend",
}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db   *gorm.DB
	rand *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{db: db, rand: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// CreateUser constructs and persists a sample user.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)

	user := &models.User{
		Username: strings.ToLower(gofakeit.Username()) + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:    gofakeit.Email(),
		Password: string(hashed),
		Bio:      gofakeit.Sentence(10),
		Image:    fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateArticle constructs and persists a sample article with one to three
// random tags. The created_at timestamp is spread over the last 90 days so
// listings look lived-in.
func (f *Factory) CreateArticle(author *models.User, overrides ...func(*models.Article)) (*models.Article, error) {
	title := strings.TrimSuffix(gofakeit.Sentence(f.rand.Intn(4)+3), ".")

	article := &models.Article{
		Title:       title,
		Slug:        slug.Make(title) + fmt.Sprintf("-%d", gofakeit.Number(1000, 9999)),
		Description: gofakeit.Sentence(12),
		Body:        gofakeit.Paragraph(2, 4, 8, "\n\n"),
		AuthorID:    author.ID,
	}

	daysBack := f.rand.Intn(90)
	article.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour -
		time.Duration(f.rand.Intn(24))*time.Hour)
	article.UpdatedAt = article.CreatedAt

	for _, override := range overrides {
		override(article)
	}

	if err := f.db.Create(article).Error; err != nil {
		return nil, err
	}

	tags, err := f.pickTags(f.rand.Intn(3) + 1)
	if err != nil {
		return nil, err
	}
	if err := f.db.Model(article).Association("Tags").Append(tags); err != nil {
		return nil, err
	}
	article.Tags = make([]models.Tag, 0, len(tags))
	for _, t := range tags {
		article.Tags = append(article.Tags, *t)
	}
	return article, nil
}

// CreateComment persists a sample comment by author on the article.
func (f *Factory) CreateComment(author *models.User, article *models.Article) (*models.Comment, error) {
	comment := &models.Comment{
		Body:      gofakeit.Sentence(f.rand.Intn(12) + 4),
		AuthorID:  author.ID,
		ArticleID: article.ID,
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// pickTags resolves n random tag names from the pool, creating rows on first use.
func (f *Factory) pickTags(n int) ([]*models.Tag, error) {
	picked := map[string]struct{}{}
	tags := make([]*models.Tag, 0, n)
	for len(tags) < n {
		name := tagPool[f.rand.Intn(len(tagPool))]
		if _, dup := picked[name]; dup {
			continue
		}
		picked[name] = struct{}{}

		tag := &models.Tag{Name: name}
		if err := f.db.Where(models.Tag{Name: name}).FirstOrCreate(tag).Error; err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}
