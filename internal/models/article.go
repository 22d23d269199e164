package models

import (
	"time"
)

// Article represents a published article.
type Article struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Slug        string `gorm:"uniqueIndex;not null" json:"slug"`
	Title       string `gorm:"not null" json:"title"`
	Description string `json:"description"`
	Body        string `gorm:"not null" json:"body"`
	AuthorID    uint   `gorm:"not null;index" json:"author_id"`
	Author      User   `gorm:"foreignKey:AuthorID" json:"author"`
	Tags        []Tag  `gorm:"many2many:article_tags;" json:"tags"`
	// FavoritesCount is not persisted; scanned from a query-time alias
	FavoritesCount int64 `gorm:"->;-:migration" json:"favorites_count"`
	// Favorited indicates whether the requesting user favorited this article (computed)
	Favorited bool      `gorm:"->;-:migration" json:"favorited"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Article) TableName() string {
	return "articles"
}

// TagNames returns the article's tag names sorted the way they were loaded.
func (a *Article) TagNames() []string {
	names := make([]string, 0, len(a.Tags))
	for _, t := range a.Tags {
		names = append(names, t.Name)
	}
	return names
}

// Tag is a label attached to articles. Tags are created lazily and never deleted.
type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}

// TableName specifies the table name for GORM
func (Tag) TableName() string {
	return "tags"
}

// Favorite marks an article as favorited by a user. The (user, article)
// pair is unique; its cardinality per article is the favorites count.
type Favorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_favorite_pair" json:"user_id"`
	ArticleID uint      `gorm:"not null;uniqueIndex:idx_favorite_pair" json:"article_id"`
	Article   Article   `gorm:"foreignKey:ArticleID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Favorite) TableName() string {
	return "favorites"
}
