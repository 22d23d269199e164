package server

import (
	"time"

	"conduit/internal/models"
)

// Response bodies are built explicitly rather than serialized from the GORM
// models so the wire format stays stable regardless of schema changes.

type userBody struct {
	Email    string `json:"email"`
	Token    string `json:"token"`
	Username string `json:"username"`
	Bio      string `json:"bio"`
	Image    string `json:"image"`
}

type profileBody struct {
	Username  string `json:"username"`
	Bio       string `json:"bio"`
	Image     string `json:"image"`
	Following bool   `json:"following"`
}

type articleBody struct {
	Slug           string      `json:"slug"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	Body           string      `json:"body"`
	TagList        []string    `json:"tagList"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
	Favorited      bool        `json:"favorited"`
	FavoritesCount int64       `json:"favoritesCount"`
	Author         profileBody `json:"author"`
}

type commentBody struct {
	ID        uint        `json:"id"`
	Body      string      `json:"body"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
	Author    profileBody `json:"author"`
}

type userEnvelope struct {
	User userBody `json:"user"`
}

type profileEnvelope struct {
	Profile profileBody `json:"profile"`
}

type articleEnvelope struct {
	Article articleBody `json:"article"`
}

type articlesEnvelope struct {
	Articles      []articleBody `json:"articles"`
	ArticlesCount int64         `json:"articlesCount"`
}

type commentEnvelope struct {
	Comment commentBody `json:"comment"`
}

type commentsEnvelope struct {
	Comments []commentBody `json:"comments"`
}

type tagsEnvelope struct {
	Tags []string `json:"tags"`
}

func newUserBody(u *models.User, token string) userBody {
	return userBody{
		Email:    u.Email,
		Token:    token,
		Username: u.Username,
		Bio:      u.Bio,
		Image:    u.Image,
	}
}

func newProfileBody(u *models.User) profileBody {
	return profileBody{
		Username:  u.Username,
		Bio:       u.Bio,
		Image:     u.Image,
		Following: u.Following,
	}
}

func newArticleBody(a *models.Article) articleBody {
	return articleBody{
		Slug:           a.Slug,
		Title:          a.Title,
		Description:    a.Description,
		Body:           a.Body,
		TagList:        a.TagNames(),
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
		Favorited:      a.Favorited,
		FavoritesCount: a.FavoritesCount,
		Author:         newProfileBody(&a.Author),
	}
}

func newArticlesEnvelope(articles []*models.Article, total int64) articlesEnvelope {
	bodies := make([]articleBody, 0, len(articles))
	for _, a := range articles {
		bodies = append(bodies, newArticleBody(a))
	}
	return articlesEnvelope{Articles: bodies, ArticlesCount: total}
}

func newCommentBody(c *models.Comment) commentBody {
	return commentBody{
		ID:        c.ID,
		Body:      c.Body,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Author:    newProfileBody(&c.Author),
	}
}

func newCommentsEnvelope(comments []*models.Comment) commentsEnvelope {
	bodies := make([]commentBody, 0, len(comments))
	for _, c := range comments {
		bodies = append(bodies, newCommentBody(c))
	}
	return commentsEnvelope{Comments: bodies}
}
