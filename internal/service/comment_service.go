package service

import (
	"context"

	"conduit/internal/models"
	"conduit/internal/repository"
)

// CommentService provides comment creation, listing and deletion.
type CommentService struct {
	commentRepo repository.CommentRepository
	articleRepo repository.ArticleRepository
	followRepo  repository.FollowRepository
}

// NewCommentService returns a new CommentService.
func NewCommentService(commentRepo repository.CommentRepository, articleRepo repository.ArticleRepository, followRepo repository.FollowRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo, articleRepo: articleRepo, followRepo: followRepo}
}

// Create adds a comment by author to the article identified by slug.
func (s *CommentService) Create(ctx context.Context, slugParam string, author *models.User, body string) (*models.Comment, error) {
	if body == "" {
		return nil, models.NewValidationError("comment body is required")
	}

	article, err := s.articleRepo.GetBySlug(ctx, slugParam, author.ID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Body:      body,
		AuthorID:  author.ID,
		ArticleID: article.ID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// List returns the article's comments, newest first, with viewer-relative
// author profiles.
func (s *CommentService) List(ctx context.Context, slugParam string, viewer *models.User) ([]*models.Comment, error) {
	article, err := s.articleRepo.GetBySlug(ctx, slugParam, viewerID(viewer))
	if err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByArticle(ctx, article.ID)
	if err != nil {
		return nil, err
	}
	if err := s.hydrateFollowing(ctx, viewer, comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// Delete removes the viewer's own comment from the article. The comment must
// exist under that article (404) and belong to the viewer (403).
func (s *CommentService) Delete(ctx context.Context, slugParam string, commentID uint, viewer *models.User) error {
	article, err := s.articleRepo.GetBySlug(ctx, slugParam, viewer.ID)
	if err != nil {
		return err
	}

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.ArticleID != article.ID {
		return models.NewNotFoundError("comment")
	}
	if comment.AuthorID != viewer.ID {
		return models.NewForbiddenError("you do not own this comment")
	}
	return s.commentRepo.Delete(ctx, comment.ID, viewer.ID)
}

func (s *CommentService) hydrateFollowing(ctx context.Context, viewer *models.User, comments []*models.Comment) error {
	if viewer == nil || len(comments) == 0 {
		return nil
	}

	authorIDs := make([]uint, 0, len(comments))
	for _, c := range comments {
		authorIDs = append(authorIDs, c.AuthorID)
	}

	following, err := s.followRepo.FollowingIDs(ctx, viewer.ID, authorIDs)
	if err != nil {
		return err
	}
	for _, c := range comments {
		c.Author.Following = following[c.AuthorID]
	}
	return nil
}
