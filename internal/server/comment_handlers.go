package server

import (
	"conduit/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CreateComment handles POST /api/articles/:slug/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	author := s.currentUser(c)

	var req struct {
		Comment struct {
			Body string `json:"body"`
		} `json:"comment"`
	}
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, models.NewValidationError("invalid request body"))
	}

	comment, err := s.commentService.Create(c.Context(), c.Params("slug"), author, req.Comment.Body)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(commentEnvelope{Comment: newCommentBody(comment)})
}

// GetComments handles GET /api/articles/:slug/comments
func (s *Server) GetComments(c *fiber.Ctx) error {
	viewer := s.optionalUser(c)

	comments, err := s.commentService.List(c.Context(), c.Params("slug"), viewer)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(newCommentsEnvelope(comments))
}

// DeleteComment handles DELETE /api/articles/:slug/comments/:id
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	viewer := s.currentUser(c)

	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.commentService.Delete(c.Context(), c.Params("slug"), commentID, viewer); err != nil {
		return s.respondError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
