package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetTags handles GET /api/tags
func (s *Server) GetTags(c *fiber.Ctx) error {
	tags, err := s.tagRepo.ListNames(c.Context())
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(tagsEnvelope{Tags: tags})
}
