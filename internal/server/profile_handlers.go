package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetProfile handles GET /api/profiles/:username
func (s *Server) GetProfile(c *fiber.Ctx) error {
	viewer := s.optionalUser(c)

	profile, err := s.profileService.Get(c.Context(), c.Params("username"), viewer)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(profileEnvelope{Profile: newProfileBody(profile)})
}

// FollowUser handles POST /api/profiles/:username/follow
func (s *Server) FollowUser(c *fiber.Ctx) error {
	viewer := s.currentUser(c)

	profile, err := s.profileService.Follow(c.Context(), viewer, c.Params("username"))
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(profileEnvelope{Profile: newProfileBody(profile)})
}

// UnfollowUser handles DELETE /api/profiles/:username/follow
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	viewer := s.currentUser(c)

	profile, err := s.profileService.Unfollow(c.Context(), viewer, c.Params("username"))
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(profileEnvelope{Profile: newProfileBody(profile)})
}
