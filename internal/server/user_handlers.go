package server

import (
	"conduit/internal/models"
	"conduit/internal/observability"
	"conduit/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Register handles POST /api/users
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		User struct {
			Username string `json:"username"`
			Email    string `json:"email"`
			Password string `json:"password"`
		} `json:"user"`
	}
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, models.NewValidationError("invalid request body"))
	}

	user, err := s.userService.Register(c.Context(), service.RegisterInput{
		Username: req.User.Username,
		Email:    req.User.Email,
		Password: req.User.Password,
	})
	if err != nil {
		return s.respondError(c, err)
	}

	tokenString, err := s.tokens.Issue(user.Username)
	if err != nil {
		return s.respondError(c, models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(userEnvelope{User: newUserBody(user, tokenString)})
}

// Login handles POST /api/users/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		User struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		} `json:"user"`
	}
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, models.NewValidationError("invalid request body"))
	}

	user, err := s.userService.Login(c.Context(), req.User.Email, req.User.Password)
	if err != nil {
		observability.AuthFailures.WithLabelValues("login").Inc()
		return s.respondError(c, err)
	}

	tokenString, err := s.tokens.Issue(user.Username)
	if err != nil {
		return s.respondError(c, models.NewInternalError(err))
	}

	return c.JSON(userEnvelope{User: newUserBody(user, tokenString)})
}

// GetCurrentUser handles GET /api/user
func (s *Server) GetCurrentUser(c *fiber.Ctx) error {
	user := s.currentUser(c)

	// Echo a fresh token so clients can use this endpoint to renew.
	tokenString, err := s.tokens.Issue(user.Username)
	if err != nil {
		return s.respondError(c, models.NewInternalError(err))
	}

	return c.JSON(userEnvelope{User: newUserBody(user, tokenString)})
}

// UpdateCurrentUser handles PUT /api/user
func (s *Server) UpdateCurrentUser(c *fiber.Ctx) error {
	user := s.currentUser(c)

	var req struct {
		User struct {
			Username string `json:"username"`
			Email    string `json:"email"`
			Password string `json:"password"`
			Bio      string `json:"bio"`
			Image    string `json:"image"`
		} `json:"user"`
	}
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, models.NewValidationError("invalid request body"))
	}

	updated, err := s.userService.Update(c.Context(), user, service.UpdateUserInput{
		Username: req.User.Username,
		Email:    req.User.Email,
		Password: req.User.Password,
		Bio:      req.User.Bio,
		Image:    req.User.Image,
	})
	if err != nil {
		return s.respondError(c, err)
	}

	// A renamed account needs a token bound to the new username.
	tokenString, err := s.tokens.Issue(updated.Username)
	if err != nil {
		return s.respondError(c, models.NewInternalError(err))
	}

	return c.JSON(userEnvelope{User: newUserBody(updated, tokenString)})
}
