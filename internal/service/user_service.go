// Package service contains the application's business logic layer.
package service

import (
	"context"

	"conduit/internal/models"
	"conduit/internal/repository"
	"conduit/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// UserService provides registration, login and profile-update business logic.
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService returns a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// RegisterInput is the payload for creating a new account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// UpdateUserInput carries optional account fields; each non-empty field
// replaces the current value.
type UpdateUserInput struct {
	Username string
	Email    string
	Password string
	Bio      string
	Image    string
}

// Register creates a new user account. Username and email must both be
// globally unique; either collision rejects the registration unchanged.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := validation.ValidateRegistration(in.Username, in.Email, in.Password); err != nil {
		return nil, err
	}

	if existing, err := s.userRepo.GetByEmail(ctx, in.Email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewConflictError("email is already taken")
	}

	if existing, err := s.userRepo.GetByUsername(ctx, in.Username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewConflictError("username is already taken")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hashed),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login authenticates by email and password. Unknown email and wrong
// password are deliberately indistinguishable.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("invalid credentials")
	}
	return user, nil
}

// Update applies a partial account update. Uniqueness is re-checked for a
// changed username or email; a new password is re-hashed.
func (s *UserService) Update(ctx context.Context, user *models.User, in UpdateUserInput) (*models.User, error) {
	if in.Email != "" && in.Email != user.Email {
		if !validation.ValidEmail(in.Email) {
			return nil, models.NewValidationError("email is invalid")
		}
		if existing, err := s.userRepo.GetByEmail(ctx, in.Email); err != nil {
			return nil, err
		} else if existing != nil {
			return nil, models.NewConflictError("email is already taken")
		}
		user.Email = in.Email
	}

	if in.Username != "" && in.Username != user.Username {
		if !validation.ValidUsername(in.Username) {
			return nil, models.NewValidationError("username is invalid")
		}
		if existing, err := s.userRepo.GetByUsername(ctx, in.Username); err != nil {
			return nil, err
		} else if existing != nil {
			return nil, models.NewConflictError("username is already taken")
		}
		user.Username = in.Username
	}

	if in.Password != "" {
		if err := validation.ValidatePassword(in.Password); err != nil {
			return nil, err
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		user.Password = string(hashed)
	}

	if in.Bio != "" {
		user.Bio = in.Bio
	}
	if in.Image != "" {
		user.Image = in.Image
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
