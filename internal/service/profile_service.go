package service

import (
	"context"

	"conduit/internal/models"
	"conduit/internal/repository"
)

// ProfileService provides profile lookups and follow/unfollow business logic.
type ProfileService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
}

// NewProfileService returns a new ProfileService.
func NewProfileService(userRepo repository.UserRepository, followRepo repository.FollowRepository) *ProfileService {
	return &ProfileService{userRepo: userRepo, followRepo: followRepo}
}

// Get returns the profile for username with the following flag computed
// relative to viewer (nil viewer means anonymous).
func (s *ProfileService) Get(ctx context.Context, username string, viewer *models.User) (*models.User, error) {
	target, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, models.NewNotFoundError("profile")
	}

	if viewer != nil {
		following, err := s.followRepo.IsFollowing(ctx, viewer.ID, target.ID)
		if err != nil {
			return nil, err
		}
		target.Following = following
	}
	return target, nil
}

// Follow adds a follower edge from viewer to username. Self-follow and
// duplicate follows are rejected before the edge is touched.
func (s *ProfileService) Follow(ctx context.Context, viewer *models.User, username string) (*models.User, error) {
	target, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, models.NewNotFoundError("profile")
	}
	if target.ID == viewer.ID {
		return nil, models.NewValidationError("cannot follow yourself")
	}

	following, err := s.followRepo.IsFollowing(ctx, viewer.ID, target.ID)
	if err != nil {
		return nil, err
	}
	if following {
		return nil, models.NewConflictError("already following this user")
	}

	if err := s.followRepo.Follow(ctx, viewer.ID, target.ID); err != nil {
		return nil, err
	}
	target.Following = true
	return target, nil
}

// Unfollow removes the follower edge from viewer to username.
func (s *ProfileService) Unfollow(ctx context.Context, viewer *models.User, username string) (*models.User, error) {
	target, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, models.NewNotFoundError("profile")
	}
	if target.ID == viewer.ID {
		return nil, models.NewValidationError("cannot unfollow yourself")
	}

	following, err := s.followRepo.IsFollowing(ctx, viewer.ID, target.ID)
	if err != nil {
		return nil, err
	}
	if !following {
		return nil, models.NewConflictError("not following this user")
	}

	if err := s.followRepo.Unfollow(ctx, viewer.ID, target.ID); err != nil {
		return nil, err
	}
	target.Following = false
	return target, nil
}
