package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"socialnet/internal/cache"
	"socialnet/internal/model"
	"socialnet/internal/repository"
)

// UserService handles business logic for account operations
type UserService struct {
	repo          repository.UserRepository
	followRepo    repository.FollowRepository
	timelineCache cache.TimelineCache
	tx            repository.TxRunner
}

func NewUserService(
	repo repository.UserRepository,
	followRepo repository.FollowRepository,
	timelineCache cache.TimelineCache,
	tx repository.TxRunner,
) *UserService {
	return &UserService{
		repo:          repo,
		followRepo:    followRepo,
		timelineCache: timelineCache,
		tx:            tx,
	}
}

// Register creates a new account. The primary image must already be in the
// blob store before this runs: a failed upload never leaves an orphaned row.
// The returned user serializes without password hash or refresh token.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	if strings.TrimSpace(req.Username) == "" {
		return nil, fmt.Errorf("username is required")
	}
	if strings.TrimSpace(req.Email) == "" {
		return nil, fmt.Errorf("email is required")
	}
	if strings.TrimSpace(req.Password) == "" {
		return nil, fmt.Errorf("password is required")
	}
	if req.ProfilePictureURL == "" {
		return nil, fmt.Errorf("profile picture is required")
	}

	username := strings.ToLower(req.Username)

	exists, err := s.repo.ExistsByEmailOrUsername(ctx, req.Email, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check user existence: %w", err)
	}
	if exists {
		return nil, model.ErrUserExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:             req.Email,
		Username:          username,
		PasswordHashed:    string(hashedPassword),
		ProfilePictureURL: req.ProfilePictureURL,
		CoverImageURL:     req.CoverImageURL,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetByID retrieves an account by ID.
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns every account. Admin only; enforced by the handler.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	return s.repo.List(ctx)
}

// Update applies the provided profile fields. A provided password is hashed
// before it reaches the store.
func (s *UserService) Update(ctx context.Context, userID int64, req *model.UpdateUserRequest) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Username != nil && strings.TrimSpace(*req.Username) != "" {
		user.Username = strings.ToLower(*req.Username)
	}
	if req.Bio != nil {
		user.Bio = req.Bio
	}
	if req.LivesIn != nil {
		user.LivesIn = req.LivesIn
	}
	if req.WorksAt != nil {
		user.WorksAt = req.WorksAt
	}
	if req.Country != nil {
		user.Country = req.Country
	}
	if req.Relationship != nil {
		user.Relationship = req.Relationship
	}
	if req.Password != nil && *req.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHashed = string(hashed)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// UpdateProfilePicture replaces the primary image reference. The upload has
// already succeeded when this runs.
func (s *UserService) UpdateProfilePicture(ctx context.Context, userID int64, url string) (*model.User, error) {
	if err := s.repo.UpdateProfilePicture(ctx, userID, url); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, userID)
}

// UpdateCoverImage replaces the secondary image reference.
func (s *UserService) UpdateCoverImage(ctx context.Context, userID int64, url string) (*model.User, error) {
	if err := s.repo.UpdateCoverImage(ctx, userID, url); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, userID)
}

// Delete removes the account and its follow edges in one transaction.
// Posts referencing the account are left in place; the timeline read joins
// them by owner id, so they stop appearing in follower timelines once the
// edges are gone. Cached follower timelines still hold the old merge, so
// each follower's cache is dropped after the commit.
func (s *UserService) Delete(ctx context.Context, userID int64) error {
	followerIDs, err := s.followRepo.GetFollowerIDs(ctx, userID)
	if err != nil {
		return fmt.Errorf("load followers: %w", err)
	}

	err = s.tx.RunTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.followRepo.DeleteAllForUser(ctx, tx, userID); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, userID)
	})
	if err != nil {
		return err
	}

	if s.timelineCache != nil {
		for _, followerID := range append(followerIDs, userID) {
			if err := s.timelineCache.Invalidate(ctx, followerID); err != nil {
				log.Printf("[UserService] Failed to invalidate timeline: user=%d err=%v", followerID, err)
			}
		}
	}

	return nil
}
