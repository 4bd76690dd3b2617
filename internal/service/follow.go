package service

import (
	"context"
	"log"

	"socialnet/internal/cache"
	"socialnet/internal/model"
	"socialnet/internal/repository"
)

// FollowService mutates the social graph. Each edge is a single row, so a
// follow or unfollow is atomic at the store; the follower's cached timeline
// is dropped afterwards because its merge set just changed.
type FollowService struct {
	followRepo    repository.FollowRepository
	userRepo      repository.UserRepository
	timelineCache cache.TimelineCache
}

func NewFollowService(
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
	timelineCache cache.TimelineCache,
) *FollowService {
	return &FollowService{
		followRepo:    followRepo,
		userRepo:      userRepo,
		timelineCache: timelineCache,
	}
}

// Follow adds the actor → target edge. Self-follow is forbidden and a
// duplicate edge is a conflict.
func (s *FollowService) Follow(ctx context.Context, actorID, targetID int64) error {
	if actorID == targetID {
		return model.ErrCannotFollowSelf
	}

	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return err
	}

	inserted, err := s.followRepo.Create(ctx, actorID, targetID)
	if err != nil {
		return err
	}
	if !inserted {
		return model.ErrAlreadyFollowing
	}

	s.invalidateTimeline(ctx, actorID)

	return nil
}

// Unfollow removes the actor → target edge.
func (s *FollowService) Unfollow(ctx context.Context, actorID, targetID int64) error {
	if actorID == targetID {
		return model.ErrCannotFollowSelf
	}

	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return err
	}

	if err := s.followRepo.Delete(ctx, actorID, targetID); err != nil {
		return err
	}

	s.invalidateTimeline(ctx, actorID)

	return nil
}

// invalidateTimeline drops the actor's cached timeline after a graph change.
// A failed invalidation after a failed edge write cannot happen here (the
// edge write already committed), but a failed invalidation alone would leave
// a stale cache, so the error is surfaced in logs and the cache key's TTL is
// the backstop.
func (s *FollowService) invalidateTimeline(ctx context.Context, userID int64) {
	if s.timelineCache == nil {
		return
	}
	if err := s.timelineCache.Invalidate(ctx, userID); err != nil {
		log.Printf("[FollowService] Failed to invalidate timeline: user=%d err=%v", userID, err)
	}
}
