package service

import (
	"context"
	"log"
	"sort"
	"time"

	"socialnet/internal/cache"
	"socialnet/internal/model"
	"socialnet/internal/repository"
)

// TimelineFetchLimit caps the fan-out read that merges an account's own
// posts with its followees' posts. It matches the cache cap so a warmed
// cache and a direct store read cover the same window.
const TimelineFetchLimit = cache.TimelineCacheCap

// TimelineService merges an account's own posts with posts from followed
// accounts into a single time-descending feed. The Redis cache in front of
// the store is write-through on the post path and dropped on graph changes,
// so a read always reflects writes that completed before it; when Redis is
// unreachable the read falls back to the store directly.
type TimelineService struct {
	postRepo      repository.PostRepository
	followRepo    repository.FollowRepository
	timelineCache cache.TimelineCache
}

func NewTimelineService(
	postRepo repository.PostRepository,
	followRepo repository.FollowRepository,
	timelineCache cache.TimelineCache,
) *TimelineService {
	return &TimelineService{
		postRepo:      postRepo,
		followRepo:    followRepo,
		timelineCache: timelineCache,
	}
}

// GetTimeline returns the merged feed for the account, newest first. Ties
// on the creation timestamp break by post id descending, so the order is
// deterministic. An account with no posts and no follows gets an empty
// slice, not an error.
func (s *TimelineService) GetTimeline(ctx context.Context, userID int64) ([]model.Post, error) {
	startTime := time.Now()

	posts, err := s.fromCache(ctx, userID)
	if err != nil {
		log.Printf("[TimelineService] Cache path failed for user=%d, reading store: %v", userID, err)
		posts, err = s.fromStore(ctx, userID)
		if err != nil {
			return nil, err
		}
	}

	sortTimeline(posts)

	if err := s.attachReactions(ctx, posts); err != nil {
		return nil, err
	}

	log.Printf("[TimelineService] GetTimeline OK: user=%d posts=%d duration=%v",
		userID, len(posts), time.Since(startTime))

	return posts, nil
}

// fromCache serves the timeline from Redis, warming the cache from the
// store when the key is missing.
func (s *TimelineService) fromCache(ctx context.Context, userID int64) ([]model.Post, error) {
	if s.timelineCache == nil {
		return s.fromStore(ctx, userID)
	}

	exists, err := s.timelineCache.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !exists {
		posts, err := s.fromStore(ctx, userID)
		if err != nil {
			return nil, err
		}

		scores := make([]cache.PostScore, len(posts))
		for i, p := range posts {
			scores[i] = cache.PostScore{PostID: p.ID, Timestamp: p.CreatedAt.Unix()}
		}
		if err := s.timelineCache.Warm(ctx, userID, scores); err != nil {
			// The store read already succeeded; serve it and let the
			// next read retry the warm.
			log.Printf("[TimelineService] Warm failed for user=%d: %v", userID, err)
		}

		return posts, nil
	}

	postIDs, err := s.timelineCache.GetTimeline(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(postIDs) == 0 {
		return []model.Post{}, nil
	}

	return s.postRepo.GetByIDs(ctx, postIDs)
}

// fromStore recomputes the merged timeline directly from the store.
func (s *TimelineService) fromStore(ctx context.Context, userID int64) ([]model.Post, error) {
	followeeIDs, err := s.followRepo.GetFolloweeIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	ownerIDs := append(followeeIDs, userID)
	return s.postRepo.GetByUserIDs(ctx, ownerIDs, TimelineFetchLimit)
}

// attachReactions batch-loads reaction lists for the returned posts.
func (s *TimelineService) attachReactions(ctx context.Context, posts []model.Post) error {
	if len(posts) == 0 {
		return nil
	}

	postIDs := make([]int64, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	reactions, err := s.postRepo.GetReactionsForPosts(ctx, postIDs)
	if err != nil {
		return err
	}

	for i := range posts {
		if r, ok := reactions[posts[i].ID]; ok {
			posts[i].Reactions = r
		} else {
			posts[i].Reactions = []model.Reaction{}
		}
	}

	return nil
}

func sortTimeline(posts []model.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID > posts[j].ID
	})
}
