package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/jmoiron/sqlx"

	"socialnet/internal/cache"
	"socialnet/internal/model"
	"socialnet/internal/repository"
)

// PostService handles post CRUD and reactions. Writes fan out to the
// timeline caches of the author and their followers synchronously, so a
// post is visible to a timeline read issued right after the create returns.
type PostService struct {
	postRepo      repository.PostRepository
	followRepo    repository.FollowRepository
	timelineCache cache.TimelineCache
	tx            repository.TxRunner
}

func NewPostService(
	postRepo repository.PostRepository,
	followRepo repository.FollowRepository,
	timelineCache cache.TimelineCache,
	tx repository.TxRunner,
) *PostService {
	return &PostService{
		postRepo:      postRepo,
		followRepo:    followRepo,
		timelineCache: timelineCache,
		tx:            tx,
	}
}

// Create creates a new post. The image upload has already succeeded when
// this runs; a blob-store failure never leaves an orphaned record.
func (s *PostService) Create(ctx context.Context, userID int64, req model.CreatePostRequest) (*model.Post, error) {
	if strings.TrimSpace(req.Description) == "" {
		return nil, model.ErrNoDescription
	}
	if req.ImageURL == "" {
		return nil, fmt.Errorf("image is required")
	}

	post := &model.Post{
		UserID:      userID,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	post.Reactions = []model.Reaction{}

	s.fanOutCreate(ctx, post)

	return post, nil
}

// GetByID retrieves a single post with its reactions.
func (s *PostService) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	reactions, err := s.postRepo.GetReactions(ctx, postID)
	if err != nil {
		return nil, err
	}
	post.Reactions = reactions

	return post, nil
}

// Update edits the description and optionally the image. Owner only.
func (s *PostService) Update(ctx context.Context, postID, userID int64, req model.UpdatePostRequest) (*model.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.UserID != userID {
		return nil, model.ErrNotPostOwner
	}

	if strings.TrimSpace(req.Description) == "" {
		return nil, model.ErrNoDescription
	}
	post.Description = req.Description
	if req.ImageURL != nil {
		post.ImageURL = *req.ImageURL
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	reactions, err := s.postRepo.GetReactions(ctx, postID)
	if err != nil {
		return nil, err
	}
	post.Reactions = reactions

	return post, nil
}

// Delete removes a post. Owner only. Returns the removed post so the
// caller can release the image blob it referenced.
func (s *PostService) Delete(ctx context.Context, postID, userID int64) (*model.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.UserID != userID {
		return nil, model.ErrNotPostOwner
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return nil, err
	}

	s.fanOutDelete(ctx, post)

	return post, nil
}

// React toggles the caller's reaction on a post: the same kind again removes
// it, a different kind replaces it in place, otherwise it is added. The
// toggle runs in one transaction so a post never ends up with two reactions
// from the same account. Returns the post's reaction list after the change.
func (s *PostService) React(ctx context.Context, postID, userID int64, kind string) ([]model.Reaction, error) {
	if !model.IsValidReaction(kind) {
		return nil, model.ErrInvalidReactionKind
	}

	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	err := s.tx.RunTx(ctx, func(tx *sqlx.Tx) error {
		existing, err := s.postRepo.GetReactionForUpdate(ctx, tx, postID, userID)
		if err != nil {
			return err
		}

		switch {
		case existing == nil:
			return s.postRepo.InsertReaction(ctx, tx, postID, userID, kind)
		case existing.Kind == kind:
			return s.postRepo.DeleteReaction(ctx, tx, postID, userID)
		default:
			return s.postRepo.UpdateReaction(ctx, tx, postID, userID, kind)
		}
	})
	if err != nil {
		return nil, err
	}

	return s.postRepo.GetReactions(ctx, postID)
}

// fanOutCreate pushes the new post into the timeline caches of the author
// and every follower that currently has one. Failures degrade to a cache
// drop so the next read rebuilds from the store.
func (s *PostService) fanOutCreate(ctx context.Context, post *model.Post) {
	if s.timelineCache == nil {
		return
	}

	audience, err := s.fanOutAudience(ctx, post.UserID)
	if err != nil {
		log.Printf("[PostService] Fan-out audience lookup failed: post=%d err=%v", post.ID, err)
		return
	}

	timestamp := post.CreatedAt.Unix()
	for _, userID := range audience {
		if err := s.timelineCache.AddPost(ctx, userID, post.ID, timestamp); err != nil {
			log.Printf("[PostService] Fan-out add failed: post=%d user=%d err=%v", post.ID, userID, err)
			if err := s.timelineCache.Invalidate(ctx, userID); err != nil {
				log.Printf("[PostService] Fan-out invalidate failed: user=%d err=%v", userID, err)
			}
		}
	}
}

// fanOutDelete removes a deleted post from the same audience's caches.
func (s *PostService) fanOutDelete(ctx context.Context, post *model.Post) {
	if s.timelineCache == nil {
		return
	}

	audience, err := s.fanOutAudience(ctx, post.UserID)
	if err != nil {
		log.Printf("[PostService] Fan-out audience lookup failed: post=%d err=%v", post.ID, err)
		return
	}

	for _, userID := range audience {
		if err := s.timelineCache.RemovePost(ctx, userID, post.ID); err != nil {
			log.Printf("[PostService] Fan-out remove failed: post=%d user=%d err=%v", post.ID, userID, err)
			if err := s.timelineCache.Invalidate(ctx, userID); err != nil {
				log.Printf("[PostService] Fan-out invalidate failed: user=%d err=%v", userID, err)
			}
		}
	}
}

func (s *PostService) fanOutAudience(ctx context.Context, authorID int64) ([]int64, error) {
	followerIDs, err := s.followRepo.GetFollowerIDs(ctx, authorID)
	if err != nil {
		return nil, err
	}
	// The author sees their own posts in their timeline too
	return append(followerIDs, authorID), nil
}
