package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"socialnet/internal/model"
)

func TestPostService_Create_Success(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	postRepo := &mockPostRepository{
		createFn: func(ctx context.Context, post *model.Post) error {
			post.ID = 10
			post.CreatedAt = created
			post.UpdatedAt = created
			return nil
		},
	}
	followRepo := &mockFollowRepository{
		getFollowerIDsFn: func(ctx context.Context, userID int64) ([]int64, error) {
			return []int64{2, 3}, nil
		},
	}
	tc := &mockTimelineCache{}
	svc := NewPostService(postRepo, followRepo, tc, &mockTxRunner{})

	req := model.CreatePostRequest{
		Description: "first post",
		ImageURL:    "https://cdn.example.com/posts/abc.jpg",
	}

	post, err := svc.Create(context.Background(), 1, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if post.ID != 10 || post.UserID != 1 {
		t.Errorf("post = %+v, want ID 10 owned by 1", post)
	}
	if post.Reactions == nil || len(post.Reactions) != 0 {
		t.Error("a new post starts with an empty reaction list, not nil")
	}

	// Fan-out reaches the two followers plus the author
	if len(tc.addPostCalls) != 3 {
		t.Fatalf("AddPost called %d times, want 3", len(tc.addPostCalls))
	}
	audience := map[int64]bool{}
	for _, call := range tc.addPostCalls {
		audience[call.UserID] = true
		if call.PostID != 10 {
			t.Errorf("fanned out post %d, want 10", call.PostID)
		}
		if call.Timestamp != created.Unix() {
			t.Errorf("timestamp = %d, want %d", call.Timestamp, created.Unix())
		}
	}
	for _, id := range []int64{1, 2, 3} {
		if !audience[id] {
			t.Errorf("user %d missing from fan-out audience", id)
		}
	}
}

func TestPostService_Create_Validation(t *testing.T) {
	tests := []struct {
		name    string
		req     model.CreatePostRequest
		wantErr error
	}{
		{
			name:    "blank description",
			req:     model.CreatePostRequest{Description: "   ", ImageURL: "https://x/y.jpg"},
			wantErr: model.ErrNoDescription,
		},
		{
			name: "missing image",
			req:  model.CreatePostRequest{Description: "hello"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			postRepo := &mockPostRepository{}
			svc := NewPostService(postRepo, &mockFollowRepository{}, &mockTimelineCache{}, &mockTxRunner{})

			_, err := svc.Create(context.Background(), 1, tt.req)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if len(postRepo.createCalls) != 0 {
				t.Error("Create should not reach the store on validation failure")
			}
		})
	}
}

func TestPostService_Update_OwnerOnly(t *testing.T) {
	postRepo := &mockPostRepository{
		getByIDFn: func(ctx context.Context, postID int64) (*model.Post, error) {
			return &model.Post{ID: postID, UserID: 1, Description: "original"}, nil
		},
	}
	svc := NewPostService(postRepo, &mockFollowRepository{}, &mockTimelineCache{}, &mockTxRunner{})

	req := model.UpdatePostRequest{Description: "edited"}

	// Not the owner
	_, err := svc.Update(context.Background(), 10, 2, req)
	if !errors.Is(err, model.ErrNotPostOwner) {
		t.Errorf("error = %v, want %v", err, model.ErrNotPostOwner)
	}

	// The owner
	post, err := svc.Update(context.Background(), 10, 1, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if post.Description != "edited" {
		t.Errorf("description = %q, want %q", post.Description, "edited")
	}
}

func TestPostService_Delete(t *testing.T) {
	postRepo := &mockPostRepository{
		getByIDFn: func(ctx context.Context, postID int64) (*model.Post, error) {
			return &model.Post{ID: postID, UserID: 1}, nil
		},
	}
	followRepo := &mockFollowRepository{
		getFollowerIDsFn: func(ctx context.Context, userID int64) ([]int64, error) {
			return []int64{2}, nil
		},
	}
	tc := &mockTimelineCache{}
	svc := NewPostService(postRepo, followRepo, tc, &mockTxRunner{})

	// Not the owner
	if _, err := svc.Delete(context.Background(), 10, 9); !errors.Is(err, model.ErrNotPostOwner) {
		t.Errorf("error = %v, want %v", err, model.ErrNotPostOwner)
	}
	if len(postRepo.deleteCalls) != 0 {
		t.Fatal("Delete must not reach the store for a non-owner")
	}

	// The owner gets the removed post back
	post, err := svc.Delete(context.Background(), 10, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if post == nil || post.ID != 10 {
		t.Fatalf("post = %+v, want the removed post with ID 10", post)
	}
	if len(postRepo.deleteCalls) != 1 || postRepo.deleteCalls[0] != 10 {
		t.Errorf("delete calls = %v, want [10]", postRepo.deleteCalls)
	}

	// The post is withdrawn from the follower's and the author's caches
	if len(tc.removePostCalls) != 2 {
		t.Fatalf("RemovePost called %d times, want 2", len(tc.removePostCalls))
	}
}

func TestPostService_Delete_Missing(t *testing.T) {
	postRepo := &mockPostRepository{}
	svc := NewPostService(postRepo, &mockFollowRepository{}, &mockTimelineCache{}, &mockTxRunner{})

	if _, err := svc.Delete(context.Background(), 404, 1); !errors.Is(err, model.ErrPostNotFound) {
		t.Errorf("error = %v, want %v", err, model.ErrPostNotFound)
	}
}

func TestPostService_React_Toggle(t *testing.T) {
	tests := []struct {
		name        string
		existing    *model.Reaction
		kind        string
		wantInserts int
		wantUpdates int
		wantDeletes int
	}{
		{
			name:        "first reaction is added",
			existing:    nil,
			kind:        model.ReactionLike,
			wantInserts: 1,
		},
		{
			name:        "same kind again removes it",
			existing:    &model.Reaction{PostID: 10, UserID: 1, Kind: model.ReactionLike},
			kind:        model.ReactionLike,
			wantDeletes: 1,
		},
		{
			name:        "different kind replaces in place",
			existing:    &model.Reaction{PostID: 10, UserID: 1, Kind: model.ReactionLike},
			kind:        model.ReactionLove,
			wantUpdates: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			after := []model.Reaction{{PostID: 10, UserID: 2, Kind: model.ReactionWow}}
			postRepo := &mockPostRepository{
				getByIDFn: func(ctx context.Context, postID int64) (*model.Post, error) {
					return &model.Post{ID: postID, UserID: 7}, nil
				},
				getReactionForUpdateFn: func(ctx context.Context, postID, userID int64) (*model.Reaction, error) {
					return tt.existing, nil
				},
				getReactionsFn: func(ctx context.Context, postID int64) ([]model.Reaction, error) {
					return after, nil
				},
			}
			runner := &mockTxRunner{}
			svc := NewPostService(postRepo, &mockFollowRepository{}, &mockTimelineCache{}, runner)

			reactions, err := svc.React(context.Background(), 10, 1, tt.kind)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			inserts, updates, deletes := len(postRepo.insertReactionCalls), len(postRepo.updateReactionCalls), len(postRepo.deleteReactionCalls)
			if inserts != tt.wantInserts || updates != tt.wantUpdates || deletes != tt.wantDeletes {
				t.Errorf("inserts/updates/deletes = %d/%d/%d, want %d/%d/%d",
					inserts, updates, deletes, tt.wantInserts, tt.wantUpdates, tt.wantDeletes)
			}
			if inserts+updates+deletes != 1 {
				t.Errorf("toggle ran %d write primitives, want exactly 1", inserts+updates+deletes)
			}
			if runner.runs != 1 {
				t.Errorf("toggle ran in %d transactions, want 1", runner.runs)
			}

			if tt.wantInserts == 1 {
				if got := postRepo.insertReactionCalls[0]; got.PostID != 10 || got.UserID != 1 || got.Kind != tt.kind {
					t.Errorf("insert = %+v, want post 10 user 1 kind %q", got, tt.kind)
				}
			}
			if tt.wantUpdates == 1 {
				if got := postRepo.updateReactionCalls[0]; got.Kind != tt.kind {
					t.Errorf("update kind = %q, want %q", got.Kind, tt.kind)
				}
			}

			if len(reactions) != 1 || reactions[0].UserID != 2 {
				t.Errorf("reactions = %+v, want the post-toggle list", reactions)
			}
		})
	}
}

func TestPostService_React_TxFailure(t *testing.T) {
	postRepo := &mockPostRepository{
		getByIDFn: func(ctx context.Context, postID int64) (*model.Post, error) {
			return &model.Post{ID: postID, UserID: 7}, nil
		},
	}
	txErr := errors.New("deadlock detected")
	svc := NewPostService(postRepo, &mockFollowRepository{}, &mockTimelineCache{}, &mockTxRunner{failWith: txErr})

	if _, err := svc.React(context.Background(), 10, 1, model.ReactionLike); !errors.Is(err, txErr) {
		t.Errorf("error = %v, want %v", err, txErr)
	}
}

func TestPostService_React_InvalidKind(t *testing.T) {
	postRepo := &mockPostRepository{
		getByIDFn: func(ctx context.Context, postID int64) (*model.Post, error) {
			return &model.Post{ID: postID, UserID: 1}, nil
		},
	}
	svc := NewPostService(postRepo, &mockFollowRepository{}, &mockTimelineCache{}, &mockTxRunner{})

	for _, kind := range []string{"", "LIKE", "dislike", "thumbsup"} {
		if _, err := svc.React(context.Background(), 10, 1, kind); !errors.Is(err, model.ErrInvalidReactionKind) {
			t.Errorf("React(%q) = %v, want %v", kind, err, model.ErrInvalidReactionKind)
		}
	}
}

func TestPostService_React_PostMissing(t *testing.T) {
	postRepo := &mockPostRepository{}
	svc := NewPostService(postRepo, &mockFollowRepository{}, &mockTimelineCache{}, &mockTxRunner{})

	if _, err := svc.React(context.Background(), 404, 1, model.ReactionLike); !errors.Is(err, model.ErrPostNotFound) {
		t.Errorf("error = %v, want %v", err, model.ErrPostNotFound)
	}
}

func TestIsValidReaction(t *testing.T) {
	valid := []string{
		model.ReactionLike, model.ReactionLove, model.ReactionHaha,
		model.ReactionWow, model.ReactionSad, model.ReactionAngry,
	}
	for _, kind := range valid {
		if !model.IsValidReaction(kind) {
			t.Errorf("IsValidReaction(%q) = false, want true", kind)
		}
	}
	if model.IsValidReaction("Like") {
		t.Error("reaction kinds are case sensitive")
	}
}
