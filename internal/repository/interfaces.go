package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"socialnet/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, user *model.User) error
	UpdatePassword(ctx context.Context, userID int64, passwordHashed string) error
	UpdateProfilePicture(ctx context.Context, userID int64, url string) error
	UpdateCoverImage(ctx context.Context, userID int64, url string) error
	// SetRefreshToken overwrites the account's single live refresh credential.
	// A nil token clears the session (logout).
	SetRefreshToken(ctx context.Context, userID int64, token *string, issuedAt *time.Time) error
	Delete(ctx context.Context, tx *sqlx.Tx, userID int64) error
}

type FollowRepository interface {
	// Create inserts a follow edge. Returns false when the edge already exists.
	Create(ctx context.Context, followerID, followeeID int64) (bool, error)
	// Delete removes a follow edge. Returns model.ErrNotFollowing when absent.
	Delete(ctx context.Context, followerID, followeeID int64) error
	GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error)
	GetFolloweeIDs(ctx context.Context, userID int64) ([]int64, error)
	// DeleteAllForUser removes every edge touching the user, both directions.
	// Runs inside the account-deletion transaction.
	DeleteAllForUser(ctx context.Context, tx *sqlx.Tx, userID int64) error
}

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, postID int64) (*model.Post, error)
	GetByIDs(ctx context.Context, postIDs []int64) ([]model.Post, error)
	Update(ctx context.Context, post *model.Post) error
	Delete(ctx context.Context, postID int64) error
	// GetByUserIDs returns posts owned by any of the given users, newest
	// first (created_at descending, id descending on ties).
	GetByUserIDs(ctx context.Context, userIDs []int64, limit int) ([]model.Post, error)
	GetReactions(ctx context.Context, postID int64) ([]model.Reaction, error)
	GetReactionsForPosts(ctx context.Context, postIDs []int64) (map[int64][]model.Reaction, error)
	// Reaction toggle primitives; callers wrap them in a transaction so the
	// read-then-write toggle cannot interleave with a concurrent reaction.
	GetReactionForUpdate(ctx context.Context, tx *sqlx.Tx, postID, userID int64) (*model.Reaction, error)
	InsertReaction(ctx context.Context, tx *sqlx.Tx, postID, userID int64, kind string) error
	UpdateReaction(ctx context.Context, tx *sqlx.Tx, postID, userID int64, kind string) error
	DeleteReaction(ctx context.Context, tx *sqlx.Tx, postID, userID int64) error
}
