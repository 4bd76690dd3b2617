package model

import (
	"errors"
	"time"
)

// Post represents a user's post with its metadata.
type Post struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	Description string    `db:"description" json:"description"`
	ImageURL    string    `db:"image_url" json:"image_url"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`

	// Joined field (not in posts table)
	Reactions []Reaction `json:"reactions"`
}

// Reaction is one labeled response per (post, account) pair. Re-submitting
// the same kind removes it; a different kind replaces it in place.
type Reaction struct {
	PostID    int64     `db:"post_id" json:"-"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Kind      string    `db:"kind" json:"type"`
	CreatedAt time.Time `db:"created_at" json:"-"`
}

// Reaction kinds (closed set)
const (
	ReactionLike  = "like"
	ReactionLove  = "love"
	ReactionHaha  = "haha"
	ReactionWow   = "wow"
	ReactionSad   = "sad"
	ReactionAngry = "angry"
)

var validReactions = map[string]struct{}{
	ReactionLike:  {},
	ReactionLove:  {},
	ReactionHaha:  {},
	ReactionWow:   {},
	ReactionSad:   {},
	ReactionAngry: {},
}

// IsValidReaction reports if the kind belongs to the closed reaction set
func IsValidReaction(kind string) bool {
	_, ok := validReactions[kind]
	return ok
}

// CreatePostRequest is the form data for creating a post. ImageURL is filled
// in by the handler after the blob upload succeeds.
type CreatePostRequest struct {
	Description string `json:"description"`
	ImageURL    string `json:"-"`
}

// UpdatePostRequest carries the mutable post fields. ImageURL is nil when
// the caller did not upload a replacement image.
type UpdatePostRequest struct {
	Description string  `json:"description"`
	ImageURL    *string `json:"-"`
}

// ReactRequest is the request body for POST /post/{id}/react
type ReactRequest struct {
	Type string `json:"type"`
}

// Post errors
var (
	ErrPostNotFound        = errors.New("post not found")
	ErrNotPostOwner        = errors.New("not the owner of this post")
	ErrNoDescription       = errors.New("post must have a description")
	ErrInvalidReactionKind = errors.New("invalid reaction type")
)
