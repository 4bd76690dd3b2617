package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"socialnet/internal/model"
)

// postRepository implements PostRepository using sqlx
type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

// Create inserts a new post into the database
func (r *postRepository) Create(ctx context.Context, p *model.Post) error {
	query := `
		INSERT INTO posts (user_id, description, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	row := r.db.QueryRowxContext(ctx, query, p.UserID, p.Description, p.ImageURL)
	if err := row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}

	return nil
}

// GetByID retrieves a post by its ID (reactions not included)
func (r *postRepository) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	query := `
		SELECT id, user_id, description, image_url, created_at, updated_at
		FROM posts
		WHERE id = $1
	`

	var p model.Post
	err := r.db.GetContext(ctx, &p, query, postID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get post by id: %w", err)
	}

	return &p, nil
}

// GetByIDs retrieves posts by id, newest first
func (r *postRepository) GetByIDs(ctx context.Context, postIDs []int64) ([]model.Post, error) {
	if len(postIDs) == 0 {
		return []model.Post{}, nil
	}

	query := `
		SELECT id, user_id, description, image_url, created_at, updated_at
		FROM posts
		WHERE id = ANY($1)
		ORDER BY created_at DESC, id DESC
	`

	var posts []model.Post
	if err := r.db.SelectContext(ctx, &posts, query, pq.Array(postIDs)); err != nil {
		return nil, fmt.Errorf("failed to get posts by ids: %w", err)
	}

	return posts, nil
}

// Update writes the post's description and image reference
func (r *postRepository) Update(ctx context.Context, p *model.Post) error {
	query := `
		UPDATE posts
		SET description = $2, image_url = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRowxContext(ctx, query, p.ID, p.Description, p.ImageURL).Scan(&p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.ErrPostNotFound
		}
		return fmt.Errorf("failed to update post: %w", err)
	}

	return nil
}

// Delete removes a post. Its reactions go with it (FK cascade).
func (r *postRepository) Delete(ctx context.Context, postID int64) error {
	query := `DELETE FROM posts WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, postID)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return model.ErrPostNotFound
	}

	return nil
}

// GetByUserIDs returns posts owned by any of the given users, newest first.
// This is the timeline fan-out read: one query covers the account's own
// posts and its followees' posts.
func (r *postRepository) GetByUserIDs(ctx context.Context, userIDs []int64, limit int) ([]model.Post, error) {
	if len(userIDs) == 0 {
		return []model.Post{}, nil
	}

	query := `
		SELECT id, user_id, description, image_url, created_at, updated_at
		FROM posts
		WHERE user_id = ANY($1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	var posts []model.Post
	if err := r.db.SelectContext(ctx, &posts, query, pq.Array(userIDs), limit); err != nil {
		return nil, fmt.Errorf("failed to get posts by user ids: %w", err)
	}

	return posts, nil
}

// GetReactions returns a post's reactions in insertion order
func (r *postRepository) GetReactions(ctx context.Context, postID int64) ([]model.Reaction, error) {
	query := `
		SELECT post_id, user_id, kind, created_at
		FROM reactions
		WHERE post_id = $1
		ORDER BY created_at, user_id
	`

	var reactions []model.Reaction
	if err := r.db.SelectContext(ctx, &reactions, query, postID); err != nil {
		return nil, fmt.Errorf("failed to get reactions: %w", err)
	}

	return reactions, nil
}

// GetReactionsForPosts batch-loads reactions for many posts in one query
// (ANY($1) in the WHERE clause, not N+1).
func (r *postRepository) GetReactionsForPosts(ctx context.Context, postIDs []int64) (map[int64][]model.Reaction, error) {
	result := make(map[int64][]model.Reaction)
	if len(postIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT post_id, user_id, kind, created_at
		FROM reactions
		WHERE post_id = ANY($1)
		ORDER BY created_at, user_id
	`

	var reactions []model.Reaction
	if err := r.db.SelectContext(ctx, &reactions, query, pq.Array(postIDs)); err != nil {
		return nil, fmt.Errorf("failed to get reactions for posts: %w", err)
	}

	for _, reaction := range reactions {
		result[reaction.PostID] = append(result[reaction.PostID], reaction)
	}

	return result, nil
}

// GetReactionForUpdate reads the caller's reaction row with a row lock so a
// concurrent toggle on the same (post, user) pair serializes behind it.
func (r *postRepository) GetReactionForUpdate(ctx context.Context, tx *sqlx.Tx, postID, userID int64) (*model.Reaction, error) {
	query := `
		SELECT post_id, user_id, kind, created_at
		FROM reactions
		WHERE post_id = $1 AND user_id = $2
		FOR UPDATE
	`

	var reaction model.Reaction
	err := tx.GetContext(ctx, &reaction, query, postID, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get reaction: %w", err)
	}

	return &reaction, nil
}

func (r *postRepository) InsertReaction(ctx context.Context, tx *sqlx.Tx, postID, userID int64, kind string) error {
	query := `INSERT INTO reactions (post_id, user_id, kind) VALUES ($1, $2, $3)`
	if _, err := tx.ExecContext(ctx, query, postID, userID, kind); err != nil {
		return fmt.Errorf("failed to insert reaction: %w", err)
	}
	return nil
}

func (r *postRepository) UpdateReaction(ctx context.Context, tx *sqlx.Tx, postID, userID int64, kind string) error {
	query := `UPDATE reactions SET kind = $3 WHERE post_id = $1 AND user_id = $2`
	if _, err := tx.ExecContext(ctx, query, postID, userID, kind); err != nil {
		return fmt.Errorf("failed to update reaction: %w", err)
	}
	return nil
}

func (r *postRepository) DeleteReaction(ctx context.Context, tx *sqlx.Tx, postID, userID int64) error {
	query := `DELETE FROM reactions WHERE post_id = $1 AND user_id = $2`
	if _, err := tx.ExecContext(ctx, query, postID, userID); err != nil {
		return fmt.Errorf("failed to delete reaction: %w", err)
	}
	return nil
}
