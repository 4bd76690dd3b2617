package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"socialnet/internal/model"
)

type followRepository struct {
	db *sqlx.DB
}

func NewFollowRepository(db *sqlx.DB) FollowRepository {
	return &followRepository{db: db}
}

// Create inserts a follow edge. The single row carries both directions of
// the relationship, so the insert is atomic by construction.
func (r *followRepository) Create(ctx context.Context, followerID, followeeID int64) (bool, error) {
	query := `
		INSERT INTO follows (follower_id, followee_id)
		VALUES ($1, $2)
		ON CONFLICT (follower_id, followee_id) DO NOTHING
	`
	result, err := r.db.ExecContext(ctx, query, followerID, followeeID)
	if err != nil {
		return false, fmt.Errorf("failed to create follow: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

func (r *followRepository) Delete(ctx context.Context, followerID, followeeID int64) error {
	query := `DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`
	result, err := r.db.ExecContext(ctx, query, followerID, followeeID)
	if err != nil {
		return fmt.Errorf("failed to delete follow: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrNotFollowing
	}

	return nil
}

// GetFollowerIDs returns the ids of accounts following the given user.
func (r *followRepository) GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error) {
	query := `SELECT follower_id FROM follows WHERE followee_id = $1`

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get follower ids: %w", err)
	}

	return ids, nil
}

// GetFolloweeIDs returns the ids of accounts the given user follows.
func (r *followRepository) GetFolloweeIDs(ctx context.Context, userID int64) ([]int64, error) {
	query := `SELECT followee_id FROM follows WHERE follower_id = $1`

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get followee ids: %w", err)
	}

	return ids, nil
}

// DeleteAllForUser removes every edge touching the user, both directions.
func (r *followRepository) DeleteAllForUser(ctx context.Context, tx *sqlx.Tx, userID int64) error {
	query := `DELETE FROM follows WHERE follower_id = $1 OR followee_id = $1`
	if _, err := tx.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to delete follows for user: %w", err)
	}
	return nil
}
