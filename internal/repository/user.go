package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"socialnet/internal/model"
)

const userColumns = `id, email, username, password_hashed, is_admin, profile_picture_url,
	cover_image_url, bio, lives_in, works_at, country, relationship,
	refresh_token, refresh_issued_at, created_at, updated_at`

// userRepository implements UserRepository using sqlx
type userRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	query := `
		INSERT INTO users (email, username, password_hashed, is_admin, profile_picture_url, cover_image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	row := r.db.QueryRowxContext(ctx, query,
		u.Email,
		u.Username,
		u.PasswordHashed,
		u.IsAdmin,
		u.ProfilePictureURL,
		u.CoverImageURL,
	)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var u model.User
	err := r.db.GetContext(ctx, &u, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return &u, nil
}

// GetByEmail retrieves a user by their email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	var u model.User
	err := r.db.GetContext(ctx, &u, query, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &u, nil
}

// GetByUsername retrieves a user by their username
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	var u model.User
	err := r.db.GetContext(ctx, &u, query, username)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	return &u, nil
}

// ExistsByEmailOrUsername checks if either identifier is already taken
func (r *userRepository) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 OR username = $2)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, email, username)
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}

	return exists, nil
}

// List returns every account, newest first
func (r *userRepository) List(ctx context.Context) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`

	var users []model.User
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}

// Update writes the mutable profile fields and the password hash
func (r *userRepository) Update(ctx context.Context, u *model.User) error {
	query := `
		UPDATE users
		SET username = $2, password_hashed = $3, bio = $4, lives_in = $5,
		    works_at = $6, country = $7, relationship = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		u.ID,
		u.Username,
		u.PasswordHashed,
		u.Bio,
		u.LivesIn,
		u.WorksAt,
		u.Country,
		u.Relationship,
	).Scan(&u.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.ErrUserNotFound
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	return nil
}

// UpdatePassword replaces the stored password hash
func (r *userRepository) UpdatePassword(ctx context.Context, userID int64, passwordHashed string) error {
	query := `UPDATE users SET password_hashed = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, userID, passwordHashed)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return model.ErrUserNotFound
	}

	return nil
}

// UpdateProfilePicture replaces the primary image reference
func (r *userRepository) UpdateProfilePicture(ctx context.Context, userID int64, url string) error {
	query := `UPDATE users SET profile_picture_url = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, userID, url)
	if err != nil {
		return fmt.Errorf("failed to update profile picture: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return model.ErrUserNotFound
	}

	return nil
}

// UpdateCoverImage replaces the secondary image reference
func (r *userRepository) UpdateCoverImage(ctx context.Context, userID int64, url string) error {
	query := `UPDATE users SET cover_image_url = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, userID, url)
	if err != nil {
		return fmt.Errorf("failed to update cover image: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return model.ErrUserNotFound
	}

	return nil
}

// SetRefreshToken overwrites the account's single live refresh credential.
// Overwriting silently invalidates whatever token was stored before, which
// is what enforces one active session per account.
func (r *userRepository) SetRefreshToken(ctx context.Context, userID int64, token *string, issuedAt *time.Time) error {
	query := `UPDATE users SET refresh_token = $2, refresh_issued_at = $3 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, userID, token, issuedAt)
	if err != nil {
		return fmt.Errorf("failed to set refresh token: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return model.ErrUserNotFound
	}

	return nil
}

// Delete removes the account row. Runs inside the caller's transaction so
// the follow-edge cleanup commits or rolls back together with it.
func (r *userRepository) Delete(ctx context.Context, tx *sqlx.Tx, userID int64) error {
	query := `DELETE FROM users WHERE id = $1`

	result, err := tx.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return model.ErrUserNotFound
	}

	return nil
}
