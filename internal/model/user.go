package model

import (
	"errors"
	"time"
)

// User represents an account in the system
type User struct {
	ID                int64      `db:"id" json:"id"`
	Email             string     `db:"email" json:"email"`
	Username          string     `db:"username" json:"username"`
	PasswordHashed    string     `db:"password_hashed" json:"-"` // "-" hides from JSON output
	IsAdmin           bool       `db:"is_admin" json:"is_admin"`
	ProfilePictureURL string     `db:"profile_picture_url" json:"profile_picture_url"`
	CoverImageURL     *string    `db:"cover_image_url" json:"cover_image_url"`
	Bio               *string    `db:"bio" json:"bio"`
	LivesIn           *string    `db:"lives_in" json:"lives_in"`
	WorksAt           *string    `db:"works_at" json:"works_at"`
	Country           *string    `db:"country" json:"country"`
	Relationship      *string    `db:"relationship" json:"relationship"`
	RefreshToken      *string    `db:"refresh_token" json:"-"` // single live refresh credential
	RefreshIssuedAt   *time.Time `db:"refresh_issued_at" json:"-"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

// RegisterRequest represents the data needed to register a new account.
// ProfilePictureURL is filled in by the handler after the blob upload succeeds.
type RegisterRequest struct {
	Username          string  `json:"username"`
	Email             string  `json:"email"`
	Password          string  `json:"password"`
	ProfilePictureURL string  `json:"-"`
	CoverImageURL     *string `json:"-"`
}

// LoginRequest represents the data needed to log in.
// Exactly one of Username or Email must be set.
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordRequest is the request body for POST /change-password
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// UpdateUserRequest carries the mutable profile fields for POST /update/{id}.
// Pointer fields distinguish "not provided" from "set to empty".
type UpdateUserRequest struct {
	Username     *string `json:"username"`
	Bio          *string `json:"bio"`
	LivesIn      *string `json:"lives_in"`
	WorksAt      *string `json:"works_at"`
	Country      *string `json:"country"`
	Relationship *string `json:"relationship"`
	Password     *string `json:"password"`
}

var (
	// ErrUserNotFound is returned when an account cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrUserExists is returned when the email or username is already taken
	ErrUserExists = errors.New("user already exists")

	// ErrInvalidCredentials is returned when login credentials are incorrect
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAmbiguousIdentifier is returned when a login supplies both or
	// neither of username and email
	ErrAmbiguousIdentifier = errors.New("provide either username or email, not both")

	// ErrAlreadyLoggedIn is returned when a login is attempted while a
	// still-valid access token is presented
	ErrAlreadyLoggedIn = errors.New("user already logged in")

	// ErrWrongPassword is returned on a password change when the old
	// password does not match the stored hash
	ErrWrongPassword = errors.New("old password does not match")
)
