package model

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Cookie names the client carries tokens in. The refresh token is also
// accepted from the request body as a fallback carrier.
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// AccessClaims is the signed claim set of an access token.
type AccessClaims struct {
	UserID   int64  `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// RefreshClaims is the signed claim set of a refresh token. It carries
// only the account id; everything else is re-read from the store on rotation.
type RefreshClaims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenPair is both tokens returned after login/refresh
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expires_in"` // Seconds until access token expires
}

// LoginResponse is returned after successful login. The refresh token is
// echoed in the body in addition to the cookie.
type LoginResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expires_in"`
}

// RefreshRequest is the request body for POST /refresh-token
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Token errors
var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")

	// ErrRefreshTokenMismatch is returned when a presented refresh token
	// verifies cryptographically but no longer matches the value stored on
	// the account, i.e. it was rotated out and its reuse was detected.
	ErrRefreshTokenMismatch = errors.New("refresh token does not match stored session")

	// ErrNoRefreshToken is returned when neither cookie nor body carries one.
	ErrNoRefreshToken = errors.New("no refresh token provided")
)

// Token API error codes (used in HTTP responses)
const (
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeTokenInvalid = "TOKEN_INVALID"
	CodeTokenReused  = "TOKEN_REUSED"
)
