package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"socialnet/internal/config"
	"socialnet/internal/model"
)

// TokenService signs and verifies the access/refresh token pair. It is
// stateless beyond the signing secrets and expiry policy: verification never
// touches storage, so a tampered or expired token fails the same way no
// matter what the store holds.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenService(cfg *config.Config) *TokenService {
	return &TokenService{
		accessSecret:  []byte(cfg.AccessTokenSecret),
		refreshSecret: []byte(cfg.RefreshTokenSecret),
		accessTTL:     time.Duration(cfg.AccessTokenMaxAge) * time.Second,
		refreshTTL:    time.Duration(cfg.RefreshTokenMaxAge) * time.Second,
	}
}

// IssueAccessToken signs the short-lived access credential carrying the
// identity claims every protected request is authorized against.
func (s *TokenService) IssueAccessToken(user *model.User) (string, error) {
	now := time.Now()
	claims := model.AccessClaims{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.accessSecret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// IssueRefreshToken signs the long-lived refresh credential. It carries only
// the account id; everything else is re-read from the store on rotation.
func (s *TokenService) IssueRefreshToken(user *model.User) (string, error) {
	now := time.Now()
	claims := model.RefreshClaims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.refreshSecret)
	if err != nil {
		return "", fmt.Errorf("sign refresh token: %w", err)
	}
	return signed, nil
}

// VerifyAccess parses and validates an access token.
// Returns model.ErrTokenExpired or model.ErrTokenInvalid on failure.
func (s *TokenService) VerifyAccess(tokenString string) (*model.AccessClaims, error) {
	var claims model.AccessClaims
	if err := s.verify(tokenString, s.accessSecret, &claims); err != nil {
		return nil, err
	}
	return &claims, nil
}

// VerifyRefresh parses and validates a refresh token.
// Returns model.ErrTokenExpired or model.ErrTokenInvalid on failure.
func (s *TokenService) VerifyRefresh(tokenString string) (*model.RefreshClaims, error) {
	var claims model.RefreshClaims
	if err := s.verify(tokenString, s.refreshSecret, &claims); err != nil {
		return nil, err
	}
	return &claims, nil
}

// AccessTokenMaxAge returns the access token lifetime in whole seconds,
// which is also the cookie Max-Age.
func (s *TokenService) AccessTokenMaxAge() int {
	return int(s.accessTTL / time.Second)
}

// RefreshTokenMaxAge returns the refresh token lifetime in whole seconds.
func (s *TokenService) RefreshTokenMaxAge() int {
	return int(s.refreshTTL / time.Second)
}

func (s *TokenService) verify(tokenString string, secret []byte, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return model.ErrTokenExpired
		}
		return model.ErrTokenInvalid
	}
	if !token.Valid {
		return model.ErrTokenInvalid
	}
	return nil
}
