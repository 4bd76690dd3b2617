package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"socialnet/internal/model"
	"socialnet/internal/repository"
)

// AuthService orchestrates the session lifecycle: login, refresh rotation,
// logout and password changes. An account has at most one live refresh
// credential, stored on its row; every login or rotation overwrites it,
// which silently invalidates whatever session held the previous value.
type AuthService struct {
	userRepo repository.UserRepository
	tokens   *TokenService
}

func NewAuthService(userRepo repository.UserRepository, tokens *TokenService) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

// Login authenticates with exactly one of username or email plus password
// and issues a fresh token pair. A caller still presenting a valid access
// token is refused: re-login while authenticated is an explicit policy
// violation, not a fallback.
func (s *AuthService) Login(ctx context.Context, req *model.LoginRequest, presentedAccessToken string) (*model.LoginResponse, error) {
	if presentedAccessToken != "" {
		if _, err := s.tokens.VerifyAccess(presentedAccessToken); err == nil {
			return nil, model.ErrAlreadyLoggedIn
		}
	}

	hasUsername := req.Username != ""
	hasEmail := req.Email != ""
	if hasUsername == hasEmail {
		return nil, model.ErrAmbiguousIdentifier
	}

	var user *model.User
	var err error
	if hasUsername {
		user, err = s.userRepo.GetByUsername(ctx, req.Username)
	} else {
		user, err = s.userRepo.GetByEmail(ctx, req.Email)
	}
	if err != nil {
		// Don't reveal whether the account exists. A storage failure is
		// not a credential failure and surfaces as one.
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, model.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(req.Password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	pair, err := s.issueAndPersist(ctx, user)
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}

// Refresh rotates the token pair. The presented refresh token must verify
// against the refresh secret, decode to an existing account, and equal
// byte-for-byte the value currently stored on that account. A token that
// verifies but no longer matches was rotated out; its reuse is rejected.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*model.TokenPair, error) {
	if refreshToken == "" {
		return nil, model.ErrNoRefreshToken
	}

	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	if user.RefreshToken == nil || *user.RefreshToken != refreshToken {
		return nil, model.ErrRefreshTokenMismatch
	}

	return s.issueAndPersist(ctx, user)
}

// Logout clears the account's stored refresh credential. The access token
// is not revoked server-side and stays valid until natural expiry.
func (s *AuthService) Logout(ctx context.Context, userID int64) error {
	if err := s.userRepo.SetRefreshToken(ctx, userID, nil, nil); err != nil {
		return fmt.Errorf("clear refresh token: %w", err)
	}
	return nil
}

// ChangePassword replaces the password hash after the old password matches.
// Both tokens are left untouched: a password change does not force re-login.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(oldPassword)); err != nil {
		return model.ErrWrongPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, string(hashed)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	return nil
}

// issueAndPersist mints a token pair and stores the refresh half on the
// account. If the store write fails no tokens reach the caller, so issuance
// and persistence appear atomic from the outside.
func (s *AuthService) issueAndPersist(ctx context.Context, user *model.User) (*model.TokenPair, error) {
	accessToken, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	refreshToken, err := s.tokens.IssueRefreshToken(user)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	issuedAt := time.Now()
	if err := s.userRepo.SetRefreshToken(ctx, user.ID, &refreshToken, &issuedAt); err != nil {
		return nil, fmt.Errorf("persist refresh token: %w", err)
	}

	return &model.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    s.tokens.AccessTokenMaxAge(),
	}, nil
}
