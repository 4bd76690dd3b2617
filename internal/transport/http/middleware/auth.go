package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"socialnet/internal/httputil"
	"socialnet/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// UserKey is the context key for the authenticated account
	UserKey contextKey = "user"
)

// AccessVerifier validates an access token and returns its claims.
// *service.TokenService satisfies this.
type AccessVerifier interface {
	VerifyAccess(tokenString string) (*model.AccessClaims, error)
}

// UserResolver loads an account by id. repository.UserRepository satisfies
// this; the gate needs nothing else from the store.
type UserResolver interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// AuthMiddleware is the authorization gate on every protected operation:
// verify the access token, then resolve it to a live account record. A
// token whose account no longer exists is rejected the same as a missing
// token; there is no anonymous identity.
// Checks the Authorization header first, then the accessToken cookie.
func AuthMiddleware(verifier AccessVerifier, users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := ExtractAccessToken(r)
			if tokenString == "" {
				httputil.WriteUnauthorized(w, "Missing authentication token")
				return
			}

			claims, err := verifier.VerifyAccess(tokenString)
			if err != nil {
				if errors.Is(err, model.ErrTokenExpired) {
					httputil.WriteUnauthorizedWithCode(w, model.CodeTokenExpired, "Access token has expired")
					return
				}
				httputil.WriteUnauthorizedWithCode(w, model.CodeTokenInvalid, "Invalid authentication token")
				return
			}

			user, err := users.GetByID(r.Context(), claims.UserID)
			if err != nil {
				// Account deleted after the token was issued, or the
				// store is down; either way the caller is not authorized.
				httputil.WriteUnauthorized(w, "Invalid authentication token")
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ExtractAccessToken pulls the access token from the Authorization header
// ("Bearer <token>") or the accessToken cookie. Empty string when absent.
func ExtractAccessToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}

	cookie, err := r.Cookie(model.AccessTokenCookie)
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}

	return ""
}

// GetUserFromContext extracts the authenticated account from the request
// context. Returns the user and true if found.
func GetUserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(UserKey).(*model.User)
	return user, ok
}
