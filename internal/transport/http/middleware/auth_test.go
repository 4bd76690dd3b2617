package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"socialnet/internal/model"
)

type stubVerifier struct {
	verifyFn func(tokenString string) (*model.AccessClaims, error)
}

func (s *stubVerifier) VerifyAccess(tokenString string) (*model.AccessClaims, error) {
	return s.verifyFn(tokenString)
}

type stubResolver struct {
	getByIDFn func(ctx context.Context, id int64) (*model.User, error)
}

func (s *stubResolver) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.getByIDFn(ctx, id)
}

func okVerifier(userID int64) *stubVerifier {
	return &stubVerifier{
		verifyFn: func(tokenString string) (*model.AccessClaims, error) {
			if tokenString != "good-token" {
				return nil, model.ErrTokenInvalid
			}
			return &model.AccessClaims{UserID: userID}, nil
		},
	}
}

func okResolver(user *model.User) *stubResolver {
	return &stubResolver{
		getByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			if id != user.ID {
				return nil, model.ErrUserNotFound
			}
			return user, nil
		},
	}
}

func TestAuthMiddleware(t *testing.T) {
	user := &model.User{ID: 1, Username: "alice"}

	tests := []struct {
		name       string
		setRequest func(r *http.Request)
		verifier   AccessVerifier
		resolver   UserResolver
		wantStatus int
		wantCode   string
	}{
		{
			name: "bearer header accepted",
			setRequest: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer good-token")
			},
			verifier:   okVerifier(1),
			resolver:   okResolver(user),
			wantStatus: http.StatusOK,
		},
		{
			name: "cookie accepted",
			setRequest: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: model.AccessTokenCookie, Value: "good-token"})
			},
			verifier:   okVerifier(1),
			resolver:   okResolver(user),
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing token",
			setRequest: func(r *http.Request) {},
			verifier:   okVerifier(1),
			resolver:   okResolver(user),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "invalid token",
			setRequest: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer bad-token")
			},
			verifier:   okVerifier(1),
			resolver:   okResolver(user),
			wantStatus: http.StatusUnauthorized,
			wantCode:   model.CodeTokenInvalid,
		},
		{
			name: "expired token",
			setRequest: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer good-token")
			},
			verifier: &stubVerifier{
				verifyFn: func(tokenString string) (*model.AccessClaims, error) {
					return nil, model.ErrTokenExpired
				},
			},
			resolver:   okResolver(user),
			wantStatus: http.StatusUnauthorized,
			wantCode:   model.CodeTokenExpired,
		},
		{
			name: "account deleted after issuance",
			setRequest: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer good-token")
			},
			verifier:   okVerifier(99),
			resolver:   okResolver(user), // only knows user 1
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUser *model.User
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUser, _ = GetUserFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			tt.setRequest(req)
			rec := httptest.NewRecorder()

			AuthMiddleware(tt.verifier, tt.resolver)(next).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			if tt.wantStatus == http.StatusOK {
				if gotUser == nil || gotUser.ID != user.ID {
					t.Errorf("context user = %v, want user %d", gotUser, user.ID)
				}
				return
			}

			if tt.wantCode != "" {
				var body struct {
					Error struct {
						Code string `json:"code"`
					} `json:"error"`
				}
				if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
					t.Fatalf("decode error body: %v", err)
				}
				if body.Error.Code != tt.wantCode {
					t.Errorf("error code = %q, want %q", body.Error.Code, tt.wantCode)
				}
			}
		})
	}
}

func TestExtractAccessToken_HeaderWinsOverCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer from-header")
	req.AddCookie(&http.Cookie{Name: model.AccessTokenCookie, Value: "from-cookie"})

	if got := ExtractAccessToken(req); got != "from-header" {
		t.Errorf("ExtractAccessToken = %q, want %q", got, "from-header")
	}
}

func TestExtractAccessToken_MalformedHeaderFallsBackToCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "NotBearer token")
	req.AddCookie(&http.Cookie{Name: model.AccessTokenCookie, Value: "from-cookie"})

	if got := ExtractAccessToken(req); got != "from-cookie" {
		t.Errorf("ExtractAccessToken = %q, want %q", got, "from-cookie")
	}
}
