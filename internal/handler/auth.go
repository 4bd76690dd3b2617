package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"socialnet/internal/httputil"
	"socialnet/internal/model"
	"socialnet/internal/service"
	"socialnet/internal/transport/http/middleware"
)

// AuthHandler groups session-lifecycle HTTP endpoints and their dependencies.
type AuthHandler struct {
	userService  *service.UserService
	authService  *service.AuthService
	mediaService *service.MediaService
	tokenService *service.TokenService
}

// NewAuthHandler wires dependencies for authentication endpoints.
func NewAuthHandler(userService *service.UserService, authService *service.AuthService, mediaService *service.MediaService, tokenService *service.TokenService) *AuthHandler {
	return &AuthHandler{
		userService:  userService,
		authService:  authService,
		mediaService: mediaService,
		tokenService: tokenService,
	}
}

// Register handles multipart sign-up. The profile picture is required and
// is uploaded before the account row is written, so a failed upload never
// creates an orphaned account.
// POST /register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	maxFormSize := int64(model.MaxImageSizeBytes)*2 + 1024*1024 // two images plus form overhead
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			httputil.WriteBadRequest(w, "Content-Type must be multipart/form-data")
			return
		}
		if strings.Contains(err.Error(), "request body too large") {
			httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Upload exceeds 5MB limit")
			return
		}
		httputil.WriteBadRequest(w, "Invalid form data")
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	if username == "" {
		httputil.WriteBadRequest(w, "Username is required")
		return
	}
	if email == "" {
		httputil.WriteBadRequest(w, "Email is required")
		return
	}
	if password == "" {
		httputil.WriteBadRequest(w, "Password is required")
		return
	}

	file, header, err := r.FormFile("profilePicture")
	if err != nil {
		httputil.WriteBadRequest(w, "Profile picture is required")
		return
	}
	defer file.Close()

	profilePic, err := h.mediaService.UploadProfilePicture(r.Context(), file, header)
	if err != nil {
		writeUploadError(w, err, "Failed to upload profile picture")
		return
	}

	var coverURL *string
	coverFile, coverHeader, err := r.FormFile("coverImage")
	if err == nil {
		defer coverFile.Close()
		cover, uploadErr := h.mediaService.UploadCoverImage(r.Context(), coverFile, coverHeader)
		if uploadErr != nil {
			writeUploadError(w, uploadErr, "Failed to upload cover image")
			return
		}
		coverURL = &cover.URL
	} else if err != http.ErrMissingFile {
		httputil.WriteBadRequest(w, "Invalid cover image upload")
		return
	}

	req := model.RegisterRequest{
		Username:          username,
		Email:             email,
		Password:          password,
		ProfilePictureURL: profilePic.URL,
		CoverImageURL:     coverURL,
	}

	user, err := h.userService.Register(r.Context(), &req)
	if err != nil {
		if errors.Is(err, model.ErrUserExists) {
			httputil.WriteConflict(w, "User already exists")
			return
		}
		httputil.WriteInternalError(w, err.Error())
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, user)
}

// Login handles credential login. Exactly one of username/email must be
// supplied, and a caller still presenting a valid access token is refused.
// POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	if req.Password == "" {
		httputil.WriteBadRequest(w, "Password is required")
		return
	}

	presented := ""
	if cookie, err := r.Cookie(model.AccessTokenCookie); err == nil {
		presented = cookie.Value
	}

	resp, err := h.authService.Login(r.Context(), &req, presented)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrAlreadyLoggedIn):
			httputil.WriteBadRequest(w, "User already logged in")
		case errors.Is(err, model.ErrAmbiguousIdentifier):
			httputil.WriteBadRequest(w, "Provide either username or email, not both")
		case errors.Is(err, model.ErrInvalidCredentials):
			httputil.WriteUnauthorized(w, "Invalid credentials")
		default:
			httputil.WriteInternalError(w, "Failed to login")
		}
		return
	}

	h.setTokenCookies(w, resp.AccessToken, resp.RefreshToken)
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// Refresh rotates the token pair. The refresh token comes from the cookie
// or, as a fallback, from the request body.
// POST /refresh-token
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshToken := ""
	if cookie, err := r.Cookie(model.RefreshTokenCookie); err == nil {
		refreshToken = cookie.Value
	}
	if refreshToken == "" {
		var req model.RefreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			refreshToken = req.RefreshToken
		}
	}
	pair, err := h.authService.Refresh(r.Context(), refreshToken)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrNoRefreshToken):
			httputil.WriteUnauthorized(w, "No refresh token provided")
		case errors.Is(err, model.ErrTokenExpired):
			httputil.WriteUnauthorizedWithCode(w, model.CodeTokenExpired, "Refresh token has expired")
		case errors.Is(err, model.ErrRefreshTokenMismatch):
			httputil.WriteUnauthorizedWithCode(w, model.CodeTokenReused, "Refresh token is no longer valid. Please login again.")
		case errors.Is(err, model.ErrTokenInvalid), errors.Is(err, model.ErrUserNotFound):
			httputil.WriteUnauthorized(w, "Invalid refresh token")
		default:
			httputil.WriteInternalError(w, "Failed to refresh tokens")
		}
		return
	}

	h.setTokenCookies(w, pair.AccessToken, pair.RefreshToken)
	httputil.WriteJSON(w, http.StatusOK, pair)
}

// Logout clears the stored refresh credential and both cookies. The access
// token stays valid until natural expiry.
// POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	if err := h.authService.Logout(r.Context(), user.ID); err != nil {
		httputil.WriteInternalError(w, "Failed to logout")
		return
	}

	h.clearTokenCookies(w)
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Logged out successfully",
	})
}

// ChangePassword replaces the password after verifying the old one.
// Existing tokens are untouched; this does not force re-login.
// POST /change-password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	var req model.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		httputil.WriteBadRequest(w, "Old and new passwords are required")
		return
	}

	if err := h.authService.ChangePassword(r.Context(), user.ID, req.OldPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, model.ErrWrongPassword):
			httputil.WriteUnauthorized(w, "Invalid old password")
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, "User not found")
		default:
			httputil.WriteInternalError(w, "Failed to change password")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Password changed successfully",
	})
}

func (h *AuthHandler) setTokenCookies(w http.ResponseWriter, accessToken, refreshToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     model.AccessTokenCookie,
		Value:    accessToken,
		Path:     "/",
		MaxAge:   h.tokenService.AccessTokenMaxAge(),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     model.RefreshTokenCookie,
		Value:    refreshToken,
		Path:     "/",
		MaxAge:   h.tokenService.RefreshTokenMaxAge(),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearTokenCookies(w http.ResponseWriter) {
	for _, name := range []string{model.AccessTokenCookie, model.RefreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteStrictMode,
		})
	}
}

// writeUploadError maps blob-store validation failures to responses.
func writeUploadError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, model.ErrFileTooLarge):
		httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Upload exceeds 5MB limit")
	case errors.Is(err, model.ErrInvalidImageType):
		httputil.WriteBadRequestWithCode(w, model.CodeInvalidImageType, "Unsupported image type. Allowed: jpeg, png, gif, webp")
	default:
		httputil.WriteInternalError(w, fallback)
	}
}
