package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"socialnet/internal/httputil"
	"socialnet/internal/model"
	"socialnet/internal/service"
	"socialnet/internal/transport/http/middleware"
)

type UserHandler struct {
	userService  *service.UserService
	mediaService *service.MediaService
}

func NewUserHandler(userService *service.UserService, mediaService *service.MediaService) *UserHandler {
	return &UserHandler{
		userService:  userService,
		mediaService: mediaService,
	}
}

// List returns every account. Admin only.
// GET /users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}
	if !caller.IsAdmin {
		httputil.WriteForbidden(w, "You are not authorized to access this route")
		return
	}

	users, err := h.userService.List(r.Context())
	if err != nil {
		log.Printf("[ERROR] List users handler: %v", err)
		httputil.WriteInternalError(w, "Failed to retrieve users")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, users)
}

// Get returns a single account. Self or admin.
// GET /user/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, targetID, ok := h.callerAndTarget(w, r)
	if !ok {
		return
	}
	if caller.ID != targetID && !caller.IsAdmin {
		httputil.WriteForbidden(w, "You are not authorized to access this route")
		return
	}

	user, err := h.userService.GetByID(r.Context(), targetID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		httputil.WriteInternalError(w, "Failed to retrieve user")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, user)
}

// Update applies profile field changes. Self or admin.
// POST /update/{id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, targetID, ok := h.callerAndTarget(w, r)
	if !ok {
		return
	}
	if caller.ID != targetID && !caller.IsAdmin {
		httputil.WriteForbidden(w, "You are not authorized to update this user")
		return
	}

	var req model.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	user, err := h.userService.Update(r.Context(), targetID, &req)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[ERROR] Update user handler: %v", err)
		httputil.WriteInternalError(w, "Failed to update user")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, user)
}

// UpdateProfilePicture uploads and sets a new primary image.
// PATCH /update-profile
func (h *UserHandler) UpdateProfilePicture(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "profilePicture", h.mediaService.UploadProfilePicture, h.userService.UpdateProfilePicture)
}

// UpdateCoverImage uploads and sets a new secondary image.
// PATCH /update-cover
func (h *UserHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "coverImage", h.mediaService.UploadCoverImage, h.userService.UpdateCoverImage)
}

// Delete removes an account and clears both token cookies. Self or admin.
// Posts owned by the account are intentionally left in place.
// DELETE /user/{id}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, targetID, ok := h.callerAndTarget(w, r)
	if !ok {
		return
	}
	if caller.ID != targetID && !caller.IsAdmin {
		httputil.WriteForbidden(w, "You are not authorized to delete this user")
		return
	}

	if err := h.userService.Delete(r.Context(), targetID); err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[ERROR] Delete user handler: %v", err)
		httputil.WriteInternalError(w, "Failed to delete user")
		return
	}

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

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "User deleted successfully",
	})
}

func (h *UserHandler) updateImage(
	w http.ResponseWriter,
	r *http.Request,
	field string,
	upload func(context.Context, multipart.File, *multipart.FileHeader) (*model.UploadResult, error),
	apply func(context.Context, int64, string) (*model.User, error),
) {
	caller, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	maxFormSize := int64(model.MaxImageSizeBytes) + 1024*1024
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		httputil.WriteBadRequest(w, "Invalid form data")
		return
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		httputil.WriteBadRequest(w, "Please upload a valid image")
		return
	}
	defer file.Close()

	result, err := upload(r.Context(), file, header)
	if err != nil {
		writeUploadError(w, err, "Failed to upload image")
		return
	}

	user, err := apply(r.Context(), caller.ID, result.URL)
	if err != nil {
		log.Printf("[ERROR] Update image handler: %v", err)
		httputil.WriteInternalError(w, "Failed to update image")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, user)
}

// callerAndTarget resolves the authenticated caller and the {id} path param.
func (h *UserHandler) callerAndTarget(w http.ResponseWriter, r *http.Request) (*model.User, int64, bool) {
	caller, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return nil, 0, false
	}

	targetID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return nil, 0, false
	}

	return caller, targetID, true
}
