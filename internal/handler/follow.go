package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"socialnet/internal/httputil"
	"socialnet/internal/model"
	"socialnet/internal/service"
	"socialnet/internal/transport/http/middleware"
)

type FollowHandler struct {
	followService *service.FollowService
}

func NewFollowHandler(followService *service.FollowService) *FollowHandler {
	return &FollowHandler{
		followService: followService,
	}
}

// Follow adds a follow edge from the caller to {id}.
// PUT /follow/{id}
func (h *FollowHandler) Follow(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	targetID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	if err := h.followService.Follow(r.Context(), caller.ID, targetID); err != nil {
		switch {
		case errors.Is(err, model.ErrCannotFollowSelf):
			httputil.WriteForbidden(w, "Action forbidden: cannot follow yourself")
		case errors.Is(err, model.ErrAlreadyFollowing):
			httputil.WriteConflict(w, err.Error())
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, err.Error())
		default:
			log.Printf("[ERROR] Follow handler: %v", err)
			httputil.WriteInternalError(w, "Failed to follow user")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Successfully followed the user",
	})
}

// Unfollow removes the follow edge from the caller to {id}.
// PUT /unfollow/{id}
func (h *FollowHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	targetID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	if err := h.followService.Unfollow(r.Context(), caller.ID, targetID); err != nil {
		switch {
		case errors.Is(err, model.ErrCannotFollowSelf):
			httputil.WriteForbidden(w, "Action forbidden: cannot unfollow yourself")
		case errors.Is(err, model.ErrNotFollowing):
			httputil.WriteConflict(w, err.Error())
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, err.Error())
		default:
			log.Printf("[ERROR] Unfollow handler: %v", err)
			httputil.WriteInternalError(w, "Failed to unfollow user")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Successfully unfollowed the user",
	})
}
