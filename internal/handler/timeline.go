package handler

import (
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"socialnet/internal/httputil"
	"socialnet/internal/service"
	"socialnet/internal/transport/http/middleware"
)

type TimelineHandler struct {
	timelineService *service.TimelineService
}

func NewTimelineHandler(timelineService *service.TimelineService) *TimelineHandler {
	return &TimelineHandler{
		timelineService: timelineService,
	}
}

// Get returns the merged timeline for {id}. Access control matches profile
// access: self or admin. An empty timeline is a success with an empty list.
// GET /timeline/{id}
func (h *TimelineHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	if caller.ID != targetID && !caller.IsAdmin {
		httputil.WriteForbidden(w, "You are not authorized to access this timeline")
		return
	}

	posts, err := h.timelineService.GetTimeline(r.Context(), targetID)
	if err != nil {
		log.Printf("[ERROR] Timeline handler: user=%d err=%v", targetID, err)
		httputil.WriteInternalError(w, "Failed to fetch timeline")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, posts)
}
