package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"socialnet/internal/httputil"
	"socialnet/internal/model"
	"socialnet/internal/service"
	"socialnet/internal/transport/http/middleware"
)

type PostHandler struct {
	postService  *service.PostService
	mediaService *service.MediaService
}

func NewPostHandler(postService *service.PostService, mediaService *service.MediaService) *PostHandler {
	return &PostHandler{
		postService:  postService,
		mediaService: mediaService,
	}
}

// Create handles multipart post creation: description plus one image. The
// image is uploaded before the record write is attempted.
// POST /post
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	maxFormSize := int64(model.MaxImageSizeBytes) + 1024*1024
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		httputil.WriteBadRequest(w, "Invalid form data")
		return
	}

	description := r.FormValue("description")
	if strings.TrimSpace(description) == "" {
		httputil.WriteBadRequest(w, "Post must have a description")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		httputil.WriteBadRequest(w, "Image is required")
		return
	}
	defer file.Close()

	upload, err := h.mediaService.UploadPostImage(r.Context(), file, header)
	if err != nil {
		writeUploadError(w, err, "Failed to upload image")
		return
	}

	post, err := h.postService.Create(r.Context(), caller.ID, model.CreatePostRequest{
		Description: description,
		ImageURL:    upload.URL,
	})
	if err != nil {
		if errors.Is(err, model.ErrNoDescription) {
			httputil.WriteBadRequest(w, "Post must have a description")
			return
		}
		log.Printf("[ERROR] Create post handler: %v", err)
		httputil.WriteInternalError(w, "Failed to create post")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, post)
}

// Get returns a single post with its reactions.
// GET /post/{id}
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	postID, ok := h.postID(w, r)
	if !ok {
		return
	}

	post, err := h.postService.GetByID(r.Context(), postID)
	if err != nil {
		if errors.Is(err, model.ErrPostNotFound) {
			httputil.WriteNotFound(w, "Post not found")
			return
		}
		httputil.WriteInternalError(w, "Failed to retrieve post")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, post)
}

// Update edits a post's description and optionally replaces its image.
// Owner only.
// POST /post/{id}
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}
	postID, ok := h.postID(w, r)
	if !ok {
		return
	}

	maxFormSize := int64(model.MaxImageSizeBytes) + 1024*1024
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		httputil.WriteBadRequest(w, "Invalid form data")
		return
	}

	req := model.UpdatePostRequest{Description: r.FormValue("description")}

	file, header, err := r.FormFile("image")
	if err == nil {
		defer file.Close()
		upload, uploadErr := h.mediaService.UploadPostImage(r.Context(), file, header)
		if uploadErr != nil {
			writeUploadError(w, uploadErr, "Failed to upload image")
			return
		}
		req.ImageURL = &upload.URL
	} else if err != http.ErrMissingFile {
		httputil.WriteBadRequest(w, "Invalid image upload")
		return
	}

	post, err := h.postService.Update(r.Context(), postID, caller.ID, req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrPostNotFound):
			httputil.WriteNotFound(w, "Post not found")
		case errors.Is(err, model.ErrNotPostOwner):
			httputil.WriteForbidden(w, "You are not authorized to update this post")
		case errors.Is(err, model.ErrNoDescription):
			httputil.WriteBadRequest(w, "Post must have a description")
		default:
			log.Printf("[ERROR] Update post handler: %v", err)
			httputil.WriteInternalError(w, "Failed to update post")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, post)
}

// Delete removes a post. Owner only.
// GET /post/{id}/delete
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}
	postID, ok := h.postID(w, r)
	if !ok {
		return
	}

	post, err := h.postService.Delete(r.Context(), postID, caller.ID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrPostNotFound):
			httputil.WriteNotFound(w, "Post not found")
		case errors.Is(err, model.ErrNotPostOwner):
			httputil.WriteForbidden(w, "You are not authorized to delete this post")
		default:
			log.Printf("[ERROR] Delete post handler: %v", err)
			httputil.WriteInternalError(w, "Failed to delete post")
		}
		return
	}

	// Best effort: the record is gone, a leaked blob only costs storage
	if err := h.mediaService.DeleteByURL(r.Context(), post.ImageURL); err != nil {
		log.Printf("[WARN] Post image cleanup failed: post=%d err=%v", postID, err)
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Post deleted successfully",
	})
}

// React toggles the caller's reaction on a post and returns the post's
// reaction list.
// POST /post/{id}/react
func (h *PostHandler) React(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}
	postID, ok := h.postID(w, r)
	if !ok {
		return
	}

	var req model.ReactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	reactions, err := h.postService.React(r.Context(), postID, caller.ID, req.Type)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidReactionKind):
			httputil.WriteBadRequest(w, "Invalid reaction type")
		case errors.Is(err, model.ErrPostNotFound):
			httputil.WriteNotFound(w, "Post not found")
		default:
			log.Printf("[ERROR] React handler: %v", err)
			httputil.WriteInternalError(w, "Failed to update reaction")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, reactions)
}

func (h *PostHandler) postID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	postID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return 0, false
	}
	return postID, true
}
