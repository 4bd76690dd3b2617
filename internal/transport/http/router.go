package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"socialnet/internal/handler"
	"socialnet/internal/httputil"
	authmw "socialnet/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler     *handler.AuthHandler
	UserHandler     *handler.UserHandler
	FollowHandler   *handler.FollowHandler
	PostHandler     *handler.PostHandler
	TimelineHandler *handler.TimelineHandler
	Verifier        authmw.AccessVerifier
	Users           authmw.UserResolver
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, 200, map[string]string{"status": "ok"})
	})

	// Public routes - no authentication required
	r.Post("/register", cfg.AuthHandler.Register)
	r.Post("/login", cfg.AuthHandler.Login)
	r.Post("/refresh-token", cfg.AuthHandler.Refresh)

	// Protected routes - require authentication
	r.Group(func(r chi.Router) {
		r.Use(authmw.AuthMiddleware(cfg.Verifier, cfg.Users))

		r.Post("/logout", cfg.AuthHandler.Logout)
		r.Post("/change-password", cfg.AuthHandler.ChangePassword)

		// Account endpoints
		r.Get("/users", cfg.UserHandler.List)
		r.Get("/user/{id}", cfg.UserHandler.Get)
		r.Post("/update/{id}", cfg.UserHandler.Update)
		r.Patch("/update-profile", cfg.UserHandler.UpdateProfilePicture)
		r.Patch("/update-cover", cfg.UserHandler.UpdateCoverImage)
		r.Delete("/user/{id}", cfg.UserHandler.Delete)

		// Follow graph
		r.Put("/follow/{id}", cfg.FollowHandler.Follow)
		r.Put("/unfollow/{id}", cfg.FollowHandler.Unfollow)

		// Post endpoints
		r.Post("/post", cfg.PostHandler.Create)
		r.Get("/post/{id}", cfg.PostHandler.Get)
		r.Post("/post/{id}", cfg.PostHandler.Update)
		r.Get("/post/{id}/delete", cfg.PostHandler.Delete)
		r.Post("/post/{id}/react", cfg.PostHandler.React)

		// Timeline
		r.Get("/timeline/{id}", cfg.TimelineHandler.Get)
	})

	return r
}
