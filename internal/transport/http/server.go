package http

import (
	"context"
	"fmt"
	"log"
	stdhttp "net/http"

	"socialnet/internal/bootstrap"
	"socialnet/internal/cache"
	"socialnet/internal/config"
	"socialnet/internal/database"
	"socialnet/internal/handler"
	redisclient "socialnet/internal/redis"
	"socialnet/internal/repository"
	"socialnet/internal/service"
)

func Run() error {
	ctx := context.Background()

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// 2. Connect to Database
	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// 3. Connect to Redis. The timeline cache is an accelerator, not a
	// dependency; without Redis every timeline read hits Postgres.
	timelineCache := cache.NewNoopTimelineCache()
	if cfg.RedisURL != "" {
		rdb, err := redisclient.NewClient(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to create redis client: %w", err)
		}
		if err := rdb.Ping(ctx); err != nil {
			log.Printf("[WARN] Redis unreachable, timeline cache disabled: %v", err)
		} else {
			defer rdb.Close()
			timelineCache = cache.NewTimelineCache(rdb.Client)
		}
	} else {
		log.Println("[WARN] REDIS_URL not set, timeline cache disabled")
	}

	// 4. Repositories
	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	postRepo := repository.NewPostRepository(db)
	txRunner := repository.NewTxRunner(db)

	// 5. Services
	tokenService := service.NewTokenService(cfg)
	authService := service.NewAuthService(userRepo, tokenService)
	userService := service.NewUserService(userRepo, followRepo, timelineCache, txRunner)
	followService := service.NewFollowService(followRepo, userRepo, timelineCache)
	postService := service.NewPostService(postRepo, followRepo, timelineCache, txRunner)
	timelineService := service.NewTimelineService(postRepo, followRepo, timelineCache)

	mediaService, err := service.NewMediaService(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create media service: %w", err)
	}

	// 6. Seed the administrator account
	if err := bootstrap.SeedAdmin(ctx, cfg, userRepo); err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}

	// 7. Handlers
	authHandler := handler.NewAuthHandler(userService, authService, mediaService, tokenService)
	userHandler := handler.NewUserHandler(userService, mediaService)
	followHandler := handler.NewFollowHandler(followService)
	postHandler := handler.NewPostHandler(postService, mediaService)
	timelineHandler := handler.NewTimelineHandler(timelineService)

	// 8. Router
	router := NewRouter(RouterConfig{
		AuthHandler:     authHandler,
		UserHandler:     userHandler,
		FollowHandler:   followHandler,
		PostHandler:     postHandler,
		TimelineHandler: timelineHandler,
		Verifier:        tokenService,
		Users:           userRepo,
	})

	addr := ":" + cfg.ServerPort
	log.Printf("Starting server on %s", addr)
	return stdhttp.ListenAndServe(addr, router)
}
