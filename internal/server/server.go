// Package server contains the HTTP handlers and routing of the blog API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"folio/internal/cache"
	"folio/internal/config"
	"folio/internal/database"
	"folio/internal/featureflags"
	"folio/internal/middleware"
	"folio/internal/models"
	"folio/internal/observability"
	"folio/internal/repository"
	"folio/internal/service"
	"folio/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const mediaURLPrefix = "/media"

// Server holds all dependencies and provides handlers
type Server struct {
	config          *config.Config
	db              *gorm.DB
	redis           *redis.Client
	app             *fiber.App
	promMiddleware  *fiberprometheus.FiberPrometheus
	limiter         *middleware.RateLimiter
	revoked         *cache.RevocationList
	media           *storage.Local
	featureFlags    *featureflags.Manager
	userRepo        repository.UserRepository
	filters         *service.FilterBuilder
	accountService  *service.AccountService
	userService     *service.UserService
	postService     *service.PostService
	commentService  *service.CommentService
	photoService    *service.PhotoService
	categoryService *service.CategoryService
	tagService      *service.TagService
}

// NewServer connects to the database and Redis, then wires the server.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	rdb := cache.Connect(context.Background(), cfg.RedisURL)
	return NewServerWithDeps(cfg, db, rdb)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("config and database are required")
	}

	userRepo := repository.NewUserRepository(db)
	userDataRepo := repository.NewUserDataRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	photoRepo := repository.NewPhotoRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	tagRepo := repository.NewTagRepository(db)

	flags := featureflags.NewManager(cfg.FeatureFlags)
	media := storage.NewLocal(cfg.MediaDir, mediaURLPrefix)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: observability.HTTPMetrics("folio-api"),
		limiter:        middleware.NewRateLimiter(redisClient, cfg.Env),
		revoked:        cache.NewRevocationList(redisClient),
		media:          media,
		featureFlags:   flags,
		userRepo:       userRepo,
	}

	s.filters = service.NewFilterBuilder(categoryRepo, tagRepo)
	s.accountService = service.NewAccountService(userRepo, flags)
	s.userService = service.NewUserService(userRepo, userDataRepo, service.NewAdminGuard(userRepo), cfg.PageSize)
	s.categoryService = service.NewCategoryService(categoryRepo, cfg.PageSize)
	s.tagService = service.NewTagService(tagRepo, cfg.PageSize)
	s.photoService = service.NewPhotoService(photoRepo, postRepo, media, flags, cfg.PhotoMaxUploadMB, cfg.PageSize)
	s.postService = service.NewPostService(postRepo, categoryRepo, s.tagService, s.photoService, cfg.PageSize)
	s.commentService = service.NewCommentService(commentRepo, postRepo, cfg.PageSize)

	return s, nil
}

// NewApp builds the fiber application with middleware and routes attached.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "Folio API",
		BodyLimit: (s.config.PhotoMaxUploadMB + 1) * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				return models.RespondWithError(c, fiberErr.Code, errors.New(fiberErr.Message))
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so throttled responses still carry CORS headers.
	app.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.AllowedOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: s.config.AllowedOrigins != "*",
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	app.Static(mediaURLPrefix, s.config.MediaDir, fiber.Static{Browse: false})

	api := app.Group("/api")
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Folio Metrics Dashboard",
	}))

	// Middleware is attached per route: a Use on "/api" would run for every
	// route registered after it.
	optional := s.OptionalAuth()
	protected := s.AuthRequired()

	auth := api.Group("/auth")
	auth.Post("/register", s.limiter.LimitWithPolicy(3, 10*time.Minute, middleware.FailClosed, "register"), optional, s.Register)
	auth.Post("/login", s.limiter.Limit(10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", protected, s.Logout)

	api.Get("/feature-flags", optional, s.GetFeatureFlags)

	// Specific /:id/:resource routes come before the generic /:id routes.
	posts := api.Group("/posts")
	posts.Get("/", optional, s.GetPosts)
	posts.Get("/:id/comments", optional, s.GetPostComments)
	posts.Get("/:id/photos", optional, s.GetPostPhotos)
	posts.Get("/:id", optional, s.GetPost)
	posts.Post("/", protected, s.limiter.Limit(10, 5*time.Minute, "create_post"), s.CreatePost)
	posts.Post("/:id/comments", protected, s.limiter.Limit(5, time.Minute, "create_comment"), s.CreateComment)
	posts.Post("/:id/photos", protected, s.limiter.Limit(20, time.Minute, "upload_photo"), s.UploadPhoto)
	posts.Put("/:id", protected, s.UpdatePost)
	posts.Delete("/:id", protected, s.DeletePost)

	comments := api.Group("/comments")
	comments.Get("/", protected, s.GetComments)
	comments.Get("/:id", optional, s.GetComment)
	comments.Put("/:id", protected, s.UpdateComment)
	comments.Delete("/:id", protected, s.DeleteComment)

	photos := api.Group("/photos")
	photos.Get("/:id", optional, s.GetPhoto)
	photos.Delete("/:id", protected, s.DeletePhoto)

	categories := api.Group("/categories")
	categories.Get("/", s.GetCategories)
	categories.Get("/:id", s.GetCategory)
	categories.Post("/", protected, s.CreateCategory)
	categories.Put("/:id", protected, s.UpdateCategory)
	categories.Delete("/:id", protected, s.DeleteCategory)

	tags := api.Group("/tags")
	tags.Get("/", s.GetTags)
	tags.Get("/:id", s.GetTag)
	tags.Put("/:id", protected, s.UpdateTag)
	tags.Delete("/:id", protected, s.DeleteTag)

	users := api.Group("/users")
	users.Get("/", protected, s.GetUsers)
	users.Put("/:id/password", protected, s.ChangePassword)
	users.Put("/:id/data", protected, s.UpdateUserData)
	users.Post("/:id/admin", protected, s.ToggleAdmin)
	users.Post("/:id/block", protected, s.ToggleBlock)
	users.Get("/:id", optional, s.GetUserProfile)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports database and Redis health. Redis is optional:
// without a client the check reports "disabled" and stays ready.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	s.app = s.NewApp()
	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
