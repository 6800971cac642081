// Package server contains the HTTP handlers for the CMS API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/Treobytes-Dev/treo-cms-api/internal/cache"
	"github.com/Treobytes-Dev/treo-cms-api/internal/config"
	"github.com/Treobytes-Dev/treo-cms-api/internal/database"
	"github.com/Treobytes-Dev/treo-cms-api/internal/mailer"
	"github.com/Treobytes-Dev/treo-cms-api/internal/middleware"
	"github.com/Treobytes-Dev/treo-cms-api/internal/models"
	"github.com/Treobytes-Dev/treo-cms-api/internal/repository"
	"github.com/Treobytes-Dev/treo-cms-api/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// tokenLifetime matches the long-lived sessions the frontend expects.
const tokenLifetime = time.Hour * 24 * 364

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	userRepo       repository.UserRepository
	postRepo       repository.PostRepository
	commentRepo    repository.CommentRepository
	categoryRepo   repository.CategoryRepository
	pageRepo       repository.PageRepository
	mediaRepo      repository.MediaRepository
	store          storage.ObjectStore
	mail           mailer.Mailer
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	store, err := storage.NewMinioStore(storage.Options{
		Endpoint:  cfg.StorageEndpoint,
		AccessKey: cfg.StorageAccessKey,
		SecretKey: cfg.StorageSecretKey,
		Bucket:    cfg.StorageBucket,
		UseSSL:    cfg.StorageUseSSL,
		PublicURL: cfg.StoragePublicURL,
	})
	if err != nil {
		return nil, fmt.Errorf("object store init failed: %w", err)
	}

	var mail mailer.Mailer
	if cfg.MailAPIKey != "" {
		mail = mailer.New(cfg.MailAPIKey, cfg.MailFrom)
	}

	return NewServerWithDeps(cfg, db, redisClient, store, mail), nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis first.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, store storage.ObjectStore, mail mailer.Mailer) *Server {
	prom := middleware.InitMetrics("treo-cms-api")

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		userRepo:       repository.NewUserRepository(db),
		postRepo:       repository.NewPostRepository(db),
		commentRepo:    repository.NewCommentRepository(db),
		categoryRepo:   repository.NewCategoryRepository(db),
		pageRepo:       repository.NewPageRepository(db),
		mediaRepo:      repository.NewMediaRepository(db),
		store:          store,
		mail:           mail,
	}
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS must run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:3000,http://127.0.0.1:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they are handled by CORS.
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
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)
	api.Get("/", s.HealthCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Auth routes
	api.Post("/signup", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	api.Post("/signin", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "signin"), s.Signin)
	api.Get("/signout", s.Signout)
	api.Get("/current-user", s.AuthRequired(), s.CurrentUser)
	api.Get("/current-admin", s.AuthRequired(), s.RoleRequired(models.RoleAdmin), s.CurrentUser)
	api.Get("/current-author", s.AuthRequired(), s.RoleRequired(models.RoleAdmin, models.RoleAuthor), s.CurrentUser)
	api.Get("/current-subscriber", s.AuthRequired(), s.CurrentUser)

	// User management (admin except self-update)
	api.Post("/create-user", s.AuthRequired(), s.AdminRequired(), s.CreateUser)
	api.Get("/users", s.AuthRequired(), s.AdminRequired(), s.GetUsers)
	api.Get("/user/:userId", s.AuthRequired(), s.GetUser)
	api.Delete("/user/:userId", s.AuthRequired(), s.AdminRequired(), s.DeleteUser)
	api.Put("/update-user-by-admin", s.AuthRequired(), s.AdminRequired(), s.UpdateUserByAdmin)
	api.Put("/update-user-by-user", s.AuthRequired(), s.UpdateUserByUser)

	// Post routes
	api.Post("/create-post", s.AuthRequired(), s.RoleRequired(models.RoleAdmin, models.RoleAuthor), s.CreatePost)
	api.Get("/posts/:page", s.GetPosts)
	api.Get("/post/:slug", s.GetPost)
	api.Put("/edit-post/:postId", s.AuthRequired(), s.EditPost)
	api.Delete("/post/:postId", s.AuthRequired(), s.DeletePost)
	api.Get("/posts-by-author", s.AuthRequired(), s.GetPostsByAuthor)
	api.Get("/post-count", s.GetPostCount)
	api.Get("/posts-all", s.AuthRequired(), s.GetAllPostSummaries)
	api.Get("/numbers", s.GetNumbers)

	// Comment routes
	api.Post("/comment/:postId", s.AuthRequired(), middleware.RateLimit(
		s.redis, 10, time.Minute, "create_comment"), s.CreateComment)
	api.Get("/comments/:page", s.GetComments)
	api.Get("/user-comments", s.AuthRequired(), s.GetUserComments)
	api.Get("/comment-count", s.GetCommentCount)
	api.Put("/comment/:commentId", s.AuthRequired(), s.UpdateComment)
	api.Delete("/comment/:commentId", s.AuthRequired(), s.DeleteComment)

	// Category routes (keyed by slug)
	api.Post("/category", s.AuthRequired(), s.AdminRequired(), s.CreateCategory)
	api.Get("/categories", s.GetCategories)
	api.Put("/category/:slug", s.AuthRequired(), s.AdminRequired(), s.UpdateCategory)
	api.Delete("/category/:slug", s.AuthRequired(), s.AdminRequired(), s.DeleteCategory)
	api.Get("/posts-by-category/:slug", s.GetPostsByCategory)
	api.Get("/search-category/:query", s.SearchCategory)

	// Page routes
	api.Post("/create-page", s.AuthRequired(), s.AdminRequired(), s.CreatePage)
	api.Post("/edit-page/:pageId", s.AuthRequired(), s.AdminRequired(), s.EditPage)
	api.Get("/page/:slug", s.GetPage)
	api.Get("/pages-all", s.AuthRequired(), s.GetAllPageSummaries)
	api.Delete("/page/:pageId", s.AuthRequired(), s.AdminRequired(), s.DeletePage)
	api.Post("/contact", middleware.RateLimit(
		s.redis, 5, 10*time.Minute, "contact"), s.Contact)

	// Media routes
	api.Post("/upload-image", s.AuthRequired(), middleware.RateLimit(
		s.redis, 20, time.Minute, "upload"), s.UploadImage)
	api.Post("/upload-image-file", s.AuthRequired(), middleware.RateLimit(
		s.redis, 20, time.Minute, "upload"), s.UploadImageFile)
	api.Get("/media", s.AuthRequired(), s.GetMedia)
	api.Delete("/media/:id", s.AuthRequired(), s.DeleteMedia)
}

// HealthCheck is a simple alias for ReadinessCheck
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return s.ReadinessCheck(c)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// Redis is optional; the API degrades to uncached reads without it.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"message": "Treo CMS API",
		"version": "1.0.0",
		"status":  overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired returns the authentication middleware. The token is read from
// the Authorization header first, then the session cookie set at signin.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := ""
		authHeader := c.Get("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		if tokenString == "" {
			tokenString = c.Cookies("token")
		}

		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(s.config.JWTSecret), nil
		})

		if err != nil || !token.Valid {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token claims"))
		}

		if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != "treo-cms-api" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token issuer"))
		}
		if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != "treo-cms-client" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token audience"))
		}

		sub, ok := claims["sub"].(string)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid subject claim"))
		}

		userID, err := strconv.ParseUint(sub, 10, 32)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid user ID in token"))
		}

		c.Locals("userID", uint(userID))
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, uint(userID))
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// AdminRequired returns middleware that rejects non-admin users with 403.
// Must be placed after AuthRequired so that userID is available in locals.
func (s *Server) AdminRequired() fiber.Handler {
	return s.RoleRequired(models.RoleAdmin)
}

// RoleRequired returns middleware that rejects users whose role is not in the
// given set with 403. Must be placed after AuthRequired.
func (s *Server) RoleRequired(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(uint)

		role, err := s.roleByUserID(c.Context(), userID)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		}
		for _, allowed := range roles {
			if role == allowed {
				return c.Next()
			}
		}

		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Access denied"))
	}
}

func (s *Server) roleByUserID(ctx context.Context, userID uint) (string, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Select("role").First(&user, userID).Error; err != nil {
		return "", err
	}
	return user.Role, nil
}

// bodyLimit leaves headroom over the upload cap: base64 payloads run ~4/3
// the image size.
const bodyLimit = 15 * 1024 * 1024

// NewApp builds the Fiber app with middleware and routes attached. Every
// bootstrap path goes through here so they share one fiber.Config.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "Treo CMS API",
		BodyLimit: bodyLimit,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Start starts the server
func (s *Server) Start() error {
	app := s.NewApp()

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
