package api

import (
	"log/slog"
	"os"
	"strings"

	"github.com/ghostnote-im/ghostnote-backend/internal/api/handlers"
	"github.com/ghostnote-im/ghostnote-backend/internal/api/middleware"
	"github.com/ghostnote-im/ghostnote-backend/internal/logger"
	"github.com/ghostnote-im/ghostnote-backend/internal/repository"
	"github.com/ghostnote-im/ghostnote-backend/internal/services"
	"github.com/ghostnote-im/ghostnote-backend/internal/session"
	"github.com/ghostnote-im/ghostnote-backend/internal/storage"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// RouterConfig holds dependencies for the router
type RouterConfig struct {
	DB          *gorm.DB
	FileStorage storage.FileStorage
	StoragePath string
	Logger      *slog.Logger
	SecurityLog *logger.SecurityLogger
	// Security configuration
	AllowedOrigins []string // Allowed CORS origins
	RateLimit      int      // Requests per second (0 = use env default)
	RateBurst      int      // Burst size for rate limiter
}

// NewRouter creates and configures the Echo router with all routes
func NewRouter(cfg *RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware order: recover first, then headers, CORS, rate
	// limiting, request logging, session resolution.
	e.Use(middleware.Recover())
	e.Use(middleware.SecureHeaders())

	if len(cfg.AllowedOrigins) > 0 {
		os.Setenv("ALLOWED_ORIGINS", strings.Join(cfg.AllowedOrigins, ","))
	}
	e.Use(middleware.SecureCORS())

	if cfg.RateLimit > 0 {
		e.Use(middleware.RateLimiterWithConfig(float64(cfg.RateLimit), cfg.RateBurst, cfg.Logger))
	} else {
		e.Use(middleware.RateLimiter(cfg.Logger))
	}

	if cfg.Logger != nil {
		e.Use(middleware.RequestLogger(cfg.Logger))
	}

	// Repositories and services
	identityRepo := repository.NewIdentityRepository(cfg.DB)
	mailboxRepo := repository.NewMailboxRepository(cfg.DB, cfg.SecurityLog)

	identityService := services.NewIdentityService(identityRepo)
	messageService := services.NewMessageService(identityRepo, mailboxRepo)
	attachmentService := services.NewAttachmentService(identityRepo, messageService, cfg.FileStorage)

	sessions := session.NewStore()

	// Handlers
	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.StoragePath)
	identityHandler := handlers.NewIdentityHandler(identityService)
	messageHandler := handlers.NewMessageHandler(messageService)
	attachmentHandler := handlers.NewAttachmentHandler(attachmentService, cfg.SecurityLog)

	// Health routes (no session required)
	e.GET("/health", healthHandler.Health)
	e.GET("/ready", healthHandler.Ready)

	// API routes, every one behind session resolution
	apiGroup := e.Group("/api")
	apiGroup.Use(middleware.Session(sessions, identityService, cfg.Logger))

	apiGroup.GET("/identity", identityHandler.Get)
	apiGroup.POST("/identity/touch", identityHandler.Touch)
	apiGroup.GET("/identities", identityHandler.List)

	apiGroup.POST("/messages", messageHandler.Send)
	apiGroup.GET("/conversations/:peer_id", messageHandler.Conversation)
	apiGroup.GET("/conversations/:peer_id/new", messageHandler.PollNew)

	apiGroup.POST("/files", attachmentHandler.Send)
	apiGroup.GET("/files/:stored_name", attachmentHandler.Fetch)

	return e
}
