// File: internal/app/server.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"barter_backend/internal/auth"
	"barter_backend/internal/category"
	"barter_backend/internal/config"
	"barter_backend/internal/jobs"
	"barter_backend/internal/message"
	"barter_backend/internal/middleware"
	"barter_backend/internal/notification"
	"barter_backend/internal/offer"
	"barter_backend/internal/platform/database"
	platformES "barter_backend/internal/platform/elasticsearch"
	"barter_backend/internal/review"
	"barter_backend/internal/shared"
	"barter_backend/internal/trade"
	"barter_backend/internal/user"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Server holds the dependencies for the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config

	// Exposed for startup tasks in main.
	AppLogger *zap.Logger
	ESClient  *platformES.ESClientWrapper

	tradeExpiryJob *jobs.TradeExpiryJob
}

// NewServer wires the router, middleware stack and all module routes.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	tokenService shared.TokenService,
	authHandler *auth.Handler,
	userHandler *user.Handler,
	categoryHandler *category.Handler,
	offerHandler *offer.Handler,
	tradeHandler *trade.Handler,
	messageHandler *message.Handler,
	reviewHandler *review.Handler,
	notificationHandler *notification.Handler,
	tradeExpiryJob *jobs.TradeExpiryJob,
	db *gorm.DB,
	esClient *platformES.ESClientWrapper,
) (*Server, error) {
	if err := database.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	gin.SetMode(cfg.GinMode)
	router := gin.New()

	// --- Global Middleware ---
	router.Use(middleware.ZapLogger(logger, cfg))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{"Content-Length", middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	// --- Routes ---
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "Barter API is healthy!"})
	})

	// Uploaded offer images are served straight from disk.
	router.Static("/images", cfg.ImageStoragePath)

	v1 := router.Group("/api/v1")

	authHandler.RegisterRoutes(v1.Group("/auth"))
	userHandler.RegisterRoutes(v1, tokenService)
	categoryHandler.RegisterRoutes(v1, tokenService)
	offerHandler.RegisterRoutes(v1, tokenService)
	tradeHandler.RegisterRoutes(v1, tokenService)
	messageHandler.RegisterRoutes(v1, tokenService)
	reviewHandler.RegisterRoutes(v1, tokenService)
	notificationHandler.RegisterRoutes(v1, tokenService)

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer:     httpServer,
		router:         router,
		cfg:            cfg,
		AppLogger:      logger,
		ESClient:       esClient,
		tradeExpiryJob: tradeExpiryJob,
	}, nil
}

// Start launches background jobs and the HTTP listener. It blocks until the
// listener stops.
func (s *Server) Start() error {
	if s.tradeExpiryJob != nil {
		if err := s.tradeExpiryJob.SetupAndStart(); err != nil {
			s.AppLogger.Error("Failed to setup and start trade expiry job", zap.Error(err))
		}
	}

	s.AppLogger.Info("HTTP Server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("gin_mode", s.cfg.GinMode),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.AppLogger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}
	return nil
}

// Shutdown stops the scheduler and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.AppLogger.Info("Attempting graceful server shutdown...")
	if s.tradeExpiryJob != nil {
		s.tradeExpiryJob.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}
