// internal/interfaces/http/server.go
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/catalog"
	"github.com/your-org/storefront-backend/internal/domain/wishlist"
	"github.com/your-org/storefront-backend/internal/infrastructure/database/postgres"
	redisinfra "github.com/your-org/storefront-backend/internal/infrastructure/database/redis"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-backend/internal/interfaces/http/routes"
	"gorm.io/gorm"
)

// Server represents the HTTP server
type Server struct {
	config      *config.Config
	gin         *gin.Engine
	httpServer  *http.Server
	db          *gorm.DB
	redisClient *redis.Client
	logger      *logrus.Logger

	catalogService *catalog.Service
	carts          *cart.Manager
	wishlists      *wishlist.Manager
}

// NewServer creates a new HTTP server instance
func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, logger *logrus.Logger) *Server {
	catalogService := catalog.NewService(db, redisClient, cfg)

	cartSnapshots := redisinfra.NewSnapshotStore(redisClient, "cart", cfg.Store.SnapshotTTL)
	wishlistSnapshots := redisinfra.NewSnapshotStore(redisClient, "wishlist", cfg.Store.SnapshotTTL)
	savedProducts := postgres.NewSavedProductsStore(db)

	return &Server{
		config:         cfg,
		db:             db,
		redisClient:    redisClient,
		logger:         logger,
		catalogService: catalogService,
		carts:          cart.NewManager(cartSnapshots, logger),
		wishlists:      wishlist.NewManager(wishlistSnapshots, savedProducts, catalogService, logger),
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	// Set Gin mode based on environment
	if s.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Create Gin engine
	s.gin = gin.New()

	// Setup middleware
	s.setupMiddleware()

	// Setup routes
	s.setupRoutes()

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.gin,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	s.logger.Infof("🚀 HTTP Server starting on port %s", s.config.Server.Port)

	// Start server
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("🛑 Shutting down HTTP server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.logger.Info("✅ HTTP server stopped gracefully")
	return nil
}

// setupMiddleware configures all middleware for the server
func (s *Server) setupMiddleware() {
	s.gin.Use(gin.Recovery())
	s.gin.Use(middleware.Logger(s.logger))
	s.gin.Use(middleware.SecurityHeaders())
	s.gin.Use(middleware.CORS(s.config))
	s.gin.Use(middleware.RateLimit(s.config, s.redisClient))
	s.gin.Use(middleware.Session())

	if len(s.config.Security.TrustedProxies) > 0 {
		if err := s.gin.SetTrustedProxies(s.config.Security.TrustedProxies); err != nil {
			s.logger.WithError(err).Warn("Failed to set trusted proxies")
		}
	}
}

// setupRoutes configures all routes for the server
func (s *Server) setupRoutes() {
	// Health check
	s.gin.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"app":       s.config.App.Name,
			"version":   s.config.App.Version,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	api := s.gin.Group("/api/v1")
	routes.SetupProductRoutes(api, s.catalogService, s.config)
	routes.SetupCartRoutes(api, s.carts, s.catalogService, s.config)
	routes.SetupWishlistRoutes(api, s.wishlists, s.catalogService, s.config)
}
