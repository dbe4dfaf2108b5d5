package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"time"

	"moveis-catalog/internal/analytics"
	"moveis-catalog/internal/config"
	"moveis-catalog/internal/database"
	custommiddleware "moveis-catalog/internal/middleware"
	"moveis-catalog/internal/repository"
	"moveis-catalog/internal/service"
	"moveis-catalog/internal/storage"
	"moveis-catalog/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	maxJSONBody = 1 << 20

	loginAttempts = 10
	loginWindow   = 15 * time.Minute
)

type Server struct {
	*http.Server
	config  *config.Config
	logger  *zap.Logger
	db      database.Service
	redis   *redis.Client
	tracker *analytics.Tracker
	auth    service.AuthService
}

// jwtSecret returns the configured signing key. Development falls back to a
// random key when none is set.
func jwtSecret(cfg *config.Config, logger *zap.Logger) (string, error) {
	if cfg.JWT.Secret != "" || cfg.Server.Env != "development" {
		return cfg.JWT.Secret, nil
	}

	key := make([]byte, service.MinSecretLength)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("failed to generate jwt secret: %w", err)
	}
	logger.Warn("JWT_SECRET not set, using a random secret; admin sessions end on restart")
	return hex.EncodeToString(key), nil
}

func NewServer(cfg *config.Config, logger *zap.Logger, db database.Service) (*Server, error) {
	secret, err := jwtSecret(cfg, logger)
	if err != nil {
		return nil, err
	}

	// Initialize repositories
	productRepo := repository.NewProductRepository(db.DB())
	promotionRepo := repository.NewPromotionRepository(db.DB())
	adminRepo := repository.NewAdminRepository(db.DB())
	sessionRepo := repository.NewSessionRepository(db.DB())
	eventRepo := repository.NewEventRepository(db.DB())

	authService, err := service.NewAuthService(adminRepo, sessionRepo, service.TokenConfig{
		Secret:        secret,
		AccessExpiry:  time.Duration(cfg.JWT.AccessExpiry) * time.Minute,
		RefreshExpiry: time.Duration(cfg.JWT.RefreshExpiry) * 24 * time.Hour,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_SECRET: %w", err)
	}

	store, err := storage.NewLocalStore(cfg.Storage.Root, cfg.Storage.Bucket, cfg.Storage.PublicURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open image storage: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	router := chi.NewRouter()
	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.Server.Env == "development"))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := db.Health()
		status := http.StatusOK
		if health["status"] != "up" {
			status = http.StatusServiceUnavailable
		}
		custommiddleware.RespondWithJSON(w, status, health)
	})

	// Initialize services
	catalogService := service.NewCatalogService(productRepo, promotionRepo, cfg.Store.Categories, logger)
	productService := service.NewProductService(productRepo, logger)
	promotionService := service.NewPromotionService(promotionRepo, productRepo, logger)
	imageService := service.NewImageService(store, cfg.Storage.MaxUploadMB, logger)
	setupService := service.NewSetupService(db.DB(), productRepo, promotionRepo, store, logger)
	tracker := analytics.NewTracker(eventRepo, logger)

	protect := func(next http.Handler) http.Handler {
		return custommiddleware.AuthMiddleware(authService, logger)(custommiddleware.RequireAdmin(logger)(next))
	}
	loginLimit := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: loginAttempts,
		Window:            loginWindow,
		KeyPrefix:         "ratelimit:login",
	}, logger)
	eventLimit := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: cfg.RateLimit.Requests,
		Window:            time.Duration(cfg.RateLimit.Window) * time.Second,
		KeyPrefix:         "ratelimit:events",
	}, logger)

	// Register routes
	router.Group(func(r chi.Router) {
		r.Use(custommiddleware.MaxBodySize(maxJSONBody))
		transport.NewAuthHandler(authService, logger).RegisterRoutes(r, protect, loginLimit)
		transport.NewCatalogHandler(catalogService, service.NewContactLinks(cfg.Store.WhatsAppPhone), logger).RegisterRoutes(r)
		transport.NewProductHandler(productService, logger).RegisterRoutes(r, protect)
		transport.NewPromotionHandler(promotionService, logger).RegisterRoutes(r, protect)
		transport.NewAnalyticsHandler(tracker, logger).RegisterRoutes(r, protect, eventLimit)
		transport.NewSetupHandler(setupService, logger).RegisterRoutes(r, protect)
	})
	transport.NewImageHandler(imageService, cfg.Storage.MaxUploadMB, logger).RegisterRoutes(router, protect)
	router.Handle(cfg.Storage.PublicURL+"/*", http.StripPrefix(cfg.Storage.PublicURL, store.Handler()))

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:  cfg,
		logger:  logger,
		db:      db,
		redis:   redisClient,
		tracker: tracker,
		auth:    authService,
	}

	return server, nil
}

// Bootstrap creates the configured admin account when missing and loads the
// persisted analytics counters.
func (s *Server) Bootstrap(ctx context.Context) error {
	if s.config.Admin.Password != "" {
		_, created, err := s.auth.EnsureAdmin(ctx, s.config.Admin.Username, s.config.Admin.Password)
		if err != nil {
			return fmt.Errorf("failed to ensure admin account: %w", err)
		}
		if created {
			s.logger.Info("Admin account created", zap.String("username", s.config.Admin.Username))
		}
	} else {
		s.logger.Warn("ADMIN_PASSWORD not set, skipping admin bootstrap")
	}

	if err := s.tracker.Init(ctx); err != nil {
		return err
	}
	return nil
}

// Tracker is the analytics tracker behind the event routes.
func (s *Server) Tracker() *analytics.Tracker {
	return s.tracker
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.tracker.Flush(ctx); err != nil {
		s.logger.Error("Failed to flush analytics", zap.Error(err))
	}

	if err := s.redis.Close(); err != nil {
		s.logger.Error("Failed to close redis client", zap.Error(err))
	}

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	_ = s.logger.Sync()
	return nil
}
