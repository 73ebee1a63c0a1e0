package server

import (
	"fmt"
	"net/http"
	"time"

	"rads-market/internal/config"
	"rads-market/internal/database"
	"rads-market/internal/domain"
	custommiddleware "rads-market/internal/middleware"
	"rads-market/internal/notify"
	"rads-market/internal/repository"
	"rads-market/internal/service"
	"rads-market/internal/storage"
	"rads-market/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config      *config.Config
	logger      *zap.Logger
	db          *database.Service
	redisClient *redis.Client
}

func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	db *database.Service,
	redisClient *redis.Client,
	objects storage.ObjectStore,
) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.Server.Env == "development"))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		custommiddleware.RespondWithJSON(w, http.StatusOK, db.Health(r.Context()))
	})

	// Initialize repositories
	accountRepo := repository.NewAccountRepository(db.DB())
	refreshTokenRepo := repository.NewRefreshTokenRepository(db.DB())
	resetTokenRepo := repository.NewResetTokenRepository(db.DB())
	sellerRequestRepo := repository.NewSellerRequestRepository(db.DB())
	productRequestRepo := repository.NewProductRequestRepository(db.DB())
	productRepo := repository.NewProductRepository(db.DB())
	approvalStore := repository.NewApprovalStore(db.DB())

	// Initialize the live request feed
	broker := notify.NewRedisBroker(redisClient, logger)

	// Initialize services
	authService := service.NewAuthService(
		accountRepo,
		refreshTokenRepo,
		resetTokenRepo,
		approvalStore,
		service.NewStaticAdminDirectory(cfg.Admin.Emails),
		service.NewLogMailer(logger),
		cfg.JWT,
	)
	approvalService := service.NewApprovalService(
		accountRepo,
		sellerRequestRepo,
		productRequestRepo,
		approvalStore,
		objects,
		broker,
		logger,
	)
	catalogService := service.NewCatalogService(productRepo, objects, logger)

	// Initialize handlers
	authHandler := transport.NewAuthHandler(authService, logger)
	catalogHandler := transport.NewCatalogHandler(catalogService, logger)
	sellerHandler := transport.NewSellerHandler(approvalService, catalogService, objects, logger)
	adminHandler := transport.NewAdminHandler(approvalService, catalogService, broker, logger)

	// Route guards. Capability checks always consult stored account state,
	// not token claims, so approvals and rejections bite mid-session.
	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)
	requireCapability := func(capability domain.Capability) func(http.Handler) http.Handler {
		return custommiddleware.RequireCapability(capability, authService, logger)
	}
	requireAdmin := custommiddleware.RequireAdmin(authService, logger)

	// Identity routes are rate limited per client to slow down credential
	// stuffing.
	router.Group(func(r chi.Router) {
		r.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: 30,
			Window:            time.Minute,
			KeyPrefix:         "ratelimit:auth",
		}, logger))
		authHandler.RegisterRoutes(r, authMiddleware)
	})

	catalogHandler.RegisterRoutes(router)
	sellerHandler.RegisterRoutes(router, authMiddleware, requireCapability)
	adminHandler.RegisterRoutes(router, authMiddleware, requireAdmin)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:      cfg,
		logger:      logger,
		db:          db,
		redisClient: redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
