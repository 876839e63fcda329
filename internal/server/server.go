package server

import (
	"fmt"
	"net/http"
	"time"

	"techstore/internal/config"
	"techstore/internal/database"
	custommiddleware "techstore/internal/middleware"
	"techstore/internal/receipt"
	"techstore/internal/service"
	"techstore/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     database.Service
	redis  *redis.Client
}

// TokenSettings converts the JWT configuration into service settings.
func TokenSettings(cfg config.JWTConfig) service.TokenSettings {
	settings := service.TokenSettings{
		Secret:     cfg.Secret,
		AccessTTL:  service.AccessTokenExpiration,
		RefreshTTL: service.RefreshTokenExpiration,
	}
	if cfg.AccessExpiry > 0 {
		settings.AccessTTL = time.Duration(cfg.AccessExpiry) * time.Minute
	}
	if cfg.RefreshExpiry > 0 {
		settings.RefreshTTL = time.Duration(cfg.RefreshExpiry) * 24 * time.Hour
	}
	return settings
}

func NewServer(cfg *config.Config, logger *zap.Logger, db database.Service, redisClient *redis.Client) *Server {
	services := service.NewServices(service.NewRepositories(db.DB()), TokenSettings(cfg.JWT), logger)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      NewRouter(cfg, logger, db, redisClient, services),
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	return server
}

// NewRouter builds the HTTP routes on top of an existing service set.
func NewRouter(cfg *config.Config, logger *zap.Logger, db database.Service, redisClient *redis.Client, services *service.Services) http.Handler {
	router := chi.NewRouter()

	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.Server.Env != "production"))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := db.Health(r.Context())
		status := http.StatusOK
		if health["status"] != "up" {
			status = http.StatusServiceUnavailable
		}
		custommiddleware.RespondWithJSON(w, status, health)
	})

	authMiddleware := custommiddleware.AuthMiddleware(services.Accounts, logger)
	loginLimiter := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: cfg.RateLimit.LoginLimit,
		Window:            time.Duration(cfg.RateLimit.LoginWindowSeconds) * time.Second,
		KeyPrefix:         "login",
	}, logger)

	store := receipt.Store{Name: cfg.Store.Name, TaxID: cfg.Store.TaxID}

	router.Route("/api", func(r chi.Router) {
		transport.NewAuthHandler(services.Accounts, logger).RegisterRoutes(r, authMiddleware, loginLimiter)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)

			transport.NewAccountHandler(services.Accounts, logger).RegisterRoutes(r)
			transport.NewCatalogHandler(services.Catalog, services.Ledger, logger).RegisterRoutes(r)
			transport.NewCustomerHandler(services.Customers, logger).RegisterRoutes(r)
			transport.NewSaleHandler(services.Sales, store, logger).RegisterRoutes(r)
			transport.NewReportHandler(services.Reports, logger).RegisterRoutes(r)
		})
	})

	return router
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	_ = s.logger.Sync()
	return nil
}
