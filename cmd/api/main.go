package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/prometheus/client_golang/prometheus"
	httpSwagger "github.com/swaggo/http-swagger"
	_ "github.com/tenantdesk/mediagate/docs"
	"github.com/tenantdesk/mediagate/internal/auth"
	"github.com/tenantdesk/mediagate/internal/config"
	"github.com/tenantdesk/mediagate/internal/handlers"
	"github.com/tenantdesk/mediagate/internal/httpclient"
	"github.com/tenantdesk/mediagate/internal/logger"
	"github.com/tenantdesk/mediagate/internal/metrics"
	"github.com/tenantdesk/mediagate/internal/middleware"
	"github.com/tenantdesk/mediagate/internal/permissions"
	"github.com/tenantdesk/mediagate/internal/repositories"
	"github.com/tenantdesk/mediagate/internal/rules"
	"github.com/tenantdesk/mediagate/internal/scheduler"
	"github.com/tenantdesk/mediagate/internal/services"
	"github.com/tenantdesk/mediagate/internal/validation"
	"go.uber.org/zap"
)

// @title MediaGate API
// @version 1.0
// @description Permission-gated, validated access to the tenant media API

// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer access token issued to dashboard administrators
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting MediaGate")

	// Load upload rules
	uploadRules, err := rules.Load(cfg.Upload.RulesFile)
	if err != nil {
		logger.Logger.Fatal("Failed to load upload rules", zap.Error(err))
	}
	uploadRules = uploadRules.WithStrictExtensionMatch(cfg.Upload.StrictExtensionMatch)

	// The persistent asset cache is optional; the memory tier is always on
	var cacheStore repositories.AssetStore
	if cfg.CacheEnabled() {
		db, err := connectDB(cfg.DSN())
		if err != nil {
			logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		if err := runMigrations(db); err != nil {
			logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
		}

		cacheRepo := repositories.NewAssetCacheRepository(db, cfg.Cache.TTL, logger.Logger)
		janitor, err := scheduler.NewCacheJanitor(cacheRepo, cfg.Cache.PurgeSchedule, logger.Logger)
		if err != nil {
			logger.Logger.Fatal("Failed to create cache janitor", zap.Error(err))
		}
		janitor.Start()
		defer janitor.Stop()

		cacheStore = cacheRepo
	} else {
		logger.Logger.Info("Persistent asset cache disabled")
	}

	assetCache, err := repositories.NewMemoryAssetCache(cacheStore, cfg.Cache.Size, cfg.Cache.TTL, logger.Logger)
	if err != nil {
		logger.Logger.Fatal("Failed to create asset cache", zap.Error(err))
	}

	// Initialize metrics
	m, err := metrics.New(prometheus.DefaultRegisterer)
	if err != nil {
		logger.Logger.Fatal("Failed to register metrics", zap.Error(err))
	}

	// Initialize JWT token generator (for auth middleware)
	tokenGenerator := auth.NewTokenGenerator(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	// Initialize services
	apiClient := httpclient.NewClient(cfg.MediaAPI.BaseURL, cfg.MediaAPI.APIKey, cfg.MediaAPI.Timeout, logger.Logger)
	mediaService := services.NewMediaService(apiClient, assetCache, uploadRules, logger.Logger)
	checker := permissions.NewChecker(uploadRules)
	validator := validation.NewValidator(uploadRules)
	uploader := services.NewUploader(checker, validator, mediaService, logger.Logger).WithObserver(m)

	// Initialize handlers
	mediaHandler := handlers.NewMediaHandler(mediaService, uploader, checker, logger.Logger)
	permissionHandler := handlers.NewPermissionHandler(checker, validator, logger.Logger)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger.Logger))
	r.Use(m.Middleware)
	r.Use(middleware.Recovery(logger.Logger))
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(cfg.Server.RateLimitPerMinute, time.Minute))
	r.Use(middleware.RequestSizeLimit(cfg.Server.MaxRequestSize))

	r.Handle("/metrics", metrics.Handler(prometheus.DefaultGatherer))

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
	))

	// Scope router to /api/v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(tokenGenerator))
		mediaHandler.RegisterRoutes(r)
		permissionHandler.RegisterRoutes(r)
	})

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  60 * time.Second, // Longer timeout for file uploads
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}

// connectDB connects to the asset cache database
func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB) error {
	driver, err := mysql.WithInstance(db, &mysql.Config{
		MigrationsTable: "mediagate_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	// Fall back to the repository root when running from cmd/api
	migrationPath := "file://migrations"
	if _, err := os.Stat("migrations"); os.IsNotExist(err) {
		if _, err := os.Stat("../../migrations"); err == nil {
			migrationPath = "file://../../migrations"
		}
	}

	m, err := migrate.NewWithDatabaseInstance(migrationPath, "mysql", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
