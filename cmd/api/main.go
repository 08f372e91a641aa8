package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/zarlend/zarlend-api/docs" // Swagger docs
	"github.com/zarlend/zarlend-api/internal/config"
	"github.com/zarlend/zarlend-api/internal/database"
	"github.com/zarlend/zarlend-api/internal/handlers"
	"github.com/zarlend/zarlend-api/internal/jobs"
	"github.com/zarlend/zarlend-api/internal/middleware"
	"github.com/zarlend/zarlend-api/internal/repository"
	"github.com/zarlend/zarlend-api/internal/services"
	"github.com/zarlend/zarlend-api/internal/storage"
	"github.com/zarlend/zarlend-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// @title Zarlend API
// @version 1.0
// @description REST API for the Zarlend microloan intake and review platform

// @contact.name API Support

// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Setup(cfg.Environment)

	// Initialize Sentry when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	// Initialize storage
	store, err := storage.NewLocalStorage(cfg.StoragePath, cfg.StorageSigningKey, cfg.PublicBaseURL)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	logger.Info("Initialized local storage")

	// Initialize repositories
	repos := repository.NewRepositories(db)

	// Initialize background worker
	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	// Initialize services
	svcs := services.NewServices(repos, store, cfg)

	// Schedule recurring jobs
	scheduleJobs(worker, svcs, cfg)

	// Initialize handlers
	h := handlers.NewHandlers(svcs, store, cfg)

	// Setup router
	router := setupRouter(h, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Create context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Shutdown background worker
	worker.Shutdown()
	logger.Info("Background worker stopped")

	// Flush Sentry events before exit
	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Global middleware
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Redirect root to swagger
		router.GET("/", func(c *gin.Context) {
			c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
		})

		// Swagger documentation
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

		// Health check (public)
		v1.GET("/health", h.Health.Index)

		// Signed document links (public; the token is the authorization)
		v1.GET("/files/*path", h.File.Download)

		// Protected routes (requires authentication)
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		{
			// Applicant routes
			protected.POST("/applications", h.Application.Create)
			protected.GET("/me/application", h.Application.Me)
			protected.GET("/me/role", h.Application.Role)
			protected.POST("/uploads", h.Document.Upload)
			protected.GET("/uploads/status", h.Document.Status)

			// Admin-only routes
			admin := protected.Group("/admin")
			admin.Use(middleware.RequireAdmin())
			{
				// Static route first so "export" is not matched as :application_id
				admin.GET("/applications/export", h.Metrics.Export)
				admin.GET("/applications", h.Application.AdminIndex)
				admin.GET("/applications/:application_id", h.Application.AdminShow)
				admin.PATCH("/applications/:application_id", h.Application.AdminReview)
				admin.GET("/applications/:application_id/documents", h.Document.AdminIndex)
				admin.GET("/applications/:application_id/logs", h.Audit.Logs)
				admin.GET("/applications/:application_id/summary_pdf", h.Metrics.SummaryPDF)
				admin.PATCH("/documents/:document_id", h.Document.AdminReview)
				admin.GET("/metrics", h.Metrics.Overview)
			}
		}
	}

	return router
}

func scheduleJobs(worker *jobs.Worker, svcs *services.Services, cfg *config.Config) {
	retention := time.Duration(cfg.RateEventRetentionHours) * time.Hour

	// Purge expired rate limit events every hour
	worker.ScheduleEveryImmediate(1*time.Hour, func(ctx context.Context) error {
		logger.Info("[Job] Purging expired rate limit events...")
		return svcs.RateLimit.PurgeOlderThan(ctx, retention)
	})

	logger.Info("Scheduled recurring jobs")
}
