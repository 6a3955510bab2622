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

	"github.com/pharmalog/elogbook-api/internal/config"
	"github.com/pharmalog/elogbook-api/internal/database"
	"github.com/pharmalog/elogbook-api/internal/handlers"
	"github.com/pharmalog/elogbook-api/internal/jobs"
	"github.com/pharmalog/elogbook-api/internal/middleware"
	"github.com/pharmalog/elogbook-api/internal/models"
	"github.com/pharmalog/elogbook-api/internal/policy"
	"github.com/pharmalog/elogbook-api/internal/repository"
	"github.com/pharmalog/elogbook-api/internal/services"
	"github.com/pharmalog/elogbook-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// @title Pharma eLogbook API
// @version 1.0
// @description REST API for an electronic equipment logbook with e-signature workflows

// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Setup(cfg.Environment)

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

	if cfg.ResendAPIKey == "" || cfg.FromEmail == "" {
		logger.Warn("Resend email disabled: RESEND_API_KEY or FROM_EMAIL not set")
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	if err := database.Migrate(db); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	repos := repository.NewRepositories(db)

	if err := seedAdmin(repos.User, cfg); err != nil {
		logger.Error("Failed to seed admin account", "error", err)
		os.Exit(1)
	}

	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	svcs := services.NewServices(repos, worker, cfg, db)

	scheduleJobs(worker, svcs)

	h := handlers.NewHandlers(svcs)
	router := setupRouter(h, cfg)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	worker.Shutdown()
	logger.Info("Background worker stopped")

	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

// seedAdmin creates the initial administrator account when the users table
// is empty, so a fresh deployment can be logged into.
func seedAdmin(userRepo repository.UserRepository, cfg *config.Config) error {
	ctx := context.Background()

	count, err := userRepo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := services.HashPassword(cfg.SeedAdminPassword)
	if err != nil {
		return err
	}

	admin := &models.User{
		Username:          cfg.SeedAdminUsername,
		EncryptedPassword: hashed,
		FullName:          "System Administrator",
		Role:              models.RoleAdmin,
		IsActive:          true,
	}
	// No acting user exists yet, so the seed carries no audit row.
	if err := userRepo.Create(ctx, admin, nil); err != nil {
		return err
	}

	logger.Warn("Seeded initial admin account, change its password immediately",
		"username", cfg.SeedAdminUsername)
	return nil
}

func scheduleJobs(worker *jobs.Worker, svcs *services.Services) {
	// Flag overdue maintenance tasks once at startup, then every hour
	worker.ScheduleEveryImmediate(1*time.Hour, func(ctx context.Context) error {
		logger.Info("[Job] Scanning for overdue maintenance tasks...")
		return svcs.PMSchedule.MarkOverdueScan(ctx)
	})
}

func setupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	v1 := router.Group("/api/v1")
	{
		router.GET("/", func(c *gin.Context) {
			c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
		})
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

		// Health check (public)
		v1.GET("/health", h.Health.Index)

		// Authentication (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		// Protected routes
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		{
			protected.POST("/auth/logout", h.Auth.Logout)
			protected.POST("/auth/change-password", h.Auth.ChangePassword)

			protected.GET("/users/me", h.User.Me)

			// Account listing (Admin and QA)
			listUsers := protected.Group("")
			listUsers.Use(middleware.RequireOperation(policy.OpListUsers))
			{
				listUsers.GET("/users", h.User.Index)
				listUsers.GET("/users/:id", h.User.Show)
			}

			// Account management (Admin only)
			admin := protected.Group("")
			admin.Use(middleware.RequireOperation(policy.OpManageUsers))
			{
				admin.POST("/users", h.User.Create)
				admin.PUT("/users/:id", h.User.Update)
				admin.POST("/users/:id/deactivate", h.User.Deactivate)
				admin.POST("/users/:id/activate", h.User.Activate)
			}

			// Equipment registry. Anyone may read; mutations are for
			// Admin and Engineer.
			equipment := protected.Group("/equipment")
			{
				equipment.GET("", h.Equipment.Index)
				equipment.GET("/:id", h.Equipment.Show)

				manage := equipment.Group("")
				manage.Use(middleware.RequireOperation(policy.OpManageEquipment))
				{
					manage.POST("", h.Equipment.Create)
					manage.PUT("/:id", h.Equipment.Update)
					manage.DELETE("/:id", h.Equipment.Destroy)
				}
			}

			// Log entries and their lifecycle
			entries := protected.Group("/logs")
			{
				entries.GET("", h.LogEntry.Index)
				entries.GET("/:id", h.LogEntry.Show)
				entries.GET("/:id/export", h.LogEntry.Export)
				entries.POST("", h.LogEntry.Create)
				entries.PUT("/:id", h.LogEntry.Update)
				entries.POST("/:id/submit", h.LogEntry.Submit)
				entries.POST("/:id/approve", h.LogEntry.Approve)
				entries.POST("/:id/reject", h.LogEntry.Reject)
			}

			// Preventive maintenance schedules
			pm := protected.Group("/pm-schedules")
			{
				pm.GET("", h.PMSchedule.Index)
				pm.GET("/:id", h.PMSchedule.Show)
				pm.POST("", h.PMSchedule.Create)
				pm.PUT("/:id", h.PMSchedule.Update)
				pm.POST("/:id/complete", h.PMSchedule.Complete)
			}

			// Notifications. Static route first so "read-all" is not
			// matched as :id.
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", h.Notification.Index)
				notifications.POST("/read-all", h.Notification.MarkAllRead)
				notifications.POST("/:id/read", h.Notification.MarkRead)
			}

			// Audit trail (Admin, QA and Supervisor)
			audit := protected.Group("/audit")
			audit.Use(middleware.RequireOperation(policy.OpViewAuditTrail))
			{
				audit.GET("", h.Audit.Index)
				audit.GET("/export", h.Audit.Export)
			}
		}
	}

	return router
}
