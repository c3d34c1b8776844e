package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/MUOBSocial/MUOB-creators/internal/handler"
	"github.com/MUOBSocial/MUOB-creators/internal/middleware"
	"github.com/MUOBSocial/MUOB-creators/internal/store"
	"github.com/MUOBSocial/MUOB-creators/internal/tally"
	"github.com/MUOBSocial/MUOB-creators/pkg/config"
	"github.com/MUOBSocial/MUOB-creators/pkg/database"
	"github.com/MUOBSocial/MUOB-creators/pkg/jwtutil"
	"github.com/MUOBSocial/MUOB-creators/pkg/logger"
	"github.com/MUOBSocial/MUOB-creators/prometheus"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting creator briefs service...", cfg.LogConfig()...)

	// Open database and migrate schema
	db, err := database.Open(&cfg.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}
	log.Info("Database connection established and migrations completed")

	// Seed the default admin account if absent
	dataStore := store.New(db)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(cfg.Admin.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash default admin password", zap.Error(err))
	}
	if err := dataStore.SeedAdmin(cfg.Admin.Username, string(passwordHash)); err != nil {
		log.Fatal("Failed to seed admin account", zap.Error(err))
	}
	log.Info("Admin account ready", zap.String("username", cfg.Admin.Username))

	// Construct dependencies
	jwtUtil := jwtutil.NewJWTUtil(&cfg.JWT)
	tallyClient := tally.NewClient(cfg.Tally.BaseURL, cfg.Tally.APIKey)

	authHandler := handler.NewAuthHandler(dataStore, jwtUtil)
	briefHandler := handler.NewBriefHandler(dataStore, tallyClient)
	applicationHandler := handler.NewApplicationHandler(dataStore)
	userHandler := handler.NewUserHandler(dataStore, jwtUtil)
	webhookHandler := handler.NewWebhookHandler(dataStore)
	statsHandler := handler.NewStatsHandler(dataStore)

	// Initialize Echo framework
	e := echo.New()
	e.HideBanner = true

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.OPTIONS},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(prometheus.GetPrometheusHandler()))

	api := e.Group("/api")

	// Admin login and admin-only routes
	api.POST("/admin/login", authHandler.AdminLogin)

	admin := api.Group("/admin")
	admin.Use(middleware.RequireAdmin(jwtUtil))
	admin.GET("/tally/forms", briefHandler.ListTallyForms)
	admin.POST("/briefs", briefHandler.CreateBrief)
	admin.GET("/briefs", briefHandler.ListBriefs)
	admin.PUT("/brief/:id/status", briefHandler.UpdateBriefStatus)
	admin.GET("/applications", applicationHandler.ListApplications)
	admin.PUT("/application/:id", applicationHandler.UpdateApplication)
	admin.POST("/applications/bulk-update", applicationHandler.BulkUpdate)
	admin.GET("/stats", statsHandler.GetStats)

	// Creator-facing routes
	api.POST("/user/login", userHandler.Login)
	api.GET("/user/applications", userHandler.Applications, middleware.RequireUser(jwtUtil))

	// Webhook receiver - unauthenticated by contract
	api.POST("/webhook/tally", webhookHandler.HandleTally)

	// Start server
	go func() {
		log.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil {
			log.Info("Server stopped", zap.Error(err))
		}
	}()

	// Shut down on SIGINT/SIGTERM, releasing storage connections
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
	if err := database.Close(db); err != nil {
		log.Error("Error closing database", zap.Error(err))
	} else {
		log.Info("Database connection closed")
	}
}
