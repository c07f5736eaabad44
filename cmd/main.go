package main

import (
	"context"
	"fmt"
	"os"
	"time"

	rediscache "github.com/raseedhq/raseed-backend/internal/clients/redis"
	"github.com/raseedhq/raseed-backend/internal/db"
	"github.com/raseedhq/raseed-backend/internal/handlers"
	"github.com/raseedhq/raseed-backend/internal/logger"
	"github.com/raseedhq/raseed-backend/internal/middleware"
	"github.com/raseedhq/raseed-backend/internal/observability"
	"github.com/raseedhq/raseed-backend/internal/repos"
	"github.com/raseedhq/raseed-backend/internal/server"
	"github.com/raseedhq/raseed-backend/internal/services"
	"github.com/raseedhq/raseed-backend/internal/utils"
	"github.com/raseedhq/raseed-backend/internal/warranty"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
	expiryHorizonDays := utils.GetEnvAsInt("EXPIRY_HORIZON_DAYS", warranty.DefaultHorizonDays, log)
	reminderInterval := utils.GetEnvAsInt("REMINDER_SCAN_INTERVAL_SECONDS", 3600, log)

	// Tracing
	shutdownOTel := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "raseed-backend",
		Environment: utils.GetEnv("ENVIRONMENT", "development", log),
		Version:     utils.GetEnv("SERVICE_VERSION", "dev", log),
	})
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(shutdownCtx); err != nil {
			log.Warn("OTel shutdown failed", "error", err)
		}
	}()

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	userTokenRepo := repos.NewUserTokenRepo(thePG, log)
	slipRepo := repos.NewWarrantySlipRepo(thePG, log)

	// Redis summary cache
	summaryCache, err := rediscache.NewSummaryCache(log)
	if err != nil {
		log.Warn("Could not init SummaryCache, continuing without it", "error", err)
		summaryCache = nil
	}

	// Services
	log.Info("Setting up Services from main...")
	bucketService, err := services.NewBucketService(log)
	if err != nil {
		log.Warn("Could not init BucketService", "error", err)
	}
	ocrService, err := services.NewReceiptOCRService(log)
	if err != nil {
		log.Warn("Could not init ReceiptOCRService, receipts will not be scanned", "error", err)
	}
	authService := services.NewAuthService(thePG, log, userRepo, userTokenRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
	userService := services.NewUserService(thePG, log, userRepo)
	slipService := services.NewSlipService(thePG, log, slipRepo, userRepo, bucketService, summaryCache, expiryHorizonDays)
	registrationService := services.NewRegistrationService(thePG, log, userRepo, slipRepo, bucketService, ocrService, summaryCache)
	reminderService := services.NewReminderService(thePG, log, slipRepo, summaryCache, expiryHorizonDays, time.Duration(reminderInterval)*time.Second)
	reminderService.StartWorker(context.Background())

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	slipHandler := handlers.NewSlipHandler(log, slipService)
	registrationHandler := handlers.NewRegistrationHandler(log, registrationService)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:         authHandler,
		AuthMiddleware:      authMiddleware,
		UserHandler:         userHandler,
		SlipHandler:         slipHandler,
		RegistrationHandler: registrationHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Warn("Server failed", "error", err)
	}
}
