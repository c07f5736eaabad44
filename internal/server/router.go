package server

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/raseedhq/raseed-backend/internal/handlers"
	"github.com/raseedhq/raseed-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler         *handlers.AuthHandler
	AuthMiddleware      *middleware.AuthMiddleware
	UserHandler         *handlers.UserHandler
	SlipHandler         *handlers.SlipHandler
	RegistrationHandler *handlers.RegistrationHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware("raseed-backend"))
	router.Use(middleware.CORS())

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	api := router.Group("/api")
	{
		api.POST("/register", cfg.AuthHandler.Register)
		api.POST("/login", cfg.AuthHandler.Login)
		api.POST("/warranty/register", cfg.RegistrationHandler.RegisterWarranty)
	}

	// ===============
	// || Protected ||
	// ===============
	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// Auth
	protected.POST("/refresh", cfg.AuthHandler.Refresh)
	protected.POST("/logout", cfg.AuthHandler.Logout)
	// User
	protected.GET("/me", cfg.UserHandler.GetMe)
	// Warranty slips
	slips := protected.Group("/slip")
	{
		slips.POST("/upload", cfg.SlipHandler.Upload)
		slips.GET("/", cfg.SlipHandler.List)
		slips.GET("/summary", cfg.SlipHandler.Summary)
		slips.GET("/:id", cfg.SlipHandler.Get)
		slips.PATCH("/:id/reminder", cfg.SlipHandler.SetReminder)
		slips.POST("/:id/transfer", cfg.SlipHandler.Transfer)
		slips.PATCH("/:id/extend", cfg.SlipHandler.Extend)
		slips.DELETE("/:id", cfg.SlipHandler.Delete)
	}

	return router
}
