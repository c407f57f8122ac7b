package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"authbot/internal/handlers"
	"authbot/internal/middleware"
)

type Handlers struct {
	Auth         *handlers.AuthHandler
	Verify       *handlers.VerifyHandler
	Users        *handlers.UserHandler
	Messages     *handlers.MessageHandler
	Integrations *handlers.IntegrationsHandler
	Health       *handlers.HealthHandler
}

func SetupRoutes(r *gin.Engine, h Handlers, auth middleware.TokenParser) *gin.Engine {
	// ---- service
	r.GET("/healthz", h.Health.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// ---- public
	r.POST("/register", h.Auth.Register)
	r.POST("/login", h.Auth.Login)
	r.POST("/verify_telegram_code", h.Verify.VerifyTelegramCode)

	// webhook публикуем только если бот настроен
	if h.Integrations.TG != nil {
		r.POST("/integrations/telegram/webhook", h.Integrations.Webhook)
	}

	// ---- protected (JWT)
	protected := r.Group("/", middleware.AuthMiddleware(auth))
	{
		protected.GET("/me", h.Users.Me)
		protected.POST("/messages", h.Messages.Send)
		protected.POST("/integrations/telegram/request-link", h.Integrations.RequestTelegramLink)
	}

	return r
}
