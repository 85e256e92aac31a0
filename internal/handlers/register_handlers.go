package handlers

import (
	"time"

	"github.com/SscSPs/vault_ledger/cmd/docs"
	portssvc "github.com/SscSPs/vault_ledger/internal/core/ports/services"
	"github.com/SscSPs/vault_ledger/internal/middleware"
	"github.com/SscSPs/vault_ledger/internal/platform/config"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	startedAt time.Time,
) {
	RegisterValidators()

	registerHealthRoutes(r, startedAt)

	// Public payment callbacks
	api := r.Group("/api")
	RegisterWebhookRoutes(api, services.Webhook)

	setupAPIV1Routes(api, cfg, services)

	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	api *gin.RouterGroup,
	cfg *config.Config,
	service *portssvc.ServiceContainer,
) {
	v1 := api.Group("/v1")

	// Transactions pick their own auth per route
	RegisterTransactionRoutes(v1, service.Transaction, cfg.JWTSecret, cfg.JWTIssuer)

	authed := v1.Group("", middleware.AuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer))
	RegisterAccountRoutes(authed, service.Account)
	if service.Events != nil {
		RegisterEventRoutes(authed, service.Events)
	}
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
