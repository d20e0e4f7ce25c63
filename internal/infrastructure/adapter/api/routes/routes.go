package routes

import (
	"github.com/gin-gonic/gin"

	coreport "github.com/wishloop/payout-engine/internal/domain/port/core"
	"github.com/wishloop/payout-engine/internal/infrastructure/adapter/api/handler"
	"github.com/wishloop/payout-engine/internal/infrastructure/adapter/api/middleware"
)

// SetupRoutes configures all the routes for the API
func SetupRoutes(
	router *gin.Engine,
	webhookHandler *handler.WebhookHandler,
	contributionHandler *handler.ContributionHandler,
	fundsHandler *handler.FundsHandler,
) {
	// Provider webhooks authenticate by HMAC signature, not recipient token
	router.POST("/webhooks/:provider", webhookHandler.Handle)

	// Checkout opens the pending contribution before the provider settles it
	router.POST("/contributions", contributionHandler.Create)

	// Recipient fund operations
	fundRoutes := router.Group("/funds")
	fundRoutes.Use(middleware.RequireRecipient())
	{
		fundRoutes.POST("/withdraw", fundsHandler.Withdraw)
		fundRoutes.POST("/allocate", fundsHandler.Allocate)
		fundRoutes.POST("/to-wallet", fundsHandler.MoveToWallet)
		fundRoutes.GET("/balance", fundsHandler.GetBalance)
	}
}

// SetupMiddlewares configures global middlewares for the API
func SetupMiddlewares(router *gin.Engine, logger coreport.Logger) {
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.Logger(logger))
}
