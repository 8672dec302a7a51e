package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"fuelmeter/internal/handler"
	"fuelmeter/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	SupplierHandler   *handler.SupplierHandler
	PriceHandler      *handler.PriceHandler
	CalculatorHandler *handler.CalculatorHandler
	PurchaseHandler   *handler.PurchaseHandler
	RedisClient       *redis.Client
	NewRelicApp       *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Supplier catalog.
		suppliers := v1.Group("/suppliers")
		{
			suppliers.GET("", deps.SupplierHandler.List)
			suppliers.GET("/default", deps.SupplierHandler.Default)
			suppliers.GET("/:key/price", deps.SupplierHandler.Price)
		}

		// Price snapshot and refresh archive.
		prices := v1.Group("/prices")
		{
			prices.GET("", deps.PriceHandler.Get)
			prices.GET("/refreshes", deps.PriceHandler.ListRefreshes)
		}

		// Trip cost calculator.
		calculations := v1.Group("/calculations")
		{
			calculations.POST("", deps.CalculatorHandler.Calculate)
			calculations.GET("/defaults", deps.CalculatorHandler.Defaults)
		}

		// Bill verification and purchase history.
		purchases := v1.Group("/purchases")
		{
			purchases.POST("/verify", deps.PurchaseHandler.Verify)
			purchases.POST("/extract", deps.PurchaseHandler.Extract)
			purchases.POST("", deps.PurchaseHandler.Record)
			purchases.GET("", deps.PurchaseHandler.List)
			purchases.DELETE("/:id", deps.PurchaseHandler.Delete)
			purchases.DELETE("", deps.PurchaseHandler.Clear)
		}
	}

	return router
}
