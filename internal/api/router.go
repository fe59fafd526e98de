package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/modamarket/storefront/internal/api/handlers"
	"github.com/modamarket/storefront/internal/api/middleware"
	"github.com/modamarket/storefront/internal/cart"
	"github.com/modamarket/storefront/internal/checkout"
	"github.com/modamarket/storefront/internal/config"
	"github.com/modamarket/storefront/internal/repository"
	"github.com/modamarket/storefront/internal/service"
)

// Deps bundles everything the router wires into handlers
type Deps struct {
	Repos     *repository.Repositories
	Carts     *cart.Manager
	Checkouts *checkout.Manager
	Catalog   *service.CatalogService
	Orders    *service.OrderService
}

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, deps Deps, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes
	v1 := router.Group("/v1")
	{
		// Public catalog
		v1.GET("/products", handlers.HandleListProducts(deps.Catalog, logger))
		v1.GET("/products/:id", handlers.HandleGetProduct(deps.Catalog, logger))
		v1.GET("/stores/:name/products", handlers.HandleListStoreProducts(deps.Catalog, logger))

		// Buyer routes (session-scoped)
		buyerRoutes := v1.Group("")
		buyerRoutes.Use(middleware.SessionMiddleware())
		{
			buyerRoutes.GET("/cart", handlers.HandleGetCart(deps.Carts, logger))
			buyerRoutes.POST("/cart/items", handlers.HandleAddItem(deps.Carts, deps.Catalog, logger))
			buyerRoutes.PATCH("/cart/items/:productId", handlers.HandleUpdateItem(deps.Carts, logger))
			buyerRoutes.DELETE("/cart/items/:productId", handlers.HandleRemoveItem(deps.Carts, logger))
			buyerRoutes.DELETE("/cart", handlers.HandleClearCart(deps.Carts, logger))

			buyerRoutes.POST("/checkout/shipping", handlers.HandleSubmitShipping(deps.Checkouts, deps.Carts, logger))
			buyerRoutes.POST("/checkout/payment/order", handlers.HandleCreatePaymentOrder(deps.Checkouts, logger))
			buyerRoutes.POST("/checkout/payment/capture", handlers.HandleCapturePayment(deps.Checkouts, logger))
			buyerRoutes.POST("/checkout/payment/cancel", handlers.HandleCancelPayment(deps.Checkouts, logger))
		}

		// Admin routes (seller API key)
		adminRoutes := v1.Group("/admin")
		adminRoutes.Use(middleware.AuthMiddleware(deps.Repos, logger))
		{
			adminRoutes.GET("/products", handlers.HandleListAdminProducts(deps.Catalog, logger))
			adminRoutes.POST("/products", handlers.HandleCreateProduct(deps.Catalog, logger))
			adminRoutes.PUT("/products/:id", handlers.HandleUpdateProduct(deps.Catalog, logger))
			adminRoutes.DELETE("/products/:id", handlers.HandleDeleteProduct(deps.Catalog, logger))
			adminRoutes.PUT("/store-name", handlers.HandleUpdateStoreName(deps.Catalog, logger))

			adminRoutes.GET("/orders", handlers.HandleListAdminOrders(deps.Orders, logger))
			adminRoutes.GET("/orders/:id", handlers.HandleGetAdminOrder(deps.Orders, logger))
			adminRoutes.POST("/orders/:id/status", handlers.HandleUpdateOrderStatus(deps.Orders, logger))
		}
	}

	return router
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
		)
	}
}
