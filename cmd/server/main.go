package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/secufur/commerce-api/internal/audit"
	"github.com/secufur/commerce-api/internal/auth"
	"github.com/secufur/commerce-api/internal/catalog"
	"github.com/secufur/commerce-api/internal/database"
	"github.com/secufur/commerce-api/internal/events"
	"github.com/secufur/commerce-api/internal/orders"
	"github.com/secufur/commerce-api/internal/payments"
	"github.com/secufur/commerce-api/internal/seller"
	"github.com/secufur/commerce-api/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// init configures the application logging based on environment settings
// In development mode, it enables pretty printing with timestamps
// Debug logging can be enabled via DEBUG environment variable
func init() {
	// Configure pretty logging for development
	if os.Getenv("ENV") != "production" {
		output := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
		zlog.Logger = zerolog.New(output).With().Timestamp().Logger()
	}

	// Set global log level
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if os.Getenv("DEBUG") == "true" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

// main initializes and runs the commerce API server with graceful shutdown
// support. It sets up all required services, database connections, event
// publishing and API routes.
func main() {
	// Initialize database
	db, err := database.NewDatabase()
	if err != nil {
		zlog.Fatal().Err(err).Msg("Failed to initialize database")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "commerce-dev-secret"
		zlog.Warn().Msg("JWT_SECRET not set, using development secret")
	}

	// Order lifecycle event publishing (no-op without KAFKA_BROKERS)
	publisher, err := events.NewPublisherFromEnv()
	if err != nil {
		zlog.Fatal().Err(err).Msg("Failed to initialize event publisher")
	}
	defer publisher.Close()

	// Initialize router
	router := gin.Default()

	// Initialize services and handlers
	authService := auth.NewService(db, jwtSecret)
	authHandlers := auth.NewGinHandlers(authService)

	auditService := audit.NewService(db)

	catalogService := catalog.NewService(db, catalog.NewCacheFromEnv(), auditService)
	catalogHandlers := catalog.NewGinHandlers(catalogService)

	ordersService := orders.NewService(db, publisher)
	ordersHandlers := orders.NewGinHandlers(ordersService)

	gateway := payments.NewRazorpayGateway(os.Getenv("RAZORPAY_KEY_ID"), os.Getenv("RAZORPAY_KEY_SECRET"))
	paymentsService := payments.NewService(db, gateway, os.Getenv("RAZORPAY_KEY_ID"), os.Getenv("RAZORPAY_KEY_SECRET"), publisher)
	paymentsHandlers := payments.NewGinHandlers(paymentsService)

	sellerService := seller.NewService(db, auditService, publisher)
	sellerHandlers := seller.NewGinHandlers(sellerService)

	auditHandlers := audit.NewGinHandlers(auditService, sellerService)

	// Create and start the fulfilment SLA sweeper
	sweeper := seller.NewSweeperForService(sellerService)
	sweeperCtx, sweeperCancel := context.WithCancel(context.Background())
	defer sweeperCancel()

	go sweeper.Start(sweeperCtx)

	// Setup middleware
	router.Use(middleware.RateLimit())
	router.Use(middleware.Metrics())

	// Setup API routes
	setupRoutes(router, []byte(jwtSecret),
		authHandlers, catalogHandlers, ordersHandlers, paymentsHandlers, sellerHandlers, auditHandlers)

	// Get port from env otherwise it's 8080
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Create server
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	// Graceful shutdown setup
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal().Err(err).Msg("listen")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info().Msg("Shutting down server...")

	// Give outstanding operations 5 seconds to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	zlog.Info().Msg("Server exiting")
}

// setupRoutes configures all API endpoints and their handlers
// It groups routes by functionality and applies appropriate middleware:
// - Auth and catalog browsing: public endpoints
// - Order and payment routes: protected by JWT authentication
// - Seller routes: JWT plus the SELLER role
// - Admin routes: JWT plus the ADMIN role
func setupRoutes(
	router *gin.Engine,
	jwtSecret []byte,
	authHandlers *auth.GinHandlers,
	catalogHandlers *catalog.GinHandlers,
	ordersHandlers *orders.GinHandlers,
	paymentsHandlers *payments.GinHandlers,
	sellerHandlers *seller.GinHandlers,
	auditHandlers *audit.GinHandlers,
) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", middleware.PrometheusHandler())

	v1 := router.Group("/api/v1")
	{
		// Auth routes
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", authHandlers.RegisterHandler())
			authGroup.POST("/login", authHandlers.LoginHandler())
		}

		// Public catalog browsing
		v1.GET("/products", catalogHandlers.ListProductsHandler())

		// Shipping addresses
		addresses := v1.Group("/addresses")
		addresses.Use(middleware.JWTAuth(jwtSecret))
		{
			addresses.POST("", ordersHandlers.CreateAddressHandler())
			addresses.GET("", ordersHandlers.ListAddressesHandler())
		}

		// Order routes
		ordersGroup := v1.Group("/orders")
		{
			// Gateway callback verification carries no session
			ordersGroup.POST("/:order_id/payment/verify", paymentsHandlers.VerifyPaymentHandler())

			authed := ordersGroup.Group("")
			authed.Use(middleware.JWTAuth(jwtSecret))
			{
				authed.POST("", ordersHandlers.CreateOrderHandler())
				authed.GET("/:order_id", ordersHandlers.GetOrderHandler())
				authed.POST("/:order_id/payment/init", paymentsHandlers.InitPaymentHandler())
			}
		}

		// Seller routes
		sellerGroup := v1.Group("/seller")
		sellerGroup.Use(middleware.JWTAuth(jwtSecret), middleware.RequireRole("SELLER"))
		{
			sellerGroup.POST("/products", catalogHandlers.CreateProductHandler())
			sellerGroup.POST("/products/:product_id/submit", catalogHandlers.SubmitProductHandler())
			sellerGroup.PATCH("/products/:product_id/inventory", catalogHandlers.AdjustInventoryHandler())

			sellerGroup.POST("/orders/:order_id/accept", sellerHandlers.AcceptOrderHandler())
			sellerGroup.POST("/orders/:order_id/ship", sellerHandlers.ShipOrderHandler())
			sellerGroup.POST("/orders/:order_id/deliver", sellerHandlers.DeliverOrderHandler())
			sellerGroup.POST("/orders/:order_id/cancel", sellerHandlers.CancelOrderHandler())

			sellerGroup.POST("/verification/documents", sellerHandlers.SubmitDocumentsHandler())
			sellerGroup.GET("/performance", sellerHandlers.PerformanceHandler())
			sellerGroup.GET("/audit-logs", auditHandlers.SellerLogsHandler())
		}

		// Admin routes
		adminGroup := v1.Group("/admin")
		adminGroup.Use(middleware.JWTAuth(jwtSecret), middleware.RequireRole("ADMIN"))
		{
			adminGroup.POST("/sellers/:seller_id/review", sellerHandlers.ReviewSellerHandler())
			adminGroup.POST("/products/:product_id/review", catalogHandlers.ReviewProductHandler())
		}
	}
}
