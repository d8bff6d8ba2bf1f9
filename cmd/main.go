package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"catalog-service/internal/config"
	"catalog-service/internal/events"
	"catalog-service/internal/handlers"
	"catalog-service/internal/middleware"
	"catalog-service/internal/repository"
	"catalog-service/internal/subscribers"

	gosharedmw "github.com/Tesseract-Nexus/go-shared/middleware"
	"github.com/Tesseract-Nexus/go-shared/rbac"
	"github.com/Tesseract-Nexus/go-shared/secrets"
	"github.com/Tesseract-Nexus/go-shared/tracing"
)

// @title Catalog Service API
// @version 1.0.0
// @description Product catalog service with variant reconciliation, category management and multi-tenant support
// @termsOfService http://swagger.io/terms/

// @contact.name Catalog API Support
// @contact.url http://www.example.com/support
// @contact.email support@example.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8087
// @BasePath /api/v1

// @securityDefinitions.bearer BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	handlers.SetDB(db)

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Environment == "production" {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Initialize Redis client
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Printf("WARNING: Failed to parse Redis URL: %v (continuing without Redis)", err)
		redisOpts = &redis.Options{
			Addr: "localhost:6379",
		}
	}
	// Set Redis password from GCP Secret Manager
	redisOpts.Password = secrets.GetRedisPassword()
	redisClient := redis.NewClient(redisOpts)

	// Test Redis connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("WARNING: Failed to connect to Redis: %v (caching will be disabled)", err)
	} else {
		log.Println("✓ Redis connected successfully")
	}
	cancel()

	// Initialize repository
	productsRepo := repository.NewProductsRepository(db, redisClient)

	// Initialize event publisher for audit trail only if NATS_URL is set
	var eventsPublisher *events.Publisher
	natsURL := os.Getenv("NATS_URL")
	if natsURL != "" {
		var err error
		eventsPublisher, err = events.NewPublisher(logger)
		if err != nil {
			log.Printf("WARNING: Failed to initialize events publisher: %v (continuing without event publishing)", err)
		} else {
			log.Println("✓ Events publisher initialized (NATS connected)")
		}
	} else {
		log.Println("NATS_URL not set, skipping event publishing initialization")
	}
	defer func() {
		if eventsPublisher != nil {
			eventsPublisher.Close()
		}
	}()

	// Initialize stock subscriber to mirror inventory levels
	var stockSubscriber *subscribers.StockSubscriber
	if natsURL != "" && cfg.StockSyncEnabled {
		stockSubscriber, err = subscribers.NewStockSubscriber(productsRepo, logger)
		if err != nil {
			log.Printf("WARNING: Failed to initialize stock subscriber: %v (continuing without stock sync)", err)
		} else if err := stockSubscriber.Start(context.Background()); err != nil {
			log.Printf("WARNING: Failed to start stock subscriber: %v (continuing without stock sync)", err)
		} else {
			log.Println("✓ Stock subscriber started")
		}
	}

	// Initialize handlers with event publisher (may be nil if NATS not configured)
	productsHandler := handlers.NewProductsHandler(productsRepo, eventsPublisher)
	formsHandler := handlers.NewFormsHandler(productsRepo, eventsPublisher, logger)
	mediaHandler := handlers.NewMediaHandler(cfg.DocumentServiceURL, "catalog-service")
	importHandler := handlers.NewImportHandler(productsRepo)

	// Initialize OpenTelemetry tracing
	var tracerProvider *tracing.TracerProvider
	if cfg.Environment == "production" {
		tracerProvider, err = tracing.InitTracer(tracing.ProductionConfig("catalog-service"))
	} else {
		tracerProvider, err = tracing.InitTracer(tracing.DefaultConfig("catalog-service"))
	}
	if err != nil {
		log.Printf("WARNING: Failed to initialize tracing: %v (continuing without tracing)", err)
	} else {
		log.Println("✓ OpenTelemetry tracing initialized")
	}

	// Initialize Prometheus metrics
	metrics := gosharedmw.InitGlobalMetrics("tesseract", "catalog_service")
	log.Println("✓ Prometheus metrics initialized")

	// Initialize RBAC middleware
	staffServiceURL := os.Getenv("STAFF_SERVICE_URL")
	if staffServiceURL == "" {
		staffServiceURL = "http://staff-service:8080"
	}
	rbacMw := rbac.NewMiddlewareWithURL(staffServiceURL, nil)
	log.Println("✓ RBAC middleware initialized")

	// Initialize Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	// Add observability middleware (metrics + tracing)
	router.Use(metrics.Middleware())
	router.Use(tracing.GinMiddleware("catalog-service"))
	router.Use(gosharedmw.CompressionMiddleware())

	// Add CORS middleware
	router.Use(middleware.CORS())

	// Health check endpoints (no auth required)
	router.GET("/health", handlers.HealthCheck)
	router.GET("/ready", handlers.ReadinessCheck)
	router.GET("/metrics", gosharedmw.Handler())

	// Protected API routes
	api := router.Group("/api/v1")

	// Initialize Istio auth middleware for Keycloak JWT validation
	// During migration, AllowLegacyHeaders enables fallback to X-* headers from auth-bff
	istioAuthLogger := logrus.NewEntry(logger).WithField("component", "istio_auth")
	istioAuth := gosharedmw.IstioAuth(gosharedmw.IstioAuthConfig{
		RequireAuth:        true,
		AllowLegacyHeaders: true, // Allow X-User-ID, X-Tenant-ID during migration
		Logger:             istioAuthLogger,
	})

	// Authentication middleware
	// In development: use DevelopmentAuthMiddleware for local testing
	// In production: use IstioAuth which reads x-jwt-claim-* headers from Istio
	//                or falls back to X-* headers from auth-bff during migration
	if cfg.Environment == "development" {
		api.Use(middleware.DevelopmentAuthMiddleware())
		api.Use(middleware.TenantMiddleware()) // Still needed in dev mode
	} else {
		api.Use(istioAuth)
		// Vendor isolation for marketplace mode
		api.Use(gosharedmw.VendorScopeFilter())
	}

	// API routes
	v1 := api.Group("")
	{
		products := v1.Group("/products")
		{
			// Read operations - require products:read permission
			products.GET("", rbacMw.RequirePermission(rbac.PermissionProductsRead), productsHandler.GetProducts)
			products.GET("/:id", rbacMw.RequirePermission(rbac.PermissionProductsRead), productsHandler.GetProduct)
			products.GET("/:id/form", rbacMw.RequirePermission(rbac.PermissionProductsRead), formsHandler.GetProductForm)
			products.GET("/form/defaults", rbacMw.RequirePermission(rbac.PermissionProductsRead), formsHandler.GetProductFormDefaults)
			products.GET("/:id/media", rbacMw.RequirePermission(rbac.PermissionProductsRead), mediaHandler.ListAttachments)

			// Create operations - require products:create permission
			products.POST("/form", rbacMw.RequirePermission(rbac.PermissionProductsCreate), formsHandler.CreateProductFromForm)

			// Update operations - require products:update permission
			products.PUT("/:id/form", rbacMw.RequirePermission(rbac.PermissionProductsUpdate), formsHandler.SaveProductForm)
			products.PUT("/:id/status", rbacMw.RequirePermission(rbac.PermissionProductsUpdate), productsHandler.UpdateProductStatus)
			products.POST("/sync", rbacMw.RequirePermission(rbac.PermissionProductsUpdate), formsHandler.SyncProduct)

			// Media management - require products:update permission
			products.POST("/media/upload", rbacMw.RequirePermission(rbac.PermissionProductsUpdate), mediaHandler.UploadAttachment)
			products.DELETE("/:id/media/:bucket/*path", rbacMw.RequirePermission(rbac.PermissionProductsUpdate), mediaHandler.DeleteAttachment)

			// Delete operations - require products:delete permission
			products.DELETE("/:id", rbacMw.RequirePermission(rbac.PermissionProductsDelete), productsHandler.DeleteProduct)

			// Import/Export - require specific permissions
			products.GET("/import/template", rbacMw.RequirePermission(rbac.PermissionProductsImport), importHandler.GetImportTemplate)
			products.POST("/import", rbacMw.RequirePermission(rbac.PermissionProductsImport), importHandler.ImportProducts)
			products.GET("/export", rbacMw.RequirePermission(rbac.PermissionProductsExport), importHandler.ExportProducts)
		}

		// Category management
		categories := v1.Group("/categories")
		{
			categories.GET("", rbacMw.RequirePermission(rbac.PermissionCategoriesRead), productsHandler.GetCategories)
			categories.GET("/:id", rbacMw.RequirePermission(rbac.PermissionCategoriesRead), productsHandler.GetCategory)
			categories.POST("", rbacMw.RequirePermission(rbac.PermissionCategoriesCreate), productsHandler.CreateCategory)
			categories.PUT("/:id", rbacMw.RequirePermission(rbac.PermissionCategoriesUpdate), productsHandler.UpdateCategory)
			categories.DELETE("/:id", rbacMw.RequirePermission(rbac.PermissionCategoriesDelete), productsHandler.DeleteCategory)
		}

		// Attribute definitions back the variation option editor
		attributes := v1.Group("/attributes")
		{
			attributes.GET("", rbacMw.RequirePermission(rbac.PermissionProductsRead), productsHandler.GetAttributes)
			attributes.POST("", rbacMw.RequirePermission(rbac.PermissionProductsCreate), productsHandler.CreateAttribute)
		}

		tags := v1.Group("/tags")
		{
			tags.GET("", rbacMw.RequirePermission(rbac.PermissionProductsRead), productsHandler.GetTags)
			tags.POST("", rbacMw.RequirePermission(rbac.PermissionProductsCreate), productsHandler.CreateTag)
		}

		types := v1.Group("/types")
		{
			types.GET("", rbacMw.RequirePermission(rbac.PermissionProductsRead), productsHandler.GetTypes)
			types.POST("", rbacMw.RequirePermission(rbac.PermissionProductsCreate), productsHandler.CreateType)
		}
	}

	// =============================================================================
	// PUBLIC STOREFRONT ENDPOINTS (no auth required, only tenant context)
	// These endpoints are for public storefronts to browse products/categories
	// =============================================================================
	storefront := router.Group("/api/v1/storefront")
	storefront.Use(middleware.TenantMiddleware()) // Require tenant context only
	{
		storefront.GET("/products", productsHandler.GetProducts)
		storefront.GET("/products/:id", productsHandler.GetProduct)
		storefront.GET("/categories", productsHandler.GetCategories)
		storefront.GET("/categories/:id", productsHandler.GetCategory)
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8087"
	}

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Catalog service starting on port %s", port)
		if err := router.Run(":" + port); err != nil {
			log.Fatal("Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal
	<-quit
	log.Println("Shutting down catalog-service...")

	if stockSubscriber != nil {
		stockSubscriber.Stop()
	}

	// Shutdown tracer provider
	if tracerProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer provider: %v", err)
		} else {
			log.Println("✓ Tracer provider shut down")
		}
	}

	log.Println("Catalog service stopped")
}
