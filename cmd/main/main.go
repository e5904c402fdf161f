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
	"github.com/sirupsen/logrus"
	"pos-backoffice-service/internal/config"
	"pos-backoffice-service/internal/events"
	"pos-backoffice-service/internal/handlers"
	"pos-backoffice-service/internal/middleware"
	"pos-backoffice-service/internal/repository"
	"pos-backoffice-service/internal/services"

	gosharedmw "github.com/Tesseract-Nexus/go-shared/middleware"
	"github.com/Tesseract-Nexus/go-shared/rbac"
	"github.com/Tesseract-Nexus/go-shared/tracing"
)

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

	// Initialize logrus logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Environment == "production" {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Initialize Redis cache client
	redisClient := config.InitRedis(cfg)

	// Initialize repository and run migrations
	repo := repository.NewInventoryRepository(db, redisClient)
	if err := repo.Migrate(); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize NATS event publisher (optional - graceful degradation if NATS unavailable)
	var eventPublisher *events.InventoryEventPublisher
	if cfg.NATSURL != "" {
		eventPublisher, err = events.NewInventoryEventPublisher(cfg.NATSURL, logger)
		if err != nil {
			log.Printf("Warning: Failed to initialize NATS event publisher: %v", err)
			log.Println("Continuing without event publishing...")
		} else {
			log.Println("✓ Connected to NATS JetStream for event publishing")
			defer eventPublisher.Close()
		}
	} else {
		log.Println("NATS_URL not configured, event publishing disabled")
	}

	// Initialize services
	alertEngine := services.NewAlertEngine(repo)
	inventoryService := services.NewInventoryService(repo, alertEngine)
	removalService := services.NewRemovalService(repo, alertEngine)
	marginService := services.NewMarginService(repo)
	reportingService := services.NewReportingService(repo)

	// Drain the notification outbox in the background while NATS is connected
	dispatcherCtx, stopDispatcher := context.WithCancel(context.Background())
	defer stopDispatcher()
	if eventPublisher != nil {
		dispatcher := events.NewOutboxDispatcher(repo, eventPublisher, cfg.OutboxInterval, cfg.OutboxBatchSize, logger)
		go dispatcher.Run(dispatcherCtx)
	}

	// Initialize handlers
	inventoryHandler := handlers.NewInventoryHandler(inventoryService, removalService, marginService)
	alertHandler := handlers.NewAlertHandler(alertEngine)
	reportHandler := handlers.NewReportHandler(reportingService)
	importHandler := handlers.NewImportHandler(inventoryService)
	healthHandler := handlers.NewHealthHandler(repo)

	// Initialize OpenTelemetry tracing
	var tracerProvider *tracing.TracerProvider
	if cfg.Environment == "production" {
		tracerProvider, err = tracing.InitTracer(tracing.ProductionConfig("pos-backoffice-service"))
	} else {
		tracerProvider, err = tracing.InitTracer(tracing.DefaultConfig("pos-backoffice-service"))
	}
	if err != nil {
		log.Printf("WARNING: Failed to initialize tracing: %v (continuing without tracing)", err)
	} else {
		log.Println("✓ OpenTelemetry tracing initialized")
	}

	// Initialize Prometheus metrics
	metrics := gosharedmw.InitGlobalMetrics("tesseract", "pos_backoffice_service")
	log.Println("✓ Prometheus metrics initialized")

	// Initialize RBAC middleware
	staffServiceURL := os.Getenv("STAFF_SERVICE_URL")
	if staffServiceURL == "" {
		staffServiceURL = "http://staff-service:8080"
	}
	rbacMiddleware := rbac.NewMiddlewareWithURL(staffServiceURL, nil)
	log.Println("✓ RBAC middleware initialized")

	// Initialize Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	// Add observability middleware (metrics + tracing)
	router.Use(metrics.Middleware())
	router.Use(tracing.GinMiddleware("pos-backoffice-service"))

	// Add CORS middleware
	router.Use(middleware.CORS())

	// Health check endpoints (no auth required)
	router.GET("/health", handlers.HealthCheck)
	router.GET("/ready", handlers.HealthCheck)
	router.GET("/health/extended", healthHandler.ExtendedHealthCheck)
	router.GET("/metrics", gosharedmw.Handler())

	// Protected API routes
	api := router.Group("/api/v1")

	// Authentication middleware using Istio JWT claims
	// Istio validates JWT and injects x-jwt-claim-* headers
	api.Use(gosharedmw.IstioAuth(gosharedmw.IstioAuthConfig{
		RequireAuth:        true,
		AllowLegacyHeaders: false,
		SkipPaths:          []string{"/health", "/ready", "/metrics", "/swagger"},
	}))
	api.Use(middleware.TenantMiddleware())
	api.Use(middleware.StoreScopeMiddleware())

	// Inventory routes with RBAC
	inventory := api.Group("/inventory")
	{
		inventory.POST("", rbacMiddleware.RequirePermission(rbac.PermissionInventoryUpdate), inventoryHandler.CreateInventory)
		inventory.GET("", rbacMiddleware.RequirePermission(rbac.PermissionInventoryRead), inventoryHandler.ListInventory)
		inventory.GET("/record", rbacMiddleware.RequirePermission(rbac.PermissionInventoryRead), inventoryHandler.GetInventoryByKey)
		inventory.GET("/:id", rbacMiddleware.RequirePermission(rbac.PermissionInventoryRead), inventoryHandler.GetInventory)
		inventory.PUT("/:id", rbacMiddleware.RequirePermission(rbac.PermissionInventoryUpdate), inventoryHandler.UpdateInventory)
		inventory.DELETE("/:id", rbacMiddleware.RequirePermission(rbac.PermissionInventoryUpdate), inventoryHandler.DeleteInventory)

		// Stock mutations
		inventory.POST("/adjust", rbacMiddleware.RequirePermission(rbac.PermissionInventoryAdjust), inventoryHandler.AdjustStock)
		inventory.POST("/remove", rbacMiddleware.RequirePermission(rbac.PermissionInventoryAdjust), inventoryHandler.RemoveStock)

		// Valuation and audit
		inventory.POST("/margin", rbacMiddleware.RequirePermission(rbac.PermissionInventoryRead), inventoryHandler.AnalyzeMargin)
		inventory.GET("/movements", rbacMiddleware.RequirePermission(rbac.PermissionInventoryRead), inventoryHandler.ListMovements)
		inventory.GET("/layers", rbacMiddleware.RequirePermission(rbac.PermissionInventoryRead), inventoryHandler.ListLayers)

		// Import
		inventory.GET("/import/template", rbacMiddleware.RequirePermission(rbac.PermissionInventoryRead), importHandler.GetInventoryImportTemplate)
		inventory.POST("/import", rbacMiddleware.RequirePermission(rbac.PermissionInventoryUpdate), importHandler.ImportInventory)
	}

	// Alert routes with RBAC
	alerts := api.Group("/alerts")
	{
		alerts.GET("", rbacMiddleware.RequirePermission(rbac.PermissionInventoryRead), alertHandler.ListAlerts)
		alerts.POST("/:id/sync", rbacMiddleware.RequirePermission(rbac.PermissionInventoryUpdate), alertHandler.SyncAlert)
	}

	// Reporting routes with RBAC
	reports := api.Group("/reports")
	{
		reports.GET("/profit-loss", rbacMiddleware.RequirePermission(rbac.PermissionInventoryRead), reportHandler.GetProfitLoss)
		reports.GET("/price-history", rbacMiddleware.RequirePermission(rbac.PermissionInventoryRead), reportHandler.GetPriceHistory)
		reports.GET("/summary", rbacMiddleware.RequirePermission(rbac.PermissionInventoryRead), reportHandler.GetSummary)
	}

	// Start server
	port := cfg.Port

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("POS back-office service starting on port %s", port)
		if err := router.Run(":" + port); err != nil {
			log.Fatal("Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal
	<-quit
	log.Println("Shutting down pos-backoffice-service...")

	// Stop the outbox dispatcher before closing NATS
	stopDispatcher()

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

	log.Println("POS back-office service stopped")
}
