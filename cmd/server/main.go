package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appbarcode "github.com/erp/barcode/internal/application/barcode"
	"github.com/erp/barcode/internal/infrastructure/auth"
	"github.com/erp/barcode/internal/infrastructure/config"
	"github.com/erp/barcode/internal/infrastructure/hashing"
	"github.com/erp/barcode/internal/infrastructure/logger"
	"github.com/erp/barcode/internal/infrastructure/persistence"
	"github.com/erp/barcode/internal/infrastructure/plugin"
	"github.com/erp/barcode/internal/infrastructure/telemetry"
	"github.com/erp/barcode/internal/interfaces/http/handler"
	"github.com/erp/barcode/internal/interfaces/http/middleware"
	"github.com/erp/barcode/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting barcode service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), cfg.Telemetry, telemetry.ServiceInfo{
		Version:     version,
		Environment: cfg.App.Env,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	// Initialize database connection with a zap backed GORM logger
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithParameterizedQueries(!cfg.Telemetry.DBLogFullSQL),
	)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully", zap.String("system", db.System()))

	// SQLite has no SQL migrations; postgres schemas are owned by cmd/migrate
	if cfg.Database.Driver == "sqlite" {
		if err := db.EnsureSchema(); err != nil {
			log.Fatal("Failed to create schema", zap.Error(err))
		}
	}

	if err := telemetry.RegisterDBTracing(db.DB, cfg.Telemetry, log); err != nil {
		log.Warn("Failed to enable database tracing", zap.Error(err))
	}

	// Initialize repositories
	targetRepo := persistence.NewGormBarcodeTargetRepository(db.DB)
	purchaseOrderRepo := persistence.NewGormPurchaseOrderRepository(db.DB)
	stockLocationRepo := persistence.NewGormStockLocationRepository(db.DB)
	supplierPartRepo := persistence.NewGormSupplierPartRepository(db.DB)

	// Register barcode handlers
	hasher := hashing.NewMD5Hasher()
	registry := plugin.NewRegistry()
	if err := plugin.RegisterBuiltins(registry, plugin.Builtins{
		Targets:        targetRepo,
		SupplierParts:  supplierPartRepo,
		Orders:         purchaseOrderRepo,
		Hasher:         hasher,
		Logger:         log,
		EnableSupplier: cfg.Barcode.SupplierEnabled,
	}); err != nil {
		log.Fatal("Failed to register barcode handlers", zap.Error(err))
	}
	handlers := registry.Snapshot()
	log.Info("Barcode handlers registered", zap.Strings("handlers", registry.ListHandlers()))

	// Initialize application services
	scanResolver := appbarcode.NewScanResolver(handlers, hasher, log)
	bindingManager := appbarcode.NewBindingManager(handlers, targetRepo, auth.NewClaimsPermissionChecker(), hasher, log)
	receiveResolver := appbarcode.NewReceiveResolver(handlers, purchaseOrderRepo, stockLocationRepo, hasher, log,
		appbarcode.WithInternalPlugin(cfg.Barcode.InternalPlugin),
	)

	// Authentication
	jwtService := auth.NewJWTService(cfg.JWT)
	tokenBlacklist, err := auth.NewTokenBlacklist(cfg.Redis)
	if err != nil {
		log.Warn("Redis unavailable, falling back to in-memory token blacklist", zap.Error(err))
		tokenBlacklist = auth.NewInMemoryTokenBlacklist()
	}
	if closer, ok := tokenBlacklist.(io.Closer); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				log.Error("Error closing token blacklist", zap.Error(err))
			}
		}()
	}

	// Initialize handlers
	barcodeHandler := handler.NewBarcodeHandler(scanResolver, bindingManager, receiveResolver)
	systemHandler := handler.NewSystemHandler(cfg.App.Name, version, db)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. Tracing - Start the server span
	// 2. RequestID - Generate/propagate request ID
	// 3. Recovery - Catch panics
	// 4. Logger - Log requests
	// 5. BodyLimit - Limit request body size
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     tracerProvider.IsEnabled(),
		SkipPaths:   []string{"/health"},
	}))
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log, "/health"))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	r := router.NewRouter(engine,
		router.WithAPIVersion("v1"),
		router.WithAPIMiddleware(
			middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
				JWTService:     jwtService,
				TokenBlacklist: tokenBlacklist,
				Logger:         log,
			}),
			middleware.TraceRequest(),
		),
	)
	r.Public(http.MethodGet, "/health", systemHandler.Health)
	r.Register(barcodeHandler)
	r.Register(systemHandler)
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr), zap.String("api", r.APIPrefix()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(ctx); err != nil {
		log.Error("Failed to flush traces", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
