package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/orderdesk/backend/internal/application/crmsync"
	orderapp "github.com/orderdesk/backend/internal/application/order"
	"github.com/orderdesk/backend/internal/domain/account"
	"github.com/orderdesk/backend/internal/domain/shared"
	"github.com/orderdesk/backend/internal/infrastructure/auth"
	"github.com/orderdesk/backend/internal/infrastructure/cache"
	"github.com/orderdesk/backend/internal/infrastructure/config"
	"github.com/orderdesk/backend/internal/infrastructure/crm"
	"github.com/orderdesk/backend/internal/infrastructure/logger"
	"github.com/orderdesk/backend/internal/infrastructure/marketplace"
	"github.com/orderdesk/backend/internal/infrastructure/persistence"
	"github.com/orderdesk/backend/internal/interfaces/http/handler"
	"github.com/orderdesk/backend/internal/interfaces/http/middleware"
	"github.com/orderdesk/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting OrderDesk Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	orderRepo := persistence.NewGormOrderRepository(db.DB)

	// Per-account CRM product exclusions
	registry := account.DefaultRegistry()

	// Nutshell CRM adapter
	crmClient, err := crm.NewNutshellAdapter(&crm.NutshellConfig{
		BaseURL:        cfg.Crm.BaseURL,
		Username:       cfg.Crm.Username,
		APIKey:         cfg.Crm.APIKey,
		TimeoutSeconds: cfg.Crm.TimeoutSeconds,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize CRM adapter", zap.Error(err))
	}

	// EZManage marketplace client. Marketplace tokens are scoped to one
	// partner account, so the account identity rides along in config.
	marketplaceAccountID, err := uuid.Parse(cfg.Marketplace.AccountID)
	if err != nil {
		log.Fatal("Invalid marketplace.account_id", zap.Error(err))
	}
	orderSource, err := marketplace.NewEZManageClient(&marketplace.EZManageConfig{
		BaseURL:        cfg.Marketplace.BaseURL,
		Token:          cfg.Marketplace.Token,
		AccountID:      marketplaceAccountID,
		AccountRef:     account.Ref(cfg.Marketplace.AccountRef),
		TimeoutSeconds: cfg.Marketplace.TimeoutSeconds,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize marketplace client", zap.Error(err))
	}

	// Duplicate-send suppression store. Redis when available, otherwise
	// a process-local store that still covers the single-instance case.
	var sendRecords shared.IdempotencyStore
	if cfg.Redis.Enabled {
		redisStore, err := cache.NewRedisSendRecordStore(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		sendRecords = redisStore
		log.Info("Redis send record store connected",
			zap.String("host", cfg.Redis.Host), zap.Int("port", cfg.Redis.Port))
	} else {
		sendRecords = cache.NewInMemorySendRecordStore()
		log.Info("Using in-memory send record store")
	}
	defer func() {
		if err := sendRecords.Close(); err != nil {
			log.Error("Error closing send record store", zap.Error(err))
		}
	}()

	// Initialize application services
	generator := crmsync.NewGenerator(registry, crmClient, log)
	orchestrator := crmsync.NewOrchestrator(orderRepo, registry, generator, crmClient, sendRecords, crmsync.Options{
		Concurrency:     cfg.Sync.Concurrency,
		PerOrderTimeout: cfg.Sync.PerOrderTimeout,
		Idempotency: shared.IdempotencyConfig{
			Enabled: cfg.Sync.IdempotencyEnabled,
			TTL:     cfg.Sync.IdempotencyTTL,
		},
	}, log)
	orderService := orderapp.NewService(orderRepo, orderSource, log)
	jwtService := auth.NewJWTService(cfg.JWT)

	// Initialize HTTP handlers
	orderHandler := handler.NewOrderHandler(orderService)
	crmSyncHandler := handler.NewCrmSyncHandler(orchestrator, log)

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

	// Middleware stack: request IDs first so recovery and request logs
	// carry them, then panic recovery, then request logging, then auth.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.Logger = log
	engine.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Readiness endpoint with a live database ping
	engine.GET("/ready", readyHandler(db))

	// Setup API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(orderHandler)
	r.Register(crmSyncHandler)
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
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// readyHandler reports readiness, including database connectivity
func readyHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Readiness check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
