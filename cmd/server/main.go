package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apporder "github.com/stitchline/backoffice/internal/application/order"
	appqueue "github.com/stitchline/backoffice/internal/application/printqueue"
	"github.com/stitchline/backoffice/internal/infrastructure/auth"
	"github.com/stitchline/backoffice/internal/infrastructure/cache"
	"github.com/stitchline/backoffice/internal/infrastructure/config"
	"github.com/stitchline/backoffice/internal/infrastructure/logger"
	"github.com/stitchline/backoffice/internal/infrastructure/persistence"
	"github.com/stitchline/backoffice/internal/interfaces/http/handler"
	"github.com/stitchline/backoffice/internal/interfaces/http/router"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.NewForEnvironment(cfg.App.Env, cfg.Log.Level, cfg.Log.Format, cfg.Log.Output)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting back office server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Database with zap-backed GORM logging
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Repositories
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	queueRepo := persistence.NewGormQueueEntryRepository(db.DB)
	auditRepo := persistence.NewGormAuditLogRepository(db.DB)

	// Idempotency store for the print confirmation endpoint
	var idempotencyStore cache.IdempotencyStore
	if cfg.Redis.Enabled {
		idempotencyStore, err = cache.NewRedisIdempotencyStore(cache.RedisOptions{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		log.Info("Redis idempotency store connected",
			zap.String("host", cfg.Redis.Host), zap.Int("port", cfg.Redis.Port))
	} else {
		idempotencyStore = cache.NewInMemoryIdempotencyStore()
		log.Info("In-memory idempotency store enabled")
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Application services
	printedRetention := time.Duration(cfg.Queue.PrintedRetentionDays) * 24 * time.Hour
	queueService := appqueue.NewService(queueRepo, orderRepo, auditRepo, printedRetention, log)
	maintenanceService := appqueue.NewMaintenanceService(queueRepo, appqueue.MaintenanceConfig{
		PrintedRetentionDays: cfg.Queue.PrintedRetentionDays,
		MaxQueueSize:         cfg.Queue.MaxQueueSize,
		WarnQueueSize:        cfg.Queue.WarnQueueSize,
		MaxUnprintedAge:      cfg.Queue.MaxUnprintedAge,
	}, log)
	poValidator := apporder.NewPOValidator(orderRepo)
	orderService := apporder.NewService(orderRepo, queueService, poValidator, auditRepo, log)

	jwtService := auth.NewJWTService(cfg.JWT)

	// Periodic retention cleanup, the queue's external timer
	cleanupCtx, stopCleanup := context.WithCancel(context.Background())
	defer stopCleanup()
	if cfg.Queue.CleanupEnabled {
		go runCleanupLoop(cleanupCtx, maintenanceService, cfg.Queue, log)
		log.Info("Queue cleanup scheduler started",
			zap.Duration("interval", cfg.Queue.CleanupInterval),
			zap.Int("retention_days", cfg.Queue.PrintedRetentionDays))
	}

	engine := router.New(router.Config{
		Logger:           log,
		JWTService:       jwtService,
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.Queue.IdempotencyTTL,
		CORSOrigins:      cfg.HTTP.CORSOrigins,

		SystemHandler:     handler.NewSystemHandler(db, version, log),
		OrderHandler:      handler.NewOrderHandler(orderService, log),
		PrintQueueHandler: handler.NewPrintQueueHandler(queueService, maintenanceService, log),
	})
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies configuration", zap.Error(err))
		}
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	stopCleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// runCleanupLoop runs retention cleanup on a fixed interval until the context
// is cancelled. Failures are logged and retried on the next tick.
func runCleanupLoop(ctx context.Context, svc *appqueue.MaintenanceService, qcfg config.QueueConfig, log *zap.Logger) {
	ticker := time.NewTicker(qcfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
			result, err := svc.PerformCleanup(runCtx, appqueue.CleanupOptions{
				PrintedRetentionDays: qcfg.PrintedRetentionDays,
				RemoveOrphaned:       true,
			})
			cancel()
			if err != nil {
				log.Error("Scheduled queue cleanup failed", zap.Error(err))
				continue
			}
			log.Info("Scheduled queue cleanup finished",
				zap.Int64("removed_printed", result.RemovedPrinted),
				zap.Int64("removed_orphaned", result.RemovedOrphaned))
		}
	}
}
