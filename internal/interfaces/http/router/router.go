package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stitchline/backoffice/internal/infrastructure/auth"
	"github.com/stitchline/backoffice/internal/infrastructure/cache"
	"github.com/stitchline/backoffice/internal/infrastructure/logger"
	"github.com/stitchline/backoffice/internal/interfaces/http/handler"
	"github.com/stitchline/backoffice/internal/interfaces/http/middleware"
)

// Config wires the router's collaborators together
type Config struct {
	Logger           *zap.Logger
	JWTService       *auth.JWTService
	IdempotencyStore cache.IdempotencyStore
	IdempotencyTTL   time.Duration
	CORSOrigins      []string

	SystemHandler     *handler.SystemHandler
	OrderHandler      *handler.OrderHandler
	PrintQueueHandler *handler.PrintQueueHandler
}

// New builds the gin engine with the full middleware chain and route table.
//
// Role policy: every authenticated office role can work the queue and the
// order flow; destructive corrections (queue removal, cleanup) are admin only.
func New(cfg Config) *gin.Engine {
	engine := gin.New()

	engine.Use(logger.Recovery(cfg.Logger))
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(cfg.Logger))
	engine.Use(middleware.Secure())

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.CORSOrigins
	engine.Use(middleware.CORSWithConfig(corsCfg))

	engine.GET("/health", cfg.SystemHandler.Health)
	engine.GET("/ready", cfg.SystemHandler.Ready)

	api := engine.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(cfg.JWTService))

	officeRoles := middleware.RequireRoles(auth.RoleAdmin, auth.RoleSuperAdmin, auth.RoleOfficeEmployee)
	adminRoles := middleware.RequireRoles(auth.RoleAdmin, auth.RoleSuperAdmin)

	orders := api.Group("/orders", officeRoles)
	{
		orders.POST("", cfg.OrderHandler.Create)
		orders.GET("", cfg.OrderHandler.List)
		orders.GET("/check-po", cfg.OrderHandler.CheckPO)
		orders.GET("/:id", cfg.OrderHandler.Get)
		orders.POST("/:id/approve", cfg.OrderHandler.Approve)
		orders.POST("/:id/cancel", cfg.OrderHandler.Cancel)
	}

	queue := api.Group("/print-queue", officeRoles)
	{
		queue.POST("/items", cfg.PrintQueueHandler.AddItems)
		queue.GET("/next-batch", cfg.PrintQueueHandler.NextBatch)
		queue.GET("/can-print", cfg.PrintQueueHandler.CanPrint)
		queue.GET("/status", cfg.PrintQueueHandler.Status)
		queue.GET("/health", cfg.PrintQueueHandler.Health)

		// The print confirmation is the one action a network retry must not
		// double-submit; it is the only route behind the idempotency guard.
		queue.POST("/print",
			middleware.Idempotency(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger),
			cfg.PrintQueueHandler.MarkPrinted)

		queue.DELETE("/items", adminRoles, cfg.PrintQueueHandler.RemoveItems)
		queue.POST("/cleanup", adminRoles, cfg.PrintQueueHandler.Cleanup)
	}

	return engine
}
