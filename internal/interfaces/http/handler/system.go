package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stitchline/backoffice/internal/infrastructure/persistence"
)

// SystemHandler serves liveness and readiness probes
type SystemHandler struct {
	BaseHandler
	db        *persistence.Database
	version   string
	startedAt time.Time
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(db *persistence.Database, version string, logger *zap.Logger) *SystemHandler {
	return &SystemHandler{
		BaseHandler: NewBaseHandler(logger),
		db:          db,
		version:     version,
		startedAt:   time.Now(),
	}
}

// Health handles GET /health. Liveness only; no dependencies are touched.
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": h.version,
		"uptime":  time.Since(h.startedAt).Round(time.Second).String(),
	})
}

// Ready handles GET /ready. Fails when the database is unreachable.
func (h *SystemHandler) Ready(c *gin.Context) {
	if err := h.db.Ping(); err != nil {
		h.logger.Warn("readiness check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"reason": "database unreachable",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
