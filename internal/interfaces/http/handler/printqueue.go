package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appqueue "github.com/stitchline/backoffice/internal/application/printqueue"
)

// PrintQueueHandler exposes the label print queue over HTTP
type PrintQueueHandler struct {
	BaseHandler
	service     *appqueue.Service
	maintenance *appqueue.MaintenanceService
}

// NewPrintQueueHandler creates a new print queue handler
func NewPrintQueueHandler(service *appqueue.Service, maintenance *appqueue.MaintenanceService, logger *zap.Logger) *PrintQueueHandler {
	return &PrintQueueHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
		maintenance: maintenance,
	}
}

// AddItems handles POST /print-queue/items
func (h *PrintQueueHandler) AddItems(c *gin.Context) {
	actorID, ok := h.getActorID(c)
	if !ok {
		h.Unauthorized(c, "Authenticated user required")
		return
	}

	var req appqueue.AddToQueueRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.AddToQueue(c.Request.Context(), actorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// NextBatch handles GET /print-queue/next-batch. Read-only: the batch is not
// reserved, so two operators refreshing see the same candidate until one of
// them confirms a print.
func (h *PrintQueueHandler) NextBatch(c *gin.Context) {
	resp, err := h.service.GetNextBatch(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// CanPrint handles GET /print-queue/can-print
func (h *PrintQueueHandler) CanPrint(c *gin.Context) {
	canPrint, err := h.service.CanPrintBatch(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"can_print_without_warning": canPrint})
}

// MarkPrinted handles POST /print-queue/print
func (h *PrintQueueHandler) MarkPrinted(c *gin.Context) {
	actorID, ok := h.getActorID(c)
	if !ok {
		h.Unauthorized(c, "Authenticated user required")
		return
	}

	var req appqueue.MarkPrintedRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.service.MarkBatchPrinted(c.Request.Context(), actorID, req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"printed": len(req.QueueEntryIDs)})
}

// RemoveItems handles DELETE /print-queue/items
func (h *PrintQueueHandler) RemoveItems(c *gin.Context) {
	actorID, ok := h.getActorID(c)
	if !ok {
		h.Unauthorized(c, "Authenticated user required")
		return
	}

	var req appqueue.RemoveRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.service.RemoveFromQueue(c.Request.Context(), actorID, req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Status handles GET /print-queue/status
func (h *PrintQueueHandler) Status(c *gin.Context) {
	resp, err := h.service.GetQueueStatus(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Cleanup handles POST /print-queue/cleanup
func (h *PrintQueueHandler) Cleanup(c *gin.Context) {
	var opts appqueue.CleanupOptions
	if !h.bindJSON(c, &opts) {
		return
	}

	result, err := h.maintenance.PerformCleanup(c.Request.Context(), opts)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Health handles GET /print-queue/health
func (h *PrintQueueHandler) Health(c *gin.Context) {
	report, err := h.maintenance.HealthCheck(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}
