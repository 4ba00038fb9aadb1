package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apporder "github.com/stitchline/backoffice/internal/application/order"
	"github.com/stitchline/backoffice/internal/domain/order"
	"github.com/stitchline/backoffice/internal/domain/shared"
	"github.com/stitchline/backoffice/internal/interfaces/http/dto"
)

// OrderHandler exposes the order lifecycle over HTTP
type OrderHandler struct {
	BaseHandler
	service *apporder.Service
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(service *apporder.Service, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// Create handles POST /orders
func (h *OrderHandler) Create(c *gin.Context) {
	var req apporder.CreateOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get handles GET /orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := h.bindUUIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List handles GET /orders
func (h *OrderHandler) List(c *gin.Context) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.Error(c, dto.ErrCodeInvalidInput, "Invalid list parameters: "+err.Error())
		return
	}

	filter := shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
		Filters:  make(map[string]interface{}),
	}
	if status := c.Query("status"); status != "" {
		filter.Filters["status"] = status
	}

	page, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Approve handles POST /orders/:id/approve
func (h *OrderHandler) Approve(c *gin.Context) {
	id, ok := h.bindUUIDParam(c, "id")
	if !ok {
		return
	}
	actorID, ok := h.getActorID(c)
	if !ok {
		h.Unauthorized(c, "Authenticated user required")
		return
	}

	resp, err := h.service.Approve(c.Request.Context(), id, actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// cancelOrderRequest carries the cancellation reason
type cancelOrderRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// Cancel handles POST /orders/:id/cancel
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := h.bindUUIDParam(c, "id")
	if !ok {
		return
	}
	actorID, ok := h.getActorID(c)
	if !ok {
		h.Unauthorized(c, "Authenticated user required")
		return
	}

	var req cancelOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.Cancel(c.Request.Context(), id, actorID, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// CheckPO handles GET /orders/check-po. The lookup warns about duplicate PO
// numbers for the same customer; it never blocks anything by itself.
func (h *OrderHandler) CheckPO(c *gin.Context) {
	customerID, err := uuid.Parse(c.Query("customer_id"))
	if err != nil {
		h.Error(c, dto.ErrCodeInvalidInput, "Invalid customer_id parameter")
		return
	}

	req := apporder.POCheckRequest{
		CustomerID: customerID,
		PONumber:   c.Query("po_number"),
		Level:      order.POLevel(c.DefaultQuery("level", string(order.POLevelOrder))),
	}
	if raw := c.Query("exclude_order_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.Error(c, dto.ErrCodeInvalidInput, "Invalid exclude_order_id parameter")
			return
		}
		req.ExcludeOrderID = &id
	}
	if raw := c.Query("exclude_line_item_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.Error(c, dto.ErrCodeInvalidInput, "Invalid exclude_line_item_id parameter")
			return
		}
		req.ExcludeLineItemID = &id
	}

	result, err := h.service.CheckPONumber(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
