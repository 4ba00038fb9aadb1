package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stitchline/backoffice/internal/domain/order"
)

// CreateOrderItemRequest describes one line item of a new order
type CreateOrderItemRequest struct {
	Description  string          `json:"description" binding:"required"`
	SKU          string          `json:"sku"`
	Quantity     decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	IsProduction bool            `json:"is_production"`
	PONumber     string          `json:"po_number"`
}

// CreateOrderRequest creates a new order in PENDING status
type CreateOrderRequest struct {
	OrderNumber  string                   `json:"order_number" binding:"required,max=50"`
	CustomerID   uuid.UUID                `json:"customer_id" binding:"required"`
	CustomerName string                   `json:"customer_name" binding:"required"`
	PONumber     string                   `json:"po_number"`
	Remark       string                   `json:"remark"`
	Items        []CreateOrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// LineItemResponse is the API representation of a line item
type LineItemResponse struct {
	ID           string          `json:"id"`
	Description  string          `json:"description"`
	SKU          string          `json:"sku,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Amount       decimal.Decimal `json:"amount"`
	IsProduction bool            `json:"is_production"`
	ItemStatus   string          `json:"item_status"`
	PONumber     string          `json:"po_number,omitempty"`
}

// OrderResponse is the API representation of an order
type OrderResponse struct {
	ID           string             `json:"id"`
	OrderNumber  string             `json:"order_number"`
	CustomerID   string             `json:"customer_id"`
	CustomerName string             `json:"customer_name"`
	PONumber     string             `json:"po_number,omitempty"`
	Status       string             `json:"status"`
	TotalAmount  decimal.Decimal    `json:"total_amount"`
	Remark       string             `json:"remark,omitempty"`
	Items        []LineItemResponse `json:"items"`
	ApprovedAt   *time.Time         `json:"approved_at,omitempty"`
	ApprovedBy   string             `json:"approved_by,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// ApproveOrderResponse reports the outcome of an approval
type ApproveOrderResponse struct {
	Success              bool     `json:"success"`
	OrderID              string   `json:"order_id"`
	Status               string   `json:"status"`
	PrintQueueItemsAdded int      `json:"print_queue_items_added"`
	Warnings             []string `json:"warnings,omitempty"`
}

// POConflictReference identifies an order or line item already using a PO number
type POConflictReference struct {
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	LineItemID  string `json:"line_item_id,omitempty"`
	OrderStatus string `json:"order_status"`
}

// POCheckResult is the duplicate PO lookup outcome
type POCheckResult struct {
	IsDuplicate           bool                  `json:"is_duplicate"`
	ConflictingReferences []POConflictReference `json:"conflicting_references,omitempty"`
	WarningMessage        string                `json:"warning_message,omitempty"`
}

// ToOrderResponse converts a domain order to its API representation
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]LineItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = LineItemResponse{
			ID:           item.ID.String(),
			Description:  item.Description,
			SKU:          item.SKU,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			Amount:       item.Amount,
			IsProduction: item.IsProduction,
			ItemStatus:   string(item.ItemStatus),
			PONumber:     item.PONumber,
		}
	}

	resp := OrderResponse{
		ID:           o.ID.String(),
		OrderNumber:  o.OrderNumber,
		CustomerID:   o.CustomerID.String(),
		CustomerName: o.CustomerName,
		PONumber:     o.PONumber,
		Status:       string(o.Status),
		TotalAmount:  o.TotalAmount,
		Remark:       o.Remark,
		Items:        items,
		ApprovedAt:   o.ApprovedAt,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
	if o.ApprovedBy != nil {
		resp.ApprovedBy = o.ApprovedBy.String()
	}
	return resp
}
