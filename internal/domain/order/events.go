package order

import (
	"github.com/google/uuid"

	"github.com/stitchline/backoffice/internal/domain/shared"
)

// AggregateTypeOrder is the aggregate type for order events
const AggregateTypeOrder = "Order"

// Event type constants for Order
const (
	EventTypeOrderCreated   = "OrderCreated"
	EventTypeOrderApproved  = "OrderApproved"
	EventTypeOrderCancelled = "OrderCancelled"
)

// OrderCreatedEvent is published when a new order is created
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID      uuid.UUID `json:"order_id"`
	OrderNumber  string    `json:"order_number"`
	CustomerID   uuid.UUID `json:"customer_id"`
	CustomerName string    `json:"customer_name"`
}

// NewOrderCreatedEvent creates a new OrderCreatedEvent
func NewOrderCreatedEvent(o *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		CustomerName:    o.CustomerName,
	}
}

// OrderApprovedEvent is published when an order transitions to APPROVED.
// The print queue is populated in response to this transition.
type OrderApprovedEvent struct {
	shared.BaseDomainEvent
	OrderID             uuid.UUID   `json:"order_id"`
	OrderNumber         string      `json:"order_number"`
	ApprovedBy          uuid.UUID   `json:"approved_by"`
	ProductionItemIDs   []uuid.UUID `json:"production_item_ids"`
	ProductionItemCount int         `json:"production_item_count"`
}

// NewOrderApprovedEvent creates a new OrderApprovedEvent
func NewOrderApprovedEvent(o *Order) *OrderApprovedEvent {
	var approvedBy uuid.UUID
	if o.ApprovedBy != nil {
		approvedBy = *o.ApprovedBy
	}
	itemIDs := o.ProductionItemIDs()
	return &OrderApprovedEvent{
		BaseDomainEvent:     shared.NewBaseDomainEvent(EventTypeOrderApproved, AggregateTypeOrder, o.ID),
		OrderID:             o.ID,
		OrderNumber:         o.OrderNumber,
		ApprovedBy:          approvedBy,
		ProductionItemIDs:   itemIDs,
		ProductionItemCount: len(itemIDs),
	}
}

// OrderCancelledEvent is published when an order is cancelled
type OrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	Reason      string    `json:"reason"`
	WasApproved bool      `json:"was_approved"`
}

// NewOrderCancelledEvent creates a new OrderCancelledEvent
func NewOrderCancelledEvent(o *Order) *OrderCancelledEvent {
	return &OrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCancelled, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		Reason:          o.CancelReason,
		WasApproved:     o.ApprovedAt != nil,
	}
}
