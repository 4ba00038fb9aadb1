package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stitchline/backoffice/internal/domain/shared"
)

// OrderStatus represents the lifecycle status of a customer order
type OrderStatus string

const (
	OrderStatusPending      OrderStatus = "PENDING"
	OrderStatusApproved     OrderStatus = "APPROVED"
	OrderStatusInProduction OrderStatus = "IN_PRODUCTION"
	OrderStatusReadyToShip  OrderStatus = "READY_TO_SHIP"
	OrderStatusShipped      OrderStatus = "SHIPPED"
	OrderStatusCompleted    OrderStatus = "COMPLETED"
	OrderStatusCancelled    OrderStatus = "CANCELLED"
	OrderStatusArchived     OrderStatus = "ARCHIVED"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusApproved, OrderStatusInProduction,
		OrderStatusReadyToShip, OrderStatusShipped, OrderStatusCompleted,
		OrderStatusCancelled, OrderStatusArchived:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return target == OrderStatusApproved || target == OrderStatusCancelled
	case OrderStatusApproved:
		return target == OrderStatusInProduction || target == OrderStatusCancelled
	case OrderStatusInProduction:
		return target == OrderStatusReadyToShip || target == OrderStatusCancelled
	case OrderStatusReadyToShip:
		return target == OrderStatusShipped
	case OrderStatusShipped:
		return target == OrderStatusCompleted
	case OrderStatusCompleted, OrderStatusCancelled:
		return target == OrderStatusArchived
	case OrderStatusArchived:
		return false
	}
	return false
}

// IsTerminal returns true for statuses from which no production activity follows
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled || s == OrderStatusArchived
}

// Order represents a customer order aggregate root. It owns its line items
// and is the only writer of orderStatus and approvedAt.
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber  string
	CustomerID   uuid.UUID
	CustomerName string
	PONumber     string
	Status       OrderStatus
	Items        []LineItem
	TotalAmount  decimal.Decimal
	Remark       string
	ApprovedAt   *time.Time
	ApprovedBy   *uuid.UUID
	ShippedAt    *time.Time
	CompletedAt  *time.Time
	CancelledAt  *time.Time
	CancelReason string
}

// NewOrder creates a new order in PENDING status
func NewOrder(orderNumber string, customerID uuid.UUID, customerName string) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if len(orderNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot exceed 50 characters")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if customerName == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		CustomerID:        customerID,
		CustomerName:      customerName,
		Status:            OrderStatusPending,
		Items:             make([]LineItem, 0),
		TotalAmount:       decimal.Zero,
	}

	o.AddDomainEvent(NewOrderCreatedEvent(o))

	return o, nil
}

// SetPONumber sets the customer purchase order number. The value is
// trim-normalized so duplicate detection compares like with like.
func (o *Order) SetPONumber(poNumber string) {
	o.PONumber = strings.TrimSpace(poNumber)
	o.UpdatedAt = time.Now()
}

// SetRemark sets the order remark
func (o *Order) SetRemark(remark string) {
	o.Remark = remark
	o.UpdatedAt = time.Now()
}

// AddItem adds a new line item to the order.
// Only allowed before approval.
func (o *Order) AddItem(description, sku string, quantity, unitPrice decimal.Decimal, isProduction bool) (*LineItem, error) {
	if o.Status != OrderStatusPending {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items to an order that left PENDING status")
	}

	item, err := NewLineItem(o.ID, description, sku, quantity, unitPrice, isProduction)
	if err != nil {
		return nil, err
	}

	o.Items = append(o.Items, *item)
	o.recalculateTotal()
	o.UpdatedAt = time.Now()

	return &o.Items[len(o.Items)-1], nil
}

// RemoveItem removes a line item from the order.
// Only allowed before approval.
func (o *Order) RemoveItem(itemID uuid.UUID) error {
	if o.Status != OrderStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Cannot remove items from an order that left PENDING status")
	}

	for idx, item := range o.Items {
		if item.ID == itemID {
			o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
			o.recalculateTotal()
			o.UpdatedAt = time.Now()
			return nil
		}
	}

	return shared.NewDomainError("ITEM_NOT_FOUND", "Order line item not found")
}

// CanApprove reports whether the order can legally move to APPROVED
func (o *Order) CanApprove() bool {
	return o.Status.CanTransitionTo(OrderStatusApproved)
}

// Approve transitions the order to APPROVED and stamps approvedAt/approvedBy.
// approvedAt is set exactly once, at the moment this transition commits;
// re-approving an already approved order is rejected here and handled as a
// queue re-sync by the application layer.
func (o *Order) Approve(approvedBy uuid.UUID) error {
	if !o.Status.CanTransitionTo(OrderStatusApproved) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot approve order in %s status", o.Status))
	}
	if approvedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_ACTOR", "Approver ID cannot be empty")
	}

	now := time.Now()
	o.Status = OrderStatusApproved
	o.ApprovedAt = &now
	o.ApprovedBy = &approvedBy
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderApprovedEvent(o))

	return nil
}

// StartProduction transitions the order to IN_PRODUCTION
func (o *Order) StartProduction() error {
	if !o.Status.CanTransitionTo(OrderStatusInProduction) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot start production for order in %s status", o.Status))
	}

	o.Status = OrderStatusInProduction
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return nil
}

// MarkReadyToShip transitions the order to READY_TO_SHIP
func (o *Order) MarkReadyToShip() error {
	if !o.Status.CanTransitionTo(OrderStatusReadyToShip) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot mark order ready to ship in %s status", o.Status))
	}

	o.Status = OrderStatusReadyToShip
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return nil
}

// Ship marks the order as shipped
func (o *Order) Ship() error {
	if !o.Status.CanTransitionTo(OrderStatusShipped) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot ship order in %s status", o.Status))
	}

	now := time.Now()
	o.Status = OrderStatusShipped
	o.ShippedAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()

	return nil
}

// Complete marks the order as completed
func (o *Order) Complete() error {
	if !o.Status.CanTransitionTo(OrderStatusCompleted) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot complete order in %s status", o.Status))
	}

	now := time.Now()
	o.Status = OrderStatusCompleted
	o.CompletedAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()

	return nil
}

// Cancel cancels the order with a reason
func (o *Order) Cancel(reason string) error {
	if !o.Status.CanTransitionTo(OrderStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot cancel order in %s status", o.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	o.Status = OrderStatusCancelled
	o.CancelledAt = &now
	o.CancelReason = reason
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderCancelledEvent(o))

	return nil
}

// Archive moves a terminal order out of the active working set
func (o *Order) Archive() error {
	if !o.Status.CanTransitionTo(OrderStatusArchived) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot archive order in %s status", o.Status))
	}

	o.Status = OrderStatusArchived
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return nil
}

// IsApproved returns true if the order is approved
func (o *Order) IsApproved() bool {
	return o.Status == OrderStatusApproved
}

// IsActive returns true if the order is neither cancelled nor archived.
// Only line items of active orders are eligible for the print queue.
func (o *Order) IsActive() bool {
	return o.Status != OrderStatusCancelled && o.Status != OrderStatusArchived
}

// ProductionItems returns the line items flagged for physical manufacturing
func (o *Order) ProductionItems() []LineItem {
	items := make([]LineItem, 0, len(o.Items))
	for _, item := range o.Items {
		if item.IsProduction {
			items = append(items, item)
		}
	}
	return items
}

// ProductionItemIDs returns the IDs of the production line items
func (o *Order) ProductionItemIDs() []uuid.UUID {
	items := o.ProductionItems()
	ids := make([]uuid.UUID, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

// GetItem returns a line item by its ID
func (o *Order) GetItem(itemID uuid.UUID) *LineItem {
	for idx := range o.Items {
		if o.Items[idx].ID == itemID {
			return &o.Items[idx]
		}
	}
	return nil
}

// ItemCount returns the number of line items in the order
func (o *Order) ItemCount() int {
	return len(o.Items)
}

// recalculateTotal recalculates the order total from its items
func (o *Order) recalculateTotal() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Amount)
	}
	o.TotalAmount = total
}
