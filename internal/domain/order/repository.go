package order

import (
	"context"

	"github.com/google/uuid"

	"github.com/stitchline/backoffice/internal/domain/shared"
)

// POLevel selects the granularity of a duplicate PO number lookup
type POLevel string

const (
	POLevelOrder POLevel = "order"
	POLevelItem  POLevel = "item"
)

// IsValid checks if the level is a known PO lookup level
func (l POLevel) IsValid() bool {
	return l == POLevelOrder || l == POLevelItem
}

// POReference identifies an order or line item carrying a conflicting PO number
type POReference struct {
	OrderID     uuid.UUID
	OrderNumber string
	LineItemID  *uuid.UUID
	Status      OrderStatus
}

// LineItemDetail pairs a line item with the status of its owning order.
// The print queue uses it to validate enqueue candidates without loading
// whole aggregates.
type LineItemDetail struct {
	LineItem
	OrderStatus OrderStatus
	OrderNumber string
}

// Repository defines the interface for order persistence
type Repository interface {
	// FindByID finds an order with its line items
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByOrderNumber finds an order by its business number
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)

	// FindAll finds orders with optional filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)

	// Save persists the order and its line items in one transaction
	Save(ctx context.Context, o *Order) error

	// Delete deletes an order by ID
	Delete(ctx context.Context, id uuid.UUID) error

	// Count returns the total count of orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// FindLineItems resolves line items by ID together with their owning
	// order's status. Unknown IDs are simply absent from the result.
	FindLineItems(ctx context.Context, ids []uuid.UUID) ([]LineItemDetail, error)

	// FindOrdersByCustomerAndPO finds other orders of the customer carrying
	// the given PO number at the order level, excluding excludeOrderID when set
	FindOrdersByCustomerAndPO(ctx context.Context, customerID uuid.UUID, poNumber string, excludeOrderID *uuid.UUID) ([]POReference, error)

	// FindLineItemsByCustomerAndPO finds line items across the customer's
	// orders carrying the given PO number at the item level, excluding
	// excludeLineItemID when set
	FindLineItemsByCustomerAndPO(ctx context.Context, customerID uuid.UUID, poNumber string, excludeLineItemID *uuid.UUID) ([]POReference, error)
}
