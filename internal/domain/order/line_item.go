package order

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stitchline/backoffice/internal/domain/shared"
)

// ItemStatus represents the production stage of a line item
type ItemStatus string

const (
	ItemStatusNotStarted  ItemStatus = "NOT_STARTED"
	ItemStatusCutting     ItemStatus = "CUTTING"
	ItemStatusSewing      ItemStatus = "SEWING"
	ItemStatusFoamCutting ItemStatus = "FOAM_CUTTING"
	ItemStatusPackaging   ItemStatus = "PACKAGING"
	ItemStatusCompleted   ItemStatus = "COMPLETED"
)

// IsValid checks if the status is a valid ItemStatus
func (s ItemStatus) IsValid() bool {
	switch s {
	case ItemStatusNotStarted, ItemStatusCutting, ItemStatusSewing,
		ItemStatusFoamCutting, ItemStatusPackaging, ItemStatusCompleted:
		return true
	}
	return false
}

// String returns the string representation of ItemStatus
func (s ItemStatus) String() string {
	return string(s)
}

// LineItem represents one line of an order. Production items are the ones
// that require physical manufacturing and therefore a printed label.
type LineItem struct {
	ID           uuid.UUID
	OrderID      uuid.UUID
	Description  string
	SKU          string
	Quantity     decimal.Decimal
	UnitPrice    decimal.Decimal
	Amount       decimal.Decimal
	IsProduction bool
	ItemStatus   ItemStatus
	PONumber     string // item-level PO number, optional
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewLineItem creates a new line item
func NewLineItem(orderID uuid.UUID, description, sku string, quantity, unitPrice decimal.Decimal, isProduction bool) (*LineItem, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Line item description cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	now := time.Now()
	return &LineItem{
		ID:           uuid.New(),
		OrderID:      orderID,
		Description:  description,
		SKU:          sku,
		Quantity:     quantity,
		UnitPrice:    unitPrice,
		Amount:       quantity.Mul(unitPrice),
		IsProduction: isProduction,
		ItemStatus:   ItemStatusNotStarted,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// SetPONumber sets the item-level purchase order number
func (i *LineItem) SetPONumber(poNumber string) {
	i.PONumber = strings.TrimSpace(poNumber)
	i.UpdatedAt = time.Now()
}

// AdvanceTo moves the line item to the given production stage
func (i *LineItem) AdvanceTo(status ItemStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_ITEM_STATUS", "Unknown production stage: "+string(status))
	}
	if !i.IsProduction {
		return shared.NewDomainError("INVALID_STATE", "Non-production items have no production stages")
	}

	i.ItemStatus = status
	i.UpdatedAt = time.Now()

	return nil
}
