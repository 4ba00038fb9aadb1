package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stitchline/backoffice/internal/domain/order"
	"github.com/stitchline/backoffice/internal/domain/shared"
)

// OrderModel is the GORM model for the orders table
type OrderModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderNumber  string          `gorm:"column:order_number;type:varchar(50);not null;uniqueIndex"`
	CustomerID   uuid.UUID       `gorm:"column:customer_id;type:uuid;not null;index"`
	CustomerName string          `gorm:"column:customer_name;type:varchar(200);not null"`
	PONumber     string          `gorm:"column:po_number;type:varchar(100);index:idx_orders_customer_po,composite:customer_po"`
	Status       string          `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	TotalAmount  decimal.Decimal `gorm:"column:total_amount;type:decimal(15,2);not null;default:0"`
	Remark       string          `gorm:"type:text"`
	ApprovedAt   *time.Time      `gorm:"column:approved_at"`
	ApprovedBy   *uuid.UUID      `gorm:"column:approved_by;type:uuid"`
	ShippedAt    *time.Time      `gorm:"column:shipped_at"`
	CompletedAt  *time.Time      `gorm:"column:completed_at"`
	CancelledAt  *time.Time      `gorm:"column:cancelled_at"`
	CancelReason string          `gorm:"column:cancel_reason;type:text"`
	CreatedAt    time.Time       `gorm:"not null"`
	UpdatedAt    time.Time       `gorm:"not null"`
	Version      int             `gorm:"not null;default:1"`

	Items []LineItemModel `gorm:"foreignKey:OrderID"`
}

// TableName returns the table name for OrderModel
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts OrderModel to a domain Order
func (m *OrderModel) ToDomain() *order.Order {
	items := make([]order.LineItem, len(m.Items))
	for i, item := range m.Items {
		items[i] = *item.ToDomain()
	}

	return &order.Order{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		OrderNumber:  m.OrderNumber,
		CustomerID:   m.CustomerID,
		CustomerName: m.CustomerName,
		PONumber:     m.PONumber,
		Status:       order.OrderStatus(m.Status),
		Items:        items,
		TotalAmount:  m.TotalAmount,
		Remark:       m.Remark,
		ApprovedAt:   m.ApprovedAt,
		ApprovedBy:   m.ApprovedBy,
		ShippedAt:    m.ShippedAt,
		CompletedAt:  m.CompletedAt,
		CancelledAt:  m.CancelledAt,
		CancelReason: m.CancelReason,
	}
}

// OrderModelFromDomain creates an OrderModel from a domain Order
func OrderModelFromDomain(o *order.Order) *OrderModel {
	items := make([]LineItemModel, len(o.Items))
	for i := range o.Items {
		items[i] = *LineItemModelFromDomain(&o.Items[i])
	}

	return &OrderModel{
		ID:           o.ID,
		OrderNumber:  o.OrderNumber,
		CustomerID:   o.CustomerID,
		CustomerName: o.CustomerName,
		PONumber:     o.PONumber,
		Status:       string(o.Status),
		TotalAmount:  o.TotalAmount,
		Remark:       o.Remark,
		ApprovedAt:   o.ApprovedAt,
		ApprovedBy:   o.ApprovedBy,
		ShippedAt:    o.ShippedAt,
		CompletedAt:  o.CompletedAt,
		CancelledAt:  o.CancelledAt,
		CancelReason: o.CancelReason,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
		Version:      o.Version,
		Items:        items,
	}
}

// LineItemModel is the GORM model for the order_line_items table
type LineItemModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID      uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	Description  string          `gorm:"type:varchar(500);not null"`
	SKU          string          `gorm:"column:sku;type:varchar(100)"`
	Quantity     decimal.Decimal `gorm:"type:decimal(15,3);not null"`
	UnitPrice    decimal.Decimal `gorm:"column:unit_price;type:decimal(15,2);not null;default:0"`
	Amount       decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	IsProduction bool            `gorm:"column:is_production;not null;default:false;index"`
	ItemStatus   string          `gorm:"column:item_status;type:varchar(20);not null;default:'NOT_STARTED'"`
	PONumber     string          `gorm:"column:po_number;type:varchar(100)"`
	CreatedAt    time.Time       `gorm:"not null"`
	UpdatedAt    time.Time       `gorm:"not null"`
}

// TableName returns the table name for LineItemModel
func (LineItemModel) TableName() string {
	return "order_line_items"
}

// ToDomain converts LineItemModel to a domain LineItem
func (m *LineItemModel) ToDomain() *order.LineItem {
	return &order.LineItem{
		ID:           m.ID,
		OrderID:      m.OrderID,
		Description:  m.Description,
		SKU:          m.SKU,
		Quantity:     m.Quantity,
		UnitPrice:    m.UnitPrice,
		Amount:       m.Amount,
		IsProduction: m.IsProduction,
		ItemStatus:   order.ItemStatus(m.ItemStatus),
		PONumber:     m.PONumber,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// LineItemModelFromDomain creates a LineItemModel from a domain LineItem
func LineItemModelFromDomain(item *order.LineItem) *LineItemModel {
	return &LineItemModel{
		ID:           item.ID,
		OrderID:      item.OrderID,
		Description:  item.Description,
		SKU:          item.SKU,
		Quantity:     item.Quantity,
		UnitPrice:    item.UnitPrice,
		Amount:       item.Amount,
		IsProduction: item.IsProduction,
		ItemStatus:   string(item.ItemStatus),
		PONumber:     item.PONumber,
		CreatedAt:    item.CreatedAt,
		UpdatedAt:    item.UpdatedAt,
	}
}
