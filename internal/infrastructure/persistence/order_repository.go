package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stitchline/backoffice/internal/domain/order"
	"github.com/stitchline/backoffice/internal/domain/shared"
	"github.com/stitchline/backoffice/internal/infrastructure/persistence/models"
)

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order with its line items
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrderNumber finds an order by its business number
func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*order.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&model, "order_number = ?", orderNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds orders with optional filtering
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, error) {
	var orderModels []models.OrderModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.OrderModel{}).Preload("Items"), filter)

	if err := query.Find(&orderModels).Error; err != nil {
		return nil, err
	}

	orders := make([]order.Order, len(orderModels))
	for i, model := range orderModels {
		orders[i] = *model.ToDomain()
	}
	return orders, nil
}

// Save persists the order and its line items in one transaction. Line items
// removed from the aggregate are deleted; the rest are upserted.
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	model := models.OrderModelFromDomain(o)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(model).Error; err != nil {
			return err
		}

		keepIDs := make([]uuid.UUID, len(model.Items))
		for i, item := range model.Items {
			keepIDs[i] = item.ID
		}

		cleanup := tx.Where("order_id = ?", model.ID)
		if len(keepIDs) > 0 {
			cleanup = cleanup.Where("id NOT IN ?", keepIDs)
		}
		if err := cleanup.Delete(&models.LineItemModel{}).Error; err != nil {
			return err
		}

		for i := range model.Items {
			if err := tx.Save(&model.Items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete deletes an order and its line items by ID
func (r *GormOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.LineItemModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.OrderModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count returns the total count of orders matching the filter
func (r *GormOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.OrderModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// lineItemDetailRow is the scan target for the line item + order join
type lineItemDetailRow struct {
	models.LineItemModel
	OrderStatus string
	OrderNumber string
}

// FindLineItems resolves line items by ID together with their owning order's
// status. Unknown IDs are simply absent from the result.
func (r *GormOrderRepository) FindLineItems(ctx context.Context, ids []uuid.UUID) ([]order.LineItemDetail, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var rows []lineItemDetailRow
	if err := r.db.WithContext(ctx).
		Model(&models.LineItemModel{}).
		Select("order_line_items.*, orders.status AS order_status, orders.order_number AS order_number").
		Joins("JOIN orders ON orders.id = order_line_items.order_id").
		Where("order_line_items.id IN ?", ids).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	details := make([]order.LineItemDetail, len(rows))
	for i, row := range rows {
		details[i] = order.LineItemDetail{
			LineItem:    *row.LineItemModel.ToDomain(),
			OrderStatus: order.OrderStatus(row.OrderStatus),
			OrderNumber: row.OrderNumber,
		}
	}
	return details, nil
}

// FindOrdersByCustomerAndPO finds other orders of the customer carrying the
// given PO number at the order level
func (r *GormOrderRepository) FindOrdersByCustomerAndPO(ctx context.Context, customerID uuid.UUID, poNumber string, excludeOrderID *uuid.UUID) ([]order.POReference, error) {
	query := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("customer_id = ? AND po_number = ?", customerID, poNumber)
	if excludeOrderID != nil {
		query = query.Where("id <> ?", *excludeOrderID)
	}

	var orderModels []models.OrderModel
	if err := query.Order("created_at DESC").Find(&orderModels).Error; err != nil {
		return nil, err
	}

	refs := make([]order.POReference, len(orderModels))
	for i, m := range orderModels {
		refs[i] = order.POReference{
			OrderID:     m.ID,
			OrderNumber: m.OrderNumber,
			Status:      order.OrderStatus(m.Status),
		}
	}
	return refs, nil
}

// FindLineItemsByCustomerAndPO finds line items across the customer's orders
// carrying the given PO number at the item level
func (r *GormOrderRepository) FindLineItemsByCustomerAndPO(ctx context.Context, customerID uuid.UUID, poNumber string, excludeLineItemID *uuid.UUID) ([]order.POReference, error) {
	query := r.db.WithContext(ctx).
		Model(&models.LineItemModel{}).
		Select("order_line_items.id AS id, order_line_items.order_id AS order_id, orders.order_number AS order_number, orders.status AS order_status").
		Joins("JOIN orders ON orders.id = order_line_items.order_id").
		Where("orders.customer_id = ? AND order_line_items.po_number = ?", customerID, poNumber)
	if excludeLineItemID != nil {
		query = query.Where("order_line_items.id <> ?", *excludeLineItemID)
	}

	var rows []struct {
		ID          uuid.UUID
		OrderID     uuid.UUID
		OrderNumber string
		OrderStatus string
	}
	if err := query.Order("order_line_items.created_at DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}

	refs := make([]order.POReference, len(rows))
	for i, row := range rows {
		lineItemID := row.ID
		refs[i] = order.POReference{
			OrderID:     row.OrderID,
			OrderNumber: row.OrderNumber,
			LineItemID:  &lineItemID,
			Status:      order.OrderStatus(row.OrderStatus),
		}
	}
	return refs, nil
}

// applyFilter applies filter options to the query
func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		sortField := ValidateSortField(filter.OrderBy, OrderSortFields, "")
		if sortField != "" {
			sortOrder := ValidateSortOrder(filter.OrderDir)
			query = query.Order(sortField + " " + sortOrder)
		} else {
			query = query.Order("created_at DESC")
		}
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormOrderRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "po_number":
			query = query.Where("po_number = ?", value)
		}
	}

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("order_number ILIKE ? OR customer_name ILIKE ?", pattern, pattern)
	}

	return query
}

// Ensure GormOrderRepository implements order.Repository
var _ order.Repository = (*GormOrderRepository)(nil)
