package order

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/stitchline/backoffice/internal/domain/order"
	"github.com/stitchline/backoffice/internal/domain/shared"
)

func TestPOValidator_CheckDuplicate_NoConflict(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	validator := NewPOValidator(orderRepo)

	ctx := context.Background()
	customerID := uuid.New()
	orderRepo.On("FindOrdersByCustomerAndPO", ctx, customerID, "PO-1001", (*uuid.UUID)(nil)).
		Return([]order.POReference{}, nil)

	result, err := validator.CheckDuplicate(ctx, POCheckRequest{
		CustomerID: customerID,
		PONumber:   "PO-1001",
		Level:      order.POLevelOrder,
	})

	assert.NoError(t, err)
	assert.False(t, result.IsDuplicate)
	assert.Empty(t, result.ConflictingReferences)
	assert.Empty(t, result.WarningMessage)
}

func TestPOValidator_CheckDuplicate_OrderLevelConflict(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	validator := NewPOValidator(orderRepo)

	ctx := context.Background()
	customerID := uuid.New()
	conflictID := uuid.New()
	orderRepo.On("FindOrdersByCustomerAndPO", ctx, customerID, "PO-1001", (*uuid.UUID)(nil)).
		Return([]order.POReference{
			{OrderID: conflictID, OrderNumber: "SO-0042", Status: order.OrderStatusApproved},
		}, nil)

	result, err := validator.CheckDuplicate(ctx, POCheckRequest{
		CustomerID: customerID,
		PONumber:   "PO-1001",
		Level:      order.POLevelOrder,
	})

	assert.NoError(t, err)
	assert.True(t, result.IsDuplicate)
	assert.Len(t, result.ConflictingReferences, 1)
	assert.Equal(t, conflictID.String(), result.ConflictingReferences[0].OrderID)
	assert.Equal(t, "SO-0042", result.ConflictingReferences[0].OrderNumber)
	assert.Contains(t, result.WarningMessage, "PO-1001")
}

func TestPOValidator_CheckDuplicate_ItemLevel(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	validator := NewPOValidator(orderRepo)

	ctx := context.Background()
	customerID := uuid.New()
	lineItemID := uuid.New()
	orderRepo.On("FindLineItemsByCustomerAndPO", ctx, customerID, "PO-7", (*uuid.UUID)(nil)).
		Return([]order.POReference{
			{OrderID: uuid.New(), OrderNumber: "SO-0001", LineItemID: &lineItemID, Status: order.OrderStatusPending},
		}, nil)

	result, err := validator.CheckDuplicate(ctx, POCheckRequest{
		CustomerID: customerID,
		PONumber:   "PO-7",
		Level:      order.POLevelItem,
	})

	assert.NoError(t, err)
	assert.True(t, result.IsDuplicate)
	assert.Equal(t, lineItemID.String(), result.ConflictingReferences[0].LineItemID)
}

func TestPOValidator_CheckDuplicate_TrimsAndSkipsEmptyPO(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	validator := NewPOValidator(orderRepo)

	result, err := validator.CheckDuplicate(context.Background(), POCheckRequest{
		CustomerID: uuid.New(),
		PONumber:   "   ",
		Level:      order.POLevelOrder,
	})

	assert.NoError(t, err)
	assert.False(t, result.IsDuplicate)
	orderRepo.AssertNotCalled(t, "FindOrdersByCustomerAndPO", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPOValidator_CheckDuplicate_TrimsBeforeLookup(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	validator := NewPOValidator(orderRepo)

	ctx := context.Background()
	customerID := uuid.New()
	orderRepo.On("FindOrdersByCustomerAndPO", ctx, customerID, "PO-5", (*uuid.UUID)(nil)).
		Return([]order.POReference{}, nil)

	_, err := validator.CheckDuplicate(ctx, POCheckRequest{
		CustomerID: customerID,
		PONumber:   "  PO-5  ",
		Level:      order.POLevelOrder,
	})

	assert.NoError(t, err)
	orderRepo.AssertExpectations(t)
}

func TestPOValidator_CheckDuplicate_Validation(t *testing.T) {
	validator := NewPOValidator(new(MockOrderRepository))
	ctx := context.Background()

	_, err := validator.CheckDuplicate(ctx, POCheckRequest{PONumber: "PO-1", Level: order.POLevelOrder})
	assert.Equal(t, "INVALID_INPUT", shared.ErrorCode(err))

	_, err = validator.CheckDuplicate(ctx, POCheckRequest{CustomerID: uuid.New(), PONumber: "PO-1", Level: "bogus"})
	assert.Equal(t, "INVALID_INPUT", shared.ErrorCode(err))
}

func TestPOValidator_CheckDuplicate_ExcludesSelf(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	validator := NewPOValidator(orderRepo)

	ctx := context.Background()
	customerID := uuid.New()
	selfID := uuid.New()
	orderRepo.On("FindOrdersByCustomerAndPO", ctx, customerID, "PO-9", &selfID).
		Return([]order.POReference{}, nil)

	result, err := validator.CheckDuplicate(ctx, POCheckRequest{
		CustomerID:     customerID,
		PONumber:       "PO-9",
		Level:          order.POLevelOrder,
		ExcludeOrderID: &selfID,
	})

	assert.NoError(t, err)
	assert.False(t, result.IsDuplicate)
	orderRepo.AssertExpectations(t)
}
