package order

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/stitchline/backoffice/internal/domain/order"
	"github.com/stitchline/backoffice/internal/domain/shared"
)

// POCheckRequest is the query shape for a duplicate PO lookup
type POCheckRequest struct {
	CustomerID        uuid.UUID
	PONumber          string
	Level             order.POLevel
	ExcludeOrderID    *uuid.UUID
	ExcludeLineItemID *uuid.UUID
}

// POValidator detects purchase order numbers already used by the same
// customer. Matching is exact on the trimmed string; an empty PO number is
// never a duplicate. Duplicates warn, they do not block (office staff may
// have legitimate repeat POs).
type POValidator struct {
	orderRepo order.Repository
}

// NewPOValidator creates a new POValidator
func NewPOValidator(orderRepo order.Repository) *POValidator {
	return &POValidator{orderRepo: orderRepo}
}

// CheckDuplicate returns every conflicting reference for the given PO number
// so the caller can present full context, not just the first hit.
func (v *POValidator) CheckDuplicate(ctx context.Context, req POCheckRequest) (*POCheckResult, error) {
	if req.CustomerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Customer ID cannot be empty")
	}
	if !req.Level.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "PO check level must be 'order' or 'item'")
	}

	poNumber := strings.TrimSpace(req.PONumber)
	if poNumber == "" {
		return &POCheckResult{IsDuplicate: false}, nil
	}

	var (
		refs []order.POReference
		err  error
	)
	switch req.Level {
	case order.POLevelOrder:
		refs, err = v.orderRepo.FindOrdersByCustomerAndPO(ctx, req.CustomerID, poNumber, req.ExcludeOrderID)
	case order.POLevelItem:
		refs, err = v.orderRepo.FindLineItemsByCustomerAndPO(ctx, req.CustomerID, poNumber, req.ExcludeLineItemID)
	}
	if err != nil {
		return nil, fmt.Errorf("duplicate PO lookup failed: %w", err)
	}

	result := &POCheckResult{IsDuplicate: len(refs) > 0}
	for _, ref := range refs {
		conflict := POConflictReference{
			OrderID:     ref.OrderID.String(),
			OrderNumber: ref.OrderNumber,
			OrderStatus: string(ref.Status),
		}
		if ref.LineItemID != nil {
			conflict.LineItemID = ref.LineItemID.String()
		}
		result.ConflictingReferences = append(result.ConflictingReferences, conflict)
	}

	if result.IsDuplicate {
		result.WarningMessage = fmt.Sprintf(
			"PO number %q is already used by %d other %s(s) for this customer",
			poNumber, len(refs), req.Level)
	}

	return result, nil
}
