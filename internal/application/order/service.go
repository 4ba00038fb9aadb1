package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stitchline/backoffice/internal/domain/audit"
	"github.com/stitchline/backoffice/internal/domain/order"
	"github.com/stitchline/backoffice/internal/domain/shared"
	appqueue "github.com/stitchline/backoffice/internal/application/printqueue"
)

// QueuePopulator is the slice of the print queue the approval coordinator
// needs: enqueueing line items after an approval commits.
type QueuePopulator interface {
	AddToQueue(ctx context.Context, actorID uuid.UUID, req appqueue.AddToQueueRequest) (*appqueue.AddToQueueResponse, error)
}

// Service coordinates the order lifecycle, most importantly the approval
// transition that feeds the print queue.
type Service struct {
	orderRepo     order.Repository
	queue         QueuePopulator
	poValidator   *POValidator
	auditRecorder audit.Recorder
	logger        *zap.Logger
}

// NewService creates a new order Service
func NewService(
	orderRepo order.Repository,
	queue QueuePopulator,
	poValidator *POValidator,
	auditRecorder audit.Recorder,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		orderRepo:     orderRepo,
		queue:         queue,
		poValidator:   poValidator,
		auditRecorder: auditRecorder,
		logger:        logger,
	}
}

// Create creates a new order in PENDING status
func (s *Service) Create(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	existing, err := s.orderRepo.FindByOrderNumber(ctx, req.OrderNumber)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("failed to check order number: %w", err)
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "An order with this number already exists")
	}

	o, err := order.NewOrder(req.OrderNumber, req.CustomerID, req.CustomerName)
	if err != nil {
		return nil, err
	}
	if req.PONumber != "" {
		o.SetPONumber(req.PONumber)
	}
	if req.Remark != "" {
		o.SetRemark(req.Remark)
	}

	for _, item := range req.Items {
		lineItem, err := o.AddItem(item.Description, item.SKU, item.Quantity, item.UnitPrice, item.IsProduction)
		if err != nil {
			return nil, err
		}
		if item.PONumber != "" {
			lineItem.SetPONumber(item.PONumber)
		}
	}

	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, fmt.Errorf("failed to save order: %w", err)
	}
	s.drainEvents(o)

	s.logger.Info("order created",
		zap.String("id", o.ID.String()),
		zap.String("order_number", o.OrderNumber),
		zap.Int("items", o.ItemCount()))

	resp := ToOrderResponse(o)
	return &resp, nil
}

// GetByID retrieves an order with its line items
func (s *Service) GetByID(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Order not found")
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// List returns a page of orders matching the filter
func (s *Service) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[OrderResponse], error) {
	orders, err := s.orderRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	total, err := s.orderRepo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	items := make([]OrderResponse, len(orders))
	for i := range orders {
		items[i] = ToOrderResponse(&orders[i])
	}

	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Approve transitions the order to APPROVED and populates the print queue
// with its production line items.
//
// The approval commit and the queue population are independently retryable:
// a queue failure is logged and surfaced as a warning, never rolled into the
// approval outcome, because AddToQueue is idempotent and can be re-run.
// Re-approving an already APPROVED order skips the transition bookkeeping
// (approvedAt is set exactly once) but still re-syncs the queue.
func (s *Service) Approve(ctx context.Context, orderID, actorID uuid.UUID) (*ApproveOrderResponse, error) {
	if actorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Actor ID cannot be empty")
	}

	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Order not found").
				WithSuggestions("Verify the order still exists", "Refresh and try again")
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	resync := o.IsApproved()
	if !resync && !o.CanApprove() {
		return nil, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Order is not in an approvable status (current: %s)", o.Status))
	}

	resp := &ApproveOrderResponse{OrderID: o.ID.String()}

	// Duplicate PO detection warns, it never blocks the transition.
	if s.poValidator != nil && o.PONumber != "" {
		check, err := s.poValidator.CheckDuplicate(ctx, POCheckRequest{
			CustomerID:     o.CustomerID,
			PONumber:       o.PONumber,
			Level:          order.POLevelOrder,
			ExcludeOrderID: &o.ID,
		})
		if err != nil {
			s.logger.Warn("duplicate PO check failed",
				zap.String("order_id", o.ID.String()), zap.Error(err))
		} else if check.IsDuplicate {
			resp.Warnings = append(resp.Warnings, check.WarningMessage)
		}
	}

	if !resync {
		oldState, _ := json.Marshal(map[string]string{"status": string(o.Status)})

		if err := o.Approve(actorID); err != nil {
			return nil, err
		}
		if err := s.orderRepo.Save(ctx, o); err != nil {
			return nil, fmt.Errorf("failed to persist approval: %w", err)
		}
		s.drainEvents(o)

		newState, _ := json.Marshal(map[string]string{"status": string(o.Status)})
		s.recordAudit(ctx, "APPROVE_ORDER", o.ID, string(oldState), string(newState), actorID)
	}

	resp.Success = true
	resp.Status = string(o.Status)

	// Queue population failures never undo the approval; the operator can
	// re-run approve or add the items manually since enqueueing is idempotent.
	productionIDs := o.ProductionItemIDs()
	if len(productionIDs) > 0 {
		queueResp, err := s.queue.AddToQueue(ctx, actorID, appqueue.AddToQueueRequest{LineItemIDs: productionIDs})
		if err != nil {
			s.logger.Error("print queue population failed after approval",
				zap.String("order_id", o.ID.String()),
				zap.Bool("retryable", shared.IsRetryable(err)),
				zap.Error(err))
			resp.Warnings = append(resp.Warnings,
				"Order approved, but the print queue could not be populated; re-run approval or add the items manually")
		} else {
			resp.PrintQueueItemsAdded = len(queueResp.Added)
		}
	}

	s.logger.Info("order approved",
		zap.String("order_id", o.ID.String()),
		zap.String("actor", actorID.String()),
		zap.Bool("resync", resync),
		zap.Int("queued_items", resp.PrintQueueItemsAdded))

	return resp, nil
}

// Cancel cancels an order with a reason
func (s *Service) Cancel(ctx context.Context, orderID, actorID uuid.UUID, reason string) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Order not found")
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	oldStatus := string(o.Status)
	if err := o.Cancel(reason); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, fmt.Errorf("failed to persist cancellation: %w", err)
	}
	s.drainEvents(o)

	s.recordAudit(ctx, "CANCEL_ORDER", o.ID,
		fmt.Sprintf(`{"status":%q}`, oldStatus),
		fmt.Sprintf(`{"status":%q,"reason":%q}`, o.Status, reason),
		actorID)

	resp := ToOrderResponse(o)
	return &resp, nil
}

// CheckPONumber runs the duplicate PO lookup on behalf of the office UI
func (s *Service) CheckPONumber(ctx context.Context, req POCheckRequest) (*POCheckResult, error) {
	return s.poValidator.CheckDuplicate(ctx, req)
}

// drainEvents emits the aggregate's pending domain events to the structured
// log and clears them. Events are in-process only; the log stream is their
// sink. Called after a successful save so events never describe unpersisted
// state.
func (s *Service) drainEvents(o *order.Order) {
	for _, ev := range o.GetDomainEvents() {
		s.logger.Info("domain event",
			zap.String("event_type", ev.EventType()),
			zap.String("aggregate_type", ev.AggregateType()),
			zap.String("aggregate_id", ev.AggregateID().String()))
	}
	o.ClearDomainEvents()
}

// recordAudit writes a best-effort audit entry. Failures are logged only.
func (s *Service) recordAudit(ctx context.Context, action string, entityID uuid.UUID, oldValue, newValue string, actorID uuid.UUID) {
	if s.auditRecorder == nil {
		return
	}
	entry := audit.NewEntry(action, "Order", entityID, oldValue, newValue, actorID)
	if err := s.auditRecorder.Record(ctx, entry); err != nil {
		s.logger.Warn("audit record failed", zap.String("action", action), zap.Error(err))
	}
}
