package printqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stitchline/backoffice/internal/domain/audit"
	"github.com/stitchline/backoffice/internal/domain/order"
	"github.com/stitchline/backoffice/internal/domain/printqueue"
	"github.com/stitchline/backoffice/internal/domain/shared"
)

// Service handles print queue business operations
type Service struct {
	queueRepo        printqueue.Repository
	orderRepo        order.Repository
	auditRecorder    audit.Recorder
	printedRetention time.Duration
	logger           *zap.Logger
}

// NewService creates a new print queue Service. printedRetention is how long
// printed entries stay relevant before status reads count them as old.
func NewService(
	queueRepo printqueue.Repository,
	orderRepo order.Repository,
	auditRecorder audit.Recorder,
	printedRetention time.Duration,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if printedRetention <= 0 {
		printedRetention = 7 * 24 * time.Hour
	}
	return &Service{
		queueRepo:        queueRepo,
		orderRepo:        orderRepo,
		auditRecorder:    auditRecorder,
		printedRetention: printedRetention,
		logger:           logger,
	}
}

// AddToQueue enqueues production line items for label printing. The call is
// idempotent: items already waiting are skipped, printed items are re-queued
// at the back of the FIFO order. Invalid IDs are reported back with a reason
// instead of being silently dropped.
func (s *Service) AddToQueue(ctx context.Context, actorID uuid.UUID, req AddToQueueRequest) (*AddToQueueResponse, error) {
	if len(req.LineItemIDs) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Line item ID list cannot be empty").
			WithSuggestions("Select at least one line item to queue")
	}
	if actorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Actor ID cannot be empty")
	}

	ids := dedupe(req.LineItemIDs)

	details, err := s.orderRepo.FindLineItems(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load line items: %w", err)
	}

	byID := make(map[uuid.UUID]order.LineItemDetail, len(details))
	for _, d := range details {
		byID[d.LineItem.ID] = d
	}

	resp := &AddToQueueResponse{}
	eligible := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		detail, ok := byID[id]
		if !ok {
			resp.Rejected = append(resp.Rejected, RejectedItem{
				LineItemID: id.String(),
				Reason:     RejectReasonNotFound,
				Message:    "Line item does not exist",
			})
			continue
		}
		if !detail.IsProduction {
			resp.Rejected = append(resp.Rejected, RejectedItem{
				LineItemID: id.String(),
				Reason:     RejectReasonNotProduction,
				Message:    "Line item is not a production item",
			})
			continue
		}
		if detail.OrderStatus == order.OrderStatusCancelled || detail.OrderStatus == order.OrderStatusArchived {
			resp.Rejected = append(resp.Rejected, RejectedItem{
				LineItemID: id.String(),
				Reason:     RejectReasonOrderInactive,
				Message:    fmt.Sprintf("Order %s is %s", detail.OrderNumber, detail.OrderStatus),
			})
			continue
		}
		eligible = append(eligible, id)
	}

	if len(eligible) == 0 {
		return resp, nil
	}

	results, err := s.queueRepo.Enqueue(ctx, eligible, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue line items: %w", err)
	}

	events := make([]shared.DomainEvent, 0, len(results))
	for _, r := range results {
		switch r.Outcome {
		case printqueue.EnqueueSkipped:
			resp.AlreadyQueued = append(resp.AlreadyQueued, r.LineItemID.String())
		default:
			resp.Added = append(resp.Added, toEntryResponse(r.Entry))
			events = append(events, printqueue.NewQueueEntryAddedEvent(r.Entry, r.Outcome == printqueue.EnqueueReset))
		}
	}
	s.publishEvents(events...)

	s.logger.Info("line items enqueued for printing",
		zap.Int("added", len(resp.Added)),
		zap.Int("already_queued", len(resp.AlreadyQueued)),
		zap.Int("rejected", len(resp.Rejected)),
		zap.String("actor", actorID.String()))

	return resp, nil
}

// GetNextBatch returns the FIFO prefix of unprinted entries up to the sheet
// capacity, classified by the batch policy. Read-only; does not mutate state.
func (s *Service) GetNextBatch(ctx context.Context) (*NextBatchResponse, error) {
	entries, err := s.queueRepo.FindUnprinted(ctx, printqueue.SheetCapacity)
	if err != nil {
		return nil, fmt.Errorf("failed to read queue: %w", err)
	}

	classification := printqueue.ClassifyBatch(len(entries))
	if classification.CapacityExceeded {
		s.logger.Error("queue returned more entries than sheet capacity",
			zap.Int("returned", len(entries)),
			zap.Int("capacity", printqueue.SheetCapacity))
		entries = entries[:printqueue.SheetCapacity]
	}

	items := make([]QueueEntryResponse, len(entries))
	for i := range entries {
		items[i] = toEntryResponse(&entries[i])
	}

	return &NextBatchResponse{
		Items:                  items,
		BatchSize:              len(items),
		SheetCapacity:          printqueue.SheetCapacity,
		CanPrintWithoutWarning: classification.CanPrintWithoutWarning,
		WarningMessage:         classification.WarningMessage,
		Recommendation:         classification.Recommendation,
		WastedLabels:           classification.WastedLabels,
		WastePercent:           classification.WastePercent,
	}, nil
}

// CanPrintBatch reports whether the current next batch fills a whole sheet
func (s *Service) CanPrintBatch(ctx context.Context) (bool, error) {
	batch, err := s.GetNextBatch(ctx)
	if err != nil {
		return false, err
	}
	return batch.CanPrintWithoutWarning, nil
}

// MarkBatchPrinted atomically marks the whole batch as printed. Exactly one
// of two concurrent calls over overlapping entries succeeds; the loser gets
// NOT_FOUND because its entries are no longer unprinted. This is the guard
// against printing the same physical sheet twice.
func (s *Service) MarkBatchPrinted(ctx context.Context, actorID uuid.UUID, req MarkPrintedRequest) error {
	if len(req.QueueEntryIDs) == 0 {
		return shared.NewDomainError("INVALID_INPUT", "Queue entry ID list cannot be empty").
			WithSuggestions("Fetch the next batch before confirming a print run")
	}
	if actorID == uuid.Nil {
		return shared.NewDomainError("INVALID_INPUT", "Actor ID cannot be empty")
	}

	ids := dedupe(req.QueueEntryIDs)

	if err := s.queueRepo.MarkPrinted(ctx, ids, actorID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("NOT_FOUND",
				"One or more entries are no longer unprinted; the batch may have been printed by another operator").
				WithSuggestions(
					"Refresh the queue and fetch the next batch again",
					"Verify the items still exist")
		}
		return fmt.Errorf("failed to mark batch printed: %w", err)
	}

	s.recordAudit(ctx, "PRINT_BATCH", ids, actorID)
	s.publishEvents(printqueue.NewQueueBatchPrintedEvent(ids, actorID))

	s.logger.Info("print batch confirmed",
		zap.Int("batch_size", len(ids)),
		zap.String("actor", actorID.String()))

	return nil
}

// RemoveFromQueue hard-deletes queue entries. Manual admin correction only.
func (s *Service) RemoveFromQueue(ctx context.Context, actorID uuid.UUID, req RemoveRequest) error {
	if len(req.QueueEntryIDs) == 0 {
		return shared.NewDomainError("INVALID_INPUT", "Queue entry ID list cannot be empty")
	}

	ids := dedupe(req.QueueEntryIDs)

	if err := s.queueRepo.Remove(ctx, ids); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("NOT_FOUND", "One or more queue entries do not exist").
				WithSuggestions("Refresh the queue view")
		}
		return fmt.Errorf("failed to remove queue entries: %w", err)
	}

	s.recordAudit(ctx, "REMOVE_FROM_QUEUE", ids, actorID)

	return nil
}

// GetQueueStatus returns the aggregate queue statistics
func (s *Service) GetQueueStatus(ctx context.Context) (*QueueStatusResponse, error) {
	cutoff := time.Now().Add(-s.printedRetention)
	stats, err := s.queueRepo.Stats(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to compute queue stats: %w", err)
	}
	resp := toStatusResponse(stats)
	return &resp, nil
}

// publishEvents emits queue domain events to the structured log. Events are
// in-process only; the log stream is their sink.
func (s *Service) publishEvents(events ...shared.DomainEvent) {
	for _, ev := range events {
		s.logger.Info("domain event",
			zap.String("event_type", ev.EventType()),
			zap.String("aggregate_type", ev.AggregateType()),
			zap.String("aggregate_id", ev.AggregateID().String()))
	}
}

// recordAudit writes a best-effort audit entry. Failures are logged only.
func (s *Service) recordAudit(ctx context.Context, action string, entryIDs []uuid.UUID, actorID uuid.UUID) {
	if s.auditRecorder == nil {
		return
	}
	payload, _ := json.Marshal(map[string]any{"queue_entry_ids": entryIDs})
	entry := audit.NewEntry(action, "QueueEntry", firstOrNil(entryIDs), "", string(payload), actorID)
	if err := s.auditRecorder.Record(ctx, entry); err != nil {
		s.logger.Warn("audit record failed", zap.String("action", action), zap.Error(err))
	}
}

func firstOrNil(ids []uuid.UUID) uuid.UUID {
	if len(ids) == 0 {
		return uuid.Nil
	}
	return ids[0]
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
