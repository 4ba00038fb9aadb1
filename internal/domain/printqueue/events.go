package printqueue

import (
	"github.com/google/uuid"

	"github.com/stitchline/backoffice/internal/domain/shared"
)

// AggregateTypeQueueEntry is the aggregate type for queue entry events
const AggregateTypeQueueEntry = "QueueEntry"

// Event type constants for QueueEntry
const (
	EventTypeQueueEntryAdded   = "QueueEntryAdded"
	EventTypeQueueBatchPrinted = "QueueBatchPrinted"
)

// QueueEntryAddedEvent is published when a line item enters the queue
type QueueEntryAddedEvent struct {
	shared.BaseDomainEvent
	EntryID    uuid.UUID `json:"entry_id"`
	LineItemID uuid.UUID `json:"line_item_id"`
	AddedBy    uuid.UUID `json:"added_by"`
	WasReset   bool      `json:"was_reset"`
}

// NewQueueEntryAddedEvent creates a new QueueEntryAddedEvent
func NewQueueEntryAddedEvent(entry *QueueEntry, wasReset bool) *QueueEntryAddedEvent {
	return &QueueEntryAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQueueEntryAdded, AggregateTypeQueueEntry, entry.ID),
		EntryID:         entry.ID,
		LineItemID:      entry.LineItemID,
		AddedBy:         entry.AddedBy,
		WasReset:        wasReset,
	}
}

// QueueBatchPrintedEvent is published when a batch is confirmed as printed
type QueueBatchPrintedEvent struct {
	shared.BaseDomainEvent
	EntryIDs  []uuid.UUID `json:"entry_ids"`
	PrintedBy uuid.UUID   `json:"printed_by"`
	BatchSize int         `json:"batch_size"`
}

// NewQueueBatchPrintedEvent creates a new QueueBatchPrintedEvent
func NewQueueBatchPrintedEvent(entryIDs []uuid.UUID, printedBy uuid.UUID) *QueueBatchPrintedEvent {
	var aggID uuid.UUID
	if len(entryIDs) > 0 {
		aggID = entryIDs[0]
	}
	return &QueueBatchPrintedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQueueBatchPrinted, AggregateTypeQueueEntry, aggID),
		EntryIDs:        entryIDs,
		PrintedBy:       printedBy,
		BatchSize:       len(entryIDs),
	}
}
