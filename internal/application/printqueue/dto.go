package printqueue

import (
	"time"

	"github.com/google/uuid"

	"github.com/stitchline/backoffice/internal/domain/printqueue"
)

// QueueEntryResponse is the API representation of a queue entry
type QueueEntryResponse struct {
	ID         string     `json:"id"`
	LineItemID string     `json:"line_item_id"`
	AddedAt    time.Time  `json:"added_at"`
	AddedBy    string     `json:"added_by"`
	IsPrinted  bool       `json:"is_printed"`
	PrintedAt  *time.Time `json:"printed_at,omitempty"`
	PrintedBy  string     `json:"printed_by,omitempty"`
}

// RejectReason classifies why a line item was refused by AddToQueue
type RejectReason string

const (
	RejectReasonNotFound      RejectReason = "NOT_FOUND"
	RejectReasonNotProduction RejectReason = "NOT_PRODUCTION_ITEM"
	RejectReasonOrderInactive RejectReason = "ORDER_INACTIVE"
)

// RejectedItem reports one line item that could not be enqueued and why
type RejectedItem struct {
	LineItemID string       `json:"line_item_id"`
	Reason     RejectReason `json:"reason"`
	Message    string       `json:"message"`
}

// AddToQueueRequest asks for line items to be enqueued
type AddToQueueRequest struct {
	LineItemIDs []uuid.UUID `json:"line_item_ids"`
}

// AddToQueueResponse reports the subset actually added plus the rejects
type AddToQueueResponse struct {
	Added         []QueueEntryResponse `json:"added"`
	AlreadyQueued []string             `json:"already_queued,omitempty"`
	Rejected      []RejectedItem       `json:"rejected,omitempty"`
}

// NextBatchResponse is the read-only view of the next printable batch
type NextBatchResponse struct {
	Items                  []QueueEntryResponse `json:"items"`
	BatchSize              int                  `json:"batch_size"`
	SheetCapacity          int                  `json:"sheet_capacity"`
	CanPrintWithoutWarning bool                 `json:"can_print_without_warning"`
	WarningMessage         string               `json:"warning_message,omitempty"`
	Recommendation         string               `json:"recommendation,omitempty"`
	WastedLabels           int                  `json:"wasted_labels"`
	WastePercent           int                  `json:"waste_percent"`
}

// MarkPrintedRequest confirms a batch as printed
type MarkPrintedRequest struct {
	QueueEntryIDs []uuid.UUID `json:"queue_entry_ids"`
}

// RemoveRequest hard-deletes queue entries (admin correction)
type RemoveRequest struct {
	QueueEntryIDs []uuid.UUID `json:"queue_entry_ids"`
}

// QueueStatusResponse is the aggregate queue status read
type QueueStatusResponse struct {
	TotalItems             int64      `json:"total_items"`
	UnprintedItems         int64      `json:"unprinted_items"`
	OldPrintedItems        int64      `json:"old_printed_items"`
	OrphanedItems          int64      `json:"orphaned_items"`
	AverageQueueAgeSeconds float64    `json:"average_queue_age_seconds"`
	OldestUnprintedAddedAt *time.Time `json:"oldest_unprinted_added_at,omitempty"`
}

// CleanupOptions controls a maintenance cleanup run
type CleanupOptions struct {
	PrintedRetentionDays int  `json:"printed_retention_days"`
	RemoveOrphaned       bool `json:"remove_orphaned"`
	DryRun               bool `json:"dry_run"`
}

// CleanupResult reports what a cleanup run removed (or would remove)
type CleanupResult struct {
	RemovedPrinted  int64 `json:"removed_printed"`
	RemovedOrphaned int64 `json:"removed_orphaned"`
	RemovedCount    int64 `json:"removed_count"`
	DryRun          bool  `json:"dry_run"`
	ExecutionTimeMs int64 `json:"execution_time_ms"`
}

// HealthStatus grades the queue health
type HealthStatus string

const (
	HealthStatusHealthy  HealthStatus = "healthy"
	HealthStatusWarning  HealthStatus = "warning"
	HealthStatusCritical HealthStatus = "critical"
)

// HealthReport is the maintenance diagnostics read
type HealthReport struct {
	Status          HealthStatus        `json:"status"`
	Issues          []string            `json:"issues,omitempty"`
	Recommendations []string            `json:"recommendations,omitempty"`
	Stats           QueueStatusResponse `json:"stats"`
}

func toEntryResponse(e *printqueue.QueueEntry) QueueEntryResponse {
	resp := QueueEntryResponse{
		ID:         e.ID.String(),
		LineItemID: e.LineItemID.String(),
		AddedAt:    e.AddedAt,
		AddedBy:    e.AddedBy.String(),
		IsPrinted:  e.IsPrinted,
		PrintedAt:  e.PrintedAt,
	}
	if e.PrintedBy != nil {
		resp.PrintedBy = e.PrintedBy.String()
	}
	return resp
}

func toStatusResponse(stats *printqueue.QueueStats) QueueStatusResponse {
	return QueueStatusResponse{
		TotalItems:             stats.TotalItems,
		UnprintedItems:         stats.UnprintedItems,
		OldPrintedItems:        stats.OldPrintedItems,
		OrphanedItems:          stats.OrphanedItems,
		AverageQueueAgeSeconds: stats.AverageQueueAgeSeconds,
		OldestUnprintedAddedAt: stats.OldestUnprintedAddedAt,
	}
}
