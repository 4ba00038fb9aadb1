package printqueue

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EnqueueOutcome describes what Enqueue did for one line item
type EnqueueOutcome string

const (
	// EnqueueCreated means a new unprinted entry was inserted
	EnqueueCreated EnqueueOutcome = "created"
	// EnqueueReset means an existing printed entry was reset to unprinted
	EnqueueReset EnqueueOutcome = "reset"
	// EnqueueSkipped means an unprinted entry already existed (idempotent no-op)
	EnqueueSkipped EnqueueOutcome = "skipped"
)

// EnqueueResult pairs a line item with its enqueue outcome
type EnqueueResult struct {
	LineItemID uuid.UUID
	Outcome    EnqueueOutcome
	Entry      *QueueEntry
}

// QueueStats is the aggregate view of the queue used by status and health reads
type QueueStats struct {
	TotalItems             int64
	UnprintedItems         int64
	OldPrintedItems        int64
	OrphanedItems          int64
	AverageQueueAgeSeconds float64
	OldestUnprintedAddedAt *time.Time
}

// Repository defines the interface for queue entry persistence.
//
// Enqueue and MarkPrinted are the two race-sensitive operations: both must
// run as a single read-decide-write transaction with row-level locking so
// that concurrent calls over overlapping line items cannot double-apply.
type Repository interface {
	// FindByID finds a queue entry by ID
	FindByID(ctx context.Context, id uuid.UUID) (*QueueEntry, error)

	// FindUnprinted returns the FIFO prefix of unprinted entries, oldest
	// addedAt first, limited to limit
	FindUnprinted(ctx context.Context, limit int) ([]QueueEntry, error)

	// FindUnprintedByLineItem returns the unprinted entry for a line item,
	// or shared.ErrNotFound
	FindUnprintedByLineItem(ctx context.Context, lineItemID uuid.UUID) (*QueueEntry, error)

	// Enqueue adds the line items to the queue in one transaction. Per line
	// item: an existing unprinted entry is skipped, an existing printed entry
	// is reset with a fresh addedAt, otherwise a new entry is inserted.
	Enqueue(ctx context.Context, lineItemIDs []uuid.UUID, addedBy uuid.UUID) ([]EnqueueResult, error)

	// MarkPrinted atomically transitions all listed entries from unprinted to
	// printed. If any entry is missing or no longer unprinted (a concurrent
	// caller won the race) the whole batch fails with shared.ErrNotFound and
	// nothing is applied.
	MarkPrinted(ctx context.Context, entryIDs []uuid.UUID, printedBy uuid.UUID) error

	// Remove hard-deletes the given entries. Admin correction only, not part
	// of the print-confirmation path.
	Remove(ctx context.Context, entryIDs []uuid.UUID) error

	// Stats computes the aggregate queue statistics. Printed entries older
	// than oldPrintedCutoff count as "old printed"; entries whose line item
	// no longer exists count as orphaned.
	Stats(ctx context.Context, oldPrintedCutoff time.Time) (*QueueStats, error)

	// DeletePrintedBefore removes printed entries older than cutoff and
	// returns how many were removed
	DeletePrintedBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// CountPrintedBefore counts printed entries older than cutoff (dry run)
	CountPrintedBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteOrphaned removes entries whose line item no longer exists and
	// returns how many were removed
	DeleteOrphaned(ctx context.Context) (int64, error)

	// CountOrphaned counts entries whose line item no longer exists (dry run)
	CountOrphaned(ctx context.Context) (int64, error)
}
