package printqueue

import (
	"time"

	"github.com/google/uuid"

	"github.com/stitchline/backoffice/internal/domain/shared"
)

// QueueEntry represents one production line item awaiting label printing.
// It references the line item by ID only; the referenced item may disappear,
// which maintenance detects as an orphan.
//
// Invariant: at most one unprinted entry exists per line item at a time.
type QueueEntry struct {
	shared.BaseEntity
	LineItemID uuid.UUID
	AddedAt    time.Time
	AddedBy    uuid.UUID
	IsPrinted  bool
	PrintedAt  *time.Time
	PrintedBy  *uuid.UUID
}

// NewQueueEntry creates a new unprinted queue entry
func NewQueueEntry(lineItemID, addedBy uuid.UUID) (*QueueEntry, error) {
	if lineItemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LINE_ITEM", "Line item ID cannot be empty")
	}
	if addedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Actor ID cannot be empty")
	}

	entry := &QueueEntry{
		BaseEntity: shared.NewBaseEntity(),
		LineItemID: lineItemID,
		AddedBy:    addedBy,
	}
	entry.AddedAt = entry.CreatedAt

	return entry, nil
}

// MarkPrinted transitions the entry from unprinted to printed.
// Printed entries are retained for audit until maintenance cleanup.
func (e *QueueEntry) MarkPrinted(printedBy uuid.UUID) error {
	if e.IsPrinted {
		return shared.NewDomainError("INVALID_STATE", "Queue entry is already printed")
	}
	if printedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_ACTOR", "Actor ID cannot be empty")
	}

	now := time.Now()
	e.IsPrinted = true
	e.PrintedAt = &now
	e.PrintedBy = &printedBy
	e.UpdatedAt = now

	return nil
}

// Reset returns a printed entry to the unprinted state with a fresh addedAt,
// moving it to the back of the FIFO order. Used when a line item is re-queued
// after its label was already printed once.
func (e *QueueEntry) Reset(addedBy uuid.UUID) error {
	if !e.IsPrinted {
		return shared.NewDomainError("INVALID_STATE", "Only printed entries can be reset")
	}
	if addedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_ACTOR", "Actor ID cannot be empty")
	}

	now := time.Now()
	e.IsPrinted = false
	e.PrintedAt = nil
	e.PrintedBy = nil
	e.AddedAt = now
	e.AddedBy = addedBy
	e.UpdatedAt = now

	return nil
}

// Age returns how long the entry has been waiting since it was added
func (e *QueueEntry) Age(now time.Time) time.Duration {
	return now.Sub(e.AddedAt)
}
