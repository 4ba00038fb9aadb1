package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/stitchline/backoffice/internal/domain/printqueue"
	"github.com/stitchline/backoffice/internal/domain/shared"
)

// QueueEntryModel is the GORM model for the print_queue_entries table.
// A partial unique index on line_item_id WHERE NOT is_printed backs the
// one-unprinted-entry-per-line-item invariant at the database level.
type QueueEntryModel struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key"`
	LineItemID uuid.UUID  `gorm:"column:line_item_id;type:uuid;not null;index"`
	AddedAt    time.Time  `gorm:"column:added_at;not null;index"`
	AddedBy    uuid.UUID  `gorm:"column:added_by;type:uuid;not null"`
	IsPrinted  bool       `gorm:"column:is_printed;not null;default:false;index"`
	PrintedAt  *time.Time `gorm:"column:printed_at"`
	PrintedBy  *uuid.UUID `gorm:"column:printed_by;type:uuid"`
	CreatedAt  time.Time  `gorm:"not null"`
	UpdatedAt  time.Time  `gorm:"not null"`
}

// TableName returns the table name for QueueEntryModel
func (QueueEntryModel) TableName() string {
	return "print_queue_entries"
}

// ToDomain converts QueueEntryModel to a domain QueueEntry
func (m *QueueEntryModel) ToDomain() *printqueue.QueueEntry {
	return &printqueue.QueueEntry{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		LineItemID: m.LineItemID,
		AddedAt:    m.AddedAt,
		AddedBy:    m.AddedBy,
		IsPrinted:  m.IsPrinted,
		PrintedAt:  m.PrintedAt,
		PrintedBy:  m.PrintedBy,
	}
}

// QueueEntryModelFromDomain creates a QueueEntryModel from a domain QueueEntry
func QueueEntryModelFromDomain(e *printqueue.QueueEntry) *QueueEntryModel {
	return &QueueEntryModel{
		ID:         e.ID,
		LineItemID: e.LineItemID,
		AddedAt:    e.AddedAt,
		AddedBy:    e.AddedBy,
		IsPrinted:  e.IsPrinted,
		PrintedAt:  e.PrintedAt,
		PrintedBy:  e.PrintedBy,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}
