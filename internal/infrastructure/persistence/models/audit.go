package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/stitchline/backoffice/internal/domain/audit"
)

// AuditLogModel is the GORM model for the audit_logs table
type AuditLogModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	Action     string    `gorm:"type:varchar(100);not null;index"`
	EntityName string    `gorm:"column:entity_name;type:varchar(100);not null"`
	EntityID   uuid.UUID `gorm:"column:entity_id;type:uuid;not null;index"`
	OldValue   string    `gorm:"column:old_value;type:jsonb"`
	NewValue   string    `gorm:"column:new_value;type:jsonb"`
	ActorID    uuid.UUID `gorm:"column:actor_id;type:uuid;not null;index"`
	CreatedAt  time.Time `gorm:"not null;index"`
}

// TableName returns the table name for AuditLogModel
func (AuditLogModel) TableName() string {
	return "audit_logs"
}

// ToDomain converts AuditLogModel to a domain audit Entry
func (m *AuditLogModel) ToDomain() audit.Entry {
	return audit.Entry{
		ID:         m.ID,
		Action:     m.Action,
		EntityName: m.EntityName,
		EntityID:   m.EntityID,
		OldValue:   m.OldValue,
		NewValue:   m.NewValue,
		ActorID:    m.ActorID,
		CreatedAt:  m.CreatedAt,
	}
}

// AuditLogModelFromDomain creates an AuditLogModel from a domain audit Entry
func AuditLogModelFromDomain(e audit.Entry) *AuditLogModel {
	return &AuditLogModel{
		ID:         e.ID,
		Action:     e.Action,
		EntityName: e.EntityName,
		EntityID:   e.EntityID,
		OldValue:   e.OldValue,
		NewValue:   e.NewValue,
		ActorID:    e.ActorID,
		CreatedAt:  e.CreatedAt,
	}
}
