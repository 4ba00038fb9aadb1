// Package audit defines the audit trail collaborator consumed by the
// application services. Recording is fire-and-forget: failures are logged by
// the caller, never propagated.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Entry is one audit trail record capturing a state change
type Entry struct {
	ID         uuid.UUID
	Action     string
	EntityName string
	EntityID   uuid.UUID
	OldValue   string // JSON snapshot before the change
	NewValue   string // JSON snapshot after the change
	ActorID    uuid.UUID
	CreatedAt  time.Time
}

// NewEntry creates a new audit entry
func NewEntry(action, entityName string, entityID uuid.UUID, oldValue, newValue string, actorID uuid.UUID) Entry {
	return Entry{
		ID:         uuid.New(),
		Action:     action,
		EntityName: entityName,
		EntityID:   entityID,
		OldValue:   oldValue,
		NewValue:   newValue,
		ActorID:    actorID,
		CreatedAt:  time.Now(),
	}
}

// Recorder persists audit entries
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}
