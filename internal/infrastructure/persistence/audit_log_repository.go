package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stitchline/backoffice/internal/domain/audit"
	"github.com/stitchline/backoffice/internal/infrastructure/persistence/models"
)

// GormAuditLogRepository persists audit entries using GORM
type GormAuditLogRepository struct {
	db *gorm.DB
}

// NewGormAuditLogRepository creates a new GormAuditLogRepository
func NewGormAuditLogRepository(db *gorm.DB) *GormAuditLogRepository {
	return &GormAuditLogRepository{db: db}
}

// Record persists an audit entry
func (r *GormAuditLogRepository) Record(ctx context.Context, entry audit.Entry) error {
	return r.db.WithContext(ctx).Create(models.AuditLogModelFromDomain(entry)).Error
}

// FindByEntity returns the audit trail of one entity, newest first
func (r *GormAuditLogRepository) FindByEntity(ctx context.Context, entityName string, entityID uuid.UUID, limit int) ([]audit.Entry, error) {
	var logModels []models.AuditLogModel
	query := r.db.WithContext(ctx).
		Where("entity_name = ? AND entity_id = ?", entityName, entityID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&logModels).Error; err != nil {
		return nil, err
	}

	entries := make([]audit.Entry, len(logModels))
	for i, model := range logModels {
		entries[i] = model.ToDomain()
	}
	return entries, nil
}

// Ensure GormAuditLogRepository implements audit.Recorder
var _ audit.Recorder = (*GormAuditLogRepository)(nil)
