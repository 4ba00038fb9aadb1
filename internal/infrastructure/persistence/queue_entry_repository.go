package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stitchline/backoffice/internal/domain/printqueue"
	"github.com/stitchline/backoffice/internal/domain/shared"
	"github.com/stitchline/backoffice/internal/infrastructure/persistence/models"
)

// GormQueueEntryRepository implements printqueue.Repository using GORM.
//
// Enqueue and MarkPrinted run as read-decide-write transactions with
// SELECT ... FOR UPDATE row locks so that concurrent calls over overlapping
// line items serialize instead of double-applying.
type GormQueueEntryRepository struct {
	db *gorm.DB
}

// NewGormQueueEntryRepository creates a new GormQueueEntryRepository
func NewGormQueueEntryRepository(db *gorm.DB) *GormQueueEntryRepository {
	return &GormQueueEntryRepository{db: db}
}

// FindByID finds a queue entry by ID
func (r *GormQueueEntryRepository) FindByID(ctx context.Context, id uuid.UUID) (*printqueue.QueueEntry, error) {
	var model models.QueueEntryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindUnprinted returns the FIFO prefix of unprinted entries, oldest first
func (r *GormQueueEntryRepository) FindUnprinted(ctx context.Context, limit int) ([]printqueue.QueueEntry, error) {
	var entryModels []models.QueueEntryModel
	query := r.db.WithContext(ctx).
		Where("is_printed = ?", false).
		Order("added_at ASC, id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&entryModels).Error; err != nil {
		return nil, err
	}

	entries := make([]printqueue.QueueEntry, len(entryModels))
	for i, model := range entryModels {
		entries[i] = *model.ToDomain()
	}
	return entries, nil
}

// FindUnprintedByLineItem returns the unprinted entry for a line item
func (r *GormQueueEntryRepository) FindUnprintedByLineItem(ctx context.Context, lineItemID uuid.UUID) (*printqueue.QueueEntry, error) {
	var model models.QueueEntryModel
	if err := r.db.WithContext(ctx).
		Where("line_item_id = ? AND is_printed = ?", lineItemID, false).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Enqueue adds the line items to the queue in one transaction. Per line item:
// an existing unprinted entry is skipped, an existing printed entry is reset
// with a fresh addedAt, otherwise a new entry is inserted.
//
// Two concurrent calls for a line item with no existing row both pass the
// locked SELECT; the loser's INSERT then trips the partial unique index. That
// race is resolved by rerunning the transaction once, which now sees the
// winner's row and reports the item as skipped.
func (r *GormQueueEntryRepository) Enqueue(ctx context.Context, lineItemIDs []uuid.UUID, addedBy uuid.UUID) ([]printqueue.EnqueueResult, error) {
	if len(lineItemIDs) == 0 {
		return nil, nil
	}

	results, err := r.enqueueTx(ctx, lineItemIDs, addedBy)
	if isUniqueViolation(err) {
		results, err = r.enqueueTx(ctx, lineItemIDs, addedBy)
	}
	return results, err
}

func (r *GormQueueEntryRepository) enqueueTx(ctx context.Context, lineItemIDs []uuid.UUID, addedBy uuid.UUID) ([]printqueue.EnqueueResult, error) {
	results := make([]printqueue.EnqueueResult, 0, len(lineItemIDs))

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock all existing entries for the batch up front. The most recent
		// entry per line item decides the outcome; older printed rows are
		// history awaiting retention cleanup.
		var existing []models.QueueEntryModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("line_item_id IN ?", lineItemIDs).
			Order("line_item_id, added_at DESC").
			Find(&existing).Error; err != nil {
			return err
		}

		latest := make(map[uuid.UUID]*models.QueueEntryModel, len(existing))
		unprinted := make(map[uuid.UUID]bool, len(existing))
		for i := range existing {
			id := existing[i].LineItemID
			if !existing[i].IsPrinted {
				unprinted[id] = true
				latest[id] = &existing[i]
			} else if latest[id] == nil {
				latest[id] = &existing[i]
			}
		}

		for _, lineItemID := range lineItemIDs {
			if unprinted[lineItemID] {
				results = append(results, printqueue.EnqueueResult{
					LineItemID: lineItemID,
					Outcome:    printqueue.EnqueueSkipped,
					Entry:      latest[lineItemID].ToDomain(),
				})
				continue
			}

			if model := latest[lineItemID]; model != nil {
				entry := model.ToDomain()
				if err := entry.Reset(addedBy); err != nil {
					return err
				}
				reset := models.QueueEntryModelFromDomain(entry)
				if err := tx.Save(reset).Error; err != nil {
					return err
				}
				results = append(results, printqueue.EnqueueResult{
					LineItemID: lineItemID,
					Outcome:    printqueue.EnqueueReset,
					Entry:      entry,
				})
				continue
			}

			entry, err := printqueue.NewQueueEntry(lineItemID, addedBy)
			if err != nil {
				return err
			}
			if err := tx.Create(models.QueueEntryModelFromDomain(entry)).Error; err != nil {
				return err
			}
			results = append(results, printqueue.EnqueueResult{
				LineItemID: lineItemID,
				Outcome:    printqueue.EnqueueCreated,
				Entry:      entry,
			})
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// isUniqueViolation reports whether err is the partial unique index rejecting
// a second unprinted entry for the same line item
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" // unique_violation
}

// MarkPrinted atomically transitions all listed entries from unprinted to
// printed. If any entry is missing or no longer unprinted the whole batch
// fails with shared.ErrNotFound and nothing is applied.
func (r *GormQueueEntryRepository) MarkPrinted(ctx context.Context, entryIDs []uuid.UUID, printedBy uuid.UUID) error {
	if len(entryIDs) == 0 {
		return nil
	}

	unique := make(map[uuid.UUID]bool, len(entryIDs))
	for _, id := range entryIDs {
		unique[id] = true
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked []models.QueueEntryModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id IN ? AND is_printed = ?", entryIDs, false).
			Find(&locked).Error; err != nil {
			return err
		}

		// A missing row means the entry was removed or a concurrent caller
		// already printed it. All or nothing.
		if len(locked) != len(unique) {
			return shared.ErrNotFound
		}

		now := time.Now()
		return tx.Model(&models.QueueEntryModel{}).
			Where("id IN ? AND is_printed = ?", entryIDs, false).
			Updates(map[string]interface{}{
				"is_printed": true,
				"printed_at": now,
				"printed_by": printedBy,
				"updated_at": now,
			}).Error
	})
}

// Remove hard-deletes the given entries
func (r *GormQueueEntryRepository) Remove(ctx context.Context, entryIDs []uuid.UUID) error {
	if len(entryIDs) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Delete(&models.QueueEntryModel{}, "id IN ?", entryIDs)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Stats computes the aggregate queue statistics
func (r *GormQueueEntryRepository) Stats(ctx context.Context, oldPrintedCutoff time.Time) (*printqueue.QueueStats, error) {
	stats := &printqueue.QueueStats{}
	db := r.db.WithContext(ctx)

	if err := db.Model(&models.QueueEntryModel{}).Count(&stats.TotalItems).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.QueueEntryModel{}).
		Where("is_printed = ?", false).
		Count(&stats.UnprintedItems).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.QueueEntryModel{}).
		Where("is_printed = ? AND printed_at < ?", true, oldPrintedCutoff).
		Count(&stats.OldPrintedItems).Error; err != nil {
		return nil, err
	}

	var err error
	stats.OrphanedItems, err = r.CountOrphaned(ctx)
	if err != nil {
		return nil, err
	}

	var agg struct {
		AvgAge   *float64
		MinAdded *time.Time
	}
	if err := db.Model(&models.QueueEntryModel{}).
		Select("AVG(EXTRACT(EPOCH FROM (NOW() - added_at))) AS avg_age, MIN(added_at) AS min_added").
		Where("is_printed = ?", false).
		Scan(&agg).Error; err != nil {
		return nil, err
	}
	if agg.AvgAge != nil {
		stats.AverageQueueAgeSeconds = *agg.AvgAge
	}
	stats.OldestUnprintedAddedAt = agg.MinAdded

	return stats, nil
}

// DeletePrintedBefore removes printed entries older than cutoff
func (r *GormQueueEntryRepository) DeletePrintedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("is_printed = ? AND printed_at < ?", true, cutoff).
		Delete(&models.QueueEntryModel{})
	return result.RowsAffected, result.Error
}

// CountPrintedBefore counts printed entries older than cutoff
func (r *GormQueueEntryRepository) CountPrintedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.QueueEntryModel{}).
		Where("is_printed = ? AND printed_at < ?", true, cutoff).
		Count(&count).Error
	return count, err
}

// DeleteOrphaned removes entries whose line item no longer exists
func (r *GormQueueEntryRepository) DeleteOrphaned(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("NOT EXISTS (SELECT 1 FROM order_line_items WHERE order_line_items.id = print_queue_entries.line_item_id)").
		Delete(&models.QueueEntryModel{})
	return result.RowsAffected, result.Error
}

// CountOrphaned counts entries whose line item no longer exists
func (r *GormQueueEntryRepository) CountOrphaned(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.QueueEntryModel{}).
		Where("NOT EXISTS (SELECT 1 FROM order_line_items WHERE order_line_items.id = print_queue_entries.line_item_id)").
		Count(&count).Error
	return count, err
}

// Ensure GormQueueEntryRepository implements printqueue.Repository
var _ printqueue.Repository = (*GormQueueEntryRepository)(nil)
