package printqueue

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/stitchline/backoffice/internal/domain/printqueue"
	"github.com/stitchline/backoffice/internal/domain/shared"
)

// MaintenanceConfig holds the health and cleanup thresholds. These are
// configuration, not policy baked into the queue itself.
type MaintenanceConfig struct {
	PrintedRetentionDays int           // default retention for printed entries
	MaxQueueSize         int64         // unprinted backlog size that flags critical
	WarnQueueSize        int64         // unprinted backlog size that flags warning
	MaxUnprintedAge      time.Duration // oldest-entry wait time that flags warning
}

// DefaultMaintenanceConfig returns the thresholds used when none are configured
func DefaultMaintenanceConfig() MaintenanceConfig {
	return MaintenanceConfig{
		PrintedRetentionDays: 7,
		MaxQueueSize:         10000,
		WarnQueueSize:        1000,
		MaxUnprintedAge:      72 * time.Hour,
	}
}

// MaintenanceService performs periodic and administrative queue upkeep:
// retention cleanup of printed entries, orphan removal, and diagnostics.
type MaintenanceService struct {
	queueRepo printqueue.Repository
	cfg       MaintenanceConfig
	logger    *zap.Logger
}

// NewMaintenanceService creates a new MaintenanceService
func NewMaintenanceService(queueRepo printqueue.Repository, cfg MaintenanceConfig, logger *zap.Logger) *MaintenanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PrintedRetentionDays <= 0 {
		cfg.PrintedRetentionDays = DefaultMaintenanceConfig().PrintedRetentionDays
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = DefaultMaintenanceConfig().MaxQueueSize
	}
	if cfg.WarnQueueSize <= 0 {
		cfg.WarnQueueSize = DefaultMaintenanceConfig().WarnQueueSize
	}
	if cfg.MaxUnprintedAge <= 0 {
		cfg.MaxUnprintedAge = DefaultMaintenanceConfig().MaxUnprintedAge
	}
	return &MaintenanceService{
		queueRepo: queueRepo,
		cfg:       cfg,
		logger:    logger,
	}
}

// PerformCleanup removes printed entries past retention and, when requested,
// orphaned entries. DryRun counts without deleting.
func (s *MaintenanceService) PerformCleanup(ctx context.Context, opts CleanupOptions) (*CleanupResult, error) {
	start := time.Now()

	retentionDays := opts.PrintedRetentionDays
	if retentionDays == 0 {
		retentionDays = s.cfg.PrintedRetentionDays
	}
	if retentionDays < 1 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Retention must be at least one day")
	}
	cutoff := start.AddDate(0, 0, -retentionDays)

	result := &CleanupResult{DryRun: opts.DryRun}

	var err error
	if opts.DryRun {
		result.RemovedPrinted, err = s.queueRepo.CountPrintedBefore(ctx, cutoff)
	} else {
		result.RemovedPrinted, err = s.queueRepo.DeletePrintedBefore(ctx, cutoff)
	}
	if err != nil {
		return nil, fmt.Errorf("printed-entry cleanup failed: %w", err)
	}

	if opts.RemoveOrphaned {
		if opts.DryRun {
			result.RemovedOrphaned, err = s.queueRepo.CountOrphaned(ctx)
		} else {
			result.RemovedOrphaned, err = s.queueRepo.DeleteOrphaned(ctx)
		}
		if err != nil {
			return nil, fmt.Errorf("orphan cleanup failed: %w", err)
		}
	}

	result.RemovedCount = result.RemovedPrinted + result.RemovedOrphaned
	result.ExecutionTimeMs = time.Since(start).Milliseconds()

	s.logger.Info("queue cleanup finished",
		zap.Int64("removed_printed", result.RemovedPrinted),
		zap.Int64("removed_orphaned", result.RemovedOrphaned),
		zap.Bool("dry_run", opts.DryRun),
		zap.Int64("execution_time_ms", result.ExecutionTimeMs))

	return result, nil
}

// HealthCheck grades the queue against the configured thresholds
func (s *MaintenanceService) HealthCheck(ctx context.Context) (*HealthReport, error) {
	cutoff := time.Now().AddDate(0, 0, -s.cfg.PrintedRetentionDays)
	stats, err := s.queueRepo.Stats(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to compute queue stats: %w", err)
	}

	report := &HealthReport{
		Status: HealthStatusHealthy,
		Stats:  toStatusResponse(stats),
	}

	if stats.OrphanedItems > 0 {
		report.warn(
			fmt.Sprintf("%d orphaned entries reference deleted line items", stats.OrphanedItems),
			"Run cleanup with remove_orphaned enabled")
	}

	if stats.OldPrintedItems > 0 {
		report.warn(
			fmt.Sprintf("%d printed entries are past the %d-day retention", stats.OldPrintedItems, s.cfg.PrintedRetentionDays),
			"Run retention cleanup to keep status reads fast")
	}

	if stats.OldestUnprintedAddedAt != nil {
		age := time.Since(*stats.OldestUnprintedAddedAt)
		if age > s.cfg.MaxUnprintedAge {
			report.warn(
				fmt.Sprintf("oldest unprinted entry has waited %s", age.Round(time.Minute)),
				"Check whether operators are printing regularly")
		}
	}

	switch {
	case stats.UnprintedItems > s.cfg.MaxQueueSize:
		report.critical(
			fmt.Sprintf("unprinted backlog of %d exceeds the limit of %d", stats.UnprintedItems, s.cfg.MaxQueueSize),
			"Investigate why the queue is not draining")
	case stats.UnprintedItems > s.cfg.WarnQueueSize:
		report.warn(
			fmt.Sprintf("unprinted backlog of %d is above the warning level of %d", stats.UnprintedItems, s.cfg.WarnQueueSize),
			"Schedule additional print runs")
	}

	return report, nil
}

func (r *HealthReport) warn(issue, recommendation string) {
	if r.Status == HealthStatusHealthy {
		r.Status = HealthStatusWarning
	}
	r.Issues = append(r.Issues, issue)
	r.Recommendations = append(r.Recommendations, recommendation)
}

func (r *HealthReport) critical(issue, recommendation string) {
	r.Status = HealthStatusCritical
	r.Issues = append(r.Issues, issue)
	r.Recommendations = append(r.Recommendations, recommendation)
}
