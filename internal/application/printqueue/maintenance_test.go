package printqueue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/stitchline/backoffice/internal/domain/printqueue"
	"github.com/stitchline/backoffice/internal/domain/shared"
)

func TestMaintenanceService_PerformCleanup_PrintedOnly(t *testing.T) {
	queueRepo := new(MockQueueRepository)
	service := NewMaintenanceService(queueRepo, DefaultMaintenanceConfig(), nil)

	ctx := context.Background()
	queueRepo.On("DeletePrintedBefore", ctx, mock.AnythingOfType("time.Time")).Return(int64(12), nil)

	result, err := service.PerformCleanup(ctx, CleanupOptions{PrintedRetentionDays: 7})

	assert.NoError(t, err)
	assert.Equal(t, int64(12), result.RemovedPrinted)
	assert.Zero(t, result.RemovedOrphaned)
	assert.Equal(t, int64(12), result.RemovedCount)
	assert.False(t, result.DryRun)
	queueRepo.AssertNotCalled(t, "DeleteOrphaned", mock.Anything)
}

func TestMaintenanceService_PerformCleanup_WithOrphans(t *testing.T) {
	queueRepo := new(MockQueueRepository)
	service := NewMaintenanceService(queueRepo, DefaultMaintenanceConfig(), nil)

	ctx := context.Background()
	queueRepo.On("DeletePrintedBefore", ctx, mock.AnythingOfType("time.Time")).Return(int64(5), nil)
	queueRepo.On("DeleteOrphaned", ctx).Return(int64(2), nil)

	result, err := service.PerformCleanup(ctx, CleanupOptions{RemoveOrphaned: true})

	assert.NoError(t, err)
	assert.Equal(t, int64(5), result.RemovedPrinted)
	assert.Equal(t, int64(2), result.RemovedOrphaned)
	assert.Equal(t, int64(7), result.RemovedCount)
}

func TestMaintenanceService_PerformCleanup_DryRunCountsOnly(t *testing.T) {
	queueRepo := new(MockQueueRepository)
	service := NewMaintenanceService(queueRepo, DefaultMaintenanceConfig(), nil)

	ctx := context.Background()
	queueRepo.On("CountPrintedBefore", ctx, mock.AnythingOfType("time.Time")).Return(int64(9), nil)
	queueRepo.On("CountOrphaned", ctx).Return(int64(3), nil)

	result, err := service.PerformCleanup(ctx, CleanupOptions{RemoveOrphaned: true, DryRun: true})

	assert.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.Equal(t, int64(12), result.RemovedCount)
	queueRepo.AssertNotCalled(t, "DeletePrintedBefore", mock.Anything, mock.Anything)
	queueRepo.AssertNotCalled(t, "DeleteOrphaned", mock.Anything)
}

func TestMaintenanceService_PerformCleanup_DefaultRetention(t *testing.T) {
	queueRepo := new(MockQueueRepository)
	service := NewMaintenanceService(queueRepo, MaintenanceConfig{PrintedRetentionDays: 14}, nil)

	ctx := context.Background()
	queueRepo.On("DeletePrintedBefore", ctx, mock.MatchedBy(func(cutoff time.Time) bool {
		expected := time.Now().AddDate(0, 0, -14)
		return cutoff.Sub(expected).Abs() < time.Minute
	})).Return(int64(0), nil)

	_, err := service.PerformCleanup(ctx, CleanupOptions{})

	assert.NoError(t, err)
	queueRepo.AssertExpectations(t)
}

func healthyStats() *printqueue.QueueStats {
	return &printqueue.QueueStats{
		TotalItems:     5,
		UnprintedItems: 5,
	}
}

func TestMaintenanceService_HealthCheck_Healthy(t *testing.T) {
	queueRepo := new(MockQueueRepository)
	service := NewMaintenanceService(queueRepo, DefaultMaintenanceConfig(), nil)

	ctx := context.Background()
	queueRepo.On("Stats", ctx, mock.AnythingOfType("time.Time")).Return(healthyStats(), nil)

	report, err := service.HealthCheck(ctx)

	assert.NoError(t, err)
	assert.Equal(t, HealthStatusHealthy, report.Status)
	assert.Empty(t, report.Issues)
}

func TestMaintenanceService_HealthCheck_WarnsOnOrphans(t *testing.T) {
	queueRepo := new(MockQueueRepository)
	service := NewMaintenanceService(queueRepo, DefaultMaintenanceConfig(), nil)

	ctx := context.Background()
	stats := healthyStats()
	stats.OrphanedItems = 4
	queueRepo.On("Stats", ctx, mock.AnythingOfType("time.Time")).Return(stats, nil)

	report, err := service.HealthCheck(ctx)

	assert.NoError(t, err)
	assert.Equal(t, HealthStatusWarning, report.Status)
	assert.Len(t, report.Issues, 1)
	assert.Len(t, report.Recommendations, 1)
}

func TestMaintenanceService_HealthCheck_WarnsOnStaleOldest(t *testing.T) {
	queueRepo := new(MockQueueRepository)
	service := NewMaintenanceService(queueRepo, DefaultMaintenanceConfig(), nil)

	ctx := context.Background()
	stats := healthyStats()
	stale := time.Now().Add(-100 * time.Hour)
	stats.OldestUnprintedAddedAt = &stale
	queueRepo.On("Stats", ctx, mock.AnythingOfType("time.Time")).Return(stats, nil)

	report, err := service.HealthCheck(ctx)

	assert.NoError(t, err)
	assert.Equal(t, HealthStatusWarning, report.Status)
}

func TestMaintenanceService_HealthCheck_CriticalOnBacklog(t *testing.T) {
	queueRepo := new(MockQueueRepository)
	service := NewMaintenanceService(queueRepo, MaintenanceConfig{
		MaxQueueSize:  100,
		WarnQueueSize: 50,
	}, nil)

	ctx := context.Background()
	stats := healthyStats()
	stats.UnprintedItems = 150
	queueRepo.On("Stats", ctx, mock.AnythingOfType("time.Time")).Return(stats, nil)

	report, err := service.HealthCheck(ctx)

	assert.NoError(t, err)
	assert.Equal(t, HealthStatusCritical, report.Status)
}

func TestMaintenanceService_HealthCheck_WarningBeatenByCritical(t *testing.T) {
	queueRepo := new(MockQueueRepository)
	service := NewMaintenanceService(queueRepo, MaintenanceConfig{
		MaxQueueSize:  100,
		WarnQueueSize: 50,
	}, nil)

	ctx := context.Background()
	stats := healthyStats()
	stats.UnprintedItems = 150
	stats.OrphanedItems = 2
	queueRepo.On("Stats", ctx, mock.AnythingOfType("time.Time")).Return(stats, nil)

	report, err := service.HealthCheck(ctx)

	assert.NoError(t, err)
	assert.Equal(t, HealthStatusCritical, report.Status)
	assert.Len(t, report.Issues, 2)
}

func TestMaintenanceService_PerformCleanup_InvalidRetention(t *testing.T) {
	queueRepo := new(MockQueueRepository)
	service := NewMaintenanceService(queueRepo, DefaultMaintenanceConfig(), nil)

	_, err := service.PerformCleanup(context.Background(), CleanupOptions{PrintedRetentionDays: -2})

	assert.Error(t, err)
	assert.Equal(t, "INVALID_INPUT", shared.ErrorCode(err))
}
