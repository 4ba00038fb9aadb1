package printqueue

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stitchline/backoffice/internal/domain/printqueue"
	"github.com/stitchline/backoffice/internal/domain/shared"
)

func TestPrintConfirmation_FullSheetSkipsWarnings(t *testing.T) {
	confirmed := 0
	flow := NewPrintConfirmation(func(ctx context.Context) error {
		confirmed++
		return nil
	}, nil)

	err := flow.Start(context.Background(), printqueue.SheetCapacity)

	assert.NoError(t, err)
	assert.Equal(t, 1, confirmed)
	assert.Equal(t, StateIdle, flow.State())
}

func TestPrintConfirmation_PartialBatchNeedsTwoConfirmations(t *testing.T) {
	confirmed := 0
	flow := NewPrintConfirmation(func(ctx context.Context) error {
		confirmed++
		return nil
	}, nil)
	ctx := context.Background()

	assert.NoError(t, flow.Start(ctx, 2))
	assert.Equal(t, StateFirstWarning, flow.State())
	assert.Equal(t, 2, flow.LabelCount())
	assert.Zero(t, confirmed)

	assert.NoError(t, flow.ConfirmFirst())
	assert.Equal(t, StateSecondWarning, flow.State())
	assert.Zero(t, confirmed)

	assert.NoError(t, flow.ConfirmSecond(ctx))
	assert.Equal(t, 1, confirmed)
	assert.Equal(t, StateIdle, flow.State())
	assert.Zero(t, flow.LabelCount())
}

func TestPrintConfirmation_EmptyCandidateIsNoOp(t *testing.T) {
	confirmed := 0
	flow := NewPrintConfirmation(func(ctx context.Context) error {
		confirmed++
		return nil
	}, nil)

	err := flow.Start(context.Background(), 0)

	assert.NoError(t, err)
	assert.Zero(t, confirmed)
	assert.Equal(t, StateIdle, flow.State())
}

func TestPrintConfirmation_OutOfOrderConfirmationsRejected(t *testing.T) {
	flow := NewPrintConfirmation(func(ctx context.Context) error { return nil }, nil)
	ctx := context.Background()

	err := flow.ConfirmFirst()
	assert.Equal(t, "INVALID_STATE", shared.ErrorCode(err))

	err = flow.ConfirmSecond(ctx)
	assert.Equal(t, "INVALID_STATE", shared.ErrorCode(err))

	assert.NoError(t, flow.Start(ctx, 1))
	err = flow.ConfirmSecond(ctx)
	assert.Equal(t, "INVALID_STATE", shared.ErrorCode(err))
}

func TestPrintConfirmation_StartWhileActiveRejected(t *testing.T) {
	flow := NewPrintConfirmation(func(ctx context.Context) error { return nil }, nil)
	ctx := context.Background()

	assert.NoError(t, flow.Start(ctx, 1))
	err := flow.Start(ctx, 2)

	assert.Equal(t, "INVALID_STATE", shared.ErrorCode(err))
	assert.Equal(t, 1, flow.LabelCount())
}

func TestPrintConfirmation_RetryableFailureReturnsToSecondWarning(t *testing.T) {
	attempts := 0
	flow := NewPrintConfirmation(func(ctx context.Context) error {
		attempts++
		if attempts == 1 {
			return shared.ErrTransient
		}
		return nil
	}, nil)
	ctx := context.Background()

	assert.NoError(t, flow.Start(ctx, 3))
	assert.NoError(t, flow.ConfirmFirst())

	err := flow.ConfirmSecond(ctx)
	assert.Error(t, err)
	assert.Equal(t, StateSecondWarning, flow.State())

	// The operator can retry without re-reading both warnings.
	assert.NoError(t, flow.ConfirmSecond(ctx))
	assert.Equal(t, StateIdle, flow.State())
	assert.Equal(t, 2, attempts)
}

func TestPrintConfirmation_NonRetryableFailureResets(t *testing.T) {
	flow := NewPrintConfirmation(func(ctx context.Context) error {
		return shared.NewDomainError("NOT_FOUND", "batch gone")
	}, nil)
	ctx := context.Background()

	assert.NoError(t, flow.Start(ctx, 3))
	assert.NoError(t, flow.ConfirmFirst())

	err := flow.ConfirmSecond(ctx)

	assert.Error(t, err)
	assert.Equal(t, StateIdle, flow.State())
	assert.Zero(t, flow.LabelCount())
}

func TestPrintConfirmation_CancelInvokesCallback(t *testing.T) {
	cancelled := false
	flow := NewPrintConfirmation(func(ctx context.Context) error { return nil }, func() {
		cancelled = true
	})

	assert.NoError(t, flow.Start(context.Background(), 2))
	flow.Cancel()

	assert.True(t, cancelled)
	assert.Equal(t, StateIdle, flow.State())
}

func TestPrintConfirmation_CancelFromIdleSkipsCallback(t *testing.T) {
	cancelled := false
	flow := NewPrintConfirmation(func(ctx context.Context) error { return nil }, func() {
		cancelled = true
	})

	flow.Cancel()

	assert.False(t, cancelled)
}

func TestPrintConfirmation_ConcurrentStartsSingleWinner(t *testing.T) {
	flow := NewPrintConfirmation(func(ctx context.Context) error { return nil }, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := flow.Start(ctx, 2); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, StateFirstWarning, flow.State())
}
