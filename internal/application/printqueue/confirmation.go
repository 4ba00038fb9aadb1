package printqueue

import (
	"context"
	"sync"

	"github.com/stitchline/backoffice/internal/domain/printqueue"
	"github.com/stitchline/backoffice/internal/domain/shared"
)

// ConfirmationState is one state of the two-stage print warning flow
type ConfirmationState string

const (
	StateIdle          ConfirmationState = "IDLE"
	StateFirstWarning  ConfirmationState = "FIRST_WARNING"
	StateSecondWarning ConfirmationState = "SECOND_WARNING"
	StateProcessing    ConfirmationState = "PROCESSING"
)

// ConfirmFunc performs the actual print confirmation (ultimately
// Service.MarkBatchPrinted). A retryable error returns the flow to
// SECOND_WARNING so the operator can retry without re-reading both warnings.
type ConfirmFunc func(ctx context.Context) error

// CancelFunc is invoked when the operator abandons the flow
type CancelFunc func()

// PrintConfirmation drives the two-stage waste-warning protocol for partial
// batches. Paper waste is irreversible, so acknowledgement is proportional to
// severity: a full sheet prints with a single click, a partial batch needs
// two explicit confirmations.
//
// The mutex is held for the whole confirm call, so Cancel during PROCESSING
// blocks until the in-flight confirmation resolves; aborting an in-flight
// print is not supported.
type PrintConfirmation struct {
	mu         sync.Mutex
	state      ConfirmationState
	labelCount int
	confirm    ConfirmFunc
	cancel     CancelFunc
}

// NewPrintConfirmation creates a confirmation flow in IDLE state
func NewPrintConfirmation(confirm ConfirmFunc, cancel CancelFunc) *PrintConfirmation {
	return &PrintConfirmation{
		state:   StateIdle,
		confirm: confirm,
		cancel:  cancel,
	}
}

// State returns the current state
func (p *PrintConfirmation) State() ConfirmationState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// LabelCount returns the candidate batch size recorded by Start
func (p *PrintConfirmation) LabelCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.labelCount
}

// Start begins the flow for a candidate batch size. A full sheet skips both
// warnings and confirms immediately; an empty candidate is a no-op.
func (p *PrintConfirmation) Start(ctx context.Context, candidateSize int) error {
	p.mu.Lock()

	if p.state != StateIdle {
		p.mu.Unlock()
		return shared.NewDomainError("INVALID_STATE", "A print confirmation is already in progress")
	}
	if candidateSize <= 0 {
		p.mu.Unlock()
		return nil
	}
	if candidateSize >= printqueue.SheetCapacity {
		p.labelCount = candidateSize
		return p.processLocked(ctx)
	}

	p.state = StateFirstWarning
	p.labelCount = candidateSize
	p.mu.Unlock()
	return nil
}

// ConfirmFirst acknowledges the first waste warning. No backend call is made;
// this is purely a gate before the second warning.
func (p *PrintConfirmation) ConfirmFirst() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateFirstWarning {
		return shared.NewDomainError("INVALID_STATE", "First confirmation is not pending")
	}
	p.state = StateSecondWarning
	return nil
}

// ConfirmSecond acknowledges the second warning and invokes the print
// confirmation. Success resets to IDLE. A retryable failure returns to
// SECOND_WARNING; a non-retryable failure resets to IDLE and surfaces the
// error.
func (p *PrintConfirmation) ConfirmSecond(ctx context.Context) error {
	p.mu.Lock()

	if p.state != StateSecondWarning {
		p.mu.Unlock()
		return shared.NewDomainError("INVALID_STATE", "Second confirmation is not pending")
	}
	return p.processLocked(ctx)
}

// processLocked runs the confirmation callback while holding the lock.
// Always unlocks before returning.
func (p *PrintConfirmation) processLocked(ctx context.Context) error {
	p.state = StateProcessing

	err := p.confirm(ctx)

	if err == nil {
		p.state = StateIdle
		p.labelCount = 0
		p.mu.Unlock()
		return nil
	}

	if shared.IsRetryable(err) {
		p.state = StateSecondWarning
		p.mu.Unlock()
		return err
	}

	p.state = StateIdle
	p.labelCount = 0
	p.mu.Unlock()
	return err
}

// Cancel abandons the flow and returns to IDLE. Safe from any state; if a
// confirmation is in flight, Cancel waits for it to resolve first.
func (p *PrintConfirmation) Cancel() {
	p.mu.Lock()
	wasActive := p.state != StateIdle
	p.state = StateIdle
	p.labelCount = 0
	p.mu.Unlock()

	if wasActive && p.cancel != nil {
		p.cancel()
	}
}
