package printqueue

import (
	"fmt"
	"math"
)

// SheetCapacity is the number of labels on one physical label sheet.
// A print run always consumes a whole sheet, so batches below capacity
// waste the remaining labels.
const SheetCapacity = 4

// BatchClassification is the Batch Policy verdict for a candidate batch size
type BatchClassification struct {
	CandidateSize          int
	IsValid                bool
	CanPrintWithoutWarning bool
	RequiresWarning        bool
	WastedLabels           int
	WastePercent           int
	WarningMessage         string
	Recommendation         string
	// CapacityExceeded flags the defect state where the queue handed back
	// more entries than a sheet holds. The caller logs it and clips.
	CapacityExceeded bool
}

// ClassifyBatch applies the fixed sheet-capacity policy to a candidate batch
// size. It is a pure function; persistence and confirmation flow both consume
// its verdict.
func ClassifyBatch(candidateSize int) BatchClassification {
	switch {
	case candidateSize <= 0:
		return BatchClassification{
			CandidateSize:   candidateSize,
			IsValid:         false,
			RequiresWarning: true,
			WarningMessage:  "The print queue is empty.",
			Recommendation:  "Approve orders to populate the queue before printing.",
		}
	case candidateSize < SheetCapacity:
		wasted := SheetCapacity - candidateSize
		wastePercent := int(math.Round(float64(wasted) / float64(SheetCapacity) * 100))
		return BatchClassification{
			CandidateSize:   candidateSize,
			IsValid:         true,
			RequiresWarning: true,
			WastedLabels:    wasted,
			WastePercent:    wastePercent,
			WarningMessage: fmt.Sprintf(
				"Printing %d of %d labels wastes %d label(s) (%d%% of the sheet).",
				candidateSize, SheetCapacity, wasted, wastePercent),
			Recommendation: "Wait for more approved items to fill the sheet, or confirm twice to print anyway.",
		}
	case candidateSize == SheetCapacity:
		return BatchClassification{
			CandidateSize:          candidateSize,
			IsValid:                true,
			CanPrintWithoutWarning: true,
		}
	default:
		// Queue returned more than a sheet holds. Internal invariant
		// violation: clip to capacity, never report as printable-as-is.
		return BatchClassification{
			CandidateSize:    SheetCapacity,
			IsValid:          true,
			RequiresWarning:  true,
			CapacityExceeded: true,
			WarningMessage: fmt.Sprintf(
				"Batch of %d exceeds sheet capacity %d; clipped to %d.",
				candidateSize, SheetCapacity, SheetCapacity),
			Recommendation: "Report this to an administrator; the queue returned an oversized batch.",
		}
	}
}
