// Package printqueue contains the Print Queue bounded context.
// This context is responsible for accumulating approved production line
// items into a FIFO label-printing queue, enforcing the fixed four-labels
// per-sheet batch policy, and guaranteeing that no batch is printed twice.
package printqueue
