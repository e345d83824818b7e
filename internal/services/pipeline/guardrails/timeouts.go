// Package guardrails holds cross cutting safety helpers for pipeline runs
package guardrails

import (
	"context"
	"time"
)

// Timeouts is an optional budget bundle for one ingestion batch.
// Zero values mean no extra timeout at that level
type Timeouts struct {
	// Batch is the overall time budget for one orchestrator run
	Batch time.Duration

	// Persist caps the store-write stage
	Persist time.Duration

	// Index caps the search-propagation stage
	Index time.Duration
}

// WithBatch returns a context limited by the batch budget without extending
// any parent deadline. if Batch is zero it returns a cancelable child that
// simply inherits the parent deadline
func WithBatch(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	if t.Batch <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, t.Batch)
}

// WithStage bounds one pipeline stage by d, inheriting when d is zero
func WithStage(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, d)
}
