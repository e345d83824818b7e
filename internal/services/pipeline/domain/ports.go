package domain

import "context"

// RunnerPort drives normalize, persist, index for one batch
type RunnerPort interface {
	// Run returns a summary plus an error only for batch-wide systemic
	// failures, per-item problems ride inside the summary
	Run(ctx context.Context, batch Batch) (Summary, error)
}
