package domain

import "context"

// WriterPort persists canonical events idempotently
type WriterPort interface {
	// Save stores ev exactly once per identity key and reports the outcome
	Save(ctx context.Context, ev Event) (SaveResult, error)

	// SaveMany saves a batch, skipping per-item failures rather than aborting
	SaveMany(ctx context.Context, evs []Event) (BatchResult, error)
}

// QueryPort reads stored events for presentation layers
type QueryPort interface {
	Get(ctx context.Context, id string) (StoredEvent, error)
	List(ctx context.Context, f Filters) ([]StoredEvent, error)
}

// ThrottlePort paces successive writes within a batch
// implementations block until the next write may proceed or ctx is done
type ThrottlePort interface {
	Wait(ctx context.Context) error
}
