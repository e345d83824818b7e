// Package domain defines the types and interfaces for the events service
package domain

import (
	"time"

	"touchgrass/internal/core/normalize"
)

// Event is the canonical record, owned by core normalize and re-exported here
// so callers of this service do not import core packages directly
type Event = normalize.Event

// Cost is the canonical admission cost structure
type Cost = normalize.Cost

// CostType tags how an event charges admission
type CostType = normalize.CostType

// SaveResult reports the outcome of one idempotent save
// an identity collision is a success with WasNewlyCreated=false, never an error
type SaveResult struct {
	EventID         string
	WasNewlyCreated bool
}

// StoredEvent is an Event as it exists in the primary store
// every stored record carries both wall-clock and epoch-millis timestamps
type StoredEvent struct {
	ID    string
	Event Event

	CreatedAt   time.Time
	CreatedAtMs int64
	UpdatedAt   time.Time
	UpdatedAtMs int64
}

// BatchResult aggregates one SaveMany call
// Saved holds only the records that made it into the store this call or were
// already present, Errors holds per-item hard failures that were skipped
type BatchResult struct {
	EventIDs []string
	Saved    []StoredEvent
	Inserted int
	Errors   []string
}

// Filters narrows event listings
type Filters struct {
	Category string
	From     string // YYYY-MM-DD inclusive
	To       string // YYYY-MM-DD inclusive
	Limit    int
}
