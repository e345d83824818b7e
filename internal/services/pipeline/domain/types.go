// Package domain defines the types and interfaces for the ingestion pipeline
package domain

import (
	"encoding/json"

	"touchgrass/internal/core/normalize"
)

// Batch is one bounded set of raw events submitted together
type Batch struct {
	// Source is the provenance tag stamped on every record, e.g. "crawler"
	Source string

	// SourceType names the raw shape, passed explicitly, never inferred
	SourceType normalize.SourceType

	// RawEvents are the undecoded payloads as received
	RawEvents []json.RawMessage
}

// Summary is the JSON-serializable outcome of one orchestrator run
type Summary struct {
	// ProcessedCount is how many raw events were seen
	ProcessedCount int `json:"processed_count"`

	// RejectedCount is how many failed normalization
	RejectedCount int `json:"rejected_count"`

	// InsertedCount is how many new records actually landed
	// excludes idempotent no-ops and rejects
	InsertedCount int `json:"inserted_count"`

	// IndexedCount is how many search documents were written, informational
	// only since indexing is best effort
	IndexedCount int `json:"indexed_count"`

	// EventIDs are the identity keys that were saved or already present
	EventIDs []string `json:"event_ids"`

	// Errors are the hard per-item persistence failures
	Errors []string `json:"errors,omitempty"`
}
