package domain

import (
	"context"

	events "touchgrass/internal/services/events/domain"
)

// IndexerPort mirrors persisted records into the search index, best effort
// failures come back inside IndexResult values, never as returned errors,
// so the contract "indexing never fails the batch" is visible in the signature
type IndexerPort interface {
	Index(ctx context.Context, rec events.StoredEvent) IndexResult
	IndexMany(ctx context.Context, recs []events.StoredEvent) []IndexResult
}

// QueryPort searches the index
type QueryPort interface {
	Search(ctx context.Context, q Query) ([]Document, error)
	Facets(ctx context.Context) ([]Facet, error)
}
