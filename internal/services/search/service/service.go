// Package service provides the search service implementation
package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"touchgrass/internal/core/normalize"
	"touchgrass/internal/platform/logger"
	events "touchgrass/internal/services/events/domain"
	"touchgrass/internal/services/search/domain"
)

// Upserter is the write seam the propagator needs from the index
type Upserter interface {
	Upsert(ctx context.Context, doc domain.Document) error
}

// Searcher is the read seam over the index
type Searcher interface {
	Search(ctx context.Context, q domain.Query) ([]domain.Document, error)
	Facets(ctx context.Context) ([]domain.Facet, error)
}

// IndexStore is the full index surface
type IndexStore interface {
	Upserter
	Searcher
}

// Config for the search service
type Config struct {
	// Concurrency bounds parallel index writes in IndexMany
	Concurrency int

	// HardLimit caps Search results
	HardLimit int
}

// Service implements domain.IndexerPort and domain.QueryPort
type Service struct {
	idx IndexStore
	cfg Config
}

// New constructs a new search service
func New(idx IndexStore, cfg Config) *Service {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 8
	}
	if cfg.HardLimit <= 0 {
		cfg.HardLimit = 100
	}
	return &Service{idx: idx, cfg: cfg}
}

// BuildDocument projects a stored record into its search document
// the identity key prefix decides event vs group
func BuildDocument(rec events.StoredEvent) domain.Document {
	ev := rec.Event
	docType := domain.DocEvent
	if normalize.IsGroupKey(rec.ID) {
		docType = domain.DocGroup
	}
	return domain.Document{
		DocID:       rec.ID,
		Type:        docType,
		Title:       ev.Title,
		Description: ev.Description,
		Category:    ev.Category,
		Categories:  ev.Categories(),
		Location:    ev.Location,
		Source:      ev.Source,
		URL:         ev.URL,
		StartDate:   ev.StartDate,
		CostType:    string(ev.Cost.Type),
		CostAmount:  ev.Cost.Amount,
		IsPublic:    ev.IsPublic,
		CreatedAtMs: rec.CreatedAtMs,
		UpdatedAtMs: rec.UpdatedAtMs,
	}
}

// Index implements domain.IndexerPort
// the document id is the identity key, so re-indexing the same record is a
// replace, and a failure is logged and carried in the result, never thrown
func (s *Service) Index(ctx context.Context, rec events.StoredEvent) domain.IndexResult {
	doc := BuildDocument(rec)
	if err := s.idx.Upsert(ctx, doc); err != nil {
		logger.C(ctx).Warn().Err(err).Str("doc_id", doc.DocID).Msg("index write failed")
		return domain.IndexResult{DocID: doc.DocID, Err: err}
	}
	return domain.IndexResult{DocID: doc.DocID}
}

// IndexMany implements domain.IndexerPort
// writes fan out concurrently with no ordering guarantee, all settle before
// returning and none can fail the batch
func (s *Service) IndexMany(ctx context.Context, recs []events.StoredEvent) []domain.IndexResult {
	if len(recs) == 0 {
		return nil
	}

	results := make([]domain.IndexResult, len(recs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i, rec := range recs {
		g.Go(func() error {
			results[i] = s.Index(gctx, rec)
			return nil // index errors live in the result, never here
		})
	}
	_ = g.Wait()
	return results
}

// Search implements domain.QueryPort
func (s *Service) Search(ctx context.Context, q domain.Query) ([]domain.Document, error) {
	if q.Limit <= 0 || q.Limit > s.cfg.HardLimit {
		q.Limit = s.cfg.HardLimit
	}
	return s.idx.Search(ctx, q)
}

// Facets implements domain.QueryPort
func (s *Service) Facets(ctx context.Context) ([]domain.Facet, error) {
	return s.idx.Facets(ctx)
}
