// Package service provides the ingestion pipeline orchestrator
package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	perr "touchgrass/internal/platform/errors"
	"touchgrass/internal/platform/logger"

	"touchgrass/internal/core/normalize"
	events "touchgrass/internal/services/events/domain"
	"touchgrass/internal/services/pipeline/domain"
	"touchgrass/internal/services/pipeline/guardrails"
	search "touchgrass/internal/services/search/domain"
)

// Runner chains Normalizer, Persistence Gateway and Index Propagator for one
// batch, tolerating stage-level failure without aborting the whole run
type Runner struct {
	writer   events.WriterPort
	indexer  search.IndexerPort
	timeouts guardrails.Timeouts
}

// New constructs the orchestrator
func New(writer events.WriterPort, indexer search.IndexerPort, timeouts guardrails.Timeouts) *Runner {
	if writer == nil {
		panic("pipeline.Runner requires a non nil writer")
	}
	if indexer == nil {
		panic("pipeline.Runner requires a non nil indexer")
	}
	return &Runner{writer: writer, indexer: indexer, timeouts: timeouts}
}

// Run implements domain.RunnerPort
//
// Stage ordering is deliberate: normalization failures never reach the store,
// storage failures never block indexing of the records that did persist, and
// indexing failures are never visible to the caller
func (r *Runner) Run(ctx context.Context, batch domain.Batch) (domain.Summary, error) {
	ctx, cancel := guardrails.WithBatch(ctx, r.timeouts)
	defer cancel()

	log := logger.C(ctx).With().
		Str("mod", "pipeline").
		Str("run_id", uuid.NewString()).
		Str("source", batch.Source).
		Str("source_type", string(batch.SourceType)).
		Logger()

	summary := domain.Summary{ProcessedCount: len(batch.RawEvents)}

	if strings.TrimSpace(batch.Source) == "" {
		return summary, perr.InvalidArgf("batch source is required")
	}
	if !batch.SourceType.Valid() {
		return summary, perr.InvalidArgf("unknown source type %q", batch.SourceType)
	}

	// stage 1: normalize, rejects are counted and logged, never fatal
	normalized := make([]events.Event, 0, len(batch.RawEvents))
	for i, raw := range batch.RawEvents {
		ev, err := normalize.Normalize(raw, batch.Source, batch.SourceType)
		if err != nil {
			if errors.Is(err, normalize.ErrRejected) {
				summary.RejectedCount++
				log.Debug().Err(err).Int("index", i).Msg("raw event rejected")
				continue
			}
			return summary, err
		}
		normalized = append(normalized, ev)
	}
	log.Info().
		Int("processed", summary.ProcessedCount).
		Int("rejected", summary.RejectedCount).
		Msg("normalize stage done")

	// stage 2: persist, per-item failures ride in the batch result
	persistCtx, cancelPersist := guardrails.WithStage(ctx, r.timeouts.Persist)
	saved, err := r.writer.SaveMany(persistCtx, normalized)
	cancelPersist()
	if err != nil {
		// systemic failure, the whole store is gone, surface it so the
		// trigger can decide whether to retry the batch
		summary.Errors = append(summary.Errors, err.Error())
		return summary, perr.WrapIf(err, perr.ErrorCodeUnavailable, "persist stage failed")
	}
	summary.InsertedCount = saved.Inserted
	summary.EventIDs = saved.EventIDs
	summary.Errors = append(summary.Errors, saved.Errors...)
	log.Info().
		Int("inserted", saved.Inserted).
		Int("item_errors", len(saved.Errors)).
		Msg("persist stage done")

	// stage 3: index, best effort, results are logged and dropped
	indexCtx, cancelIndex := guardrails.WithStage(ctx, r.timeouts.Index)
	results := r.indexer.IndexMany(indexCtx, saved.Saved)
	cancelIndex()
	for _, res := range results {
		if res.OK() {
			summary.IndexedCount++
		}
	}
	if summary.IndexedCount < len(results) {
		log.Warn().
			Int("indexed", summary.IndexedCount).
			Int("attempted", len(results)).
			Msg("index stage lagging, search will catch up on re-ingest")
	}

	return summary, nil
}
