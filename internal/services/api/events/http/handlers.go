// Package http provides the events API handlers
package http

import (
	"encoding/json"
	"net/http"
	"time"

	"touchgrass/internal/modkit/httpkit"
	perr "touchgrass/internal/platform/errors"
	dto "touchgrass/internal/services/api/events/domain"
	events "touchgrass/internal/services/events/domain"
	pipedom "touchgrass/internal/services/pipeline/domain"

	"touchgrass/internal/core/normalize"
)

// Deps are the handler dependencies
type Deps struct {
	Query  events.QueryPort
	Runner pipedom.RunnerPort
}

type handlers struct {
	deps Deps
}

// Register mounts the events routes
func Register(r httpkit.Router, d Deps) {
	h := &handlers{deps: d}

	httpkit.PostJSON(r, "/", h.submit)
	httpkit.Get(r, "/{id}", h.get)
	httpkit.PostJSON(r, "/list", h.list)
}

// submit pushes one manual submission through the full pipeline so it gets
// the same normalization, dedupe and indexing as any crawl batch
func (h *handlers) submit(r *http.Request, req dto.SubmitEventRequest) (any, error) {
	source := req.Source
	if source == "" {
		source = "manual"
	}

	raw, err := json.Marshal(req)
	if err != nil {
		return nil, perr.JSONErrf("encode submission: %v", err)
	}

	summary, err := h.deps.Runner.Run(r.Context(), pipedom.Batch{
		Source:     source,
		SourceType: normalize.ShapeNormalized,
		RawEvents:  []json.RawMessage{raw},
	})
	if err != nil {
		return nil, err
	}
	if summary.RejectedCount > 0 || len(summary.EventIDs) == 0 {
		return dto.SubmitEventResponse{Rejected: true}, nil
	}
	out := dto.SubmitEventResponse{
		EventID:         summary.EventIDs[0],
		WasNewlyCreated: summary.InsertedCount > 0,
	}
	if !out.WasNewlyCreated {
		// idempotent repeat, the record already existed
		return out, nil
	}
	return httpkit.Created(out), nil
}

func (h *handlers) get(r *http.Request) (any, error) {
	rec, err := h.deps.Query.Get(r.Context(), httpkit.Param(r, "id"))
	if err != nil {
		return nil, err
	}
	return toResponse(rec), nil
}

func (h *handlers) list(r *http.Request, req dto.ListEventsRequest) (any, error) {
	recs, err := h.deps.Query.List(r.Context(), events.Filters{
		Category: req.Category,
		From:     req.From,
		To:       req.To,
		Limit:    req.Limit,
	})
	if err != nil {
		return nil, err
	}
	out := dto.ListEventsResponse{Events: make([]dto.EventResponse, 0, len(recs))}
	for _, rec := range recs {
		out.Events = append(out.Events, toResponse(rec))
	}
	out.Count = len(out.Events)
	return out, nil
}

func toResponse(rec events.StoredEvent) dto.EventResponse {
	return dto.EventResponse{
		ID:          rec.ID,
		Event:       rec.Event,
		CreatedAt:   rec.CreatedAt.UTC().Format(time.RFC3339),
		CreatedAtMs: rec.CreatedAtMs,
		UpdatedAt:   rec.UpdatedAt.UTC().Format(time.RFC3339),
		UpdatedAtMs: rec.UpdatedAtMs,
	}
}
