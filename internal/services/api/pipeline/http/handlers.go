// Package http provides the pipeline trigger endpoint
package http

import (
	"encoding/json"
	"net/http"

	"touchgrass/internal/core/normalize"
	"touchgrass/internal/modkit/httpkit"
	pipedom "touchgrass/internal/services/pipeline/domain"
)

// RunRequest is one manually triggered ingestion batch
type RunRequest struct {
	Source     string            `json:"source" validate:"required"`
	SourceType string            `json:"source_type" validate:"required,oneof=api-shape listing-shape crawler-shape already-normalized"`
	Events     []json.RawMessage `json:"events" validate:"required,min=1"`
}

type handlers struct {
	runner pipedom.RunnerPort
}

// Register mounts the pipeline routes
func Register(r httpkit.Router, runner pipedom.RunnerPort) {
	h := &handlers{runner: runner}

	httpkit.PostJSON(r, "/run", h.run)
}

// run executes one batch synchronously and returns its summary
// per-item problems ride inside the summary, only systemic failures error
func (h *handlers) run(r *http.Request, req RunRequest) (any, error) {
	summary, err := h.runner.Run(r.Context(), pipedom.Batch{
		Source:     req.Source,
		SourceType: normalize.SourceType(req.SourceType),
		RawEvents:  req.Events,
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}
