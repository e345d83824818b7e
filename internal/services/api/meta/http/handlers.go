// Package http provides meta endpoints
package http

import (
	stdctx "context"
	"net/http"
	"time"

	"touchgrass/internal/core/version"
	"touchgrass/internal/modkit/httpkit"
	"touchgrass/internal/platform/timeutil"
)

// Pinger is satisfied by adapters that expose Ping
type Pinger interface {
	Ping(stdctx.Context) error
}

// Deps are the handler dependencies
// PG and CH stay any so callers can pass whatever adapter they hold, a non
// Pinger value is reported as skipped
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	PG          any
	CH          any
}

type handlers struct {
	deps Deps
}

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	h := &handlers{deps: d}

	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
}

// HealthResponse is the health payload
type HealthResponse struct {
	OK      bool       `json:"ok"`
	Service string     `json:"service"`
	Started *time.Time `json:"started,omitempty"`
	Now     time.Time  `json:"now"`
}

// ReadyCheck describes a single dependency check
type ReadyCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"` // ok fail skipped
	Error  string `json:"error,omitempty"`
}

// ReadyResponse summarizes readiness
type ReadyResponse struct {
	Status string       `json:"status"` // ok degraded
	Checks []ReadyCheck `json:"checks"`
}

func (h *handlers) health(r *http.Request) (any, error) {
	return HealthResponse{
		OK:      true,
		Service: h.deps.ServiceName,
		Started: timeutil.Ptr(h.deps.StartedAt.UTC()),
		Now:     time.Now().UTC(),
	}, nil
}

func (h *handlers) ready(r *http.Request) (any, error) {
	ctx, cancel := stdctx.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	resp := ReadyResponse{Status: "ok"}
	for _, dep := range []struct {
		name string
		v    any
	}{
		{"pg", h.deps.PG},
		{"ch", h.deps.CH},
	} {
		check := ReadyCheck{Name: dep.name, Status: "skipped"}
		if p, ok := dep.v.(Pinger); ok && p != nil {
			if err := p.Ping(ctx); err != nil {
				check.Status = "fail"
				check.Error = err.Error()
				resp.Status = "degraded"
			} else {
				check.Status = "ok"
			}
		}
		resp.Checks = append(resp.Checks, check)
	}
	return resp, nil
}

func (h *handlers) version(r *http.Request) (any, error) {
	return version.Info(), nil
}
