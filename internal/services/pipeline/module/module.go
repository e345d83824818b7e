// Package module implements the pipeline service module
package module

import (
	"context"
	"time"

	"touchgrass/internal/modkit"
	"touchgrass/internal/modkit/httpkit"
	events "touchgrass/internal/services/events/domain"
	"touchgrass/internal/services/pipeline/domain"
	"touchgrass/internal/services/pipeline/guardrails"
	"touchgrass/internal/services/pipeline/service"
	search "touchgrass/internal/services/search/domain"
)

// LeaseFunc claims a per-source ingestion window before running do
type LeaseFunc func(ctx context.Context, source string, at time.Time, do func(context.Context) error) error

// Ports exposed by the pipeline module
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements the pipeline service module
type Module struct {
	deps  modkit.Deps
	ports Ports

	// Lease is nil unless leases are enabled in config
	Lease LeaseFunc
}

// New constructs a new pipeline module wired to the events writer and the
// search indexer, which are owned by their respective modules
func New(deps modkit.Deps, writer events.WriterPort, indexer search.IndexerPort) *Module {
	opts := FromConfig(deps.Cfg)

	m := &Module{deps: deps}
	m.ports = Ports{
		Runner: service.New(writer, indexer, opts.Timeouts),
	}
	if opts.EnableLeases {
		m.Lease = guardrails.MakeSourceLease(deps)
	}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "pipeline" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module, the trigger endpoint lives in services/api
func (m *Module) MountRoutes(r httpkit.Router) {}
