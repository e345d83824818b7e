// Package module implements the events service module
package module

import (
	"touchgrass/internal/modkit"
	"touchgrass/internal/modkit/httpkit"
	"touchgrass/internal/services/events/domain"
	"touchgrass/internal/services/events/repo"
	"touchgrass/internal/services/events/service"
)

// Ports exposed by the events module
type Ports struct {
	Writer domain.WriterPort
	Query  domain.QueryPort
}

// Module implements the events service module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new events module
func New(deps modkit.Deps) *Module {
	opts := FromConfig(deps.Cfg)

	svc := service.New(
		deps.PG,
		repo.NewPG(),
		service.NewRateThrottle(opts.WritesPerSec, opts.WriteBurst),
		service.Config{
			SaveTimeout: opts.SaveTimeout,
			ListLimit:   opts.ListLimit,
		},
	)

	m := &Module{deps: deps}
	m.ports = Ports{
		Writer: svc,
		Query:  svc,
	}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "events" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module, the events service has no routes of its
// own, the API surface lives in services/api
func (m *Module) MountRoutes(r httpkit.Router) {}
