// Package module implements the search service module
package module

import (
	"touchgrass/internal/modkit"
	"touchgrass/internal/modkit/httpkit"
	"touchgrass/internal/services/search/domain"
	"touchgrass/internal/services/search/repo"
	"touchgrass/internal/services/search/service"
)

// Ports exposed by the search module
type Ports struct {
	Indexer domain.IndexerPort
	Query   domain.QueryPort
}

// Module implements the search service module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new search module
func New(deps modkit.Deps) *Module {
	opts := FromConfig(deps.Cfg)

	svc := service.New(repo.NewCH(deps.CH), service.Config{
		Concurrency: opts.Concurrency,
		HardLimit:   opts.HardLimit,
	})

	m := &Module{deps: deps}
	m.ports = Ports{
		Indexer: svc,
		Query:   svc,
	}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "search" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module, query routes live in services/api
func (m *Module) MountRoutes(r httpkit.Router) {}
