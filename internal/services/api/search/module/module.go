// Package module wires the search API surface using modkit
package module

import (
	"net/http"

	modkit "touchgrass/internal/modkit"
	"touchgrass/internal/modkit/httpkit"
	searchhttp "touchgrass/internal/services/api/search/http"
	search "touchgrass/internal/services/search/domain"
)

// Ports required by the search API module
type Ports struct {
	Query search.QueryPort
}

// Module implements the search API module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler
	ports  Ports

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)
}

// New constructs the search API module, pass Ports via modkit.WithPorts
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("search"),
		modkit.WithPrefix("/search"),
	}, opts...)...)

	ports, ok := b.Ports.(Ports)
	if !ok || ports.Query == nil {
		panic("search api module requires Ports{Query}")
	}

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		ports:     ports,
		subrouter: b.Subrouter,
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		searchhttp.Register(r, ports.Query)
		if external != nil {
			external(r)
		}
	}
	return m
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.subrouter != nil {
			rr = m.subrouter(rr)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Name returns the module name
func (m *Module) Name() string { return m.name }

// Ports returns the module ports for cross wiring
func (m *Module) Ports() any { return m.ports }
