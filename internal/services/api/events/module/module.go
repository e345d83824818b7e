// Package module wires the events API surface using modkit
package module

import (
	"net/http"

	modkit "touchgrass/internal/modkit"
	"touchgrass/internal/modkit/httpkit"
	eventshttp "touchgrass/internal/services/api/events/http"
	events "touchgrass/internal/services/events/domain"
	pipedom "touchgrass/internal/services/pipeline/domain"
)

// Ports required by the events API module, injected by the composition root
type Ports struct {
	Query  events.QueryPort
	Runner pipedom.RunnerPort
}

// Module implements the events API module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler
	ports  Ports

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)
}

// New constructs the events API module
// pass the events query port and the pipeline runner via modkit.WithPorts
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("events"),
		modkit.WithPrefix("/events"),
	}, opts...)...)

	ports, ok := b.Ports.(Ports)
	if !ok {
		panic("events api module requires Ports{Query, Runner}")
	}
	if ports.Query == nil || ports.Runner == nil {
		panic("events api module requires non nil Query and Runner ports")
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
		eventshttp.Register(r, eventshttp.Deps{
			Query:  ports.Query,
			Runner: ports.Runner,
		})
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
