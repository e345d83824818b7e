// Package module wires the pipeline trigger into the API using modkit
package module

import (
	"net/http"

	modkit "touchgrass/internal/modkit"
	"touchgrass/internal/modkit/httpkit"
	pipehttp "touchgrass/internal/services/api/pipeline/http"
	pipedom "touchgrass/internal/services/pipeline/domain"
)

// Ports required by the pipeline API module
type Ports struct {
	Runner pipedom.RunnerPort
}

// Module implements the pipeline API module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler
	ports  Ports

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)
}

// New constructs the pipeline API module, pass Ports via modkit.WithPorts
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("pipeline"),
		modkit.WithPrefix("/pipeline"),
	}, opts...)...)

	ports, ok := b.Ports.(Ports)
	if !ok || ports.Runner == nil {
		panic("pipeline api module requires Ports{Runner}")
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
		pipehttp.Register(r, ports.Runner)
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
