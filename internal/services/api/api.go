// Package api provides the HTTP API for the application
package api

import (
	"touchgrass/internal/platform/config"
	"touchgrass/internal/platform/logger"
	phttp "touchgrass/internal/platform/net/http"
	"touchgrass/internal/platform/store"

	"touchgrass/internal/modkit"
	"touchgrass/internal/modkit/httpkit"
	"touchgrass/internal/modkit/module"
	"touchgrass/internal/modkit/swaggerkit"

	apievents "touchgrass/internal/services/api/events/module"
	metamod "touchgrass/internal/services/api/meta/module"
	apipipeline "touchgrass/internal/services/api/pipeline/module"
	apisearch "touchgrass/internal/services/api/search/module"

	// Worker modules (own the domain ports)
	workerevents "touchgrass/internal/services/events/module"
	workerpipeline "touchgrass/internal/services/pipeline/module"
	workersearch "touchgrass/internal/services/search/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	// shared deps for modules
	deps := modkit.Deps{
		Cfg: opt.Config,
		PG:  opt.Store.PG,
		CH:  opt.Store.CH,
	}

	// Construct the WORKER modules first and extract the ports the API layer needs
	workerEvents := workerevents.New(deps)
	workerSearch := workersearch.New(deps)

	writer := module.MustPortsOf[workerevents.Ports](workerEvents).Writer
	query := module.MustPortsOf[workerevents.Ports](workerEvents).Query
	indexer := module.MustPortsOf[workersearch.Ports](workerSearch).Indexer
	searchQuery := module.MustPortsOf[workersearch.Ports](workerSearch).Query

	// The pipeline composes the events writer with the search indexer
	workerPipeline := workerpipeline.New(deps, writer, indexer)
	runner := module.MustPortsOf[workerpipeline.Ports](workerPipeline).Runner

	// Inject the worker ports into the API modules
	apiEvents := apievents.New(
		deps,
		modkit.WithPorts(apievents.Ports{
			Query:  query,
			Runner: runner,
		}),
	)
	apiSearch := apisearch.New(
		deps,
		modkit.WithPorts(apisearch.Ports{
			Query: searchQuery,
		}),
	)
	apiPipeline := apipipeline.New(
		deps,
		modkit.WithPorts(apipipeline.Ports{
			Runner: runner,
		}),
	)

	mods := []module.Module{
		metamod.New(deps),
		workerEvents,   // include workers so their ports are registered
		workerSearch,   //
		workerPipeline, //
		apiEvents,      // API modules that borrow the workers' ports
		apiSearch,      //
		apiPipeline,    //
	}

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		// Swagger + profiler
		swaggerkit.Mount(r, opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range mods {
			// register each module's ports under its own name (for cross-module lookups)
			module.Register(m.Name(), m.Ports())

			// mount module routes under its Prefix()
			m.MountRoutes(api)
		}
	})
}
