package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"

	"touchgrass/internal/modkit"
	"touchgrass/internal/modkit/module"
	"touchgrass/internal/platform/config"
	"touchgrass/internal/platform/logger"
	"touchgrass/internal/platform/store"

	"touchgrass/internal/adapters/ingest/openwebninja"
	"touchgrass/internal/adapters/ingest/seedfile"
	"touchgrass/internal/core/normalize"
	eventsmod "touchgrass/internal/services/events/module"
	pipedom "touchgrass/internal/services/pipeline/domain"
	"touchgrass/internal/services/pipeline/guardrails"
	pipelinemod "touchgrass/internal/services/pipeline/module"
	searchmod "touchgrass/internal/services/search/module"
)

func mustSetEnv(key, val string) {
	if val != "" {
		_ = os.Setenv(key, val)
	}
}

func main() {
	// local development convenience, absent .env is fine
	_ = godotenv.Load()

	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")
	ingCfg := root.Prefix("CORE_INGEST_")

	l := logger.Get()
	st, err := store.Open(context.Background(), store.Config{
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", true),
		},
		CH: store.CHConfig{
			Enabled:    true,
			URL:        chCfg.MustString("DBURL"),
			ClientName: "touchgrass",
			ClientTag:  "ingest",
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	var (
		fQuery  = flag.String("query", "", "fetch events from the OpenWeb Ninja API for this query")
		fPages  = flag.Int("pages", 3, "max result pages per API query")
		fFile   = flag.String("file", "", "load raw events from a seed file (JSON array or NDJSON, .gz ok)")
		fSource = flag.String("source", "", "provenance tag override for file loads")
		fShape  = flag.String("shape", string(normalize.ShapeListing), "raw shape of file events")
		fLeases = flag.Bool("leases", true, "claim a per-source hourly lease before running")
	)
	flag.Parse()

	if (*fQuery == "") == (*fFile == "") {
		l.Panic().Msg("provide exactly one of -query or -file")
	}

	// Surface opts to modules that read FromConfig
	mustSetEnv("CORE_PIPELINE_ENABLE_LEASES", map[bool]string{true: "1", false: "0"}[*fLeases])

	// Shared deps for modules
	deps := modkit.Deps{
		Cfg: root,
		PG:  st.PG,
		CH:  st.CH,
		Log: *l,
	}

	ev := eventsmod.New(deps)
	se := searchmod.New(deps)
	pl := pipelinemod.New(
		deps,
		module.MustPortsOf[eventsmod.Ports](ev).Writer,
		module.MustPortsOf[searchmod.Ports](se).Indexer,
	)
	module.Register(ev.Name(), ev.Ports())
	module.Register(se.Name(), se.Ports())
	module.Register(pl.Name(), pl.Ports())

	ctx := context.Background()

	var batch pipedom.Batch
	switch {
	case *fQuery != "":
		client := openwebninja.NewClient(openwebninja.Options{
			BaseURL: ingCfg.MayString("OWN_BASE_URL", ""),
			KeysCSV: ingCfg.MayString("OWN_API_KEYS", ""),
		})
		batch, err = client.FetchBatch(ctx, *fQuery, *fPages)
		if err != nil {
			l.Fatal().Err(err).Msg("openwebninja fetch failed")
		}
	default:
		shape := normalize.SourceType(*fShape)
		if !shape.Valid() {
			l.Panic().Str("shape", *fShape).Msg("bad -shape")
		}
		batch, err = seedfile.Load(*fFile, *fSource, shape)
		if err != nil {
			l.Fatal().Err(err).Msg("seed file load failed")
		}
	}

	if len(batch.RawEvents) == 0 {
		l.Info().Str("source", batch.Source).Msg("nothing to ingest")
		return
	}

	runner := module.MustPortsOf[pipelinemod.Ports](pl).Runner
	run := func(ctx context.Context) error {
		sum, err := runner.Run(ctx, batch)
		if err != nil {
			return err
		}
		l.Info().
			Str("source", batch.Source).
			Int("processed", sum.ProcessedCount).
			Int("rejected", sum.RejectedCount).
			Int("inserted", sum.InsertedCount).
			Int("indexed", sum.IndexedCount).
			Strs("errors", sum.Errors).
			Msg("ingest run complete")
		return nil
	}

	if pl.Lease != nil {
		err = pl.Lease(ctx, batch.Source, time.Now().UTC(), run)
	} else {
		err = run(ctx)
	}
	if errors.Is(err, guardrails.ErrLeaseHeld) {
		l.Warn().Str("source", batch.Source).Msg("another ingest already ran this source this hour, skipping")
		return
	}
	if err != nil {
		l.Fatal().Err(err).Msg("ingest run failed")
	}
}
