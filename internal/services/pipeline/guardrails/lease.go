package guardrails

import (
	"context"
	"errors"
	"time"

	"touchgrass/internal/modkit"
	"touchgrass/internal/platform/store"
)

// ErrLeaseHeld signals another worker owns this source window already
var ErrLeaseHeld = errors.New("pipeline: source lease already held")

// MakeSourceLease returns a function that uses Postgres to claim an
// ingestion window for one source, running do if the claim succeeds.
// Windows are truncated to the hour so a double-fired scheduler cannot run
// the same source crawl twice concurrently. The claim is one-time, there is
// no release. It assumes the ingest_source_leases table exists
func MakeSourceLease(
	deps modkit.Deps,
) func(ctx context.Context, source string, at time.Time, do func(context.Context) error) error {
	return func(ctx context.Context, source string, at time.Time, do func(context.Context) error) error {
		window := at.UTC().Truncate(time.Hour)

		var claimed bool
		err := deps.PG.Tx(ctx, func(q store.RowQuerier) error {
			rows, err := q.Query(ctx, `
				insert into ingest_source_leases (source, window_utc)
				values ($1, $2)
				on conflict (source, window_utc) do nothing
				returning true
			`, source, window)
			if err != nil {
				return err
			}
			defer rows.Close()
			if rows.Next() {
				claimed = true
			}
			return nil
		})
		if err != nil {
			return err
		}
		if !claimed {
			return ErrLeaseHeld // clean skip
		}
		return do(ctx)
	}
}
