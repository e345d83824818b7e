// Package openwebninja provides a resilient client for the OpenWeb Ninja
// real-time events API
package openwebninja

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"touchgrass/internal/core/normalize"
	perr "touchgrass/internal/platform/errors"
	pipedom "touchgrass/internal/services/pipeline/domain"
)

// Source is the provenance tag stamped on batches from this adapter
const Source = "openwebninja"

// pageSize is fixed by the upstream API
const pageSize = 10

// searchResponse is the upstream envelope. Events stay undecoded since the
// pipeline owns their interpretation
type searchResponse struct {
	Status    string            `json:"status"`
	RequestID string            `json:"request_id"`
	Data      []json.RawMessage `json:"data"`
}

// SearchEvents fetches one page of events for a free-text query
// start is a zero-based result offset in pageSize steps
func (c *Client) SearchEvents(ctx context.Context, query string, start int) ([]json.RawMessage, error) {
	path := fmt.Sprintf("/search-events?query=%s&start=%d", url.QueryEscape(query), start)
	resp, err := c.Do(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Error().Err(cerr).Str("path", path).Msg("openwebninja close body failed")
		}
	}()

	var out searchResponse
	lim := io.LimitReader(resp.Body, 4<<20)
	b, err := io.ReadAll(lim)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "openwebninja read body failed")
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "openwebninja decode failed")
	}
	if out.Status != "" && out.Status != "OK" {
		return nil, perr.Newf(perr.ErrorCodeUnknown, "openwebninja status %q request %s", out.Status, out.RequestID)
	}
	return out.Data, nil
}

// FetchBatch pages through results for query up to maxPages and wraps them
// into a pipeline batch. A short page ends pagination early
func (c *Client) FetchBatch(ctx context.Context, query string, maxPages int) (pipedom.Batch, error) {
	if maxPages <= 0 {
		maxPages = 1
	}
	batch := pipedom.Batch{
		Source:     Source,
		SourceType: normalize.ShapeAPI,
	}
	for page := 0; page < maxPages; page++ {
		events, err := c.SearchEvents(ctx, query, page*pageSize)
		if err != nil {
			// keep whatever pages already landed, the pipeline dedupes anyway
			if len(batch.RawEvents) > 0 {
				c.log.Warn().Err(err).Int("page", page).Msg("openwebninja pagination stopped early")
				return batch, nil
			}
			return pipedom.Batch{}, err
		}
		batch.RawEvents = append(batch.RawEvents, events...)
		if len(events) < pageSize {
			break
		}
	}
	c.log.Info().Str("query", query).Int("events", len(batch.RawEvents)).Msg("openwebninja fetch complete")
	return batch, nil
}

// Ping performs a cheap one-result probe so the ingest command can fail fast
// on a bad key before claiming a source lease
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.Do(ctx, "/search-events?query=ping&start=0")
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		_ = drainAndClose(resp.Body)
		return perr.Newf(perr.ErrorCodeUnavailable, "openwebninja probe status %d", resp.StatusCode)
	}
	return drainAndClose(resp.Body)
}
