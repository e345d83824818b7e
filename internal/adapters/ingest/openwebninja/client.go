// Package openwebninja provides a resilient client for the OpenWeb Ninja
// real-time events API
package openwebninja

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	perr "touchgrass/internal/platform/errors"
	"touchgrass/internal/platform/logger"
)

const (
	baseURLDefault   = "https://api.openwebninja.com/realtime-events-data"
	defaultTimeout   = 15 * time.Second
	defaultUA        = "touchgrass-ingest"
	defaultMaxRetry  = 5
	defaultRetryBase = 500 * time.Millisecond
)

// Options configures the Client
type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration

	// Comma separated API keys passed in from CLI or config
	// The client rotates to the next key on every request so quota
	// exhaustion on one key does not stall the whole fetch
	KeysCSV string

	// Retry config for transient and rate limited responses
	MaxRetries int
	RetryBase  time.Duration
}

// Client is a minimal events API client with key rotation and retries
type Client struct {
	http  *http.Client
	opts  Options
	keys  []string
	cur   atomic.Int32
	log   logger.Logger
	now   func() time.Time
	sleep func(time.Duration)
}

// NewClient creates a new Client with sane defaults
func NewClient(o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = defaultMaxRetry
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	var keys []string
	if s := strings.TrimSpace(o.KeysCSV); s != "" {
		for k := range strings.SplitSeq(s, ",") {
			k = strings.TrimSpace(k)
			if k != "" {
				keys = append(keys, k)
			}
		}
	}
	return &Client{
		http:  &http.Client{Timeout: o.Timeout},
		opts:  o,
		keys:  keys,
		log:   *logger.Named("openwebninja"),
		now:   time.Now,
		sleep: time.Sleep,
	}
}

// getKey returns the next key in a round robin rotation
func (c *Client) getKey() string {
	n := int(c.cur.Add(1))
	if len(c.keys) == 0 {
		return ""
	}
	return c.keys[n%len(c.keys)]
}

// Do issues a GET with auth headers, retries, and rate limit handling
// path must include the query string
func (c *Client) Do(ctx context.Context, path string) (*http.Response, error) {
	url := c.opts.BaseURL + path
	attempts := 0
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "openwebninja new request failed")
		}
		req.Header.Set("User-Agent", c.opts.UserAgent)
		req.Header.Set("Accept", "application/json")
		if key := c.getKey(); key != "" {
			req.Header.Set("X-API-Key", key)
		}

		start := c.now()
		resp, err := c.http.Do(req)
		lat := c.now().Sub(start)

		if err != nil {
			if !c.shouldRetry(attempts) {
				return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "openwebninja do failed")
			}
			back := c.backoff(attempts)
			c.log.Warn().Dur("retry_in", back).Int("attempt", attempts).Msg("openwebninja transport error retrying")
			c.sleep(back)
			attempts++
			continue
		}

		retryAfter := atoi(resp.Header.Get("Retry-After"))
		c.log.Debug().
			Str("path", path).
			Int("status", resp.StatusCode).
			Int("attempt", attempts).
			Dur("latency", lat).
			Int("retry_after_s", retryAfter).
			Msg("openwebninja http response")

		switch resp.StatusCode {
		case http.StatusOK:
			return resp, nil
		case http.StatusTooManyRequests, http.StatusForbidden:
			// next attempt rotates to the next key, so a short backoff is enough
			wait := time.Duration(retryAfter) * time.Second
			if wait <= 0 {
				wait = c.backoff(attempts)
			}
			if !c.shouldRetry(attempts) {
				_ = drainAndClose(resp.Body)
				return nil, perr.Newf(perr.ErrorCodeTooManyRequests, "openwebninja rate limited")
			}
			c.log.Warn().Dur("sleep", wait).Msg("openwebninja rate limited rotating key")
			_ = drainAndClose(resp.Body)
			c.sleep(wait)
			attempts++
			continue
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			// transient server side
			if !c.shouldRetry(attempts) {
				_ = drainAndClose(resp.Body)
				return nil, perr.Newf(perr.ErrorCodeUnavailable, "openwebninja transient server error")
			}
			back := c.backoff(attempts)
			c.log.Warn().Dur("retry_in", back).Int("attempt", attempts).Msg("openwebninja transient error retrying")
			_ = drainAndClose(resp.Body)
			c.sleep(back)
			attempts++
			continue
		default:
			// read a small tail for diagnostics then return
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			_ = resp.Body.Close()
			return nil, perr.Newf(perr.ErrorCodeUnknown, "openwebninja unexpected status %d body %s", resp.StatusCode, string(body))
		}
	}
}

func (c *Client) backoff(attempt int) time.Duration {
	d := c.opts.RetryBase
	// simple exponential with cap
	ms := int64(d / time.Millisecond)
	ms = ms << uint(attempt)
	max := int64(30 * time.Second / time.Millisecond)
	if ms > max {
		ms = max
	}
	return time.Duration(ms) * time.Millisecond
}

func (c *Client) shouldRetry(attempt int) bool {
	return attempt < c.opts.MaxRetries
}
