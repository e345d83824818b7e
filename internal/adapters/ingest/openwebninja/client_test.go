package openwebninja

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func newTestClient(t *testing.T, h http.HandlerFunc, keysCSV string) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewClient(Options{
		BaseURL:   srv.URL,
		KeysCSV:   keysCSV,
		RetryBase: time.Millisecond,
	})
	c.sleep = func(time.Duration) {} // no real waiting in tests
	return c
}

func TestKeyRotationOnRateLimit(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Header.Get("X-API-Key"))
		n := len(seen)
		mu.Unlock()
		if n == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"status":"OK","data":[{"title":"Jazz Night"}]}`)
	}, "key-a,key-b")

	events, err := c.SearchEvents(context.Background(), "jazz", 0)
	if err != nil {
		t.Fatalf("SearchEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	if len(seen) != 2 || seen[0] == seen[1] {
		t.Fatalf("expected the retry to use a different key, got %v", seen)
	}
}

func TestRetriesExhaustOnPersistentRateLimit(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}, "key-a")
	c.opts.MaxRetries = 2

	if _, err := c.SearchEvents(context.Background(), "jazz", 0); err == nil {
		t.Fatal("want rate limit error after retries exhaust")
	}
}

func TestFetchBatchPaginates(t *testing.T) {
	page := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		page++
		if page == 1 {
			// a full page keeps pagination going
			fmt.Fprint(w, `{"status":"OK","data":[{},{},{},{},{},{},{},{},{},{}]}`)
			return
		}
		fmt.Fprint(w, `{"status":"OK","data":[{"title":"Last One"}]}`)
	}, "")

	b, err := c.FetchBatch(context.Background(), "things to do", 5)
	if err != nil {
		t.Fatalf("FetchBatch: %v", err)
	}
	if b.Source != Source {
		t.Fatalf("source = %q", b.Source)
	}
	if len(b.RawEvents) != 11 {
		t.Fatalf("events = %d, want 11", len(b.RawEvents))
	}
	if page != 2 {
		t.Fatalf("pages fetched = %d, want 2 (short page stops pagination)", page)
	}
}

func TestFetchBatchKeepsEarlierPagesOnError(t *testing.T) {
	page := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		page++
		if page == 1 {
			fmt.Fprint(w, `{"status":"OK","data":[{},{},{},{},{},{},{},{},{},{}]}`)
			return
		}
		w.WriteHeader(http.StatusTeapot) // non-retryable
	}, "")

	b, err := c.FetchBatch(context.Background(), "jazz", 5)
	if err != nil {
		t.Fatalf("FetchBatch: %v", err)
	}
	if len(b.RawEvents) != 10 {
		t.Fatalf("events = %d, want the first page kept", len(b.RawEvents))
	}
}

func TestUpstreamErrorStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"ERROR","request_id":"r1","data":[]}`)
	}, "")
	if _, err := c.SearchEvents(context.Background(), "jazz", 0); err == nil {
		t.Fatal("want error for upstream status ERROR")
	}
}
