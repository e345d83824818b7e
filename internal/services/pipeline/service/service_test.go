package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"touchgrass/internal/core/normalize"
	perr "touchgrass/internal/platform/errors"
	events "touchgrass/internal/services/events/domain"
	"touchgrass/internal/services/pipeline/domain"
	"touchgrass/internal/services/pipeline/guardrails"
	search "touchgrass/internal/services/search/domain"
)

// fakeWriter is a WriterPort double over a map keyed by identity
type fakeWriter struct {
	recs      map[string]events.StoredEvent
	failTitle string
	systemic  error
}

func newFakeWriter() *fakeWriter {
	return &fakeWriter{recs: map[string]events.StoredEvent{}}
}

func (w *fakeWriter) Save(_ context.Context, ev events.Event) (events.SaveResult, error) {
	id := ev.Key()
	if _, exists := w.recs[id]; exists {
		return events.SaveResult{EventID: id, WasNewlyCreated: false}, nil
	}
	w.recs[id] = events.StoredEvent{ID: id, Event: ev}
	return events.SaveResult{EventID: id, WasNewlyCreated: true}, nil
}

func (w *fakeWriter) SaveMany(ctx context.Context, evs []events.Event) (events.BatchResult, error) {
	if w.systemic != nil {
		return events.BatchResult{}, w.systemic
	}
	var out events.BatchResult
	for _, ev := range evs {
		if w.failTitle != "" && ev.Title == w.failTitle {
			out.Errors = append(out.Errors, "store timeout on "+ev.Title)
			continue
		}
		res, err := w.Save(ctx, ev)
		if err != nil {
			out.Errors = append(out.Errors, err.Error())
			continue
		}
		out.EventIDs = append(out.EventIDs, res.EventID)
		if res.WasNewlyCreated {
			out.Inserted++
		}
		out.Saved = append(out.Saved, w.recs[res.EventID])
	}
	return out, nil
}

// fakeIndexer records index calls and can fail everything
type fakeIndexer struct {
	indexed []string
	broken  bool
}

func (f *fakeIndexer) Index(_ context.Context, rec events.StoredEvent) search.IndexResult {
	if f.broken {
		return search.IndexResult{DocID: rec.ID, Err: context.DeadlineExceeded}
	}
	f.indexed = append(f.indexed, rec.ID)
	return search.IndexResult{DocID: rec.ID}
}

func (f *fakeIndexer) IndexMany(ctx context.Context, recs []events.StoredEvent) []search.IndexResult {
	out := make([]search.IndexResult, 0, len(recs))
	for _, rec := range recs {
		out = append(out, f.Index(ctx, rec))
	}
	return out
}

func rawBatch(payloads ...string) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(payloads))
	for _, p := range payloads {
		out = append(out, json.RawMessage(p))
	}
	return out
}

func TestRun_HappyPath(t *testing.T) {
	writer := newFakeWriter()
	indexer := &fakeIndexer{}
	runner := New(writer, indexer, guardrails.Timeouts{})

	summary, err := runner.Run(context.Background(), domain.Batch{
		Source:     "washingtonian",
		SourceType: normalize.ShapeListing,
		RawEvents: rawBatch(
			`{"title":"Jazz Night","date":"2025-03-01","time":"7:00 PM","location":"Blues Alley","category":"music","price":"$25"}`,
		),
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.ProcessedCount != 1 || summary.InsertedCount != 1 || summary.RejectedCount != 0 {
		t.Fatalf("summary = %+v", summary)
	}
	if summary.IndexedCount != 1 || len(indexer.indexed) != 1 {
		t.Fatalf("index stage: %+v", summary)
	}

	// identical re-run is an idempotent no-op end to end
	again, err := runner.Run(context.Background(), domain.Batch{
		Source:     "washingtonian",
		SourceType: normalize.ShapeListing,
		RawEvents: rawBatch(
			`{"title":"Jazz Night","date":"2025-03-01","time":"7:00 PM","location":"Blues Alley","category":"music","price":"$25"}`,
		),
	})
	if err != nil {
		t.Fatalf("re-run: %v", err)
	}
	if again.InsertedCount != 0 {
		t.Fatalf("re-run inserted %d, want 0", again.InsertedCount)
	}
	if len(writer.recs) != 1 {
		t.Fatalf("store has %d records", len(writer.recs))
	}
}

func TestRun_PartialBatchResilience(t *testing.T) {
	writer := newFakeWriter()
	writer.failTitle = "Storm Watch"
	indexer := &fakeIndexer{}
	runner := New(writer, indexer, guardrails.Timeouts{})

	summary, err := runner.Run(context.Background(), domain.Batch{
		Source:     "crawler",
		SourceType: normalize.ShapeCrawler,
		RawEvents: rawBatch(
			`{"title":"Jazz Night","start_date":"2025-03-01"}`,
			`{"title":"Storm Watch","start_date":"2025-03-02"}`,
			`{"start_date":"2025-03-03"}`, // no title, rejected
			`{"title":"Book Swap","start_date":"2025-03-04","cost":{"amount":{"deeply":["nested"]}}}`,
		),
	})
	if err != nil {
		t.Fatalf("batch must not abort: %v", err)
	}
	if summary.ProcessedCount != 4 {
		t.Fatalf("processed = %d", summary.ProcessedCount)
	}
	if summary.RejectedCount != 1 {
		t.Fatalf("rejected = %d", summary.RejectedCount)
	}
	// malformed cost coerces rather than failing, so only the store timeout is lost
	if summary.InsertedCount != 2 {
		t.Fatalf("inserted = %d", summary.InsertedCount)
	}
	if len(summary.Errors) != 1 || !strings.Contains(summary.Errors[0], "Storm Watch") {
		t.Fatalf("errors = %v", summary.Errors)
	}
	if len(indexer.indexed) != 2 {
		t.Fatalf("indexed = %v", indexer.indexed)
	}
}

func TestRun_IndexFailureInvisibleToCaller(t *testing.T) {
	writer := newFakeWriter()
	indexer := &fakeIndexer{broken: true}
	runner := New(writer, indexer, guardrails.Timeouts{})

	summary, err := runner.Run(context.Background(), domain.Batch{
		Source:     "seed-data",
		SourceType: normalize.ShapeNormalized,
		RawEvents:  rawBatch(`{"title":"Book Swap","start_date":"2025-06-01"}`),
	})
	if err != nil {
		t.Fatalf("index failure must not surface: %v", err)
	}
	if summary.InsertedCount != 1 {
		t.Fatalf("inserted = %d", summary.InsertedCount)
	}
	if summary.IndexedCount != 0 {
		t.Fatalf("indexed = %d", summary.IndexedCount)
	}
	if len(summary.Errors) != 0 {
		t.Fatalf("index failures leaked into errors: %v", summary.Errors)
	}
}

func TestRun_SystemicStoreFailureSurfaces(t *testing.T) {
	writer := newFakeWriter()
	writer.systemic = perr.Unavailablef("store unreachable")
	runner := New(writer, &fakeIndexer{}, guardrails.Timeouts{})

	summary, err := runner.Run(context.Background(), domain.Batch{
		Source:     "crawler",
		SourceType: normalize.ShapeCrawler,
		RawEvents:  rawBatch(`{"title":"Jazz Night","start_date":"2025-03-01"}`),
	})
	if err == nil {
		t.Fatal("systemic failure must surface")
	}
	if !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("want unavailable, got %v", err)
	}
	if summary.ProcessedCount != 1 {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestRun_ValidatesBatchHeader(t *testing.T) {
	runner := New(newFakeWriter(), &fakeIndexer{}, guardrails.Timeouts{})

	_, err := runner.Run(context.Background(), domain.Batch{
		Source:     "",
		SourceType: normalize.ShapeCrawler,
	})
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("want invalid argument, got %v", err)
	}

	_, err = runner.Run(context.Background(), domain.Batch{
		Source:     "crawler",
		SourceType: "mystery",
	})
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("want invalid argument, got %v", err)
	}
}
