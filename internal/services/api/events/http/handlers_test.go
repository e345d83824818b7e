package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	phttp "touchgrass/internal/platform/net/http"
	dto "touchgrass/internal/services/api/events/domain"
	events "touchgrass/internal/services/events/domain"
	pipedom "touchgrass/internal/services/pipeline/domain"
)

type fakeRunner struct {
	got     pipedom.Batch
	summary pipedom.Summary
}

func (f *fakeRunner) Run(ctx context.Context, b pipedom.Batch) (pipedom.Summary, error) {
	f.got = b
	return f.summary, nil
}

type fakeQuery struct {
	rec events.StoredEvent
	err error
}

func (f *fakeQuery) Get(ctx context.Context, id string) (events.StoredEvent, error) {
	return f.rec, f.err
}

func (f *fakeQuery) List(ctx context.Context, fl events.Filters) ([]events.StoredEvent, error) {
	return []events.StoredEvent{f.rec}, f.err
}

func newRouter(d Deps) http.Handler {
	r := phttp.AdaptChi(chi.NewRouter())
	Register(r, d)
	return r.Mux()
}

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(rec, req)
	return rec
}

func TestSubmitRunsPipelineAndReturns201(t *testing.T) {
	runner := &fakeRunner{summary: pipedom.Summary{
		ProcessedCount: 1,
		InsertedCount:  1,
		EventIDs:       []string{"evt:manual:jazz-night:2026-09-01"},
	}}
	h := newRouter(Deps{Query: &fakeQuery{}, Runner: runner})

	rec := postJSON(t, h, "/", `{"title": "Jazz Night", "start_date": "2026-09-01"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
	if runner.got.Source != "manual" {
		t.Fatalf("source = %q, want manual default", runner.got.Source)
	}
	if len(runner.got.RawEvents) != 1 {
		t.Fatalf("raw events = %d", len(runner.got.RawEvents))
	}

	var env phttp.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	data, _ := json.Marshal(env.Data)
	var out dto.SubmitEventResponse
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !out.WasNewlyCreated || out.Rejected {
		t.Fatalf("response = %+v", out)
	}
	if out.EventID != "evt:manual:jazz-night:2026-09-01" {
		t.Fatalf("event id = %q", out.EventID)
	}
}

func TestSubmitReportsRejection(t *testing.T) {
	// pipeline rejected the only event, e.g. the title folded to empty
	runner := &fakeRunner{summary: pipedom.Summary{ProcessedCount: 1, RejectedCount: 1}}
	h := newRouter(Deps{Query: &fakeQuery{}, Runner: runner})

	rec := postJSON(t, h, "/", `{"title": "--"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
	var env phttp.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	data, _ := json.Marshal(env.Data)
	var out dto.SubmitEventResponse
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !out.Rejected {
		t.Fatalf("response = %+v, want rejected", out)
	}
}

func TestSubmitValidatesTitle(t *testing.T) {
	h := newRouter(Deps{Query: &fakeQuery{}, Runner: &fakeRunner{}})

	rec := postJSON(t, h, "/", `{"description": "no title here"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want validation failure", rec.Code)
	}
}

func TestGetFormatsStoredEvent(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	q := &fakeQuery{rec: events.StoredEvent{
		ID:          "evt:seed-data:x1",
		Event:       events.Event{Title: "Jazz Night"},
		CreatedAt:   now,
		CreatedAtMs: now.UnixMilli(),
		UpdatedAt:   now,
		UpdatedAtMs: now.UnixMilli(),
	}}
	h := newRouter(Deps{Query: q, Runner: &fakeRunner{}})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/evt:seed-data:x1", nil)
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
	var env phttp.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	data, _ := json.Marshal(env.Data)
	var out dto.EventResponse
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.ID != "evt:seed-data:x1" || out.Title != "Jazz Night" {
		t.Fatalf("response = %+v", out)
	}
	if out.CreatedAt != "2026-08-28T12:00:00Z" {
		t.Fatalf("created_at = %q", out.CreatedAt)
	}
}
