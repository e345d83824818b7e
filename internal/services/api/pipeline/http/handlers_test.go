package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	phttp "touchgrass/internal/platform/net/http"
	pipedom "touchgrass/internal/services/pipeline/domain"
)

// fakeRunner records the batch it was handed and returns a preset summary
type fakeRunner struct {
	got     pipedom.Batch
	summary pipedom.Summary
	err     error
}

func (f *fakeRunner) Run(ctx context.Context, b pipedom.Batch) (pipedom.Summary, error) {
	f.got = b
	return f.summary, f.err
}

func newRouter(runner pipedom.RunnerPort) http.Handler {
	r := phttp.AdaptChi(chi.NewRouter())
	Register(r, runner)
	return r.Mux()
}

func TestRunReturnsSummary(t *testing.T) {
	runner := &fakeRunner{summary: pipedom.Summary{
		ProcessedCount: 2,
		InsertedCount:  1,
		EventIDs:       []string{"evt:seed-data:jazz-night:2026-09-01"},
	}}
	body := `{
		"source": "seed-data",
		"source_type": "listing-shape",
		"events": [{"title": "Jazz Night"}, {"title": "Open Mic"}]
	}`

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/run", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	newRouter(runner).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
	if runner.got.Source != "seed-data" || len(runner.got.RawEvents) != 2 {
		t.Fatalf("runner saw %+v", runner.got)
	}

	var env phttp.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	data, _ := json.Marshal(env.Data)
	var sum pipedom.Summary
	if err := json.Unmarshal(data, &sum); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if sum.ProcessedCount != 2 || sum.InsertedCount != 1 {
		t.Fatalf("summary = %+v", sum)
	}
}

func TestRunRejectsUnknownSourceType(t *testing.T) {
	runner := &fakeRunner{}
	body := `{"source": "seed-data", "source_type": "mystery-shape", "events": [{}]}`

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/run", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	newRouter(runner).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want validation failure", rec.Code)
	}
	if runner.got.Source != "" {
		t.Fatalf("runner should not have been called, saw %+v", runner.got)
	}
}

func TestRunRequiresEvents(t *testing.T) {
	runner := &fakeRunner{}
	body := `{"source": "seed-data", "source_type": "listing-shape", "events": []}`

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/run", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	newRouter(runner).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want validation failure", rec.Code)
	}
}
