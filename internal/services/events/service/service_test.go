package service

import (
	"context"
	"strings"
	"testing"

	"touchgrass/internal/modkit/repokit"
	perr "touchgrass/internal/platform/errors"
	"touchgrass/internal/services/events/domain"
	"touchgrass/internal/services/events/repo"
)

// memStorage is an in-memory Storage double with optional per-title failures
type memStorage struct {
	recs     map[string]domain.StoredEvent
	failWhen func(domain.StoredEvent) error
	inserts  int
}

func newMemStorage() *memStorage {
	return &memStorage{recs: map[string]domain.StoredEvent{}}
}

func (m *memStorage) InsertIfAbsent(_ context.Context, rec domain.StoredEvent) (bool, error) {
	if m.failWhen != nil {
		if err := m.failWhen(rec); err != nil {
			return false, err
		}
	}
	if _, exists := m.recs[rec.ID]; exists {
		return false, nil
	}
	m.recs[rec.ID] = rec
	m.inserts++
	return true, nil
}

func (m *memStorage) Get(_ context.Context, id string) (domain.StoredEvent, error) {
	rec, ok := m.recs[id]
	if !ok {
		return domain.StoredEvent{}, perr.NotFoundf("event %q not found", id)
	}
	return rec, nil
}

func (m *memStorage) List(_ context.Context, f domain.Filters) ([]domain.StoredEvent, error) {
	var out []domain.StoredEvent
	for _, rec := range m.recs {
		out = append(out, rec)
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out, nil
}

func newTestService(st repo.Storage, throttle domain.ThrottlePort) *Service {
	binder := repokit.BindFunc[repo.Storage](func(repokit.Queryer) repo.Storage { return st })
	return New(nil, binder, throttle, Config{})
}

func TestSave_IdempotentOnSecondCall(t *testing.T) {
	mem := newMemStorage()
	svc := newTestService(mem, nil)
	ev := domain.Event{Title: "Jazz Night", StartDate: "2025-03-01", Source: "washingtonian"}

	first, err := svc.Save(context.Background(), ev)
	if err != nil {
		t.Fatalf("first save: %v", err)
	}
	if !first.WasNewlyCreated {
		t.Fatal("first save should create")
	}

	stored := mem.recs[first.EventID]

	second, err := svc.Save(context.Background(), ev)
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if second.WasNewlyCreated {
		t.Fatal("second save must be a no-op")
	}
	if second.EventID != first.EventID {
		t.Fatalf("identity drifted: %q vs %q", second.EventID, first.EventID)
	}
	if mem.inserts != 1 {
		t.Fatalf("inserts = %d", mem.inserts)
	}
	// stored content untouched by the repeat
	if after := mem.recs[first.EventID]; after.CreatedAtMs != stored.CreatedAtMs {
		t.Fatal("repeat save mutated the stored record")
	}
}

func TestSave_RejectsMissingTitle(t *testing.T) {
	svc := newTestService(newMemStorage(), nil)
	_, err := svc.Save(context.Background(), domain.Event{Title: "   "})
	if !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("want validation error, got %v", err)
	}
}

func TestSave_DuplicateKeyRaceIsSuccess(t *testing.T) {
	mem := newMemStorage()
	mem.failWhen = func(domain.StoredEvent) error {
		return perr.DuplicateKeyf("events_pkey")
	}
	svc := newTestService(mem, nil)

	res, err := svc.Save(context.Background(), domain.Event{Title: "Jazz Night", StartDate: "2025-03-01"})
	if err != nil {
		t.Fatalf("duplicate key must not surface: %v", err)
	}
	if res.WasNewlyCreated {
		t.Fatal("race loser must report not-created")
	}
}

func TestSaveMany_SkipsFailingItems(t *testing.T) {
	mem := newMemStorage()
	mem.failWhen = func(rec domain.StoredEvent) error {
		if strings.Contains(rec.Event.Title, "Broken") {
			return perr.Unavailablef("store timeout")
		}
		return nil
	}
	svc := newTestService(mem, nil)

	batch := []domain.Event{
		{Title: "Jazz Night", StartDate: "2025-03-01"},
		{Title: "Broken Event", StartDate: "2025-03-02"},
		{Title: "Book Swap", StartDate: "2025-03-03"},
	}
	res, err := svc.SaveMany(context.Background(), batch)
	if err != nil {
		t.Fatalf("batch must not abort: %v", err)
	}
	if res.Inserted != 2 {
		t.Fatalf("inserted = %d", res.Inserted)
	}
	if len(res.Saved) != 2 || len(res.EventIDs) != 2 {
		t.Fatalf("saved = %d ids = %d", len(res.Saved), len(res.EventIDs))
	}
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "store timeout") {
		t.Fatalf("errors = %v", res.Errors)
	}
}

// countingThrottle records how many waits a batch performed
type countingThrottle struct{ waits int }

func (c *countingThrottle) Wait(context.Context) error {
	c.waits++
	return nil
}

func TestSaveMany_PacesEveryWrite(t *testing.T) {
	throttle := &countingThrottle{}
	svc := newTestService(newMemStorage(), throttle)

	batch := []domain.Event{
		{Title: "A", StartDate: "2025-03-01"},
		{Title: "B", StartDate: "2025-03-02"},
		{Title: "C", StartDate: "2025-03-03"},
	}
	if _, err := svc.SaveMany(context.Background(), batch); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if throttle.waits != len(batch) {
		t.Fatalf("waits = %d want %d", throttle.waits, len(batch))
	}
}

func TestSaveMany_StopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := newTestService(newMemStorage(), NewRateThrottle(1, 1))
	// burst of 1 means the second item must wait on a dead context
	_, err := svc.SaveMany(ctx, []domain.Event{
		{Title: "A", StartDate: "2025-03-01"},
		{Title: "B", StartDate: "2025-03-02"},
	})
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("want unavailable, got %v", err)
	}
}

func TestList_ClampsLimit(t *testing.T) {
	mem := newMemStorage()
	svc := New(nil, repokit.BindFunc[repo.Storage](func(repokit.Queryer) repo.Storage { return mem }),
		nil, Config{ListLimit: 2})

	for _, title := range []string{"A", "B", "C"} {
		if _, err := svc.Save(context.Background(), domain.Event{Title: title, StartDate: "2025-03-01"}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	got, err := svc.List(context.Background(), domain.Filters{Limit: 999})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d", len(got))
	}
}
