//go:build integration_pg
// +build integration_pg

package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	perr "touchgrass/internal/platform/errors"
	"touchgrass/internal/platform/store"
	"touchgrass/internal/services/events/domain"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startPostgres launches a disposable Postgres and returns DSN + stop func
func startPostgres(t *testing.T) (dsn string, stop func()) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)

	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_DB":       "postgres",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections"),
		).WithDeadline(2 * time.Minute),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		cancel()
		t.Fatalf("failed to start postgres container: %v", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get container host: %v", err)
	}
	mp, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get mapped port: %v", err)
	}

	dsn = fmt.Sprintf("postgres://postgres:postgres@%s:%s/postgres?sslmode=disable", host, mp.Port())
	stop = func() {
		_ = c.Terminate(context.Background())
		cancel()
	}
	return dsn, stop
}

func openEventStorage(t *testing.T, ctx context.Context, dsn string) Storage {
	t.Helper()

	st, err := store.Open(ctx, store.Config{
		AppName: "events-repo-test",
		PG:      store.PGConfig{Enabled: true, URL: dsn, MaxConns: 2},
	})
	if err != nil {
		t.Fatalf("store open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	if _, err := st.PG.Exec(ctx, eventsDDL); err != nil {
		t.Fatalf("create events table: %v", err)
	}
	return NewPG().Bind(st.PG)
}

const eventsDDL = `
	CREATE TABLE IF NOT EXISTS events (
		id                TEXT PRIMARY KEY,
		title             TEXT NOT NULL,
		description       TEXT NOT NULL DEFAULT '',
		start_date        TEXT NOT NULL DEFAULT '',
		end_date          TEXT NOT NULL DEFAULT '',
		start_time        TEXT NOT NULL DEFAULT '',
		end_time          TEXT NOT NULL DEFAULT '',
		location          TEXT NOT NULL DEFAULT '',
		venue             TEXT NOT NULL DEFAULT '',
		venue_address     TEXT NOT NULL DEFAULT '',
		coordinates       TEXT NOT NULL DEFAULT '',
		category          TEXT NOT NULL DEFAULT '',
		cost_type         TEXT NOT NULL DEFAULT 'free',
		cost_currency     TEXT NOT NULL DEFAULT '',
		cost_amount       DOUBLE PRECISION NOT NULL DEFAULT 0,
		image_url         TEXT NOT NULL DEFAULT '',
		url               TEXT NOT NULL DEFAULT '',
		socials           JSONB,
		source            TEXT NOT NULL DEFAULT '',
		external_id       TEXT NOT NULL DEFAULT '',
		is_public         BOOLEAN NOT NULL DEFAULT TRUE,
		is_virtual        BOOLEAN NOT NULL DEFAULT FALSE,
		publisher         TEXT NOT NULL DEFAULT '',
		ticket_links      TEXT[],
		confidence        DOUBLE PRECISION NOT NULL DEFAULT 0,
		extraction_method TEXT NOT NULL DEFAULT '',
		created_at        TIMESTAMPTZ NOT NULL,
		created_at_ms     BIGINT NOT NULL,
		updated_at        TIMESTAMPTZ NOT NULL,
		updated_at_ms     BIGINT NOT NULL
	)`

func sampleRecord(id string) domain.StoredEvent {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return domain.StoredEvent{
		ID: id,
		Event: domain.Event{
			Title:     "Jazz Night",
			StartDate: "2025-03-01",
			EndDate:   "2025-03-01",
			StartTime: "7:00 PM",
			Location:  "Blues Alley",
			Category:  "music",
			Cost:      domain.Cost{Type: "fixed", Currency: "USD", Amount: 25},
			Source:    "washingtonian",
			Socials:   map[string]string{"instagram": "https://instagram.com/bluesalley"},
			IsPublic:  true,
		},
		CreatedAt:   now,
		CreatedAtMs: now.UnixMilli(),
		UpdatedAt:   now,
		UpdatedAtMs: now.UnixMilli(),
	}
}

func TestRepo_Integration_InsertIfAbsent(t *testing.T) {
	dsn, stop := startPostgres(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	st := openEventStorage(t, ctx, dsn)
	rec := sampleRecord("evt:jazz-night:2025-03-01")

	created, err := st.InsertIfAbsent(ctx, rec)
	if err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if !created {
		t.Fatal("first insert should create")
	}

	again, err := st.InsertIfAbsent(ctx, rec)
	if err != nil {
		t.Fatalf("second insert: %v", err)
	}
	if again {
		t.Fatal("second insert must be a no-op")
	}

	got, err := st.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Event.Title != "Jazz Night" || got.Event.Cost.Amount != 25 {
		t.Fatalf("roundtrip mismatch: %+v", got.Event)
	}
	if got.Event.Socials["instagram"] == "" {
		t.Fatalf("socials lost: %+v", got.Event.Socials)
	}
	if got.CreatedAtMs != rec.CreatedAtMs {
		t.Fatalf("created_at_ms mismatch: %d vs %d", got.CreatedAtMs, rec.CreatedAtMs)
	}
}

func TestRepo_Integration_GetMissing(t *testing.T) {
	dsn, stop := startPostgres(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	st := openEventStorage(t, ctx, dsn)
	_, err := st.Get(ctx, "evt:missing:0000-00-00")
	if !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("want not found, got %v", err)
	}
}

func TestRepo_Integration_ListFilters(t *testing.T) {
	dsn, stop := startPostgres(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	st := openEventStorage(t, ctx, dsn)

	seed := []struct {
		id, title, date, category string
		public                    bool
	}{
		{"evt:a:2025-03-01", "A", "2025-03-01", "music", true},
		{"evt:b:2025-03-05", "B", "2025-03-05", "music, jazz", true},
		{"evt:c:2025-04-01", "C", "2025-04-01", "food", true},
		{"evt:d:2025-03-02", "D", "2025-03-02", "music", false},
	}
	for _, s := range seed {
		rec := sampleRecord(s.id)
		rec.Event.Title = s.title
		rec.Event.StartDate = s.date
		rec.Event.Category = s.category
		rec.Event.IsPublic = s.public
		if _, err := st.InsertIfAbsent(ctx, rec); err != nil {
			t.Fatalf("seed %s: %v", s.id, err)
		}
	}

	got, err := st.List(ctx, domain.Filters{Category: "music", Limit: 10})
	if err != nil {
		t.Fatalf("list by category: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("category filter got %d rows", len(got))
	}

	got, err = st.List(ctx, domain.Filters{From: "2025-03-01", To: "2025-03-31", Limit: 10})
	if err != nil {
		t.Fatalf("list by date: %v", err)
	}
	if len(got) != 2 { // private row excluded
		t.Fatalf("date filter got %d rows", len(got))
	}
}
