// Package repo provides the events repository implementation
package repo

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"touchgrass/internal/modkit/repokit"
	perr "touchgrass/internal/platform/errors"
	"touchgrass/internal/services/events/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage defines the events repository
type Storage interface {
	// InsertIfAbsent writes rec only when no row with its id exists yet
	// reports whether a new row was created
	InsertIfAbsent(ctx context.Context, rec domain.StoredEvent) (bool, error)
	Get(ctx context.Context, id string) (domain.StoredEvent, error)
	List(ctx context.Context, f domain.Filters) ([]domain.StoredEvent, error)
}

const eventColumns = `
	id, title, description, start_date, end_date, start_time, end_time,
	location, venue, venue_address, coordinates, category,
	cost_type, cost_currency, cost_amount,
	image_url, url, socials, source, external_id,
	is_public, is_virtual, publisher, ticket_links, confidence, extraction_method,
	created_at, created_at_ms, updated_at, updated_at_ms`

// InsertIfAbsent implements Storage
// the conditional insert is the idempotency guarantee, a conflicting id is a
// clean no-op reported as created=false
func (s *pg) InsertIfAbsent(ctx context.Context, rec domain.StoredEvent) (bool, error) {
	ev := rec.Event

	var socials []byte
	if len(ev.Socials) > 0 {
		b, err := json.Marshal(ev.Socials)
		if err != nil {
			return false, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "encode socials")
		}
		socials = b
	}

	tag, err := s.q.Exec(ctx, `
		INSERT INTO events (`+eventColumns+`)
		VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11, $12,
			$13, $14, $15,
			$16, $17, $18::jsonb, $19, $20,
			$21, $22, $23, $24, $25, $26,
			$27, $28, $29, $30
		)
		ON CONFLICT (id) DO NOTHING`,
		rec.ID, ev.Title, ev.Description, ev.StartDate, ev.EndDate, ev.StartTime, ev.EndTime,
		ev.Location, ev.Venue, ev.VenueAddress, ev.Coordinates, ev.Category,
		string(ev.Cost.Type), ev.Cost.Currency, ev.Cost.Amount,
		ev.ImageURL, ev.URL, socials, ev.Source, ev.ExternalID,
		ev.IsPublic, ev.IsVirtual, ev.Publisher, ev.TicketLinks, ev.Confidence, ev.ExtractionMethod,
		rec.CreatedAt, rec.CreatedAtMs, rec.UpdatedAt, rec.UpdatedAtMs,
	)
	if err != nil {
		return false, perr.FromPostgres(err, "insert event")
	}
	return tag.RowsAffected() > 0, nil
}

// Get implements Storage
func (s *pg) Get(ctx context.Context, id string) (domain.StoredEvent, error) {
	row := s.q.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	rec, err := scanEvent(row)
	if err != nil {
		if strings.Contains(err.Error(), "no rows") {
			return domain.StoredEvent{}, perr.NotFoundf("event %q not found", id)
		}
		return domain.StoredEvent{}, perr.FromPostgres(err, "get event")
	}
	return rec, nil
}

// List implements Storage
// dates compare lexically because they are stored canonical YYYY-MM-DD
func (s *pg) List(ctx context.Context, f domain.Filters) ([]domain.StoredEvent, error) {
	var sb strings.Builder
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	sb.WriteString(`SELECT ` + eventColumns + ` FROM events WHERE is_public`)
	if f.Category != "" {
		// category is a comma-joined tag list, match any position
		sb.WriteString(` AND (category = ` + arg(f.Category) +
			` OR category LIKE ` + arg(f.Category+",%") +
			` OR category LIKE ` + arg("%, "+f.Category+",%") +
			` OR category LIKE ` + arg("%, "+f.Category) + `)`)
	}
	if f.From != "" {
		sb.WriteString(` AND start_date >= ` + arg(f.From))
	}
	if f.To != "" {
		sb.WriteString(` AND start_date <= ` + arg(f.To))
	}
	if f.From != "" || f.To != "" {
		sb.WriteString(` AND start_date <> ''`)
	}
	sb.WriteString(` ORDER BY start_date, id`)
	if f.Limit > 0 {
		sb.WriteString(` LIMIT ` + arg(f.Limit))
	}

	rows, err := s.q.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, perr.FromPostgres(err, "list events")
	}
	defer rows.Close()

	var out []domain.StoredEvent
	for rows.Next() {
		rec, err := scanEvent(rows)
		if err != nil {
			return nil, perr.FromPostgres(err, "scan event")
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, perr.FromPostgres(err, "list events")
	}
	return out, nil
}

// scanner covers both Row and Rows
type scanner interface{ Scan(dest ...any) error }

func scanEvent(sc scanner) (domain.StoredEvent, error) {
	var (
		rec      domain.StoredEvent
		costType string
		socials  []byte
	)
	ev := &rec.Event
	err := sc.Scan(
		&rec.ID, &ev.Title, &ev.Description, &ev.StartDate, &ev.EndDate, &ev.StartTime, &ev.EndTime,
		&ev.Location, &ev.Venue, &ev.VenueAddress, &ev.Coordinates, &ev.Category,
		&costType, &ev.Cost.Currency, &ev.Cost.Amount,
		&ev.ImageURL, &ev.URL, &socials, &ev.Source, &ev.ExternalID,
		&ev.IsPublic, &ev.IsVirtual, &ev.Publisher, &ev.TicketLinks, &ev.Confidence, &ev.ExtractionMethod,
		&rec.CreatedAt, &rec.CreatedAtMs, &rec.UpdatedAt, &rec.UpdatedAtMs,
	)
	if err != nil {
		return domain.StoredEvent{}, err
	}
	ev.Cost.Type = domain.CostType(costType)
	if len(socials) > 0 {
		if err := json.Unmarshal(socials, &ev.Socials); err != nil {
			return domain.StoredEvent{}, err
		}
	}
	return rec, nil
}

