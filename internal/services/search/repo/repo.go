// Package repo provides the search index repository over ClickHouse
package repo

import (
	"context"
	"strings"

	perr "touchgrass/internal/platform/errors"
	"touchgrass/internal/platform/store"
	"touchgrass/internal/services/search/domain"
)

// Index is the ClickHouse-backed document index
// the table is a ReplacingMergeTree keyed by doc_id, so writing the same
// document id again replaces rather than duplicates
type Index struct {
	ch store.Clickhouse
}

// NewCH constructs the index over the shared ClickHouse seam
func NewCH(ch store.Clickhouse) *Index {
	if ch == nil {
		panic("search repo: nil clickhouse")
	}
	return &Index{ch: ch}
}

const docColumns = `
	doc_id, doc_type, title, description, category, categories,
	location, source, url, start_date,
	cost_type, cost_amount, is_public, created_at_ms, updated_at_ms`

// Upsert writes doc under its id, idempotent by table engine
func (r *Index) Upsert(ctx context.Context, doc domain.Document) error {
	isPublic := uint8(0)
	if doc.IsPublic {
		isPublic = 1
	}
	err := r.ch.Exec(ctx, `
		INSERT INTO search_docs (`+docColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.DocID, string(doc.Type), doc.Title, doc.Description, doc.Category, doc.Categories,
		doc.Location, doc.Source, doc.URL, doc.StartDate,
		doc.CostType, doc.CostAmount, isPublic, doc.CreatedAtMs, doc.UpdatedAtMs,
	)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "index upsert")
	}
	return nil
}

// Search runs a case-insensitive substring match over title, description and
// location, optionally narrowed by category tag and document type
// FINAL collapses replaced rows so re-indexed documents appear once
func (r *Index) Search(ctx context.Context, q domain.Query) ([]domain.Document, error) {
	var sb strings.Builder
	var args []any

	sb.WriteString(`
		SELECT ` + docColumns + `
		FROM search_docs FINAL
		WHERE is_public = 1`)
	if text := strings.TrimSpace(q.Text); text != "" {
		sb.WriteString(`
			AND (positionCaseInsensitive(title, ?) > 0
				OR positionCaseInsensitive(description, ?) > 0
				OR positionCaseInsensitive(location, ?) > 0)`)
		args = append(args, text, text, text)
	}
	if q.Category != "" {
		sb.WriteString(` AND has(categories, ?)`)
		args = append(args, q.Category)
	}
	if q.Type != "" {
		sb.WriteString(` AND doc_type = ?`)
		args = append(args, string(q.Type))
	}
	sb.WriteString(` ORDER BY start_date, doc_id`)
	if q.Limit > 0 {
		sb.WriteString(` LIMIT ?`)
		args = append(args, q.Limit)
	}

	rows, err := r.ch.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "search query")
	}
	defer rows.Close()

	var out []domain.Document
	for rows.Next() {
		var (
			doc      domain.Document
			docType  string
			isPublic uint8
		)
		if err := rows.Scan(
			&doc.DocID, &docType, &doc.Title, &doc.Description, &doc.Category, &doc.Categories,
			&doc.Location, &doc.Source, &doc.URL, &doc.StartDate,
			&doc.CostType, &doc.CostAmount, &isPublic, &doc.CreatedAtMs, &doc.UpdatedAtMs,
		); err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "search scan")
		}
		doc.Type = domain.DocType(docType)
		doc.IsPublic = isPublic == 1
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "search rows")
	}
	return out, nil
}

// Facets aggregates public documents per category tag
func (r *Index) Facets(ctx context.Context) ([]domain.Facet, error) {
	rows, err := r.ch.Query(ctx, `
		SELECT tag, count() AS docs
		FROM search_docs FINAL
		ARRAY JOIN categories AS tag
		WHERE is_public = 1
		GROUP BY tag
		ORDER BY docs DESC, tag`)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "facets query")
	}
	defer rows.Close()

	var out []domain.Facet
	for rows.Next() {
		var f domain.Facet
		if err := rows.Scan(&f.Category, &f.Count); err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "facets scan")
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "facets rows")
	}
	return out, nil
}
