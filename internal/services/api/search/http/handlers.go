// Package http provides the search API handlers
package http

import (
	"net/http"

	"touchgrass/internal/modkit/httpkit"
	search "touchgrass/internal/services/search/domain"
)

// SearchRequest is a full-text search with optional facet filters
type SearchRequest struct {
	Query    string `json:"query,omitempty"`
	Category string `json:"category,omitempty"`
	Type     string `json:"type,omitempty" validate:"omitempty,oneof=event group"`
	Limit    int    `json:"limit,omitempty" validate:"omitempty,min=1,max=500"`
}

// SearchResponse wraps the matching documents
type SearchResponse struct {
	Results []search.Document `json:"results"`
	Count   int               `json:"count"`
}

// FacetsResponse lists category buckets
type FacetsResponse struct {
	Facets []search.Facet `json:"facets"`
}

type handlers struct {
	query search.QueryPort
}

// Register mounts the search routes
func Register(r httpkit.Router, query search.QueryPort) {
	h := &handlers{query: query}

	httpkit.PostJSON(r, "/", h.search)
	httpkit.Get(r, "/facets", h.facets)
}

func (h *handlers) search(r *http.Request, req SearchRequest) (any, error) {
	docs, err := h.query.Search(r.Context(), search.Query{
		Text:     req.Query,
		Category: req.Category,
		Type:     search.DocType(req.Type),
		Limit:    req.Limit,
	})
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []search.Document{}
	}
	return SearchResponse{Results: docs, Count: len(docs)}, nil
}

func (h *handlers) facets(r *http.Request) (any, error) {
	facets, err := h.query.Facets(r.Context())
	if err != nil {
		return nil, err
	}
	if facets == nil {
		facets = []search.Facet{}
	}
	return FacetsResponse{Facets: facets}, nil
}
