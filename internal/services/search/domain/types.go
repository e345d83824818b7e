// Package domain defines the types and interfaces for the search service
package domain

// DocType discriminates what a search document describes
type DocType string

// Document types
const (
	DocEvent DocType = "event"
	DocGroup DocType = "group"
)

// Document is the denormalized projection indexed for full-text and
// faceted search, eventually consistent with the primary store
type Document struct {
	DocID       string   `json:"doc_id"`
	Type        DocType  `json:"type"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Categories  []string `json:"categories"`
	Location    string   `json:"location"`
	Source      string   `json:"source"`
	URL         string   `json:"url"`
	StartDate   string   `json:"start_date"`
	CostType    string   `json:"cost_type"`
	CostAmount  float64  `json:"cost_amount"`
	IsPublic    bool     `json:"is_public"`
	CreatedAtMs int64    `json:"created_at_ms"`
	UpdatedAtMs int64    `json:"updated_at_ms"`
}

// IndexResult reports one best-effort index write
// the error rides in the value so callers can log it without the batch failing
type IndexResult struct {
	DocID string
	Err   error
}

// OK reports whether the write landed
func (r IndexResult) OK() bool { return r.Err == nil }

// Query narrows a search
type Query struct {
	Text     string
	Category string
	Type     DocType // empty matches both
	Limit    int
}

// Facet is one category bucket with its document count
type Facet struct {
	Category string
	Count    uint64
}
