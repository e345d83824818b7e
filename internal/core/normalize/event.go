// Package normalize maps heterogeneous raw event payloads into one canonical
// event record and derives the stable identity key used for deduplication.
// Everything in this package is pure logic over its inputs
package normalize

// CostType tags how an event charges admission
type CostType string

// Cost type values
const (
	CostFree     CostType = "free"
	CostFixed    CostType = "fixed"
	CostVariable CostType = "variable"
)

// Cost is the canonical admission cost structure
// Amount is always a finite non-negative number after coercion
type Cost struct {
	Type     CostType `json:"type"`
	Currency string   `json:"currency,omitempty"`
	Amount   float64  `json:"amount"`
}

// Event is the canonical record for one discrete happening
// optional fields are empty rather than pointers so the zero value is storable
type Event struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	// calendar dates in YYYY-MM-DD, clock times like "7:00 PM"
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`

	Location     string `json:"location,omitempty"`
	Venue        string `json:"venue,omitempty"`
	VenueAddress string `json:"venue_address,omitempty"`
	Coordinates  string `json:"coordinates,omitempty"` // "lat,lng"

	// comma-joined canonical tag list, see Category helpers
	Category string `json:"category,omitempty"`

	Cost Cost `json:"cost"`

	ImageURL string            `json:"image_url,omitempty"`
	URL      string            `json:"url,omitempty"`
	Socials  map[string]string `json:"socials,omitempty"`

	// provenance
	Source     string `json:"source,omitempty"`
	ExternalID string `json:"external_id,omitempty"`

	IsPublic  bool `json:"is_public"`
	IsVirtual bool `json:"is_virtual,omitempty"`

	Publisher        string   `json:"publisher,omitempty"`
	TicketLinks      []string `json:"ticket_links,omitempty"`
	Confidence       float64  `json:"confidence,omitempty"`
	ExtractionMethod string   `json:"extraction_method,omitempty"`
}

// Key returns the event's identity key, see identity.go for the derivation rule
func (e Event) Key() string {
	return EventKey(e.Source, e.ExternalID, e.Title, e.StartDate)
}

// Categories returns the canonical category string parsed back to a tag set
func (e Event) Categories() []string {
	return CategorySet(e.Category)
}
