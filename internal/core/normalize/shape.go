package normalize

// SourceType discriminates which raw shape a payload claims to be
// callers pass it explicitly, the normalizer never guesses by probing keys
type SourceType string

// Known raw shapes
const (
	// ShapeAPI is the third-party events API shape
	// datetimes arrive combined, venue is a nested structure
	ShapeAPI SourceType = "api-shape"

	// ShapeListing is the listings-site shape, everything is a flat string
	ShapeListing SourceType = "listing-shape"

	// ShapeCrawler is the crawler shape, category is an array and cost a nested object
	ShapeCrawler SourceType = "crawler-shape"

	// ShapeNormalized passes an already-canonical payload through unchanged
	ShapeNormalized SourceType = "already-normalized"
)

// Valid reports whether st names a known shape
func (st SourceType) Valid() bool {
	switch st {
	case ShapeAPI, ShapeListing, ShapeCrawler, ShapeNormalized:
		return true
	}
	return false
}

// apiVenue is the nested venue structure of the API shape
type apiVenue struct {
	Name        string  `json:"name"`
	FullAddress string  `json:"full_address"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// apiTicketLink is one ticket vendor entry in the API shape
type apiTicketLink struct {
	Source string `json:"source"`
	Link   string `json:"link"`
}

// apiShape mirrors the third-party events API payload
type apiShape struct {
	EventID     string          `json:"event_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	StartTime   string          `json:"start_time"` // combined date-time
	EndTime     string          `json:"end_time"`
	Venue       apiVenue        `json:"venue"`
	Link        string          `json:"link"`
	Thumbnail   string          `json:"thumbnail"`
	Publisher   string          `json:"publisher"`
	IsVirtual   bool            `json:"is_virtual"`
	TicketLinks []apiTicketLink `json:"ticket_links"`
	Tags        any             `json:"tags"`
}

// listingShape mirrors the listings-site payload, flat strings throughout
type listingShape struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Location    string `json:"location"`
	Category    string `json:"category"`
	Price       string `json:"price"`
	URL         string `json:"url"`
	ImageURL    string `json:"image_url"`
}

// crawlerShape mirrors the crawler payload
// polymorphic fields stay any and are coerced during mapping
type crawlerShape struct {
	ExternalID       string            `json:"external_id"`
	Title            string            `json:"title"`
	Description      string            `json:"description"`
	StartDate        string            `json:"start_date"`
	EndDate          string            `json:"end_date"`
	StartTime        string            `json:"start_time"`
	EndTime          string            `json:"end_time"`
	Venue            any               `json:"venue"` // string or {name, address}
	Location         string            `json:"location"`
	Coordinates      string            `json:"coordinates"`
	Category         any               `json:"category"` // string or array
	Cost             any               `json:"cost"`     // object, number, or string
	ImageURL         string            `json:"image_url"`
	URL              string            `json:"url"`
	Socials          map[string]string `json:"socials"`
	IsPublic         *bool             `json:"is_public"`
	Confidence       float64           `json:"confidence"`
	ExtractionMethod string            `json:"extractionMethod"`
}

// normalizedShape is a tolerant reading of an already-canonical payload
// category and cost still pass through coercion so callers cannot smuggle
// malformed values past the invariants
type normalizedShape struct {
	Title            string            `json:"title"`
	Description      string            `json:"description"`
	StartDate        string            `json:"start_date"`
	EndDate          string            `json:"end_date"`
	StartTime        string            `json:"start_time"`
	EndTime          string            `json:"end_time"`
	Location         string            `json:"location"`
	Venue            string            `json:"venue"`
	VenueAddress     string            `json:"venue_address"`
	Coordinates      string            `json:"coordinates"`
	Category         any               `json:"category"`
	Cost             any               `json:"cost"`
	ImageURL         string            `json:"image_url"`
	URL              string            `json:"url"`
	Socials          map[string]string `json:"socials"`
	ExternalID       string            `json:"external_id"`
	IsPublic         *bool             `json:"is_public"`
	IsVirtual        bool              `json:"is_virtual"`
	Publisher        string            `json:"publisher"`
	TicketLinks      []string          `json:"ticket_links"`
	Confidence       float64           `json:"confidence"`
	ExtractionMethod string            `json:"extraction_method"`
}
