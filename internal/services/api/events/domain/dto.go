// Package domain holds the API DTOs for the events surface
package domain

import (
	events "touchgrass/internal/services/events/domain"
)

// SubmitEventRequest is a manual event submission
// the payload is re-run through the normalizer, so category and cost accept
// any of the shapes the pipeline tolerates
type SubmitEventRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description,omitempty"`

	StartDate string `json:"start_date,omitempty" validate:"omitempty,isodate"`
	EndDate   string `json:"end_date,omitempty" validate:"omitempty,isodate"`
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`

	Location     string `json:"location,omitempty"`
	Venue        string `json:"venue,omitempty"`
	VenueAddress string `json:"venue_address,omitempty"`
	Coordinates  string `json:"coordinates,omitempty"`

	Category any `json:"category,omitempty"`
	Cost     any `json:"cost,omitempty"`

	ImageURL string            `json:"image_url,omitempty" validate:"omitempty,url"`
	URL      string            `json:"url,omitempty" validate:"omitempty,url"`
	Socials  map[string]string `json:"socials,omitempty"`

	Source     string `json:"source,omitempty"`
	ExternalID string `json:"external_id,omitempty"`

	IsPublic  *bool `json:"is_public,omitempty"`
	IsVirtual bool  `json:"is_virtual,omitempty"`

	Publisher   string   `json:"publisher,omitempty"`
	TicketLinks []string `json:"ticket_links,omitempty" validate:"omitempty,dive,url"`
}

// SubmitEventResponse reports what the pipeline did with the submission
type SubmitEventResponse struct {
	EventID         string `json:"event_id,omitempty"`
	WasNewlyCreated bool   `json:"was_newly_created"`
	Rejected        bool   `json:"rejected"`
}

// ListEventsRequest filters stored events
type ListEventsRequest struct {
	Category string `json:"category,omitempty"`
	From     string `json:"from,omitempty" validate:"omitempty,isodate"`
	To       string `json:"to,omitempty" validate:"omitempty,isodate"`
	Limit    int    `json:"limit,omitempty" validate:"omitempty,min=1,max=500"`
}

// EventResponse is one stored event shaped for the wire
type EventResponse struct {
	ID string `json:"id"`
	events.Event

	CreatedAt   string `json:"created_at"`
	CreatedAtMs int64  `json:"created_at_ms"`
	UpdatedAt   string `json:"updated_at"`
	UpdatedAtMs int64  `json:"updated_at_ms"`
}

// ListEventsResponse wraps a listing
type ListEventsResponse struct {
	Events []EventResponse `json:"events"`
	Count  int             `json:"count"`
}
