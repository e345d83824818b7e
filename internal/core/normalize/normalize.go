package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrRejected marks an input the normalizer refused to emit
// rejections are expected and counted by callers, never fatal to a batch
var ErrRejected = errors.New("event rejected")

// rejectf wraps ErrRejected with a reason
func rejectf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrRejected, fmt.Sprintf(format, args...))
}

// Normalize maps one raw payload of the declared shape into a canonical Event
// returns ErrRejected when the payload cannot yield a usable record
func Normalize(raw json.RawMessage, source string, st SourceType) (Event, error) {
	if !st.Valid() {
		return Event{}, rejectf("unknown source type %q", st)
	}

	var (
		ev  Event
		err error
	)
	switch st {
	case ShapeAPI:
		ev, err = fromAPI(raw)
	case ShapeListing:
		ev, err = fromListing(raw)
	case ShapeCrawler:
		ev, err = fromCrawler(raw)
	case ShapeNormalized:
		ev, err = fromNormalized(raw)
	}
	if err != nil {
		return Event{}, err
	}

	ev.Title = strings.TrimSpace(ev.Title)
	if ev.Title == "" {
		return Event{}, rejectf("missing title")
	}
	ev.Source = source

	// end date defaults to start date for single-day events
	if ev.EndDate == "" {
		ev.EndDate = ev.StartDate
	}
	return ev, nil
}

func fromAPI(raw json.RawMessage) (Event, error) {
	var in apiShape
	if err := json.Unmarshal(raw, &in); err != nil {
		return Event{}, rejectf("malformed api payload: %v", err)
	}

	startDate, startTime := ParseDateTime(in.StartTime)
	endDate, endTime := ParseDateTime(in.EndTime)

	ev := Event{
		Title:        in.Title,
		Description:  in.Description,
		StartDate:    startDate,
		EndDate:      endDate,
		StartTime:    startTime,
		EndTime:      endTime,
		Venue:        in.Venue.Name,
		VenueAddress: in.Venue.FullAddress,
		Location:     FlattenVenue(in.Venue.Name, in.Venue.FullAddress),
		Category:     NormalizeCategory(in.Tags),
		Cost:         Cost{Type: CostFree, Amount: 0}, // the API does not carry prices
		ImageURL:     in.Thumbnail,
		URL:          in.Link,
		ExternalID:   in.EventID,
		IsPublic:     true,
		IsVirtual:    in.IsVirtual,
		Publisher:    in.Publisher,
	}
	if in.Venue.Latitude != 0 || in.Venue.Longitude != 0 {
		ev.Coordinates = formatCoords(in.Venue.Latitude, in.Venue.Longitude)
	}
	for _, tl := range in.TicketLinks {
		if tl.Link != "" {
			ev.TicketLinks = append(ev.TicketLinks, tl.Link)
		}
	}
	return ev, nil
}

func fromListing(raw json.RawMessage) (Event, error) {
	var in listingShape
	if err := json.Unmarshal(raw, &in); err != nil {
		return Event{}, rejectf("malformed listing payload: %v", err)
	}
	return Event{
		Title:       in.Title,
		Description: in.Description,
		StartDate:   ParseDate(in.Date),
		StartTime:   ParseClock(in.Time),
		Location:    in.Location,
		Category:    NormalizeCategory(in.Category),
		Cost:        CoerceCost(in.Price),
		URL:         in.URL,
		ImageURL:    in.ImageURL,
		IsPublic:    true,
	}, nil
}

func fromCrawler(raw json.RawMessage) (Event, error) {
	var in crawlerShape
	if err := json.Unmarshal(raw, &in); err != nil {
		return Event{}, rejectf("malformed crawler payload: %v", err)
	}

	venue, venueAddr := coerceVenue(in.Venue)
	ev := Event{
		Title:            in.Title,
		Description:      in.Description,
		StartDate:        ParseDate(in.StartDate),
		EndDate:          ParseDate(in.EndDate),
		StartTime:        ParseClock(in.StartTime),
		EndTime:          ParseClock(in.EndTime),
		Venue:            venue,
		VenueAddress:     venueAddr,
		Location:         in.Location,
		Coordinates:      in.Coordinates,
		Category:         NormalizeCategory(in.Category),
		Cost:             CoerceCost(in.Cost),
		ImageURL:         in.ImageURL,
		URL:              in.URL,
		Socials:          in.Socials,
		ExternalID:       in.ExternalID,
		IsPublic:         in.IsPublic == nil || *in.IsPublic,
		Confidence:       in.Confidence,
		ExtractionMethod: in.ExtractionMethod,
	}
	if ev.Location == "" {
		ev.Location = FlattenVenue(venue, venueAddr)
	}
	return ev, nil
}

func fromNormalized(raw json.RawMessage) (Event, error) {
	var in normalizedShape
	if err := json.Unmarshal(raw, &in); err != nil {
		return Event{}, rejectf("malformed payload: %v", err)
	}
	return Event{
		Title:            in.Title,
		Description:      in.Description,
		StartDate:        ParseDate(in.StartDate),
		EndDate:          ParseDate(in.EndDate),
		StartTime:        ParseClock(in.StartTime),
		EndTime:          ParseClock(in.EndTime),
		Location:         in.Location,
		Venue:            in.Venue,
		VenueAddress:     in.VenueAddress,
		Coordinates:      in.Coordinates,
		Category:         NormalizeCategory(in.Category),
		Cost:             CoerceCost(in.Cost),
		ImageURL:         in.ImageURL,
		URL:              in.URL,
		Socials:          in.Socials,
		ExternalID:       in.ExternalID,
		IsPublic:         in.IsPublic == nil || *in.IsPublic,
		IsVirtual:        in.IsVirtual,
		Publisher:        in.Publisher,
		TicketLinks:      in.TicketLinks,
		Confidence:       in.Confidence,
		ExtractionMethod: in.ExtractionMethod,
	}, nil
}

// coerceVenue handles the crawler's venue being either a string or a structure
func coerceVenue(v any) (name, address string) {
	switch vv := v.(type) {
	case string:
		return strings.TrimSpace(vv), ""
	case map[string]any:
		if n, ok := vv["name"].(string); ok {
			name = strings.TrimSpace(n)
		}
		if a, ok := vv["address"].(string); ok {
			address = strings.TrimSpace(a)
		}
		return name, address
	default:
		return "", ""
	}
}

func formatCoords(lat, lng float64) string {
	return strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lng, 'f', -1, 64)
}
