package events

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"event-sync/feature/events/models"
	"event-sync/feature/events/source"
)

// Source item fields.
const (
	fieldUID         = "uid"
	fieldExternalID  = "externalId"
	fieldLink        = "link"
	fieldRating      = "rating"
	fieldTitle       = "title"
	fieldDescription = "description"
	fieldTeaser      = "teaser"
	fieldDate        = "date"
	fieldBookedUp    = "bookedUp"
	fieldPrice       = "price"
	fieldCanceled    = "canceled"
	fieldStatus      = "status"
	fieldLocation    = "location"
	fieldLatitude    = "latitude"
	fieldLongitude   = "longitude"
	fieldStreet      = "street"
	fieldZip         = "zip"
	fieldCity        = "city"
	fieldCategories  = "categories"
	fieldImage       = "image"
	fieldCopyright   = "imageCopyright"
)

var (
	errNoUID       = errors.New("record has no uid")
	errNoLocation  = errors.New("record has no location")
	errNoOrganizer = errors.New("record has no organizer")
)

// EventKey is the source key of the record's event.
func EventKey(rec source.Record) (string, error) {
	uid := rec.String(fieldUID)
	if uid == "" {
		return "", errNoUID
	}
	return uid, nil
}

// OrganizerKey is the source key of the record's organizer.
func OrganizerKey(rec source.Record) (string, error) {
	name := strings.TrimSpace(rec.Organizer)
	if name == "" {
		return "", errNoOrganizer
	}
	return name, nil
}

// PlaceKey is the source key of the record's place. Place names are only
// unique within one organizer.
func PlaceKey(organizerKey string, rec source.Record) (string, error) {
	name := rec.String(fieldLocation)
	if name == "" {
		return "", errNoLocation
	}
	return organizerKey + ":" + name, nil
}

// BuildOrganizer builds the organizer payload of a record.
func BuildOrganizer(rec source.Record) models.Organizer {
	return models.Organizer{Name: strings.TrimSpace(rec.Organizer)}
}

// BuildPlace builds the place payload of a record. The location is set only
// when both coordinates parse as non-zero numbers, so (0,0) means no location.
// An empty address is omitted.
func BuildPlace(rec source.Record) models.Place {
	place := models.Place{Name: rec.String(fieldLocation)}

	addr := models.Address{
		Street:     rec.String(fieldStreet),
		PostalCode: rec.String(fieldZip),
		City:       rec.String(fieldCity),
	}
	if !addr.IsEmpty() {
		place.Address = &addr
	}

	lat, latOK := rec.Float(fieldLatitude)
	lon, lonOK := rec.Float(fieldLongitude)
	if latOK && lonOK && lat != 0 && lon != 0 {
		place.Location = &models.Location{Latitude: lat, Longitude: lon}
	}
	return place
}

// BuildEvent builds the event payload of a record referencing the already
// resolved place and organizer.
func BuildEvent(rec source.Record, baseURL, placeID, organizerID string, categories *Categories) (models.Event, error) {
	start, err := parseStart(rec.String(fieldDate))
	if err != nil {
		return models.Event{}, err
	}

	event := models.Event{
		Rating:      rec.Int(fieldRating),
		Name:        rec.String(fieldTitle),
		Description: rec.String(fieldDescription),
		Start:       start,
		BookedUp:    rec.Bool(fieldBookedUp),
		PriceInfo:   rec.String(fieldPrice),
		Status:      eventStatus(rec),
		Place:       models.Ref{ID: placeID},
		Organizer:   models.Ref{ID: organizerID},
	}
	if event.Name == "" {
		return models.Event{}, errors.New("record has no title")
	}
	if event.Description == "" {
		event.Description = rec.String(fieldTeaser)
	}
	if link := rec.String(fieldLink); link != "" {
		event.ExternalLink = absoluteURL(baseURL, link)
	}
	if image := rec.String(fieldImage); image != "" {
		event.Photo = &models.Image{
			URL:           absoluteURL(baseURL, image),
			CopyrightText: rec.String(fieldCopyright),
		}
	}

	if categories != nil {
		refs, tags := categories.Resolve(rec.Labels(fieldCategories))
		event.Categories = refs
		event.Tags = strings.Join(tags, ",")
	}
	return event, nil
}

func eventStatus(rec source.Record) models.Status {
	if rec.Bool(fieldCanceled) {
		return models.StatusCancelled
	}
	return models.ParseStatus(rec.String(fieldStatus))
}

// parseStart turns the source "YYYY-MM-DDTHH:MM" into "YYYY-MM-DDTHH:MM:SS".
func parseStart(date string) (string, error) {
	for _, layout := range []string{"2006-01-02T15:04", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, date); err == nil {
			return t.Format("2006-01-02T15:04:05"), nil
		}
	}
	return "", fmt.Errorf("invalid start date %q", date)
}

func absoluteURL(baseURL, link string) string {
	if strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return link
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(link, "/")
}
