package models

import "event-sync/core/reconcile"

// Image is an attachment of an event.
type Image struct {
	URL           string `json:"image_url"`
	CopyrightText string `json:"copyright_text,omitempty"`
}

// Event is the outbound event payload. Field order is part of the content hash.
type Event struct {
	ExternalLink string `json:"external_link"`
	Rating       int    `json:"rating"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Start        string `json:"start"`
	BookedUp     bool   `json:"booked_up"`
	PriceInfo    string `json:"price_info,omitempty"`
	Status       Status `json:"status"`
	Place        Ref    `json:"place"`
	Organizer    Ref    `json:"organizer"`
	Categories   []Ref  `json:"categories,omitempty"`
	Tags         string `json:"tags,omitempty"`
	Photo        *Image `json:"photo,omitempty"`
}

// Strip removes an optional field the remote refused.
func (e Event) Strip(field string) (reconcile.Payload, bool) {
	switch field {
	case "photo":
		if e.Photo == nil {
			return e, false
		}
		e.Photo = nil
	case "description":
		if e.Description == "" {
			return e, false
		}
		e.Description = ""
	case "price_info":
		if e.PriceInfo == "" {
			return e, false
		}
		e.PriceInfo = ""
	case "tags":
		if e.Tags == "" {
			return e, false
		}
		e.Tags = ""
	case "categories":
		if len(e.Categories) == 0 {
			return e, false
		}
		e.Categories = nil
	default:
		return e, false
	}
	return e, true
}
