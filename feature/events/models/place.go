package models

import "event-sync/core/reconcile"

// Location holds the coordinates of a place.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Address holds the optional postal address parts of a place.
type Address struct {
	Street     string `json:"street,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	City       string `json:"city,omitempty"`
}

// IsEmpty reports whether no part of the address is set.
func (a Address) IsEmpty() bool {
	return a.Street == "" && a.PostalCode == "" && a.City == ""
}

// Place is the outbound place payload.
type Place struct {
	Name     string    `json:"name"`
	Address  *Address  `json:"address,omitempty"`
	Location *Location `json:"location,omitempty"`
}

// Strip removes the address or the location when the remote refused it.
func (p Place) Strip(field string) (reconcile.Payload, bool) {
	switch {
	case field == "location" && p.Location != nil:
		p.Location = nil
	case field == "address" && p.Address != nil:
		p.Address = nil
	default:
		return p, false
	}
	return p, true
}

// Organizer is the outbound organizer payload.
type Organizer struct {
	Name string `json:"name"`
}

// Strip never succeeds; the organizer has no optional field.
func (o Organizer) Strip(string) (reconcile.Payload, bool) {
	return o, false
}
