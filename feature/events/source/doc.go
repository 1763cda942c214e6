// Package source enumerates the scraped event catalog.
//
// Harzinfo posts one full-search request per configured city with a date
// window starting today and returns every result item as a Record. The city
// becomes the organizer of its items. With snapshots enabled the raw
// response of each city is kept in object storage and read back on later
// runs instead of querying the site.
package source
