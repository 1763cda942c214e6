// Package remote is the REST client of the remote event catalog.
//
// It creates, updates and deletes events, places and organizers owned by one
// organization, looks entities up by name and pages through the event
// category vocabulary. Requests are authenticated through golang.org/x/oauth2;
// refreshed tokens are handed to a TokenStore so a restart continues with the
// latest refresh token.
//
// Non-success responses are returned as *ValidationError (400, 422) or
// *APIError; errors.Is(err, ErrNotFound) matches a 404.
package remote
