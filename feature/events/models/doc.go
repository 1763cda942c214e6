// Package models defines the outbound payloads sent to the remote event
// catalog and the closed status and category vocabularies.
package models
