// Package server holds the configuration of the ops HTTP server.
//
// The `start` command serves a small API next to the scheduled sync runs:
// manual run triggers, the last run summary and mapping inspection.
// This package only defines the settings (port, API key, swagger toggle).
package server
