// Package config provides configuration management for event-sync.
//
// Settings come from environment variables, optionally seeded from a .env
// file. Every field declares its key with a mapstructure tag and its default
// with a default tag; nested keys map to upper-case environment variables
// joined by underscores (remote.base_url is REMOTE_BASE_URL).
//
// # Configuration Structure
//
//   - Server: ops HTTP server (port, API key, swagger)
//   - Database: mapping store connection (mysql or sqlite)
//   - Storage: S3/MinIO bucket for source snapshots and run reports
//   - Log: logging level and format
//   - Remote: event catalog API and OAuth2 credentials
//   - Source: harzinfo search endpoint, cities file and date window
//   - Schedule: cron expressions of periodic runs
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Remote.BaseURL)
package config
