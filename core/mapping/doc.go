// Package mapping persists the reconciliation state in SQL through gorm:
// source key to remote id mappings, content hashes, the last run timestamp
// and the OAuth token of the remote client.
//
// MySQL is used in production; SQLite serves local runs and tests.
package mapping
