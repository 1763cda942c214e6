// Package scheduler triggers periodic synchronization runs with robfig/cron.
package scheduler
