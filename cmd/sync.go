package cmd

import (
	"context"
	"fmt"

	"event-sync/core/reconcile"
	"event-sync/feature/events"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fullSync bool

// syncCmd runs a single synchronization pass.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one synchronization pass",
	Long: `Enumerates the source, reconciles organizers, places and events with the
remote catalog and purges events that are no longer listed.

Examples:
  # Incremental run, records unchanged since the last run are skipped
  sync

  # Full run ignoring the last run timestamp
  sync --full`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&fullSync, "full", false, "Reconcile every record regardless of the last run")
	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	d, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer d.logger.Sync()

	svc, err := d.service(ctx)
	if err != nil {
		return err
	}

	report, err := svc.Sync(ctx, events.Options{Full: fullSync})
	if err != nil {
		return err
	}
	printSummary(d.logger, report.Summary)

	if report.Error != "" {
		return fmt.Errorf("sync failed: %s", report.Error)
	}
	return nil
}

// printSummary logs the counters of every kind.
func printSummary(l *zap.Logger, s *reconcile.Summary) {
	if s == nil {
		return
	}
	for _, kind := range reconcile.Kinds {
		c := s.For(kind)
		l.Info("Sync report",
			zap.String("kind", string(kind)),
			zap.Int("new", c.New),
			zap.Int("updated", c.Updated),
			zap.Int("unchanged", c.Unchanged),
			zap.Int("deleted", c.Deleted),
			zap.Int("failed", c.Failed),
			zap.Int("duplicates", c.Duplicates),
		)
	}
}
