package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"event-sync/core/mapping"
	"event-sync/core/reconcile"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var listMappings bool

// mappingsCmd inspects the mapping store.
var mappingsCmd = &cobra.Command{
	Use:   "mappings [kind]",
	Short: "Show stored source to remote mappings",
	Long: `Reports how many mappings are stored per kind and when the last run started.
With a kind (event, place, organizer) and --list every mapping is printed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMappings,
}

func init() {
	mappingsCmd.Flags().BoolVar(&listMappings, "list", false, "Print every mapping of the kind")
	RootCmd.AddCommand(mappingsCmd)
}

func runMappings(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	d, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer d.logger.Sync()

	kinds := reconcile.Kinds
	if len(args) == 1 {
		kind := reconcile.Kind(args[0])
		if !isKnownKind(kind) {
			return fmt.Errorf("unknown kind %q", args[0])
		}
		kinds = []reconcile.Kind{kind}
	}

	lastRun, err := d.store.LastRun(ctx)
	if err != nil {
		return err
	}
	if lastRun == nil {
		d.logger.Info("No run recorded yet")
	} else {
		d.logger.Info("Last run", zap.Time("started_at", *lastRun))
	}

	for _, kind := range kinds {
		entries, err := d.store.Entries(ctx, kind)
		if err != nil {
			return err
		}
		d.logger.Info("Mappings", zap.String("kind", string(kind)), zap.Int("count", len(entries)))

		if listMappings && len(args) == 1 {
			if err := renderMappings(os.Stdout, entries); err != nil {
				return err
			}
		}
	}
	return nil
}

// renderMappings prints entries as a table.
func renderMappings(w io.Writer, entries []mapping.Mapping) error {
	table := tablewriter.NewTable(w)
	table.Header("Source Key", "Remote ID", "Created")
	for _, e := range entries {
		if err := table.Append(e.SourceKey, e.RemoteID, e.CreatedAt.UTC().Format("2006-01-02 15:04:05")); err != nil {
			return err
		}
	}
	return table.Render()
}

func isKnownKind(kind reconcile.Kind) bool {
	for _, k := range reconcile.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}
