package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// migrateCmd creates or updates the mapping store tables.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the mapping store tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := bootstrap(context.Background())
		if err != nil {
			return err
		}
		defer d.logger.Sync()

		d.logger.Info("Mapping store is up to date",
			zap.String("driver", d.cfg.Database.Driver),
			zap.String("database", d.cfg.Database.Name))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(migrateCmd)
}
