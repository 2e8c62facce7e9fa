package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"roundcheck/internal/bootstrap/logging"
	"roundcheck/internal/errs"
)

// initDbCmd represents the initDb command
var initDbCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Initialize database schema and seed departments",
	RunE: withApp(func(cmd *cobra.Command, d deps) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))
		logging.Info(ctx, "start init-db")

		if err := d.App.InitSchema(ctx); err != nil {
			logging.Error(ctx, "initialize schema failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "initialize schema")
		}

		created, err := d.App.SeedDepartments(ctx)
		if err != nil {
			logging.Error(ctx, "seed departments failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "seed departments")
		}

		logging.Info(ctx, "init-db finished", slog.String("database_dsn", d.App.Config.Database.DSN))
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "database schema initialized: %s (departments seeded: %d)\n",
			d.App.Config.Database.DSN, created); err != nil {
			return errs.Wrap(err, "write init-db output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(initDbCmd)
}
