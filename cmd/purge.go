package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"roundcheck/internal/bootstrap/logging"
	"roundcheck/internal/errs"
)

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete rounds older than the retention window",
	RunE: withApp(func(cmd *cobra.Command, d deps) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		days, _ := cmd.Flags().GetInt("days")
		if days <= 0 {
			days = d.App.Config.Bot.RetentionDays
		}

		result, err := d.Audit.PurgeOlderThan(ctx, days)
		if err != nil {
			logging.Error(ctx, "purge failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "purge old rounds")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "purged %d inspections and %d issues older than %d days\n",
			result.Inspections, result.Issues, days); err != nil {
			return errs.Wrap(err, "write purge output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(purgeCmd)
	purgeCmd.Flags().Int("days", 0, "Retention horizon in days (default from config)")
}
