package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"roundcheck/internal/bootstrap/logging"
	"roundcheck/internal/errs"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print inspection and issue counters",
	RunE: withApp(func(cmd *cobra.Command, d deps) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		var departmentID *uint64
		if id, _ := cmd.Flags().GetUint64("department"); id > 0 {
			departmentID = &id
		}

		stats, err := d.Audit.History(ctx, departmentID)
		if err != nil {
			logging.Error(ctx, "history stats failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "load stats")
		}

		out := cmd.OutOrStdout()
		scope := "all departments"
		if stats.DepartmentName != "" {
			scope = stats.DepartmentName
		}
		if _, err := fmt.Fprintf(out, "stats for %s\n", scope); err != nil {
			return errs.Wrap(err, "write stats output")
		}
		_, err = fmt.Fprintf(out,
			"  rounds: %d total, %d completed, %d active\n  issues: %d total, %d in work, %d fixed\n",
			stats.Inspections.Total, stats.Inspections.Completed, stats.ActiveInspections(),
			stats.Issues.Total, stats.Issues.InWork, stats.Issues.Fixed,
		)
		if err != nil {
			return errs.Wrap(err, "write stats output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().Uint64("department", 0, "Restrict stats to one department id")
}
