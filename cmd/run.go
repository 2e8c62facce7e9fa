package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"roundcheck/internal/bootstrap/logging"
	"roundcheck/internal/errs"
	"roundcheck/internal/usecase/audit"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the bot engine, retention sweeper and stats server",
	RunE: withApp(func(cmd *cobra.Command, d deps) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := d.App.InitSchema(ctx); err != nil {
			return errs.Wrap(err, "initialize schema")
		}
		if _, err := d.App.SeedDepartments(ctx); err != nil {
			return errs.Wrap(err, "seed departments")
		}

		events, err := d.Transport.Events(ctx)
		if err != nil {
			return errs.Wrap(err, "subscribe inbound events")
		}

		httpServer := &http.Server{
			Addr:              d.App.Config.HTTP.Addr,
			Handler:           d.HTTP.Router(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logging.Info(ctx, "stats server listening", slog.String("addr", httpServer.Addr))
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error(ctx, "stats server failed", slog.Any("err", errs.Loggable(err)))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logging.Warn(ctx, "stats server shutdown failed", slog.Any("err", errs.Loggable(err)))
			}
		}()

		go retentionSweeper(ctx, d.Audit, d.App.Config.Bot.RetentionDays, d.App.Config.Bot.SweepInterval)

		logging.Info(ctx, "engine started",
			slog.Int("workers", d.App.Config.Bot.Workers),
			slog.Int("admins", len(d.App.Config.Bot.AdminIDs)),
		)

		if err := d.Engine.Run(ctx, events); err != nil && !errors.Is(err, context.Canceled) {
			return errs.Wrap(err, "run engine")
		}

		logging.Info(ctx, "engine stopped")
		return nil
	}),
}

// retentionSweeper purges inspections older than the retention window on a
// fixed interval, so stale history is removed even when nobody presses the
// start button for a while.
func retentionSweeper(ctx context.Context, svc *audit.Service, retentionDays int, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result, err := svc.PurgeOlderThan(ctx, retentionDays)
			if err != nil {
				logging.Warn(ctx, "retention sweep failed", slog.Any("err", errs.Loggable(err)))
				continue
			}
			if result.Inspections > 0 || result.Issues > 0 {
				logging.Info(ctx, "retention sweep removed history",
					slog.Int64("inspections", result.Inspections),
					slog.Int64("issues", result.Issues),
				)
			}
		}
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
}
