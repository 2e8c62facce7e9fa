package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"roundcheck/internal/bootstrap"
	"roundcheck/internal/bootstrap/logging"
	"roundcheck/internal/errs"
	"roundcheck/internal/infrastructure/httpapi"
	"roundcheck/internal/infrastructure/transport/natsbus"
	"roundcheck/internal/usecase/audit"
	"roundcheck/internal/usecase/conversation"
)

// deps bundles everything a subcommand may need out of the container.
// Lightweight commands just ignore the fields they do not use.
type deps struct {
	fx.In

	App       *bootstrap.App
	Audit     *audit.Service
	Engine    *conversation.Engine
	Transport *natsbus.Transport
	HTTP      *httpapi.Server
}

func withApp(run func(cmd *cobra.Command, d deps) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := logging.WithAttrs(
			cmd.Context(),
			slog.String("command", cmd.CommandPath()),
			slog.String("config_file", cfgFile),
		)

		var d deps
		fxApp := fx.New(
			bootstrap.Module,
			fx.Provide(func() context.Context { return ctx }),
			fx.Provide(
				fx.Annotate(
					func() string { return cfgFile },
					fx.ResultTags(`name:"configFile"`),
				),
			),
			fx.Populate(&d),
		)

		startCtx, cancelStart := context.WithTimeout(ctx, 10*time.Second)
		defer cancelStart()
		if err := fxApp.Start(startCtx); err != nil {
			logging.Error(ctx, "bootstrap application failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "start fx application")
		}

		defer func() {
			stopCtx, cancelStop := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancelStop()
			if err := fxApp.Stop(stopCtx); err != nil {
				logging.Error(ctx, "fx application stop failed", slog.Any("err", errs.Loggable(err)))
			}
		}()

		if err := run(cmd, d); err != nil {
			return errs.Wrap(err, "run command")
		}
		return nil
	}
}
