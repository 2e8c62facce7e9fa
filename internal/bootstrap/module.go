package bootstrap

import (
	"context"
	"log/slog"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"roundcheck/internal/bootstrap/config"
	"roundcheck/internal/bootstrap/database"
	"roundcheck/internal/bootstrap/logging"
	"roundcheck/internal/infrastructure/httpapi"
	sqliterepo "roundcheck/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "roundcheck/internal/infrastructure/persistence/sqlite/uow"
	"roundcheck/internal/infrastructure/transport/natsbus"
	"roundcheck/internal/notify"
	"roundcheck/internal/ports"
	"roundcheck/internal/usecase/audit"
	"roundcheck/internal/usecase/conversation"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewAuditRepository,
			fx.As(new(ports.AuditRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(audit.NewService),
	fx.Provide(provideTransport),
	fx.Provide(provideDispatcher),
	fx.Provide(provideEngine),
	fx.Provide(provideHTTPServer),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}

func provideTransport(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*natsbus.Transport, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	transport, err := natsbus.Connect(logCtx, cfg.Transport)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			transport.Close()
			return nil
		},
	})

	return transport, nil
}

func provideDispatcher(cfg config.Config, transport *natsbus.Transport) *notify.Dispatcher {
	summary := ports.Recipient{
		ChatID:   cfg.Bot.SummaryChatID,
		ThreadID: cfg.Bot.SummaryThreadID,
	}
	return notify.NewDispatcher(transport, cfg.Bot.AdminIDs, summary, cfg.Bot.NotifyTimeout)
}

func provideEngine(cfg config.Config, svc *audit.Service, dispatcher *notify.Dispatcher, transport *natsbus.Transport) *conversation.Engine {
	return conversation.NewEngine(svc, dispatcher, transport, conversation.Options{
		Admins:        cfg.Bot.AdminIDs,
		RetentionDays: cfg.Bot.RetentionDays,
		StoreTimeout:  cfg.Bot.StoreTimeout,
		Workers:       cfg.Bot.Workers,
	})
}

func provideHTTPServer(svc *audit.Service) *httpapi.Server {
	return httpapi.NewServer(svc)
}
