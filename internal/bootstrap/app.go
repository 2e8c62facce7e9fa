package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"roundcheck/internal/bootstrap/config"
	"roundcheck/internal/bootstrap/database"
	"roundcheck/internal/bootstrap/logging"
	"roundcheck/internal/errs"
	"roundcheck/internal/infrastructure/persistence/sqlite/model"
)

type App struct {
	Config config.Config
	DB     *gorm.DB
}

func New(ctx context.Context, configFile string) (*App, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.app"))
	logging.Info(logCtx, "loading application config", slog.String("config_file", configFile))

	cfg, err := config.Load(logCtx, configFile)
	if err != nil {
		return nil, errs.Wrap(err, "load config")
	}

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, errs.Wrap(err, "open database")
	}

	logging.Info(logCtx, "application bootstrap completed", slog.String("database_driver", cfg.Database.Driver))

	return &App{
		Config: cfg,
		DB:     db,
	}, nil
}

func (a *App) InitSchema(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.app"))
	logging.Info(logCtx, "start schema migration")

	if err := a.DB.WithContext(ctx).AutoMigrate(
		&model.Department{},
		&model.User{},
		&model.Inspection{},
		&model.Issue{},
	); err != nil {
		return errs.Wrap(err, "auto migrate schema")
	}

	logging.Info(logCtx, "schema migration completed")
	return nil
}

type departmentsFile struct {
	Departments []string `yaml:"departments"`
}

// SeedDepartments loads the department list from the configured YAML file
// and inserts the names that are not present yet. Existing rows are never
// renamed or removed, so re-running the seed is safe.
func (a *App) SeedDepartments(ctx context.Context) (int, error) {
	if ctx == nil {
		return 0, errors.New("context is required")
	}

	path := a.Config.Bot.DepartmentsFile
	if path == "" {
		return 0, errors.New("bot.departments_file is not configured")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, errs.Wrapf(err, "read departments file %s", path)
	}

	var file departmentsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return 0, errs.Wrapf(err, "parse departments file %s", path)
	}
	if len(file.Departments) == 0 {
		return 0, fmt.Errorf("departments file %s lists no departments", path)
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.app"))

	created := 0
	for _, name := range file.Departments {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		var existing model.Department
		err := a.DB.WithContext(ctx).Where("name = ?", name).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, errs.Wrapf(err, "look up department %q", name)
		}

		if err := a.DB.WithContext(ctx).Create(&model.Department{Name: name}).Error; err != nil {
			return created, errs.Wrapf(err, "create department %q", name)
		}
		created++
	}

	logging.Info(logCtx, "department seed completed",
		slog.Int("created", created),
		slog.Int("listed", len(file.Departments)),
	)
	return created, nil
}

func (a *App) Close(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	sqlDB, err := a.DB.DB()
	if err != nil {
		return errs.Wrap(err, "get sql db")
	}

	if err := sqlDB.Close(); err != nil {
		return errs.Wrap(err, "close sql db")
	}

	logging.Info(logging.WithAttrs(ctx, slog.String("component", "bootstrap.app")), "database connection closed")
	return nil
}
