package config

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"roundcheck/internal/bootstrap/logging"
	"roundcheck/internal/errs"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Bot       BotConfig       `mapstructure:"bot"`
	Transport TransportConfig `mapstructure:"transport"`
	HTTP      HTTPConfig      `mapstructure:"http"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// BotConfig carries workflow policy: who may review, where round summaries
// go, how long records are retained and how hard the engine may block.
type BotConfig struct {
	AdminIDs        []int64       `mapstructure:"admin_ids"`
	SummaryChatID   int64         `mapstructure:"summary_chat_id"`
	SummaryThreadID int64         `mapstructure:"summary_thread_id"`
	RetentionDays   int           `mapstructure:"retention_days"`
	SweepInterval   time.Duration `mapstructure:"sweep_interval"`
	StoreTimeout    time.Duration `mapstructure:"store_timeout"`
	NotifyTimeout   time.Duration `mapstructure:"notify_timeout"`
	Workers         int           `mapstructure:"workers"`
	DepartmentsFile string        `mapstructure:"departments_file"`
}

type TransportConfig struct {
	URL   string `mapstructure:"url"`
	Token string `mapstructure:"token"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

func Load(ctx context.Context, configFile string) (Config, error) {
	if ctx == nil {
		return Config{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Config{}, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.config"))

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("RC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			// Keep default and env-backed config when no file is provided.
			logging.Warn(logCtx, "config file not found, fallback to defaults and env")
		} else {
			return Config{}, errs.Wrap(err, "read config")
		}
	} else {
		logging.Info(logCtx, "using config file", slog.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errs.Wrap(err, "unmarshal config")
	}

	if cfg.Database.DSN == "" {
		return Config{}, errors.New("database.dsn is required")
	}
	if cfg.Bot.RetentionDays <= 0 {
		return Config{}, errors.New("bot.retention_days must be positive")
	}
	if cfg.Bot.Workers <= 0 {
		return Config{}, errors.New("bot.workers must be positive")
	}

	logging.Info(
		logCtx,
		"config loaded",
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
		slog.String("database_driver", cfg.Database.Driver),
		slog.Int("admins", len(cfg.Bot.AdminIDs)),
		slog.Int("retention_days", cfg.Bot.RetentionDays),
	)

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "roundcheck")
	v.SetDefault("app.env", "local")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "data/roundcheck.sqlite")
	v.SetDefault("bot.retention_days", 15)
	v.SetDefault("bot.sweep_interval", 6*time.Hour)
	v.SetDefault("bot.store_timeout", 5*time.Second)
	v.SetDefault("bot.notify_timeout", 10*time.Second)
	v.SetDefault("bot.workers", 4)
	v.SetDefault("bot.departments_file", "configs/departments.yaml")
	v.SetDefault("transport.url", "nats://127.0.0.1:4222")
	v.SetDefault("http.addr", ":8090")
}
