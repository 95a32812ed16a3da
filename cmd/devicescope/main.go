// Package main is the entry point for the devicescope command. It loads the
// layered configuration, sets up logging and dispatches to the subcommands
// that collect, search, watch and export device telemetry.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Guliveer/devicescope/internal/app"
	"github.com/Guliveer/devicescope/internal/config"
	"github.com/Guliveer/devicescope/internal/render"
)

// version is set at build time via -ldflags.
var version = "dev"

// runtime holds what Before prepares for the subcommands.
type runtime struct {
	cfg        *config.Config
	configPath string
	logger     *zap.Logger
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "devicescope: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cli.Command {
	rt := &runtime{}
	return &cli.Command{
		Name:    "devicescope",
		Usage:   "Inspect device attributes and live performance estimates",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a YAML config file (default: search the standard locations)",
				Sources: cli.EnvVars("DS_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:  "storage-driver",
				Usage: "history backend (memory, file, sqlite, pebble)",
			},
			&cli.StringFlag{
				Name:  "storage-path",
				Usage: "history database or directory",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			return ctx, rt.load(cmd)
		},
		After: func(context.Context, *cli.Command) error {
			if rt.logger != nil {
				_ = rt.logger.Sync()
			}
			return nil
		},
		Commands: []*cli.Command{
			snapshotCmd(rt),
			searchCmd(rt),
			watchCmd(rt),
			perfCmd(rt),
			historyCmd(rt),
			themeCmd(rt),
			configCmd(rt),
		},
	}
}

// load resolves the configuration and logger from flags, environment,
// config files and the embedded defaults.
func (rt *runtime) load(cmd *cli.Command) error {
	overrides := config.CLIOverrides{
		LogLevel:      cmd.String("log-level"),
		StorageDriver: cmd.String("storage-driver"),
		StoragePath:   cmd.String("storage-path"),
	}
	var (
		cfg *config.Config
		err error
	)
	if path := cmd.String("config"); path != "" {
		rt.configPath = path
		cfg, err = config.LoadLayered(overrides, embeddedConfig, path)
	} else {
		rt.configPath = config.Locate()
		cfg, err = config.LoadLayered(overrides, embeddedConfig)
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	rt.cfg = cfg
	rt.logger = initLogger(cfg)
	return nil
}

// service opens the application service for one command.
func (rt *runtime) service(ctx context.Context) (*app.Service, error) {
	return app.New(ctx, app.Options{Config: rt.cfg, Logger: rt.logger})
}

// renderer styles output with the persisted theme.
func (rt *runtime) renderer(svc *app.Service) *render.Renderer {
	return render.New(os.Stdout, svc.Theme().Palette())
}

// initLogger creates a zap logger based on the configuration.
// It outputs to both console (human-readable) and optionally a JSON log file.
// Console output goes to stderr so command output stays pipeable.
func initLogger(cfg *config.Config) *zap.Logger {
	var level zapcore.Level
	switch cfg.Logging.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.WarnLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stderr),
		level,
	)

	cores := []zapcore.Core{consoleCore}

	if cfg.Logging.File != "" {
		file, err := os.OpenFile(cfg.Logging.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
		if err == nil {
			fileCore := zapcore.NewCore(
				zapcore.NewJSONEncoder(encoderConfig),
				zapcore.AddSync(file),
				level,
			)
			cores = append(cores, fileCore)
		}
	}

	return zap.New(zapcore.NewTee(cores...))
}
