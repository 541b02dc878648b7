package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/chatprompt/internal/config"
	"github.com/samcharles93/chatprompt/internal/logger"
)

// globalOptions are the root flags shared by every subcommand.
type globalOptions struct {
	configPath string
	logLevel   string
	logFormat  string
	debug      bool
}

func (o *globalOptions) flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "path to config.yaml",
			Value:       config.Path(),
			Destination: &o.configPath,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &o.logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (auto, pretty, json, text)",
			Value:       "auto",
			Destination: &o.logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &o.debug,
		},
	}
}

// setup loads the config file and installs the logger and config into the
// command context.
func (o *globalOptions) setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return ctx, err
	}
	applyLoggingConfig(cmd, cfg, &o.logLevel, &o.logFormat)

	format, err := logger.ParseFormat(o.logFormat)
	if err != nil {
		return ctx, err
	}
	level := logger.ParseLevel(o.logLevel)
	if o.debug {
		level = slog.LevelDebug
	}
	log := logger.ForFormat(os.Stderr, format, level)
	log.Debug("config loaded", "path", o.configPath, "templates", len(cfg.Templates))

	ctx = logger.WithContext(ctx, log)
	return withConfig(ctx, cfg), nil
}
