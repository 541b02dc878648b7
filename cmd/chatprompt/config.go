package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/chatprompt/internal/config"
	"github.com/samcharles93/chatprompt/pkg/chatprompt"
)

const fallbackTemplate = "chatml"

type configKey struct{}

func withConfig(ctx context.Context, cfg config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

func configFromContext(ctx context.Context) config.Config {
	cfg, _ := ctx.Value(configKey{}).(config.Config)
	return cfg
}

// newEngine builds an engine with the built-in variants plus every template
// declared in the config file.
func newEngine(cfg config.Config) (*chatprompt.Engine, error) {
	defs, err := cfg.Definitions()
	if err != nil {
		return nil, err
	}
	return chatprompt.NewEngine(defs...)
}

// applyLoggingConfig applies config file defaults to the global logging
// flags when they were not explicitly set.
func applyLoggingConfig(c *cli.Command, cfg config.Config, level, format *string) {
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		*level = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		*format = cfg.LogFormat
	}
}

// applyRenderConfig applies config file defaults to render command variables.
func applyRenderConfig(c *cli.Command, cfg config.Config, template *string, addGenerationPrompt *bool) {
	if !c.IsSet("template") {
		switch {
		case cfg.DefaultTemplate != "":
			*template = cfg.DefaultTemplate
		case *template == "":
			*template = fallbackTemplate
		}
	}
	if cfg.AddGenerationPrompt != nil && !c.IsSet("add-generation-prompt") {
		*addGenerationPrompt = *cfg.AddGenerationPrompt
	}
}

// applyServeConfig applies config file defaults to serve command variables.
func applyServeConfig(c *cli.Command, cfg config.Config, addr *string) {
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
}
