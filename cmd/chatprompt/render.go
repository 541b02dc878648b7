package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/chatprompt/internal/conversation"
	"github.com/samcharles93/chatprompt/internal/logger"
)

func renderCmd() *cli.Command {
	var (
		template            string
		messagesPath        string
		addGenerationPrompt bool
		outputPath          string
	)

	return &cli.Command{
		Name:  "render",
		Usage: "Render a conversation file into a prompt",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "template",
				Aliases:     []string{"t"},
				Usage:       "template name (chatml, mistral, llama2 or a configured template)",
				Destination: &template,
			},
			&cli.StringFlag{
				Name:        "messages",
				Aliases:     []string{"f"},
				Usage:       "conversation file (.json, .yaml, .yml); - reads JSON from stdin",
				Value:       "-",
				Destination: &messagesPath,
			},
			&cli.BoolFlag{
				Name:        "add-generation-prompt",
				Aliases:     []string{"g"},
				Usage:       "append the assistant turn opener where the template supports it",
				Destination: &addGenerationPrompt,
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "write the prompt to a file instead of stdout",
				Destination: &outputPath,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			cfg := configFromContext(ctx)
			applyRenderConfig(cmd, cfg, &template, &addGenerationPrompt)

			msgs, err := conversation.Load(messagesPath, cmd.Root().Reader)
			if err != nil {
				return fmt.Errorf("load messages: %w", err)
			}
			engine, err := newEngine(cfg)
			if err != nil {
				return err
			}
			prompt, err := engine.Render(template, msgs, addGenerationPrompt)
			if err != nil {
				return err
			}
			log.Debug("rendered prompt", "template", template, "messages", len(msgs), "bytes", len(prompt))

			if outputPath != "" {
				if err := os.WriteFile(outputPath, []byte(prompt), 0o644); err != nil {
					return fmt.Errorf("write prompt: %w", err)
				}
				log.Info("prompt written", "path", outputPath)
				return nil
			}
			_, err = io.WriteString(cmd.Root().Writer, prompt)
			return err
		},
	}
}
