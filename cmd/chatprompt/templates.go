package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/chatprompt/pkg/chatprompt"
)

func templatesCmd() *cli.Command {
	return &cli.Command{
		Name:    "templates",
		Aliases: []string{"ls"},
		Usage:   "List available templates",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			engine, err := newEngine(configFromContext(ctx))
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.Root().Writer, 0, 4, 2, ' ', 0)
			for _, name := range engine.Templates() {
				kind := "config"
				if v, err := chatprompt.ParseVariant(name); err == nil && v.String() == name {
					kind = "built-in"
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\n", name, kind)
			}
			return w.Flush()
		},
	}
}
