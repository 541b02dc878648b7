package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	opts := &globalOptions{}
	return &cli.Command{
		Name:   "chatprompt",
		Usage:  "Render chat conversations into model prompt strings",
		Flags:  opts.flags(),
		Before: opts.setup,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			renderCmd(),
			templatesCmd(),
			serveCmd(),
			versionCmd(),
		},
	}
}
