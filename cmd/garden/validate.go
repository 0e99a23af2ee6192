package main

import (
	"context"

	cli "github.com/urfave/cli/v3"

	"github.com/AmauryD/garden/internal/app"
)

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Load the project and validate its action graph without executing",
		Flags: projectFlags(),
		Action: func(ctx context.Context, command *cli.Command) error {
			cfg, err := configFromCommand(command)
			if err != nil {
				return err
			}
			return app.New(command.Root().Writer, cfg).Validate(ctx)
		},
	}
}
