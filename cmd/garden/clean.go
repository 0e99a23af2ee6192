package main

import (
	"context"

	cli "github.com/urfave/cli/v3"

	"github.com/AmauryD/garden/internal/app"
)

func cleanCommand() *cli.Command {
	flags := append(projectFlags(),
		&cli.StringFlag{
			Name:    "cache",
			Usage:   "Result cache backend (memory, file, redis)",
			Value:   "file",
			Sources: cli.EnvVars("GARDEN_CACHE"),
		},
		&cli.StringFlag{
			Name:    "cache-dir",
			Usage:   "Directory for the file cache backend",
			Value:   ".garden-cache",
			Sources: cli.EnvVars("GARDEN_CACHE_DIR"),
		},
		&cli.StringFlag{
			Name:    "redis-url",
			Usage:   "Connection URL for the redis cache backend",
			Sources: cli.EnvVars("GARDEN_REDIS_URL"),
		},
	)

	return &cli.Command{
		Name:  "clean",
		Usage: "Clear the persistent result cache",
		Flags: flags,
		Action: func(ctx context.Context, command *cli.Command) error {
			cfg, err := configFromCommand(command)
			if err != nil {
				return err
			}
			return app.New(command.Root().Writer, cfg).CleanCache(ctx)
		},
	}
}
