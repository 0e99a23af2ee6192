package main

import (
	"context"

	cli "github.com/urfave/cli/v3"

	"github.com/AmauryD/garden/internal/app"
	"github.com/AmauryD/garden/internal/scheduler"
)

func runCommand() *cli.Command {
	flags := append(projectFlags(),
		&cli.IntFlag{
			Name:    "workers",
			Aliases: []string{"w"},
			Usage:   "Number of concurrent workers",
			Value:   scheduler.DefaultWorkers,
			Sources: cli.EnvVars("GARDEN_WORKERS"),
		},
		&cli.StringFlag{
			Name:    "cache",
			Usage:   "Result cache backend (memory, file, redis)",
			Value:   "memory",
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
		&cli.StringFlag{
			Name:  "run-id",
			Usage: "Custom run ID (auto-generated if not provided)",
		},
	)

	return &cli.Command{
		Name:  "run",
		Usage: "Execute the project's action graph",
		Flags: flags,
		Action: func(ctx context.Context, command *cli.Command) error {
			cfg, err := configFromCommand(command)
			if err != nil {
				return err
			}

			results, err := app.New(command.Root().Writer, cfg).Run(ctx)
			if err != nil {
				return err
			}
			// Node-local failures and interruption decide the exit code
			// here, not inside the engine: the run itself completed.
			return results.Err()
		},
	}
}
