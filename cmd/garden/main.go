package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	cli "github.com/urfave/cli/v3"

	"github.com/AmauryD/garden/internal/app"
)

func main() {
	cmd := &cli.Command{
		Name:                  "garden",
		EnableShellCompletion: true,
		Usage:                 "Execute a dependency graph of build, deploy, run and test actions",
		Commands: []*cli.Command{
			runCommand(),
			validateCommand(),
			cleanCommand(),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// projectFlags are shared by every command that loads a project.
func projectFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "project",
			Aliases: []string{"p"},
			Usage:   "Path to the project .hcl file or directory",
			Value:   ".",
			Sources: cli.EnvVars("GARDEN_PROJECT"),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "Log level (debug, info, warn, error)",
			Value:   "info",
			Sources: cli.EnvVars("GARDEN_LOG_LEVEL"),
		},
		&cli.StringFlag{
			Name:    "log-format",
			Usage:   "Log output format (text, json)",
			Value:   "text",
			Sources: cli.EnvVars("GARDEN_LOG_FORMAT"),
		},
	}
}

func configFromCommand(command *cli.Command) (*app.Config, error) {
	return app.NewConfig(app.Config{
		ProjectPath:  command.String("project"),
		Workers:      int(command.Int("workers")),
		LogLevel:     command.String("log-level"),
		LogFormat:    command.String("log-format"),
		CacheBackend: command.String("cache"),
		CacheDir:     command.String("cache-dir"),
		RedisURL:     command.String("redis-url"),
		RunID:        command.String("run-id"),
	})
}
