// submodule cmd contains command definitions
package main

import (
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/listensync/internal/formatter"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// runCommand starts the recurring sync daemon.
func runCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Sync every playlist now and then on the configured interval",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "serve",
				Usage: "Serve the status endpoint regardless of server.enabled",
			},
		},
		Action: r.Run,
	}
}

// syncCommand runs a single pass.
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Run one sync pass over every playlist",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "playlist",
				Usage: "Only sync the playlist with this file name",
			},
			&cli.BoolFlag{
				Name:  "tui",
				Usage: "Show progress in an interactive terminal view",
			},
		},
		Action: r.Sync,
	}
}

// checkCommand reports which playlists are stale without changing anything.
func checkCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Compare each feed with its playlist header without syncing",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Check,
	}
}

// historyCommand lists recorded sync runs.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recorded sync runs",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: table, csv or json",
				Value:   formatter.FormatTable,
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of runs to show",
				Value:   20,
			},
			&cli.StringFlag{
				Name:  "playlist",
				Usage: "Only show runs of the playlist with this file name",
			},
			&cli.StringFlag{
				Name:  "state",
				Usage: "Only show runs that ended in this state (done, skip, fail)",
			},
			&cli.StringFlag{
				Name:  "prune",
				Usage: "Delete runs older than this duration (e.g. 720h) before listing",
			},
		},
		Action: r.History,
	}
}

// setupCommand handles first-time setup of configuration and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write the default configuration file",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
		},
	}
}
