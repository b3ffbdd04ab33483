// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// configFlags locate the TOML and .env files every command reads.
func configFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
		},
		&cli.StringFlag{
			Name:  "env",
			Usage: "Path to .env file with CRATECHECK_* overrides",
			Value: ".env",
		},
	}
}

// pipelineFlags are shared by the commands that scan or reconcile.
func pipelineFlags() []cli.Flag {
	return append(configFlags(),
		&cli.StringFlag{
			Name:    "root",
			Aliases: []string{"r"},
			Usage:   "Owned library root (overrides library.root)",
		},
		&cli.StringFlag{
			Name:  "crate",
			Usage: "Candidate crate folder (overrides library.crate)",
		},
		&cli.StringFlag{
			Name:    "streaming",
			Aliases: []string{"s"},
			Usage:   "Streaming library export CSV (overrides library.streaming_csv)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output directory (overrides output.dir)",
		},
		&cli.IntFlag{
			Name:    "threshold",
			Aliases: []string{"t"},
			Usage:   "Similarity score (0-100) below which a pair is reported",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "Goroutines used by the fuzzy comparison",
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "Hide per-file tag errors",
		},
		&cli.BoolFlag{
			Name:  "no-history",
			Usage: "Do not record this run in the history database",
		},
	)
}

func runCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "run",
		Usage:  "Scan the library and crate, then reconcile against the streaming export",
		Flags:  pipelineFlags(),
		Action: r.Run,
	}
}

func scanCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "scan",
		Usage:  "Generate the owned and crate tracklists from file tags",
		Flags:  pipelineFlags(),
		Action: r.Scan,
	}
}

func reconcileCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "reconcile",
		Usage:  "Reconcile existing tracklists without scanning",
		Flags:  pipelineFlags(),
		Action: r.Reconcile,
	}
}

func mismatchesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "mismatches",
		Usage:  "Write only the fuzzy mismatch report between streaming and owned tracks",
		Flags:  pipelineFlags(),
		Action: r.Mismatches,
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Write config.toml from the template and initialize the history database",
		Flags:  configFlags(),
		Action: r.Setup,
	}
}

func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recorded runs, or show one run with its files",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id"},
		},
		Flags: append(configFlags(),
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of runs to list",
				Value:   20,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output JSON",
			},
		),
		Action: r.History,
	}
}
