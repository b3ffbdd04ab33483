package main

import (
	"context"
	"os"

	"github.com/desertthunder/cratecheck/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	runner := NewRunner(RunnerOpts{Logger: logger})

	app := &cli.Command{
		Name:     "cratecheck",
		Usage:    "Reconcile a streaming library export against owned files and a candidate crate",
		Version:  "0.1.0",
		Flags:    pipelineFlags(),
		Action:   runner.Run,
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
