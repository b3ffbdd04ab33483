package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/cratecheck/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes config.toml from the embedded template when it does not exist yet and
// initializes the run history database.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			return err
		}
		r.logger.Info("using existing config", "path", configPath)
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		if config, err = shared.LoadConfig(configPath); err != nil {
			return err
		}
		r.logger.Info("config file created", "path", configPath)
	}

	if err := shared.LoadEnv(config, cmd.String("env")); err != nil {
		return err
	}

	r.logger.Info("initializing run history", "path", config.Database.Path)
	db, err := shared.OpenHistory(config.Database)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	r.logger.Infof("setup complete for database: %v", config.Database.Path)

	r.writePlain("%s\n", r.palette.OK("✓ cratecheck is ready"))
	r.writePlainln("Next steps:")
	r.writePlain("1. Set library.root and library.streaming_csv in %s\n", configPath)
	r.writePlain("2. Run 'cratecheck run' to scan and reconcile\n")
	r.writePlain("3. Run 'cratecheck history' to review past runs\n")
	return nil
}
