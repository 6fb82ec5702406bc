package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/listensync/internal/shared"
)

// SetupConfig writes the default configuration to the --config path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)
	r.writePlain("✓ Configuration written to %s\n", path)
	r.writePlain("\nNext steps:\n")
	r.writePlain("1. Add a [[playlists]] entry with your ListenBrainz feed URL\n")
	r.writePlain("2. Set %s or downloader.arl\n", shared.EnvARL)
	r.writePlain("3. Run 'listensync check -c %s'\n", path)
	return nil
}

// SetupDatabase initializes the database and runs migrations.
//
// A missing config file is not an error here; the default database path is used.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if errors.Is(err, shared.ErrMissingConfig) {
		r.logger.Warn("config file not found, using defaults", "path", cmd.String("config"))
		config = shared.DefaultConfig()
		config.ApplyEnv(r.getenv)
	} else if err != nil {
		return err
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	r.logger.Info("running database migrations")
	applied, err := shared.RunMigrations(db)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	r.writePlain("✓ Database ready at %s (%d migrations applied)\n", config.Database.Path, applied)
	return nil
}
