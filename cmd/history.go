package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/listensync/internal/formatter"
	"github.com/desertthunder/listensync/internal/repositories"
	"github.com/desertthunder/listensync/internal/shared"
)

// History prints recorded sync runs, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	db, err := shared.OpenDatabase(config.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewSyncRunRepository(db)

	if prune := cmd.String("prune"); prune != "" {
		age, err := time.ParseDuration(prune)
		if err != nil || age <= 0 {
			return fmt.Errorf("%w: --prune %q", shared.ErrInvalidConfig, prune)
		}
		removed, err := repo.Prune(ctx, time.Now().Add(-age))
		if err != nil {
			return err
		}
		r.logger.Info("pruned sync history", "removed", removed, "older_than", age)
	}

	runs, err := repo.List(ctx, repositories.RunFilter{
		Playlist: cmd.String("playlist"),
		State:    cmd.String("state"),
		Limit:    int(cmd.Int("limit")),
	})
	if err != nil {
		return err
	}

	out, err := formatter.FormatRuns(runs, cmd.String("format"))
	if err != nil {
		return err
	}
	if _, err := r.output.Write(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
