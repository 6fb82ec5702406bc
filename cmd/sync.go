package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/listensync/internal/models"
	"github.com/desertthunder/listensync/internal/server"
	"github.com/desertthunder/listensync/internal/shared"
	"github.com/desertthunder/listensync/internal/tasks"
	"github.com/desertthunder/listensync/internal/ui"
)

const tuiLogPath = "./tmp/listensync-tui.log"

// Run syncs every playlist immediately and then once per sync.interval until interrupted.
//
// With server.enabled (or --serve) the status endpoint runs alongside the scheduler and is stopped with it.
func (r *Runner) Run(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	list, err := playlists(config, "")
	if err != nil {
		return err
	}

	p, err := r.buildPipeline(config, r.logger)
	if err != nil {
		return err
	}
	defer p.Close()

	if err := p.deemix.WriteCredential(); err != nil {
		return err
	}

	interval, _ := config.IntervalDuration()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var status *server.StatusHandler
	var serverErr error
	serverDone := make(chan struct{})
	if (config.Server.Enabled || cmd.Bool("serve")) && p.runs != nil {
		status = server.NewStatusHandler(p.runs, r.logger)
		router := server.NewBasicRouter()
		router.Use(server.RecoverMiddleware(r.logger), server.LoggingMiddleware(r.logger))
		router.Handler(status)
		srv := server.New(config.Server.Host, config.Server.Port, router, r.logger)

		go func() {
			defer close(serverDone)
			if err := srv.Run(ctx); err != nil {
				r.logger.Error("status server failed", "err", err)
				serverErr = err
				cancel()
			}
		}()
	} else {
		close(serverDone)
	}

	r.logger.Info("starting sync daemon", "playlists", len(list), "interval", interval)
	scheduler := tasks.NewScheduler(interval, r.logger)
	err = scheduler.Run(ctx, func(ctx context.Context, trigger time.Time) {
		tally := p.engine.SyncAll(ctx, list, nil)
		if status == nil {
			return
		}
		finished := time.Now()
		status.RecordPass(server.PassStatus{
			StartedAt:  trigger,
			FinishedAt: finished,
			Succeeded:  tally.Succeeded,
			Skipped:    tally.Skipped,
			Failed:     tally.Failed,
			NextPassAt: finished.Add(interval),
		})
	})

	cancel()
	<-serverDone
	if serverErr != nil {
		return serverErr
	}
	if errors.Is(err, context.Canceled) {
		r.logger.Info("shutting down")
		return nil
	}
	return err
}

// Sync runs one pass, printing progress as it goes or showing it in the TUI with --tui.
//
// Returns an error when any playlist failed so scripts can check the exit status.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	list, err := playlists(config, cmd.String("playlist"))
	if err != nil {
		return err
	}

	logger := r.logger
	if cmd.Bool("tui") {
		// The terminal belongs to the TUI, so logs go to a file.
		if logger, err = shared.NewFileLogger(tuiLogPath); err != nil {
			return fmt.Errorf("failed to create file logger: %w", err)
		}
		shared.SetLogLevel(logger, r.logger.GetLevel())
	}

	p, err := r.buildPipeline(config, logger)
	if err != nil {
		return err
	}
	defer p.Close()

	if err := p.deemix.WriteCredential(); err != nil {
		return err
	}

	var tally tasks.Tally
	if cmd.Bool("tui") {
		var ok bool
		if tally, ok, err = r.syncTUI(ctx, p.engine, list); err != nil || !ok {
			return err
		}
	} else {
		tally = r.syncPlain(ctx, p.engine, list)
	}

	r.writeTally(tally)
	if tally.Failed > 0 {
		return fmt.Errorf("%d of %d playlists failed", tally.Failed, tally.Total())
	}
	return nil
}

func (r *Runner) syncPlain(ctx context.Context, engine *tasks.Engine, list []models.PlaylistConfig) tasks.Tally {
	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.State {
			case tasks.StateGate:
				r.writePlain("\n🔎 %s\n", update.Message)
			case tasks.StateFetch, tasks.StateExtract:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.StateResolve, tasks.StateDownload:
				r.writePlain("   %s\n", update.Message)
			case tasks.StateCommit:
				r.writePlain("📝 %s\n", update.Message)
			default:
				r.writePlain("%s\n", update.Message)
			}
		}
	}()

	tally := engine.SyncAll(ctx, list, progressCh)
	close(progressCh)
	<-done
	return tally
}

// syncTUI runs the pass inside the bubbletea view. ok is false when the user quit before the pass finished.
func (r *Runner) syncTUI(ctx context.Context, syncer ui.Syncer, list []models.PlaylistConfig) (tasks.Tally, bool, error) {
	model := ui.NewModel(ctx, syncer, list)
	if _, err := tea.NewProgram(model).Run(); err != nil {
		return tasks.Tally{}, false, fmt.Errorf("error running TUI: %w", err)
	}

	tally, ok := model.Tally()
	if !ok {
		r.writePlain("Sync cancelled\n")
	}
	return tally, ok, nil
}

func (r *Runner) writeTally(tally tasks.Tally) {
	r.writePlain("\n")
	r.writePlainHeader("Sync Complete")
	r.writePlain("Synced: %d\n", tally.Succeeded)
	r.writePlain("Skipped: %d\n", tally.Skipped)
	r.writePlain("Failed: %d\n", tally.Failed)

	for _, res := range tally.Results {
		switch res.State {
		case tasks.StateDone:
			r.writePlain("  ✓ %s (%d/%d tracks downloaded)\n", res.Config.Filename, res.Run.Downloaded, res.Run.Resolved)
		case tasks.StateFail:
			r.writePlain("  ✗ %s failed during %s: %v\n", res.Config.Filename, res.FailedState, res.Err)
		}
	}
}

// checkRow is one line of the check report.
type checkRow struct {
	Playlist   string `json:"playlist"`
	FeedURL    string `json:"feed_url"`
	FeedDate   string `json:"feed_date,omitempty"`
	StoredDate string `json:"stored_date,omitempty"`
	Stale      bool   `json:"stale"`
	Error      string `json:"error,omitempty"`
}

// Check runs the staleness gate for every playlist and reports which ones a sync would rebuild.
func (r *Runner) Check(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	list, err := playlists(config, "")
	if err != nil {
		return err
	}

	p, err := r.buildPipeline(config, r.logger)
	if err != nil {
		return err
	}
	defer p.Close()

	results := p.engine.Check(ctx, list)
	rows := make([]checkRow, 0, len(results))
	for _, res := range results {
		row := checkRow{Playlist: res.Config.Filename, FeedURL: res.Config.URL}
		if res.Err != nil {
			row.Error = res.Err.Error()
		} else {
			row.FeedDate = res.Gate.FeedDate
			row.StoredDate = res.Gate.StoredDate
			row.Stale = !res.Gate.UpToDate
		}
		rows = append(rows, row)
	}

	if cmd.Bool("json") {
		return r.writeJSON(rows, true)
	}

	for _, row := range rows {
		switch {
		case row.Error != "":
			r.writePlain("✗ %s: %s\n", row.Playlist, row.Error)
		case row.Stale:
			stored := row.StoredDate
			if stored == "" {
				stored = "never"
			}
			r.writePlain("• %s is stale (feed %s, playlist %s)\n", row.Playlist, shared.DatePart(row.FeedDate), shared.DatePart(stored))
		default:
			r.writePlain("✓ %s is up to date (%s)\n", row.Playlist, shared.DatePart(row.FeedDate))
		}
	}
	return nil
}
