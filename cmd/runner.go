package main

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/listensync/internal/downloader"
	"github.com/desertthunder/listensync/internal/feed"
	"github.com/desertthunder/listensync/internal/models"
	"github.com/desertthunder/listensync/internal/playlist"
	"github.com/desertthunder/listensync/internal/repositories"
	"github.com/desertthunder/listensync/internal/services"
	"github.com/desertthunder/listensync/internal/shared"
	"github.com/desertthunder/listensync/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Configuration is loaded per command from the --config flag, so the Runner itself only carries process-wide
// collaborators that tests can replace.
type Runner struct {
	logger     *log.Logger
	output     io.Writer
	httpClient *http.Client
	commands   downloader.CommandRunner
	getenv     func(string) string
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Logger     *log.Logger
	Output     io.Writer
	HTTPClient *http.Client             // shared by the feed and search clients; built from config when nil
	Commands   downloader.CommandRunner // runs deemix; [downloader.ExecRunner] when nil
	Getenv     func(string) string      // environment lookup; [os.Getenv] when nil
}

// NewRunner creates a new Runner with the provided options
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Getenv == nil {
		opts.Getenv = os.Getenv
	}

	return &Runner{
		logger:     opts.Logger,
		output:     opts.Output,
		httpClient: opts.HTTPClient,
		commands:   opts.Commands,
		getenv:     opts.Getenv,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		runCommand, syncCommand, checkCommand, historyCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig reads the file named by --config and overlays the environment.
//
// A missing file is tolerated when LISTENBRAINZ_URL is set, so the process can run from the environment alone.
func (r *Runner) loadConfig(cmd *cli.Command) (*shared.Config, error) {
	path := cmd.String("config")

	config, err := shared.LoadConfig(path)
	if errors.Is(err, shared.ErrMissingConfig) && r.getenv(shared.EnvFeedURL) != "" {
		r.logger.Debug("config file not found, using defaults and environment", "path", path)
		config, err = shared.DefaultConfig(), nil
	}
	if err != nil {
		return nil, err
	}

	config.ApplyEnv(r.getenv)

	level, err := shared.ParseLogLevel(config.Sync.LogLevel)
	if err != nil {
		return nil, err
	}
	shared.SetLogLevel(r.logger, level)
	return config, nil
}

// pipeline is the wired sync stack for one command invocation.
type pipeline struct {
	engine *tasks.Engine
	deemix *downloader.Deemix
	runs   *repositories.SyncRunRepository // nil when the database could not be opened
	db     *sql.DB
}

func (p *pipeline) Close() error {
	if p.db == nil {
		return nil
	}
	return p.db.Close()
}

// buildPipeline validates config and wires feed, search, downloader, playlist and history into a [tasks.Engine].
//
// The ARL is not written here; callers that download call [downloader.Deemix.WriteCredential] first. History is best
// effort: a database that cannot be opened is logged and syncing continues without recording.
func (r *Runner) buildPipeline(config *shared.Config, logger *log.Logger) (*pipeline, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	policy := config.RetryPolicy()
	timeout, _ := config.SearchTimeout()
	httpClient := r.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	deemix, err := downloader.NewDeemix(downloader.DeemixOpts{
		Command:  config.Downloader.Command,
		ARL:      config.Downloader.ARL,
		ARLPath:  config.Downloader.ARLPath,
		Bitrate:  config.Downloader.Bitrate,
		Portable: config.Downloader.Portable,
		BasePath: config.Sync.BasePath,
		Runner:   r.commands,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	deezer := services.NewDeezerService(services.DeezerOpts{
		BaseURL:    config.Search.BaseURL,
		HTTPClient: httpClient,
		RateLimit:  config.Search.RateLimit,
		Timeout:    timeout,
		Retry:      policy,
		Logger:     logger,
	})
	manager := playlist.NewManager(config.Sync.BasePath, logger)

	p := &pipeline{deemix: deemix}
	if db, err := shared.OpenDatabase(config.Database); err != nil {
		logger.Warn("sync history disabled", "path", config.Database.Path, "err", err)
	} else {
		p.db = db
		p.runs = repositories.NewSyncRunRepository(db)
	}

	opts := tasks.EngineOpts{
		Feed:      feed.NewClient(httpClient, policy, logger),
		Resolver:  services.NewResolver(deezer, logger),
		Downloads: downloader.NewOrchestrator(deemix, manager, logger),
		Playlists: manager,
		Logger:    logger,
	}
	if p.db != nil {
		opts.Recorder = repositories.NewRunRecorderAdapter(p.db)
	}

	p.engine, err = tasks.NewEngine(opts)
	if err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

// playlists converts the configured entries, optionally keeping only the one named only.
func playlists(config *shared.Config, only string) ([]models.PlaylistConfig, error) {
	out := make([]models.PlaylistConfig, 0, len(config.Playlists))
	for _, p := range config.Playlists {
		if only != "" && p.Filename != only {
			continue
		}
		filename := p.Filename
		if filename == "" {
			filename = shared.DefaultPlaylistFilename
		}
		out = append(out, models.PlaylistConfig{URL: p.URL, Filename: filename})
	}
	if len(out) == 0 && only == "" {
		return nil, fmt.Errorf("%w: no playlists configured", shared.ErrInvalidConfig)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no playlist named %q", shared.ErrInvalidConfig, only)
	}
	return out, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
