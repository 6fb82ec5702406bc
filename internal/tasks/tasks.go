package tasks

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/listensync/internal/downloader"
	"github.com/desertthunder/listensync/internal/feed"
	"github.com/desertthunder/listensync/internal/models"
	"github.com/desertthunder/listensync/internal/services"
	"github.com/desertthunder/listensync/internal/shared"
)

// FeedFetcher retrieves a parsed recommendation feed. Implemented by [feed.Client].
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) (*models.FeedSnapshot, error)
}

// TrackResolver maps a song to a download source. Implemented by [services.Resolver].
type TrackResolver interface {
	Resolve(ctx context.Context, song models.Song) services.Resolution
}

// BatchDownloader downloads resolved tracks into a playlist. Implemented by [downloader.Orchestrator].
type BatchDownloader interface {
	Download(ctx context.Context, playlist string, tracks []models.ResolvedTrack, onResult downloader.OnResult) downloader.Batch
}

// PlaylistStore is the playlist file state used by a sync cycle. Implemented by [playlist.Manager].
type PlaylistStore interface {
	ReadHeaderDate(name string) (string, bool, error)
	ClearContent(name string) error
	CommitHeader(name, date string) error
	Dedupe(name string) (int, error)
}

// RunRecorder persists finished playlist syncs. Optional.
type RunRecorder interface {
	RecordRun(ctx context.Context, run *models.SyncRun, tracks []models.DownloadedTrack) error
}

// GateResult is the outcome of the staleness check for one playlist.
type GateResult struct {
	UpToDate   bool
	FeedDate   string // full feed timestamp
	StoredDate string // stored header value, empty on first run
	Snapshot   *models.FeedSnapshot
}

// PlaylistResult is the outcome of syncing one playlist.
type PlaylistResult struct {
	Config      models.PlaylistConfig
	State       State // terminal state
	FailedState State // state that failed, set when State is StateFail
	Run         models.SyncRun
	Tracks      []models.DownloadedTrack
	Err         error
}

// Tally accumulates playlist outcomes for one pass.
type Tally struct {
	Succeeded int
	Skipped   int
	Failed    int
	Results   []PlaylistResult
}

// Total returns the number of playlists processed.
func (t Tally) Total() int {
	return t.Succeeded + t.Skipped + t.Failed
}

func (t *Tally) add(res PlaylistResult) {
	switch res.State {
	case StateDone:
		t.Succeeded++
	case StateSkip:
		t.Skipped++
	default:
		t.Failed++
	}
	t.Results = append(t.Results, res)
}

// CheckResult is the gate outcome for one playlist without any sync work.
type CheckResult struct {
	Config models.PlaylistConfig
	Gate   *GateResult
	Err    error
}

// EngineOpts wires the collaborators of an [Engine].
type EngineOpts struct {
	Feed      FeedFetcher
	Resolver  TrackResolver
	Downloads BatchDownloader
	Playlists PlaylistStore
	Recorder  RunRecorder
	Logger    *log.Logger
	Now       func() time.Time
}

// Engine drives the per-playlist sync state machine.
type Engine struct {
	feed      FeedFetcher
	resolver  TrackResolver
	downloads BatchDownloader
	playlists PlaylistStore
	recorder  RunRecorder
	logger    *log.Logger
	now       func() time.Time
}

// NewEngine creates an Engine. Feed, Resolver, Downloads and Playlists are required.
func NewEngine(opts EngineOpts) (*Engine, error) {
	if opts.Feed == nil || opts.Resolver == nil || opts.Downloads == nil || opts.Playlists == nil {
		return nil, fmt.Errorf("%w: sync engine requires feed, resolver, downloader and playlist store", shared.ErrServiceUnavailable)
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Engine{
		feed:      opts.Feed,
		resolver:  opts.Resolver,
		downloads: opts.Downloads,
		playlists: opts.Playlists,
		recorder:  opts.Recorder,
		logger:    shared.WithLogger(opts.Logger, "component", "sync"),
		now:       opts.Now,
	}, nil
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Gate fetches the feed and compares its date with the playlist header, ignoring the time of day.
//
// A missing header date means the playlist is stale. Fetch and parse failures are returned as errors.
func (e *Engine) Gate(ctx context.Context, cfg models.PlaylistConfig) (*GateResult, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("%w: playlist %s has no feed URL", shared.ErrInvalidConfig, cfg.Filename)
	}

	snapshot, err := e.feed.Fetch(ctx, cfg.URL)
	if err != nil {
		return nil, err
	}
	if snapshot.Updated == "" {
		return nil, fmt.Errorf("%w: feed has no updated date", shared.ErrFeedParse)
	}

	stored, ok, err := e.playlists.ReadHeaderDate(cfg.Filename)
	if err != nil {
		return nil, err
	}

	return &GateResult{
		UpToDate:   ok && shared.DatePart(stored) == shared.DatePart(snapshot.Updated),
		FeedDate:   snapshot.Updated,
		StoredDate: stored,
		Snapshot:   snapshot,
	}, nil
}

// Check runs only the gate for each playlist.
func (e *Engine) Check(ctx context.Context, playlists []models.PlaylistConfig) []CheckResult {
	results := make([]CheckResult, 0, len(playlists))
	for _, cfg := range playlists {
		gate, err := e.Gate(ctx, cfg)
		results = append(results, CheckResult{Config: cfg, Gate: gate, Err: err})
	}
	return results
}

// SyncAll syncs every playlist in order. A failed playlist is counted and never stops the others.
func (e *Engine) SyncAll(ctx context.Context, playlists []models.PlaylistConfig, progress chan<- ProgressUpdate) Tally {
	var tally Tally
	for i, cfg := range playlists {
		if ctx.Err() != nil {
			e.logger.Warn("sync pass cancelled", "remaining", len(playlists)-i)
			break
		}
		tally.add(e.SyncPlaylist(ctx, cfg, progress))
	}

	e.logger.Info("sync pass finished",
		"succeeded", tally.Succeeded, "skipped", tally.Skipped, "failed", tally.Failed)
	return tally
}

// SyncPlaylist runs one playlist through the state machine and records the outcome.
func (e *Engine) SyncPlaylist(ctx context.Context, cfg models.PlaylistConfig, progress chan<- ProgressUpdate) PlaylistResult {
	res := PlaylistResult{
		Config: cfg,
		Run: models.SyncRun{
			ID:        shared.GenerateID(),
			Playlist:  cfg.Filename,
			FeedURL:   cfg.URL,
			StartedAt: e.now(),
		},
	}
	logger := shared.WithLogger(e.logger, "playlist", cfg.Filename)

	res.State, res.Err = e.run(ctx, cfg, &res, logger, progress)
	if res.Err != nil {
		logger.Error("sync failed", "state", res.FailedState, "err", res.Err)
		res.Run.Error = res.Err.Error()
	}

	res.Run.State = res.State.String()
	res.Run.FinishedAt = e.now()
	e.record(ctx, &res, logger)
	e.sendProgress(progress, finishedUpdate(&res))
	return res
}

func (e *Engine) run(
	ctx context.Context,
	cfg models.PlaylistConfig,
	res *PlaylistResult,
	logger *log.Logger,
	progress chan<- ProgressUpdate,
) (State, error) {
	fail := func(s State, err error) (State, error) {
		res.FailedState = s
		return StateFail, err
	}

	e.sendProgress(progress, gateUpdate(cfg.Filename, cfg.URL))
	gate, err := e.Gate(ctx, cfg)
	if err != nil {
		return fail(StateGate, err)
	}
	res.Run.FeedDate = gate.FeedDate
	res.Run.StoredDate = gate.StoredDate
	if gate.UpToDate {
		logger.Info("playlist is already up to date", "date", gate.FeedDate)
		e.sendProgress(progress, skipUpdate(cfg.Filename, gate))
		return StateSkip, nil
	}

	// The gate's snapshot is the fetched feed for this cycle.
	snapshot := gate.Snapshot
	logger.Info("playlist is stale", "feed_date", gate.FeedDate, "stored_date", gate.StoredDate)
	e.sendProgress(progress, fetchUpdate(cfg.Filename, snapshot))

	songs := feed.ExtractAll(snapshot)
	res.Run.Songs = len(songs)
	e.sendProgress(progress, extractUpdate(cfg.Filename, len(songs)))
	if len(songs) == 0 {
		return fail(StateExtract, fmt.Errorf("%w: feed has no songs", shared.ErrNoRecommendations))
	}

	tracks := make([]models.ResolvedTrack, 0, len(songs))
	for i, song := range songs {
		if err := ctx.Err(); err != nil {
			return fail(StateResolve, err)
		}
		e.sendProgress(progress, resolveUpdate(cfg.Filename, i+1, len(songs), song))
		if r := e.resolver.Resolve(ctx, song); r.Resolved() {
			tracks = append(tracks, *r.Track)
		}
	}
	res.Run.Resolved = len(tracks)
	if len(tracks) == 0 {
		return fail(StateResolve, fmt.Errorf("%w: none of %d songs resolved", shared.ErrNoRecommendations, len(songs)))
	}

	if err := e.playlists.ClearContent(cfg.Filename); err != nil {
		return fail(StateDownload, err)
	}
	batch := e.downloads.Download(ctx, cfg.Filename, tracks, func(step, total int, r downloader.Result) {
		e.sendProgress(progress, downloadUpdate(cfg.Filename, step, total, r))
	})
	res.Run.Downloaded = batch.Completed
	res.Tracks = e.downloadedTracks(res.Run.ID, cfg.Filename, batch)
	if batch.Completed == 0 {
		return fail(StateDownload, fmt.Errorf("%w: %d tracks attempted", shared.ErrNoDownloads, len(tracks)))
	}
	if err := ctx.Err(); err != nil {
		return fail(StateDownload, err)
	}

	e.sendProgress(progress, commitUpdate(cfg.Filename, snapshot.Updated))
	if _, err := e.playlists.Dedupe(cfg.Filename); err != nil {
		return fail(StateCommit, err)
	}
	if err := e.playlists.CommitHeader(cfg.Filename, snapshot.Updated); err != nil {
		return fail(StateCommit, err)
	}

	logger.Info("synchronization completed", "downloaded", batch.Completed, "resolved", len(tracks), "songs", len(songs))
	return StateDone, nil
}

func (e *Engine) downloadedTracks(runID, name string, batch downloader.Batch) []models.DownloadedTrack {
	var out []models.DownloadedTrack
	for _, r := range batch.Results {
		if !r.Completed() {
			continue
		}
		for _, file := range r.Files {
			out = append(out, models.DownloadedTrack{
				ID:        shared.GenerateID(),
				RunID:     runID,
				Playlist:  name,
				Title:     r.Track.Title,
				Artist:    r.Track.Artist,
				SourceURL: r.Track.SourceURL,
				FileName:  filepath.Base(file),
				CreatedAt: e.now(),
			})
		}
	}
	return out
}

func (e *Engine) record(ctx context.Context, res *PlaylistResult, logger *log.Logger) {
	if e.recorder == nil {
		return
	}
	// A cancelled pass is still recorded.
	if ctx.Err() != nil {
		ctx = context.WithoutCancel(ctx)
	}
	if err := e.recorder.RecordRun(ctx, &res.Run, res.Tracks); err != nil {
		logger.Warn("failed to record sync run", "err", err)
	}
}
