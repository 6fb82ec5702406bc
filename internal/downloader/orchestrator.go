package downloader

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/listensync/internal/models"
	"github.com/desertthunder/listensync/internal/shared"
)

// Downloader fetches one track and reports the files it produced.
type Downloader interface {
	Download(ctx context.Context, url string) ([]string, error)
}

// Appender receives completed files. Implemented by [playlist.Manager].
type Appender interface {
	AppendTrack(name, filePath string) (bool, error)
}

// Result is the outcome of downloading one track.
type Result struct {
	Track models.ResolvedTrack
	Files []string
	Added int // files newly appended to the playlist
	Err   error
}

// Completed reports whether the downloader confirmed at least one file.
func (r Result) Completed() bool {
	return r.Err == nil && len(r.Files) > 0
}

// Batch summarizes one [Orchestrator.Download] call.
type Batch struct {
	Completed int
	Results   []Result
}

// Failed counts tracks without a confirmed file.
func (b Batch) Failed() int {
	return len(b.Results) - b.Completed
}

// OnResult is invoked after each track of a batch, with its 1-based position.
type OnResult func(step, total int, r Result)

// Orchestrator downloads resolved tracks one after another and appends their files to a playlist.
type Orchestrator struct {
	downloader Downloader
	appender   Appender
	logger     *log.Logger
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(d Downloader, a Appender, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Orchestrator{
		downloader: d,
		appender:   a,
		logger:     shared.WithLogger(logger, "component", "orchestrator"),
	}
}

// Download processes tracks in order. Failures are logged and skipped; the returned batch counts tracks with a
// confirmed completed file. A cancelled context stops the batch before the next track.
func (o *Orchestrator) Download(ctx context.Context, playlist string, tracks []models.ResolvedTrack, onResult OnResult) Batch {
	batch := Batch{Results: make([]Result, 0, len(tracks))}

	for i, track := range tracks {
		if ctx.Err() != nil {
			o.logger.Warn("download batch cancelled", "playlist", playlist, "remaining", len(tracks)-i)
			break
		}

		result := o.downloadOne(ctx, playlist, track)
		if result.Completed() {
			batch.Completed++
		}
		batch.Results = append(batch.Results, result)

		if onResult != nil {
			onResult(i+1, len(tracks), result)
		}
	}

	o.logger.Info("download batch finished", "playlist", playlist, "completed", batch.Completed, "failed", batch.Failed())
	return batch
}

func (o *Orchestrator) downloadOne(ctx context.Context, playlist string, track models.ResolvedTrack) Result {
	o.logger.Info("downloading", "title", track.Title, "artist", track.Artist)

	result := Result{Track: track}
	files, err := o.downloader.Download(ctx, track.SourceURL)
	if err != nil {
		o.logger.Error("error downloading", "title", track.Title, "err", err)
		result.Err = err
		return result
	}
	if len(files) == 0 {
		o.logger.Warn("no completed file reported", "title", track.Title, "url", track.SourceURL)
	}

	result.Files = files
	for _, file := range files {
		o.logger.Debug("adding downloaded file to playlist", "file", file)
		added, err := o.appender.AppendTrack(playlist, file)
		if err != nil {
			o.logger.Error("failed to append to playlist", "file", file, "err", err)
			continue
		}
		if added {
			result.Added++
		}
	}
	return result
}
