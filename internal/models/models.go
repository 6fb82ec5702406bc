// package models defines the data model for the playlist sync pipeline
package models

import (
	"fmt"
	"time"
)

// PlaylistConfig is one sync target: a recommendation feed and the playlist file it keeps current.
type PlaylistConfig struct {
	URL      string
	Filename string
}

// FeedSnapshot is the result of one feed fetch.
type FeedSnapshot struct {
	Updated string   // ISO-8601 timestamp of the first entry
	Entries []string // raw HTML content of each entry, in feed order
}

// Song is one recommended track as listed in the feed.
type Song struct {
	Title     string
	Artist    string
	ArtistURL string
	SourceURL string // provisional link from the feed, usually a MusicBrainz recording
}

// String renders the song as "Artist - Title".
func (s Song) String() string {
	return fmt.Sprintf("%s - %s", s.Artist, s.Title)
}

// ResolvedTrack is a song with a concrete download source.
type ResolvedTrack struct {
	Title     string
	Artist    string
	SourceURL string
}

// String renders the track as "Artist - Title".
func (t ResolvedTrack) String() string {
	return fmt.Sprintf("%s - %s", t.Artist, t.Title)
}

// SyncRun is the persisted outcome of one playlist sync attempt.
type SyncRun struct {
	ID         string    `json:"id"`
	Sequence   int       `json:"sequence"` // human-readable run number, assigned on insert
	Playlist   string    `json:"playlist"`
	FeedURL    string    `json:"feed_url"`
	State      string    `json:"state"`
	FeedDate   string    `json:"feed_date,omitempty"`
	StoredDate string    `json:"stored_date,omitempty"`
	Songs      int       `json:"songs"`
	Resolved   int       `json:"resolved"`
	Downloaded int       `json:"downloaded"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Duration returns how long the run took.
func (r SyncRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Validate checks the fields required for persistence.
func (r SyncRun) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("sync run ID is required")
	}
	if r.Playlist == "" {
		return fmt.Errorf("sync run playlist is required")
	}
	if r.State == "" {
		return fmt.Errorf("sync run state is required")
	}
	return nil
}

// DownloadedTrack records a file confirmed by the downloader during a run.
type DownloadedTrack struct {
	ID        string    `json:"id"`
	RunID     string    `json:"run_id"`
	Playlist  string    `json:"playlist"`
	Title     string    `json:"title"`
	Artist    string    `json:"artist"`
	SourceURL string    `json:"source_url"`
	FileName  string    `json:"file_name"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks the fields required for persistence.
func (t DownloadedTrack) Validate() error {
	if t.ID == "" || t.RunID == "" {
		return fmt.Errorf("downloaded track requires ID and run ID")
	}
	if t.FileName == "" {
		return fmt.Errorf("downloaded track requires a file name")
	}
	return nil
}
