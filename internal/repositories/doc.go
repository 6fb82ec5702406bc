// Package repositories implements SQLite persistence for the sync history.
//
// Key Implementations:
//   - [SyncRunRepository] : one row per playlist sync attempt, with state, feed dates and counters
//   - [DownloadedTrackRepository] : files confirmed by the downloader, linked to their run
//   - [RunRecorderAdapter] : records a finished run and its tracks in one transaction
//
// Runs carry a sequence number for human-readable ordering (run #42). The [NextSequence] function increments a
// per-table counter inside the caller's transaction.
package repositories
