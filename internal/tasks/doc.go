// Package tasks drives playlist synchronization with real-time progress reporting.
//
// # Sync Driver
//
// [Engine.SyncPlaylist] moves one playlist through the states
//
//	GATE -> (SKIP | FETCH) -> EXTRACT -> RESOLVE -> DOWNLOAD -> COMMIT -> DONE
//
// and ends in [StateFail] on the first unrecoverable error. The gate fetches the feed once and its snapshot is
// reused by the later states. One cycle touches the playlist file in a fixed order:
//
//  1. [PlaylistStore.ClearContent] once at least one song resolved
//  2. one append per completed download (through the [BatchDownloader])
//  3. [PlaylistStore.Dedupe]
//  4. [PlaylistStore.CommitHeader] with the feed date
//
// A cycle without any completed download fails before the header is touched, so the playlist stays stale and is
// retried on the next pass.
//
// [Engine.SyncAll] processes playlists in configuration order and returns a [Tally]. One playlist's failure never
// reaches the others.
//
// # Progress Reporting
//
// Operations accept an optional channel of [ProgressUpdate]. Sends use select with default, so a slow or absent
// reader never blocks the sync.
//
// # Run History
//
// When a [RunRecorder] is configured, every finished playlist is recorded with its downloaded tracks. Recording
// errors are logged and otherwise ignored.
//
// # Scheduling
//
// [Scheduler] repeats a pass with a fixed pause after each one until its context is cancelled or it is stopped.
package tasks
