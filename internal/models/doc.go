// Package models defines the data passed between the sync pipeline stages.
//
// A sync cycle for one playlist moves data through these types in order:
//
//  1. [PlaylistConfig] : which feed feeds which playlist file
//  2. [FeedSnapshot] : one fetch of the feed, with the first entry's update timestamp
//  3. [Song] : one recommendation extracted from an entry's HTML content
//  4. [ResolvedTrack] : a song paired with a Deezer URL the downloader understands
//
// [SyncRun] and [DownloadedTrack] are the persisted history of finished cycles.
package models
