// Package playlist owns the on-disk .m3u8 playlist files.
//
// A playlist file starts with the "#EXTM3U" marker, carries at most one "# Updated: <date>" line directly after it,
// and lists one bare track file name per line:
//
//	#EXTM3U
//	# Updated: 2024-01-05T10:00:00Z
//	Alice - Song X.mp3
//	Bob - Song Y.mp3
//
// [Manager] reads and rewrites these files. Every write replaces the whole file through [shared.WriteFileAtomic],
// so a media player reading the playlist while a sync runs never sees a torn header.
//
// One sync cycle calls [Manager.ClearContent] before any [Manager.AppendTrack], and [Manager.CommitHeader] after the
// last append. A crash in between leaves the previous header date in place and the playlist is retried next cycle.
package playlist
