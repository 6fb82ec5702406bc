// Package downloader runs the deemix CLI for resolved tracks and feeds completed files into a playlist.
//
// [Deemix] wraps one invocation: it writes the ARL credential to deemix's config file, runs
// "deemix --portable -b <bitrate> -p <base path> <url>" and collects every file reported on a
// "Completed download of <path>" stdout line.
//
// [Orchestrator] processes a batch sequentially. A failed invocation is logged and the batch moves on,
// so one bad track never aborts the rest.
package downloader
