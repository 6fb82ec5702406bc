// Package server provides the optional read-only HTTP status endpoint of the sync daemon.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support. [BasicRouter] registers routes on an
// [http.ServeMux] with method patterns, and [Middleware] is applied so the first one added runs first.
//
// # Status Handler
//
// [StatusHandler] exposes the sync history stored by the daemon:
//
//	GET /health         liveness probe
//	GET /api/status     last pass summary and the latest run of every playlist
//	GET /api/runs       run history, newest first (?playlist=, ?state=, ?limit=)
//	GET /api/runs/{id}  one run
//
// The handler never writes. Playlist files are only touched by the sync driver.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, returning their [Route] table so route definitions live next to
// the handler implementation.
package server
