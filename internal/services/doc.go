// Package services resolves extracted songs to downloadable track URLs.
//
// # Searcher
//
// A [Searcher] runs a free-text track search against a catalogue. [DeezerService] implements it
// against the public Deezer API, rate limited with [rate.Limiter] and retried with [shared.Retry].
// Deezer reports quota and parameter problems as a JSON error object with status 200; those are
// surfaced as [*DeezerError] and retried like any other failure.
//
// # Resolver
//
// [Resolver] turns a [models.Song] into a [Resolution]:
//   - [OutcomeResolved]: the first search result's link becomes the track's source URL
//   - [OutcomeNoMatch]: the query and, for comma separated artist credits, the first-artist query came back empty
//   - [OutcomeTransportError]: the search failed after retries
//
// A no-match is an expected outcome, not an error. The sync driver drops the song in both non-resolved cases.
package services
