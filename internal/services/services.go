// package services defines the search capability used to resolve songs and implements it for the Deezer API
package services

import (
	"context"
)

// Searcher is the external search capability: one free-text query in, a ranked list of matches out.
//
// The first element is the best match. An empty slice means no match; an error means the search itself failed.
type Searcher interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)

	// Name returns the name of the service (e.g. "Deezer")
	Name() string
}

// SearchResult is one match returned by a [Searcher].
type SearchResult struct {
	ID       int64
	Title    string
	Artist   string
	Album    string
	Duration int    // Duration in seconds
	Link     string // Canonical track URL, understood by the downloader
}
