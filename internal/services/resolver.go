package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/listensync/internal/models"
	"github.com/desertthunder/listensync/internal/shared"
)

// OutcomeKind tags the result of resolving one song.
type OutcomeKind int

const (
	// OutcomeResolved means the search returned a usable first match.
	OutcomeResolved OutcomeKind = iota
	// OutcomeNoMatch means every query came back empty. The song is dropped.
	OutcomeNoMatch
	// OutcomeTransportError means the search itself failed. Callers drop the song exactly like [OutcomeNoMatch].
	OutcomeTransportError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeResolved:
		return "resolved"
	case OutcomeNoMatch:
		return "no_match"
	case OutcomeTransportError:
		return "transport_error"
	default:
		return ""
	}
}

// Resolution is the outcome of [Resolver.Resolve].
type Resolution struct {
	Kind  OutcomeKind
	Track *models.ResolvedTrack // set only for OutcomeResolved
	Query string                // last query sent
	Err   error                 // set only for OutcomeTransportError
}

// Resolved reports whether the song has a download source.
func (r Resolution) Resolved() bool {
	return r.Kind == OutcomeResolved && r.Track != nil
}

// Resolver maps songs to download URLs through a [Searcher].
type Resolver struct {
	searcher Searcher
	logger   *log.Logger
}

// NewResolver creates a Resolver backed by searcher.
func NewResolver(searcher Searcher, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Resolver{
		searcher: searcher,
		logger:   shared.WithLogger(logger, "component", "resolver"),
	}
}

// Resolve searches for "{title} {artist}" and takes the first result's link.
//
// When nothing matches and the artist credit lists several names separated by commas,
// one more search is made with only the first name. A failed search is logged and returned as [OutcomeTransportError]
// without trying the fallback.
func (r *Resolver) Resolve(ctx context.Context, song models.Song) Resolution {
	query := searchQuery(song.Title, song.Artist)
	link, err := r.firstLink(ctx, query)
	if err != nil {
		r.logger.Error("search failed", "query", query, "err", err)
		return Resolution{Kind: OutcomeTransportError, Query: query, Err: err}
	}
	if link != "" {
		return r.resolved(song, query, link)
	}
	r.logger.Warn("no match found", "artist", song.Artist, "title", song.Title)

	first, _, multiple := strings.Cut(song.Artist, ",")
	if !multiple {
		return Resolution{Kind: OutcomeNoMatch, Query: query}
	}

	first = strings.TrimSpace(first)
	query = searchQuery(song.Title, first)
	r.logger.Debug("retrying with first artist", "artist", first, "title", song.Title)

	link, err = r.firstLink(ctx, query)
	if err != nil {
		r.logger.Error("search failed", "query", query, "err", err)
		return Resolution{Kind: OutcomeTransportError, Query: query, Err: err}
	}
	if link != "" {
		return r.resolved(song, query, link)
	}

	r.logger.Warn("no match found", "artist", first, "title", song.Title)
	return Resolution{Kind: OutcomeNoMatch, Query: query}
}

func (r *Resolver) firstLink(ctx context.Context, query string) (string, error) {
	if r.searcher == nil {
		return "", fmt.Errorf("%w: search service not initialized", shared.ErrServiceUnavailable)
	}

	results, err := r.searcher.Search(ctx, query)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", nil
	}
	return strings.TrimSpace(results[0].Link), nil
}

func (r *Resolver) resolved(song models.Song, query, link string) Resolution {
	r.logger.Info("found link", "link", link, "artist", song.Artist, "title", song.Title)
	return Resolution{
		Kind:  OutcomeResolved,
		Query: query,
		Track: &models.ResolvedTrack{
			Title:     song.Title,
			Artist:    song.Artist,
			SourceURL: link,
		},
	}
}

func searchQuery(title, artist string) string {
	return fmt.Sprintf("%s %s", title, artist)
}
