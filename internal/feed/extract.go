package feed

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/desertthunder/listensync/internal/models"
)

// ExtractSongs parses one entry's HTML content into songs, in document order.
//
// Content without any "title by artist" fragment yields an empty slice.
func ExtractSongs(content string) []models.Song {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return []models.Song{}
	}

	songs := []models.Song{}
	consumed := make(map[*html.Node]bool)

	doc.Find("a").Each(func(_ int, title *goquery.Selection) {
		node := title.Get(0)
		if consumed[node] {
			return
		}

		sourceURL, ok := title.Attr("href")
		if !ok {
			return
		}

		artistNode := artistAnchorAfter(node)
		if artistNode == nil {
			return
		}

		artist := doc.FindNodes(artistNode)
		artistURL, ok := artist.Attr("href")
		if !ok {
			return
		}

		consumed[artistNode] = true
		songs = append(songs, models.Song{
			Title:     strings.TrimSpace(title.Text()),
			Artist:    strings.TrimSpace(artist.Text()),
			ArtistURL: artistURL,
			SourceURL: sourceURL,
		})
	})

	return songs
}

// ExtractAll flattens the songs of every entry, preserving feed order.
func ExtractAll(snapshot *models.FeedSnapshot) []models.Song {
	if snapshot == nil {
		return []models.Song{}
	}

	songs := []models.Song{}
	for _, entry := range snapshot.Entries {
		songs = append(songs, ExtractSongs(entry)...)
	}
	return songs
}

// artistAnchorAfter returns the anchor that follows n across a bare "by" text node, or nil.
func artistAnchorAfter(n *html.Node) *html.Node {
	by := n.NextSibling
	if by == nil || by.Type != html.TextNode || strings.TrimSpace(by.Data) != "by" {
		return nil
	}

	next := by.NextSibling
	if next == nil || next.Type != html.ElementNode || next.Data != "a" {
		return nil
	}
	return next
}
