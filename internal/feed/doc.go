// Package feed fetches ListenBrainz recommendation feeds and extracts the songs they list.
//
// # Feed Format
//
// The feed is an Atom document. Only two things are read from it: the <updated> timestamp of the first entry,
// which the staleness gate compares against the playlist header, and the HTML <content> of every entry.
//
// # Song Extraction
//
// Each entry's HTML lists songs as
//
//	<a href="{recording url}">{title}</a> by <a href="{artist url}">{artist}</a>
//
// [ExtractSongs] walks the parsed HTML with goquery and accepts an anchor only when its next sibling is the bare word
// "by" (surrounding whitespace and line breaks allowed) followed directly by a second anchor.
// An artist anchor is never reused as the title of the next song.
// This is tied to the vendor's markup and will silently match nothing if the layout changes.
package feed
