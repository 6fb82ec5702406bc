// Package ui renders a one-shot sync pass in the terminal using bubbletea's Elm architecture.
//
// The [Model] starts [tasks.Engine.SyncAll] in a goroutine and drains its progress channel one update at a time,
// showing a spinner with the current step, a progress bar over the configured playlists and one line per finished
// playlist. When the pass ends it shows the tally and waits for q.
//
// Messages arrive through the [Msg] union; key bindings and contextual help come from charmbracelet/bubbles.
package ui
