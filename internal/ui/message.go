package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/listensync/internal/tasks"
)

// MsgKind enumerates the message types of the sync view.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgProgressUpdate MsgKind = iota
	MsgPassComplete
)

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// passCompleteMsg is the constructor for [MsgPassComplete]
func passCompleteMsg(tally tasks.Tally) Msg {
	return Msg{kind: MsgPassComplete, data: tally}
}
