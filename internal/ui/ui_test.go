package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/listensync/internal/models"
	"github.com/desertthunder/listensync/internal/tasks"
)

type fakeSyncer struct {
	updates []tasks.ProgressUpdate
	tally   tasks.Tally
}

func (f *fakeSyncer) SyncAll(_ context.Context, _ []models.PlaylistConfig, progress chan<- tasks.ProgressUpdate) tasks.Tally {
	for _, u := range f.updates {
		progress <- u
	}
	return f.tally
}

// drain feeds every message produced by cmd back into the model until the pass completes.
func drain(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	for i := 0; cmd != nil && i < 100; i++ {
		msg := cmd()
		if msg == nil {
			return
		}
		_, cmd = m.Update(msg)
	}
}

func TestModel(t *testing.T) {
	playlists := []models.PlaylistConfig{
		{URL: "https://listenbrainz.org/a", Filename: "a.m3u8"},
		{URL: "https://listenbrainz.org/b", Filename: "b.m3u8"},
	}

	t.Run("runs the pass and shows the summary", func(t *testing.T) {
		syncer := &fakeSyncer{
			updates: []tasks.ProgressUpdate{
				{Playlist: "a.m3u8", State: tasks.StateGate, Step: 1, Total: 1, Message: "Checking a.m3u8"},
				{Playlist: "a.m3u8", State: tasks.StateDone, Step: 1, Total: 1, Message: "✓ a.m3u8 synced (2/2 downloaded)"},
				{Playlist: "b.m3u8", State: tasks.StateSkip, Step: 1, Total: 1, Message: "✓ b.m3u8 skipped"},
			},
			tally: tasks.Tally{Succeeded: 1, Skipped: 1},
		}

		m := NewModel(context.Background(), syncer, playlists)
		drain(t, m, m.startSync())

		tally, ok := m.Tally()
		if !ok {
			t.Fatal("expected pass to be complete")
		}
		if tally.Succeeded != 1 || tally.Skipped != 1 {
			t.Errorf("unexpected tally %+v", tally)
		}
		if len(m.finished) != 2 {
			t.Errorf("expected 2 finished playlists, got %d", len(m.finished))
		}

		view := m.View()
		for _, want := range []string{"a.m3u8 synced", "b.m3u8 skipped", "Sync complete", "1 synced, 1 skipped, 0 failed"} {
			if !strings.Contains(view, want) {
				t.Errorf("expected view to contain %q, got:\n%s", want, view)
			}
		}
	})

	t.Run("failures are reported in the summary", func(t *testing.T) {
		syncer := &fakeSyncer{
			updates: []tasks.ProgressUpdate{
				{Playlist: "a.m3u8", State: tasks.StateFail, Message: "✗ a.m3u8 failed: boom"},
			},
			tally: tasks.Tally{Failed: 1, Skipped: 1, Results: []tasks.PlaylistResult{{Err: errors.New("boom")}}},
		}

		m := NewModel(context.Background(), syncer, playlists)
		drain(t, m, m.startSync())

		if view := m.View(); !strings.Contains(view, "finished with failures") {
			t.Errorf("expected failure summary, got:\n%s", view)
		}
	})

	t.Run("progress tracks the current step", func(t *testing.T) {
		m := NewModel(context.Background(), &fakeSyncer{}, playlists)
		m.Update(progressUpdateMsg(tasks.ProgressUpdate{Playlist: "a.m3u8", State: tasks.StateDone}))
		m.Update(progressUpdateMsg(tasks.ProgressUpdate{
			Playlist: "b.m3u8", State: tasks.StateDownload, Step: 1, Total: 2, Message: "[1/2] ✓ Song",
		}))

		if got := m.percent(); got != 0.625 {
			t.Errorf("expected 0.625, got %v", got)
		}
		if view := m.View(); !strings.Contains(view, "[1/2] ✓ Song") {
			t.Errorf("expected current message in view, got:\n%s", view)
		}
		if _, ok := m.Tally(); ok {
			t.Error("expected pass to be running")
		}
	})

	t.Run("quit cancels the pass", func(t *testing.T) {
		m := NewModel(context.Background(), &fakeSyncer{}, playlists)
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
		if m.ctx.Err() == nil {
			t.Error("expected context to be cancelled")
		}
	})

	t.Run("help toggles", func(t *testing.T) {
		m := NewModel(context.Background(), &fakeSyncer{}, playlists)
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
		if !m.help.ShowAll {
			t.Error("expected full help after ?")
		}
	})
}
