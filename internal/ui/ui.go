package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/listensync/internal/models"
	"github.com/desertthunder/listensync/internal/tasks"
)

// Syncer runs a full pass over the configured playlists. Implemented by [tasks.Engine].
type Syncer interface {
	SyncAll(ctx context.Context, playlists []models.PlaylistConfig, progress chan<- tasks.ProgressUpdate) tasks.Tally
}

// Model is the sync progress view.
type Model struct {
	ctx          context.Context
	cancel       context.CancelFunc
	syncer       Syncer
	playlists    []models.PlaylistConfig
	progressChan chan tasks.ProgressUpdate
	done         chan tasks.Tally
	current      tasks.ProgressUpdate
	finished     []tasks.ProgressUpdate
	tally        *tasks.Tally
	width        int
	spinner      spinner.Model
	bar          progress.Model
	help         help.Model
	keys         keyMap
}

// NewModel creates a sync view for playlists. Quitting before the pass ends cancels it.
func NewModel(ctx context.Context, syncer Syncer, playlists []models.PlaylistConfig) *Model {
	ctx, cancel := context.WithCancel(ctx)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.warn

	return &Model{
		ctx:       ctx,
		cancel:    cancel,
		syncer:    syncer,
		playlists: playlists,
		spinner:   s,
		bar:       progress.New(progress.WithDefaultGradient()),
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Tally returns the pass outcome once it has finished.
func (m *Model) Tally() (tasks.Tally, bool) {
	if m.tally == nil {
		return tasks.Tally{}, false
	}
	return *m.tally, true
}

// Init starts the spinner and the sync pass.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startSync())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = max(msg.Width-4, 10)
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.quit):
			m.cancel()
			return m, tea.Quit
		case key.Matches(msg, m.keys.help):
			m.help.ShowAll = !m.help.ShowAll
		}
		return m, nil

	case spinner.TickMsg:
		if m.tally != nil {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		switch msg.kind {
		case MsgProgressUpdate:
			update := msg.data.(tasks.ProgressUpdate)
			m.current = update
			if update.State.Terminal() {
				m.finished = append(m.finished, update)
			}
			return m, m.waitForProgress()
		case MsgPassComplete:
			tally := msg.data.(tasks.Tally)
			m.tally = &tally
			m.progressChan = nil
			return m, nil
		}
	}
	return m, nil
}

// View renders the running pass or its summary.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("listensync"))
	b.WriteString("\n")

	for _, u := range m.finished {
		b.WriteString(styles.State(u.State).Render(u.Message))
		b.WriteString("\n")
	}

	if m.tally == nil {
		b.WriteString("\n")
		b.WriteString(m.renderCurrent())
		b.WriteString("\n\n")
		b.WriteString(m.bar.ViewAs(m.percent()))
		b.WriteString("\n")
	} else {
		b.WriteString("\n")
		b.WriteString(m.renderSummary())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.help.Render(m.help.View(m.keys)))
	return b.String()
}

func (m *Model) startSync() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	m.done = make(chan tasks.Tally, 1)

	progressChan, done := m.progressChan, m.done
	go func() {
		done <- m.syncer.SyncAll(m.ctx, m.playlists, progressChan)
		close(progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progressChan, done := m.progressChan, m.done
	return func() tea.Msg {
		if progressChan == nil {
			return nil
		}
		update, ok := <-progressChan
		if !ok {
			return passCompleteMsg(<-done)
		}
		return progressUpdateMsg(update)
	}
}

// percent is the share of playlists finished, including the progress of the current one.
func (m *Model) percent() float64 {
	if len(m.playlists) == 0 {
		return 0
	}
	share := float64(len(m.finished))
	if !m.current.State.Terminal() && m.current.Total > 0 {
		share += float64(m.current.Step) / float64(m.current.Total) / 2
	}
	return min(share/float64(len(m.playlists)), 1)
}

func (m *Model) renderCurrent() string {
	if m.current.Message == "" {
		return fmt.Sprintf("%s Starting sync of %d playlists...", m.spinner.View(), len(m.playlists))
	}
	if m.current.State.Terminal() {
		return fmt.Sprintf("%s Waiting for the next playlist...", m.spinner.View())
	}
	return fmt.Sprintf("%s %s %s", m.spinner.View(), styles.muted.Render(m.current.State.String()), m.current.Message)
}

func (m *Model) renderSummary() string {
	t := m.tally
	line := fmt.Sprintf("%d synced, %d skipped, %d failed", t.Succeeded, t.Skipped, t.Failed)
	if t.Failed > 0 {
		return styles.err.Render("✗ Sync finished with failures: " + line)
	}
	if t.Total() < len(m.playlists) {
		return styles.warn.Render(fmt.Sprintf("Sync cancelled after %d of %d playlists: %s", t.Total(), len(m.playlists), line))
	}
	return styles.ok.Render("✓ Sync complete: " + line)
}
