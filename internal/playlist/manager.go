package playlist

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/listensync/internal/shared"
)

const filePerm = 0644

// Manager reads and rewrites playlist files under a base directory.
type Manager struct {
	basePath string
	logger   *log.Logger
}

// NewManager creates a Manager for playlists stored in basePath.
func NewManager(basePath string, logger *log.Logger) *Manager {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Manager{
		basePath: basePath,
		logger:   shared.WithLogger(logger, "component", "playlist"),
	}
}

// Path returns the location of the named playlist file.
func (m *Manager) Path(name string) string {
	return filepath.Join(m.basePath, name)
}

// ReadHeaderDate returns the stored "# Updated:" date. A missing file or header is reported as ok == false, not as an error.
func (m *Manager) ReadHeaderDate(name string) (date string, ok bool, err error) {
	lines, exists, err := m.read(name)
	if err != nil || !exists {
		return "", false, err
	}
	date, ok = headerDate(lines)
	return date, ok, nil
}

// ClearContent drops every track line, keeping only "#" lines. A missing file is created with the bare marker.
func (m *Manager) ClearContent(name string) error {
	lines, exists, err := m.read(name)
	if err != nil {
		return err
	}
	if !exists {
		return m.write(name, []string{Marker})
	}

	kept := headerLines(lines)
	if removed := len(lines) - len(kept); removed > 0 {
		m.logger.Debug("cleared playlist content", "playlist", name, "removed", removed)
	}
	return m.write(name, kept)
}

// AppendTrack adds the base name of filePath as a track line.
//
// The name is rejected with a warning when any existing line already contains it. Reports whether a line was added.
func (m *Manager) AppendTrack(name, filePath string) (bool, error) {
	track := filepath.Base(strings.TrimSpace(filePath))
	if track == "." || track == string(filepath.Separator) {
		return false, fmt.Errorf("%w: empty track path", shared.ErrInvalidConfig)
	}

	lines, _, err := m.read(name)
	if err != nil {
		return false, err
	}

	if containsName(lines, track) {
		m.logger.Warn("file already exists in the playlist", "playlist", name, "file", track)
		return false, nil
	}

	if err := m.write(name, append(lines, track)); err != nil {
		return false, err
	}
	m.logger.Info("file added to the playlist", "playlist", name, "file", track)
	return true, nil
}

// CommitHeader records date as the last synced feed date. Any previous "# Updated:" line is replaced.
func (m *Manager) CommitHeader(name, date string) error {
	lines, _, err := m.read(name)
	if err != nil {
		return err
	}
	if err := m.write(name, withHeader(lines, strings.TrimSpace(date))); err != nil {
		return err
	}
	m.logger.Info("updated header", "playlist", name, "date", date)
	return nil
}

// Dedupe removes repeated lines, keeping the first occurrence. Returns the number of lines removed.
func (m *Manager) Dedupe(name string) (int, error) {
	lines, exists, err := m.read(name)
	if err != nil {
		return 0, err
	}
	if !exists {
		m.logger.Warn("playlist does not exist, no duplicates to remove", "playlist", name)
		return 0, nil
	}

	unique, removed := uniqueLines(lines)
	if removed == 0 {
		return 0, nil
	}
	if err := m.write(name, unique); err != nil {
		return 0, err
	}
	m.logger.Info("removed duplicates", "playlist", name, "removed", removed)
	return removed, nil
}

// Tracks lists the track lines of the playlist in file order. A missing file has no tracks.
func (m *Manager) Tracks(name string) ([]string, error) {
	lines, _, err := m.read(name)
	if err != nil {
		return nil, err
	}
	return trackLines(lines), nil
}

func (m *Manager) read(name string) ([]string, bool, error) {
	data, err := os.ReadFile(m.Path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read playlist %s: %w", name, err)
	}
	return splitLines(data), true, nil
}

func (m *Manager) write(name string, lines []string) error {
	if err := shared.WriteFileAtomic(m.Path(name), joinLines(lines), filePerm); err != nil {
		return fmt.Errorf("failed to write playlist %s: %w", name, err)
	}
	return nil
}
