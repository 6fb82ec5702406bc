package playlist

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/listensync/internal/shared"
)

const testPlaylist = "@Created for You.m3u8"

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(t.TempDir(), shared.NewLogger(io.Discard))
}

func writePlaylist(t *testing.T, m *Manager, content string) {
	t.Helper()
	if err := os.WriteFile(m.Path(testPlaylist), []byte(content), 0644); err != nil {
		t.Fatalf("failed to seed playlist: %v", err)
	}
}

func readPlaylist(t *testing.T, m *Manager) string {
	t.Helper()
	data, err := os.ReadFile(m.Path(testPlaylist))
	if err != nil {
		t.Fatalf("failed to read playlist: %v", err)
	}
	return string(data)
}

func countUpdated(content string) int {
	n := 0
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, UpdatedPrefix) {
			n++
		}
	}
	return n
}

func TestManager(t *testing.T) {
	t.Run("Path", func(t *testing.T) {
		m := NewManager("/app/music", nil)
		if got := m.Path(testPlaylist); got != filepath.Join("/app/music", testPlaylist) {
			t.Errorf("unexpected path %s", got)
		}
	})

	t.Run("ReadHeaderDate", func(t *testing.T) {
		t.Run("missing file is not an error", func(t *testing.T) {
			m := newTestManager(t)
			date, ok, err := m.ReadHeaderDate(testPlaylist)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if ok || date != "" {
				t.Errorf("expected no date, got %q", date)
			}
		})

		t.Run("reads stored date", func(t *testing.T) {
			m := newTestManager(t)
			writePlaylist(t, m, "#EXTM3U\n# Updated: 2024-01-05T10:00:00Z\nA.mp3\n")

			date, ok, err := m.ReadHeaderDate(testPlaylist)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !ok || date != "2024-01-05T10:00:00Z" {
				t.Errorf("expected stored date, got %q (ok=%v)", date, ok)
			}
		})

		t.Run("file without header", func(t *testing.T) {
			m := newTestManager(t)
			writePlaylist(t, m, "#EXTM3U\nA.mp3\n")

			if _, ok, err := m.ReadHeaderDate(testPlaylist); err != nil || ok {
				t.Errorf("expected no date and no error, got ok=%v err=%v", ok, err)
			}
		})

		t.Run("tolerates CRLF line endings", func(t *testing.T) {
			m := newTestManager(t)
			writePlaylist(t, m, "#EXTM3U\r\n# Updated: 2024-02-01T00:00:00Z\r\n")

			date, ok, _ := m.ReadHeaderDate(testPlaylist)
			if !ok || date != "2024-02-01T00:00:00Z" {
				t.Errorf("expected date without carriage return, got %q", date)
			}
		})
	})

	t.Run("AppendTrack", func(t *testing.T) {
		t.Run("appending twice yields one line", func(t *testing.T) {
			m := newTestManager(t)
			path := "/app/music/Alice - Song X.mp3"

			added, err := m.AppendTrack(testPlaylist, path)
			if err != nil || !added {
				t.Fatalf("expected first append to succeed, got added=%v err=%v", added, err)
			}
			added, err = m.AppendTrack(testPlaylist, path)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if added {
				t.Error("expected second append to be rejected")
			}

			tracks, _ := m.Tracks(testPlaylist)
			if len(tracks) != 1 || tracks[0] != "Alice - Song X.mp3" {
				t.Errorf("expected a single bare file name, got %v", tracks)
			}
		})

		t.Run("substring match counts as duplicate", func(t *testing.T) {
			m := newTestManager(t)
			writePlaylist(t, m, "#EXTM3U\nArtist - Song B.mp3\n")

			added, err := m.AppendTrack(testPlaylist, "/music/Song B.mp3")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if added {
				t.Error("expected Song B.mp3 to be rejected")
			}
			if got := readPlaylist(t, m); got != "#EXTM3U\nArtist - Song B.mp3\n" {
				t.Errorf("expected file to be unchanged, got %q", got)
			}
		})

		t.Run("empty path", func(t *testing.T) {
			m := newTestManager(t)
			if _, err := m.AppendTrack(testPlaylist, "  "); err == nil {
				t.Error("expected error for empty path")
			}
		})
	})

	t.Run("CommitHeader", func(t *testing.T) {
		t.Run("creates skeleton", func(t *testing.T) {
			m := newTestManager(t)
			if err := m.CommitHeader(testPlaylist, "2024-01-05T10:00:00Z"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got := readPlaylist(t, m); got != "#EXTM3U\n# Updated: 2024-01-05T10:00:00Z\n" {
				t.Errorf("unexpected skeleton %q", got)
			}
		})

		t.Run("exactly one header after repeated commits", func(t *testing.T) {
			m := newTestManager(t)
			writePlaylist(t, m, "#EXTM3U\n# Updated: 2023-12-01\nA.mp3\n# Updated: 2023-12-02\nB.mp3\n")

			dates := []string{"2024-01-01T00:00:00Z", "2024-01-02T00:00:00Z", "2024-01-03T00:00:00Z"}
			for _, d := range dates {
				if err := m.CommitHeader(testPlaylist, d); err != nil {
					t.Fatalf("commit %s failed: %v", d, err)
				}
			}

			content := readPlaylist(t, m)
			if n := countUpdated(content); n != 1 {
				t.Errorf("expected one header line, got %d in %q", n, content)
			}
			want := "#EXTM3U\n# Updated: 2024-01-03T00:00:00Z\nA.mp3\nB.mp3\n"
			if content != want {
				t.Errorf("expected %q, got %q", want, content)
			}
		})

		t.Run("adds missing marker", func(t *testing.T) {
			m := newTestManager(t)
			writePlaylist(t, m, "A.mp3\n")

			if err := m.CommitHeader(testPlaylist, "2024-01-05"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got := readPlaylist(t, m); got != "#EXTM3U\n# Updated: 2024-01-05\nA.mp3\n" {
				t.Errorf("unexpected content %q", got)
			}
		})
	})

	t.Run("ClearContent", func(t *testing.T) {
		t.Run("keeps only header lines", func(t *testing.T) {
			m := newTestManager(t)
			writePlaylist(t, m, "#EXTM3U\n# Updated: 2024-01-01\nA.mp3\nB.mp3\nC.mp3\n")

			if err := m.ClearContent(testPlaylist); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got := readPlaylist(t, m); got != "#EXTM3U\n# Updated: 2024-01-01\n" {
				t.Errorf("unexpected content %q", got)
			}
		})

		t.Run("missing file gets a marker", func(t *testing.T) {
			m := newTestManager(t)
			if err := m.ClearContent(testPlaylist); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got := readPlaylist(t, m); got != "#EXTM3U\n" {
				t.Errorf("unexpected content %q", got)
			}
		})

		t.Run("content reset before append", func(t *testing.T) {
			m := newTestManager(t)
			writePlaylist(t, m, "#EXTM3U\n# Updated: 2024-01-01\nOld 1.mp3\nOld 2.mp3\nOld 3.mp3\n")

			if err := m.ClearContent(testPlaylist); err != nil {
				t.Fatal(err)
			}
			if _, err := m.AppendTrack(testPlaylist, "/music/New.mp3"); err != nil {
				t.Fatal(err)
			}
			if err := m.CommitHeader(testPlaylist, "2024-01-08"); err != nil {
				t.Fatal(err)
			}

			tracks, _ := m.Tracks(testPlaylist)
			if len(tracks) != 1 || tracks[0] != "New.mp3" {
				t.Errorf("expected exactly the new track, got %v", tracks)
			}
		})
	})

	t.Run("Dedupe", func(t *testing.T) {
		t.Run("removes exact repeats", func(t *testing.T) {
			m := newTestManager(t)
			writePlaylist(t, m, "#EXTM3U\nA.mp3\nB.mp3\nA.mp3\nB.mp3\nC.mp3\n")

			removed, err := m.Dedupe(testPlaylist)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if removed != 2 {
				t.Errorf("expected 2 removed lines, got %d", removed)
			}
			if got := readPlaylist(t, m); got != "#EXTM3U\nA.mp3\nB.mp3\nC.mp3\n" {
				t.Errorf("unexpected content %q", got)
			}
		})

		t.Run("missing file", func(t *testing.T) {
			m := newTestManager(t)
			if removed, err := m.Dedupe(testPlaylist); err != nil || removed != 0 {
				t.Errorf("expected no-op, got removed=%d err=%v", removed, err)
			}
		})
	})

	t.Run("Tracks skips blank and header lines", func(t *testing.T) {
		m := newTestManager(t)
		writePlaylist(t, m, "#EXTM3U\n# Updated: 2024-01-01\n\nA.mp3\n#EXTINF:123,Alice - B\nB.mp3\n")

		tracks, err := m.Tracks(testPlaylist)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(tracks) != 2 || tracks[0] != "A.mp3" || tracks[1] != "B.mp3" {
			t.Errorf("unexpected tracks %v", tracks)
		}
	})

	t.Run("writes leave no temp files behind", func(t *testing.T) {
		m := newTestManager(t)
		m.CommitHeader(testPlaylist, "2024-01-01")
		m.AppendTrack(testPlaylist, "A.mp3")

		entries, err := os.ReadDir(m.basePath)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 {
			t.Errorf("expected only the playlist file, got %d entries", len(entries))
		}
	})
}
