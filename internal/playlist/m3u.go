package playlist

import (
	"strings"
)

const (
	// Marker is the first line of an extended M3U file.
	Marker = "#EXTM3U"
	// UpdatedPrefix starts the header line holding the last synced feed date.
	UpdatedPrefix = "# Updated:"
	commentPrefix = "#"
)

// splitLines breaks file content into lines without terminators, dropping the empty tail after a final newline.
func splitLines(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}

func joinLines(lines []string) []byte {
	if len(lines) == 0 {
		return nil
	}
	return []byte(strings.Join(lines, "\n") + "\n")
}

func isHeader(line string) bool {
	return strings.HasPrefix(line, commentPrefix)
}

func isUpdated(line string) bool {
	return strings.HasPrefix(line, UpdatedPrefix)
}

// headerDate extracts the date from the first "# Updated:" line.
func headerDate(lines []string) (string, bool) {
	for _, line := range lines {
		if !isUpdated(line) {
			continue
		}
		date := strings.TrimSpace(strings.TrimPrefix(line, UpdatedPrefix))
		return date, date != ""
	}
	return "", false
}

// withHeader drops every "# Updated:" line and inserts a fresh one right after the marker, adding the marker if absent.
func withHeader(lines []string, date string) []string {
	kept := make([]string, 0, len(lines)+2)
	for _, line := range lines {
		if !isUpdated(line) {
			kept = append(kept, line)
		}
	}
	if len(kept) == 0 || strings.TrimSpace(kept[0]) != Marker {
		kept = append([]string{Marker}, kept...)
	}

	out := make([]string, 0, len(kept)+1)
	out = append(out, kept[0], UpdatedPrefix+" "+date)
	return append(out, kept[1:]...)
}

func headerLines(lines []string) []string {
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if isHeader(line) {
			kept = append(kept, line)
		}
	}
	return kept
}

func trackLines(lines []string) []string {
	tracks := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" || isHeader(line) {
			continue
		}
		tracks = append(tracks, line)
	}
	return tracks
}

// containsName reports whether any line contains name. This is a substring test, so "Song B.mp3" matches
// an existing "Artist - Song B.mp3" line.
func containsName(lines []string, name string) bool {
	for _, line := range lines {
		if strings.Contains(line, name) {
			return true
		}
	}
	return false
}

// uniqueLines keeps the first occurrence of every line, preserving order.
func uniqueLines(lines []string) ([]string, int) {
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out, len(lines) - len(out)
}
