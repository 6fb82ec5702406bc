// package formatter renders sync history as a terminal table, CSV or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/desertthunder/listensync/internal/models"
	"github.com/desertthunder/listensync/internal/shared"
)

// Format names accepted by [FormatRuns].
const (
	FormatTable = "table"
	FormatCSV   = "csv"
	FormatJSON  = "json"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c7086"))
	stateStyles = map[string]lipgloss.Style{
		"done": cellStyle.Foreground(lipgloss.Color("#a6e3a1")),
		"skip": cellStyle.Foreground(lipgloss.Color("#89b4fa")),
		"fail": cellStyle.Foreground(lipgloss.Color("#f38ba8")),
	}
)

var runHeaders = []string{"#", "Playlist", "State", "Feed Date", "Songs", "Resolved", "Downloaded", "Started", "Duration", "Error"}

// FormatRuns renders runs in the named format.
func FormatRuns(runs []*models.SyncRun, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", FormatTable:
		return []byte(RunsTable(runs) + "\n"), nil
	case FormatCSV:
		return RunsToCSV(runs)
	case FormatJSON:
		return RunsToJSON(runs)
	default:
		return nil, fmt.Errorf("%w: unsupported format %q (use table, csv or json)", shared.ErrInvalidConfig, format)
	}
}

// RunsTable renders runs as a bordered table, colouring the state column.
func RunsTable(runs []*models.SyncRun) string {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			strconv.Itoa(r.Sequence),
			r.Playlist,
			r.State,
			shared.DatePart(r.FeedDate),
			strconv.Itoa(r.Songs),
			strconv.Itoa(r.Resolved),
			strconv.Itoa(r.Downloaded),
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			shared.FormatDuration(r.Duration()),
			truncate(r.Error, 48),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(runHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 2 && row >= 0 && row < len(rows) {
				if style, ok := stateStyles[rows[row][2]]; ok {
					return style
				}
			}
			return cellStyle
		})

	return t.String()
}

// RunsToCSV converts runs to CSV with a header row.
func RunsToCSV(runs []*models.SyncRun) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Sequence", "Playlist", "FeedURL", "State", "FeedDate", "StoredDate", "Songs", "Resolved", "Downloaded", "Error", "StartedAt", "FinishedAt"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, r := range runs {
		record := []string{
			r.ID,
			strconv.Itoa(r.Sequence),
			r.Playlist,
			r.FeedURL,
			r.State,
			r.FeedDate,
			r.StoredDate,
			strconv.Itoa(r.Songs),
			strconv.Itoa(r.Resolved),
			strconv.Itoa(r.Downloaded),
			r.Error,
			r.StartedAt.UTC().Format(time.RFC3339),
			r.FinishedAt.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// RunsToJSON converts runs to an indented JSON array. An empty list renders as [].
func RunsToJSON(runs []*models.SyncRun) ([]byte, error) {
	if runs == nil {
		runs = []*models.SyncRun{}
	}
	return shared.MarshalJSON(runs, true)
}

// RunJSON converts one run to indented JSON.
func RunJSON(run *models.SyncRun) ([]byte, error) {
	return shared.MarshalJSON(run, true)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
