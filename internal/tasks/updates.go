package tasks

import (
	"fmt"

	"github.com/desertthunder/listensync/internal/downloader"
	"github.com/desertthunder/listensync/internal/models"
)

// ProgressUpdate represents a progress event during a sync pass.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Playlist string // Playlist file name
	State    State  // Driver state that produced the update
	Step     int    // Current step number within state
	Total    int    // Total steps in this state
	Message  string // Human-readable message for display
	Data     any    // Optional state-specific data for advanced UIs
}

// State is a step of the per-playlist sync state machine:
//
//	GATE -> (SKIP | FETCH) -> EXTRACT -> RESOLVE -> DOWNLOAD -> COMMIT -> DONE
//
// FAIL is reachable from every state.
type State int

const (
	StateGate State = iota
	StateSkip
	StateFetch
	StateExtract
	StateResolve
	StateDownload
	StateCommit
	StateDone
	StateFail
)

func (s State) String() string {
	switch s {
	case StateGate:
		return "gate"
	case StateSkip:
		return "skip"
	case StateFetch:
		return "fetch"
	case StateExtract:
		return "extract"
	case StateResolve:
		return "resolve"
	case StateDownload:
		return "download"
	case StateCommit:
		return "commit"
	case StateDone:
		return "done"
	case StateFail:
		return "fail"
	default:
		return ""
	}
}

// Terminal reports whether the driver stops in s.
func (s State) Terminal() bool {
	return s == StateSkip || s == StateDone || s == StateFail
}

// Succeeded reports whether s is a terminal success state.
func (s State) Succeeded() bool {
	return s == StateSkip || s == StateDone
}

func gateUpdate(name, url string) ProgressUpdate {
	return ProgressUpdate{
		Playlist: name,
		State:    StateGate,
		Step:     1,
		Total:    1,
		Message:  fmt.Sprintf("Checking %s for updates (%s)...", name, url),
	}
}

func skipUpdate(name string, gate *GateResult) ProgressUpdate {
	return ProgressUpdate{
		Playlist: name,
		State:    StateSkip,
		Step:     1,
		Total:    1,
		Message:  fmt.Sprintf("%s is already up to date (%s)", name, gate.FeedDate),
		Data:     gate,
	}
}

func fetchUpdate(name string, snapshot *models.FeedSnapshot) ProgressUpdate {
	return ProgressUpdate{
		Playlist: name,
		State:    StateFetch,
		Step:     1,
		Total:    1,
		Message:  fmt.Sprintf("Feed updated %s (%d entries)", snapshot.Updated, len(snapshot.Entries)),
		Data:     snapshot,
	}
}

func extractUpdate(name string, songs int) ProgressUpdate {
	return ProgressUpdate{
		Playlist: name,
		State:    StateExtract,
		Step:     1,
		Total:    1,
		Message:  fmt.Sprintf("Found %d recommendations", songs),
	}
}

func resolveUpdate(name string, step, total int, song models.Song) ProgressUpdate {
	return ProgressUpdate{
		Playlist: name,
		State:    StateResolve,
		Step:     step,
		Total:    total,
		Message:  fmt.Sprintf("[%d/%d] Searching %s", step, total, song),
	}
}

func downloadUpdate(name string, step, total int, r downloader.Result) ProgressUpdate {
	mark := "✓"
	if !r.Completed() {
		mark = "✗"
	}
	return ProgressUpdate{
		Playlist: name,
		State:    StateDownload,
		Step:     step,
		Total:    total,
		Message:  fmt.Sprintf("[%d/%d] %s %s", step, total, mark, r.Track),
		Data:     r,
	}
}

func commitUpdate(name, date string) ProgressUpdate {
	return ProgressUpdate{
		Playlist: name,
		State:    StateCommit,
		Step:     1,
		Total:    1,
		Message:  fmt.Sprintf("Committing header date %s", date),
	}
}

func finishedUpdate(res *PlaylistResult) ProgressUpdate {
	msg := fmt.Sprintf("✓ %s synced (%d/%d downloaded)", res.Config.Filename, res.Run.Downloaded, res.Run.Resolved)
	switch res.State {
	case StateSkip:
		msg = fmt.Sprintf("✓ %s skipped", res.Config.Filename)
	case StateFail:
		msg = fmt.Sprintf("✗ %s failed: %v", res.Config.Filename, res.Err)
	}
	return ProgressUpdate{
		Playlist: res.Config.Filename,
		State:    res.State,
		Step:     1,
		Total:    1,
		Message:  msg,
		Data:     res,
	}
}
