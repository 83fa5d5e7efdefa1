package tasks

import (
	"fmt"

	"github.com/desertthunder/tunedex/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ReadInput Phase = iota
	Enhance
	ExpandAlbum
	WriteOutput
	FetchAlbums
	SortRows
)

func (p Phase) String() string {
	switch p {
	case ReadInput:
		return "read_input"
	case Enhance:
		return "enhance"
	case ExpandAlbum:
		return "expand_album"
	case WriteOutput:
		return "write_output"
	case FetchAlbums:
		return "fetch_albums"
	case SortRows:
		return "sort_rows"
	default:
		return ""
	}
}

func readInputUpdate(total int, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReadInput,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Read %d titles from %s", total, path),
	}
}

func resumeUpdate(skipped, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReadInput,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Resuming: %d of %d titles already processed", skipped, total),
	}
}

func enhanceUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Enhance,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s", step, total, title),
	}
}

func entryDoneUpdate(step, total int, result models.Result) ProgressUpdate {
	var message string
	switch result.Status {
	case models.StatusMatched:
		row := result.Rows[0]
		message = fmt.Sprintf("[%d/%d] ✓ %s - %s", step, total, row.Artist, row.Track)
	case models.StatusAlbumExpanded:
		message = fmt.Sprintf("[%d/%d] ✓ album expanded to %d tracks", step, total, len(result.Rows))
	case models.StatusFiltered:
		message = fmt.Sprintf("[%d/%d] ⊘ filtered: %s", step, total, result.Entry.Title)
	default:
		message = fmt.Sprintf("[%d/%d] ✗ no match: %s", step, total, result.Entry.Title)
	}
	return ProgressUpdate{
		Phase:   Enhance,
		Step:    step,
		Total:   total,
		Message: message,
		Data:    result,
	}
}

func expandAlbumUpdate(step, total int, artist, album string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExpandAlbum,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Expanding album: %s - %s", artist, album),
	}
}

func fetchAlbumsUpdate(step, total int, artist string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchAlbums,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching studio albums: %s", step, total, artist),
	}
}

func albumsDoneUpdate(step, total int, artist string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchAlbums,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d albums)", step, total, artist, count),
	}
}

func albumsFailedUpdate(step, total int, artist string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchAlbums,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, artist, err),
	}
}

func sortRowsUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SortRows,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Sorting %d rows", total),
	}
}
