package tasks

import (
	"sort"
	"strings"

	"github.com/desertthunder/tunedex/internal/formatter"
	"github.com/desertthunder/tunedex/internal/models"
)

// SortTrackRows orders enhanced rows for browsing: by artist, then album,
// then track, with albumless rows sorted to the bottom of each artist's
// section. All comparisons are case-insensitive; the original casing is
// preserved in the output.
func SortTrackRows(rows []models.TrackRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]

		if c := strings.Compare(strings.ToLower(a.Artist), strings.ToLower(b.Artist)); c != 0 {
			return c < 0
		}

		aHasAlbum, bHasAlbum := a.Album != "", b.Album != ""
		if aHasAlbum != bHasAlbum {
			return aHasAlbum
		}

		if c := strings.Compare(strings.ToLower(a.Album), strings.ToLower(b.Album)); c != 0 {
			return c < 0
		}

		return strings.ToLower(a.Track) < strings.ToLower(b.Track)
	})
}

// Sort reads an enhanced CSV, orders its rows, and writes the result. When
// outputPath is empty the input file is rewritten in place.
func (e *EnhanceEngine) Sort(progress chan<- ProgressUpdate, inputPath, outputPath string) (int, error) {
	rows, err := formatter.ReadRowsFile(inputPath)
	if err != nil {
		return 0, err
	}

	e.sendProgress(progress, sortRowsUpdate(len(rows)))

	SortTrackRows(rows)

	if outputPath == "" {
		outputPath = inputPath
	}
	if err := formatter.WriteRowsFile(outputPath, rows); err != nil {
		return 0, err
	}

	return len(rows), nil
}
