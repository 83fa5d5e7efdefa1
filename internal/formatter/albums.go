package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/desertthunder/tunedex/internal/models"
	"github.com/desertthunder/tunedex/internal/shared"
)

var albumsHeader = []string{"artist", "album", "year", "owned"}

// AlbumsToCSV renders a studio discography as a complete CSV document.
func AlbumsToCSV(albums []models.ArtistAlbum) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(albumsHeader); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, album := range albums {
		owned := "no"
		if album.Owned {
			owned = "yes"
		}
		if err := writer.Write([]string{album.Artist, album.Album, album.Year, owned}); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// WriteAlbumsFile writes a studio discography CSV to path, replacing any
// existing file.
func WriteAlbumsFile(path string, albums []models.ArtistAlbum) error {
	data, err := AlbumsToCSV(albums)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrOutputWrite, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrOutputWrite, err)
	}
	return nil
}
