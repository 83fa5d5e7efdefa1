package match

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/tunedex/internal/models"
	"github.com/desertthunder/tunedex/internal/services"
	"github.com/desertthunder/tunedex/internal/shared"
)

// Expander turns a full-album title into one row per track by finding the
// best-matching release and pulling its track list.
type Expander struct {
	service   services.MetadataService
	threshold float64
}

// NewExpander creates an expander over the given service. threshold gates
// how close a release title must be before its tracks are trusted.
func NewExpander(service services.MetadataService, threshold float64) *Expander {
	return &Expander{service: service, threshold: threshold}
}

// scoreRelease combines title and artist similarity with a preference for
// proper albums over singles, EPs and compilations carrying the same name.
func scoreRelease(queryArtist, queryAlbum string, candidate services.ReleaseCandidate) float64 {
	score := (similarity(queryArtist, candidate.Artist) + similarity(queryAlbum, candidate.Title)) / 2
	if strings.EqualFold(candidate.PrimaryType, "Album") {
		score += 0.10
	}
	return score
}

// Expand resolves artist/album to a release and returns its tracks in
// source order, one row per track with the release's canonical album name.
// Returns shared.ErrNoMatch when no release clears the threshold and
// shared.ErrEmptyAlbum when the chosen release has no usable track list;
// both let the caller fall back to a single unmatched row.
func (e *Expander) Expand(ctx context.Context, artist, album string) ([]models.TrackRow, error) {
	candidates, err := e.service.SearchRelease(ctx, artist, album)
	if err != nil {
		return nil, err
	}

	var best *services.ReleaseCandidate
	bestScore := 0.0
	for i, candidate := range candidates {
		score := scoreRelease(artist, album, candidate)
		if score < e.threshold {
			continue
		}
		if best == nil || score > bestScore {
			best = &candidates[i]
			bestScore = score
		}
	}

	if best == nil {
		return nil, fmt.Errorf("%w: no release for %s / %s", shared.ErrNoMatch, artist, album)
	}

	tracks, err := e.service.ReleaseTracks(ctx, best.ID)
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, fmt.Errorf("%w: release %s has no tracks", shared.ErrEmptyAlbum, best.ID)
	}

	rows := make([]models.TrackRow, 0, len(tracks))
	for _, track := range tracks {
		trackArtist := track.Artist
		if trackArtist == "" {
			trackArtist = best.Artist
		}
		rows = append(rows, models.TrackRow{
			Track:  track.Title,
			Artist: trackArtist,
			Album:  best.Title,
		})
	}

	return rows, nil
}
