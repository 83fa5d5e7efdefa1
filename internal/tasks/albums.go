package tasks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"github.com/desertthunder/tunedex/internal/formatter"
	"github.com/desertthunder/tunedex/internal/match"
	"github.com/desertthunder/tunedex/internal/models"
	"github.com/desertthunder/tunedex/internal/services"
	"github.com/desertthunder/tunedex/internal/shared"
)

// AlbumsOpts contains configuration for the studio discography task.
type AlbumsOpts struct {
	LibraryPath string  // Enhanced CSV to draw artists and owned albums from
	OutputPath  string  // Discography CSV destination
	NumWorkers  int     // Concurrent workers (default: 4)
	RateLimit   float64 // Artist fetches dispatched per second (default: 2)
}

// ArtistAlbumsResult is one artist's fetch outcome.
type ArtistAlbumsResult struct {
	Artist string
	Albums []models.ArtistAlbum
	Error  error
}

// AlbumsResult contains all data from a studio discography run.
type AlbumsResult struct {
	TotalArtists int
	Fetched      int
	Failed       int
	Albums       []models.ArtistAlbum
	Results      []ArtistAlbumsResult
}

type albumJob struct {
	artist string
	owned  map[string]bool
}

// FetchStudioAlbums builds a studio discography for every artist in the
// enhanced library.
//
// This method implements a worker pool pattern to fetch several artists
// concurrently. Dispatch is paced by a rate limiter on top of the service's
// own throttle, partial failures are kept per artist, and albums already in
// the library are marked owned in the output.
func (e *EnhanceEngine) FetchStudioAlbums(
	ctx context.Context,
	progress chan<- ProgressUpdate,
	srv services.MetadataService,
	opts AlbumsOpts,
) (*AlbumsResult, error) {
	if srv == nil {
		return nil, fmt.Errorf("%w: service not initialized", shared.ErrServiceUnavailable)
	}

	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 2.0
	}

	rows, err := formatter.ReadRowsFile(opts.LibraryPath)
	if err != nil {
		return nil, err
	}

	artists, ownedByArtist := collectArtists(rows)
	result := &AlbumsResult{TotalArtists: len(artists)}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan albumJob, len(artists))
	results := make(chan ArtistAlbumsResult, len(artists))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.albumsWorker(ctx, &wg, srv, jobs, results)
	}

	go func() {
		for i, artist := range artists {
			select {
			case <-ctx.Done():
				close(jobs)
				return
			default:
			}

			if err := limiter.Wait(ctx); err != nil {
				close(jobs)
				return
			}

			e.sendProgress(progress, fetchAlbumsUpdate(i+1, len(artists), artist))
			jobs <- albumJob{artist: artist, owned: ownedByArtist[artist]}
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Error != nil {
			result.Failed++
			e.sendProgress(progress, albumsFailedUpdate(completed, len(artists), res.Artist, res.Error))
			continue
		}

		result.Fetched++
		result.Albums = append(result.Albums, res.Albums...)
		e.sendProgress(progress, albumsDoneUpdate(completed, len(artists), res.Artist, len(res.Albums)))
	}

	sortAlbums(result.Albums)

	if opts.OutputPath != "" {
		if err := formatter.WriteAlbumsFile(opts.OutputPath, result.Albums); err != nil {
			return result, err
		}
	}

	return result, nil
}

// albumsWorker fetches studio release groups for queued artists.
func (e *EnhanceEngine) albumsWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	srv services.MetadataService,
	jobs <-chan albumJob,
	results chan<- ArtistAlbumsResult,
) {
	defer wg.Done()

	for job := range jobs {
		groups, err := srv.SearchReleaseGroup(ctx, job.artist)
		if err != nil {
			results <- ArtistAlbumsResult{Artist: job.artist, Error: err}
			continue
		}

		albums := make([]models.ArtistAlbum, 0, len(groups))
		seen := make(map[string]bool)
		for _, group := range groups {
			// The provider-side query excludes live, compilation and
			// soundtrack groups; anything slipping through is dropped here.
			if !strings.EqualFold(group.PrimaryType, "Album") || len(group.SecondaryTypes) > 0 {
				continue
			}
			if match.Normalize(group.Artist) != match.Normalize(job.artist) {
				continue
			}

			key := match.Normalize(group.Title)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true

			albums = append(albums, models.ArtistAlbum{
				Artist: job.artist,
				Album:  group.Title,
				Year:   releaseYear(group.FirstRelease),
				Owned:  job.owned[key],
			})
		}

		results <- ArtistAlbumsResult{Artist: job.artist, Albums: albums}
	}
}

// collectArtists extracts the unique artists of a library in first-seen
// order, with each artist's owned albums keyed by normalized title.
func collectArtists(rows []models.TrackRow) ([]string, map[string]map[string]bool) {
	var artists []string
	owned := make(map[string]map[string]bool)

	for _, row := range rows {
		if row.Artist == "" {
			continue
		}
		if _, ok := owned[row.Artist]; !ok {
			owned[row.Artist] = make(map[string]bool)
			artists = append(artists, row.Artist)
		}
		if row.Album != "" {
			owned[row.Artist][match.Normalize(row.Album)] = true
		}
	}

	return artists, owned
}

func sortAlbums(albums []models.ArtistAlbum) {
	sort.SliceStable(albums, func(i, j int) bool {
		if albums[i].Artist != albums[j].Artist {
			return strings.ToLower(albums[i].Artist) < strings.ToLower(albums[j].Artist)
		}
		return albums[i].Year < albums[j].Year
	})
}

func releaseYear(date string) string {
	if len(date) >= 4 {
		return date[:4]
	}
	return date
}
