package main

import (
	"context"

	"github.com/desertthunder/tunedex/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Albums builds a studio discography CSV from the artists in an enhanced library.
func (r *Runner) Albums(ctx context.Context, cmd *cli.Command) error {
	libraryPath := cmd.String("library")
	outputPath := cmd.String("output")
	if outputPath == "" {
		outputPath = r.config.Output.AlbumsPath
	}

	workers := cmd.Int("workers")
	if workers == 0 {
		workers = r.config.Albums.Workers
	}
	rateLimit := cmd.Float64("rate")
	if rateLimit == 0 {
		rateLimit = r.config.Albums.RateLimit
	}

	r.logger.Info("fetching studio discographies", "library", libraryPath, "workers", workers)
	r.writePlain("Fetching studio albums...\n")
	r.writePlain("Library: %s\n\n", libraryPath)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for update := range progressCh {
			if update.Phase == tasks.FetchAlbums {
				r.writePlain("   %s\n", update.Message)
			}
		}
	}()

	result, err := r.engine.FetchStudioAlbums(ctx, progressCh, r.service, tasks.AlbumsOpts{
		LibraryPath: libraryPath,
		OutputPath:  outputPath,
		NumWorkers:  workers,
		RateLimit:   rateLimit,
	})
	close(progressCh)
	<-drained

	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Studio Albums")
	r.writePlain("Artists: %d (%d fetched, %d failed)\n", result.TotalArtists, result.Fetched, result.Failed)
	r.writePlain("Albums: %d\n", len(result.Albums))
	if outputPath != "" {
		r.writePlain("Written to: %s\n", outputPath)
	}

	return nil
}
