package main

import (
	"context"

	"github.com/desertthunder/tunedex/internal/formatter"
	"github.com/desertthunder/tunedex/internal/tasks"
	"github.com/urfave/cli/v3"
)

// PipelineRun chains the enhance, sort and albums stages in a single run.
func (r *Runner) PipelineRun(ctx context.Context, cmd *cli.Command) error {
	inputPath := cmd.String("input")
	outputPath := cmd.String("output")
	if outputPath == "" {
		outputPath = r.config.Output.Path
	}
	sortedPath := cmd.String("sorted")
	if sortedPath == "" {
		sortedPath = r.config.Output.SortedPath
	}
	withAlbums := cmd.Bool("albums")

	r.logger.Info("starting pipeline", "input", inputPath, "output", outputPath, "albums", withAlbums)
	r.writePlain("Running full pipeline...\n")
	r.writePlain("Input: %s\n", inputPath)
	r.writePlain("Output: %s\n\n", outputPath)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for update := range progressCh {
			switch update.Phase {
			case tasks.ReadInput:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.Enhance:
				if update.Data != nil {
					r.writePlain("   %s\n", update.Message)
				}
			case tasks.ExpandAlbum:
				r.writePlain("💿 %s\n", update.Message)
			case tasks.SortRows:
				r.writePlain("🗂  %s\n", update.Message)
			case tasks.FetchAlbums:
				r.writePlain("   %s\n", update.Message)
			}
		}
	}()

	result, err := r.engine.Pipeline(ctx, progressCh, r.service, tasks.PipelineOpts{
		Enhance: tasks.EnhanceOpts{
			InputPath:  inputPath,
			OutputPath: outputPath,
			Resume:     cmd.Bool("resume"),
		},
		SortedPath: sortedPath,
		Albums: tasks.AlbumsOpts{
			OutputPath: r.config.Output.AlbumsPath,
			NumWorkers: r.config.Albums.Workers,
			RateLimit:  r.config.Albums.RateLimit,
		},
		WithAlbums: withAlbums,
	})
	close(progressCh)
	<-drained

	if err != nil {
		return err
	}

	if !result.Enhance.Completed {
		r.writePlainln("⚠ Run interrupted. Rerun to pick up from the checkpoint.")
		return nil
	}

	r.writePlain("\n")
	r.writePlainHeader("Pipeline Complete")
	r.output.Write(formatter.SummaryText(result.Enhance.Session))
	if result.Enhance.Skipped > 0 {
		r.writePlain("Skipped (already processed): %d\n", result.Enhance.Skipped)
	}
	if result.Sorted > 0 {
		r.writePlain("Sorted: %d rows into %s\n", result.Sorted, sortedPath)
	}
	if result.Albums != nil {
		r.writePlain("Albums: %d across %d artists\n", len(result.Albums.Albums), result.Albums.TotalArtists)
	}

	return nil
}
