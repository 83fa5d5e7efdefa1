package main

import (
	"context"

	"github.com/desertthunder/tunedex/internal/formatter"
	"github.com/desertthunder/tunedex/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Enhance runs the metadata enhancement pipeline over a raw titles CSV.
func (r *Runner) Enhance(ctx context.Context, cmd *cli.Command) error {
	inputPath := cmd.String("input")
	outputPath := cmd.String("output")
	if outputPath == "" {
		outputPath = r.config.Output.Path
	}

	r.logger.Info("starting enhancement run", "input", inputPath, "output", outputPath)
	r.writePlain("Enhancing titles...\n")
	r.writePlain("Input: %s\n", inputPath)
	r.writePlain("Output: %s\n\n", outputPath)

	// Create progress channel and goroutine to handle updates
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
			}
		}
	}()

	// Run the engine operation
	result, err := r.engine.Run(ctx, progressCh, tasks.EnhanceOpts{
		InputPath:  inputPath,
		OutputPath: outputPath,
		Resume:     cmd.Bool("resume"),
	})
	close(progressCh)
	<-drained

	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"session": result.Session,
			"total":   result.Stats,
			"skipped": result.Skipped,
		}, true)
	}

	if !result.Completed {
		r.writePlainln("⚠ Run interrupted. Rerun with --resume to pick up from the checkpoint.")
	}

	r.writePlain("\n")
	r.writePlainHeader("Enhancement Summary")
	r.output.Write(formatter.SummaryText(result.Session))
	if result.Skipped > 0 {
		r.writePlain("Skipped (already processed): %d\n", result.Skipped)
		r.writePlain("All runs: %d processed, %d rows\n", result.Stats.Processed, result.Stats.Rows)
	}

	return nil
}

// Sort rewrites an enhanced CSV in artist/album/track order.
func (r *Runner) Sort(ctx context.Context, cmd *cli.Command) error {
	inputPath := cmd.String("input")
	outputPath := cmd.String("output")

	r.logger.Info("sorting library", "input", inputPath, "output", outputPath)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for update := range progressCh {
			if update.Phase == tasks.SortRows {
				r.writePlain("🗂  %s\n", update.Message)
			}
		}
	}()

	rows, err := r.engine.Sort(progressCh, inputPath, outputPath)
	close(progressCh)
	<-drained

	if err != nil {
		return err
	}

	if outputPath == "" {
		outputPath = inputPath
	}
	r.writePlain("✓ Sorted %d rows into %s\n", rows, outputPath)

	return nil
}
