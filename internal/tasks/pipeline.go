package tasks

import (
	"context"

	"github.com/desertthunder/tunedex/internal/services"
)

// PipelineOpts contains configuration for the full pipeline run.
type PipelineOpts struct {
	Enhance    EnhanceOpts
	SortedPath string // Sorted CSV destination; empty skips the sort stage
	Albums     AlbumsOpts
	WithAlbums bool // Run the studio discography stage after enhancing
}

// PipelineResult contains all data from a full pipeline run.
type PipelineResult struct {
	Enhance *EnhanceResult
	Sorted  int           // Rows in the sorted export, 0 when skipped
	Albums  *AlbumsResult // nil when the albums stage was skipped
}

// Pipeline runs enhance, sort and optionally the studio discography in
// sequence. Later stages are skipped when cancellation stops the enhance
// stage early; the partial result is still returned so a resumed run can
// pick up from the checkpoint.
func (e *EnhanceEngine) Pipeline(ctx context.Context, progress chan<- ProgressUpdate, srv services.MetadataService, opts PipelineOpts) (*PipelineResult, error) {
	result := &PipelineResult{}

	enhanced, err := e.Run(ctx, progress, opts.Enhance)
	result.Enhance = enhanced
	if err != nil {
		return result, err
	}
	if !enhanced.Completed {
		return result, nil
	}

	if opts.SortedPath != "" {
		sorted, err := e.Sort(progress, opts.Enhance.OutputPath, opts.SortedPath)
		if err != nil {
			return result, err
		}
		result.Sorted = sorted
	}

	if opts.WithAlbums {
		albums := opts.Albums
		if albums.LibraryPath == "" {
			albums.LibraryPath = opts.Enhance.OutputPath
		}
		albumsResult, err := e.FetchStudioAlbums(ctx, progress, srv, albums)
		result.Albums = albumsResult
		if err != nil {
			return result, err
		}
	}

	return result, nil
}
