// package tasks implements the metadata enhancement pipeline operations.
//
// The core abstraction is EnhanceEngine, which orchestrates title parsing, metadata resolution, and album expansion.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/tunedex/internal/formatter"
	"github.com/desertthunder/tunedex/internal/match"
	"github.com/desertthunder/tunedex/internal/models"
	"github.com/desertthunder/tunedex/internal/parser"
	"github.com/desertthunder/tunedex/internal/shared"
)

// Resolver verifies parse hypotheses against a metadata provider.
type Resolver interface {
	Resolve(ctx context.Context, parsed parser.Parsed) (match.Match, error)
}

// Expander turns an artist/album pair into the release's track rows.
type Expander interface {
	Expand(ctx context.Context, artist, album string) ([]models.TrackRow, error)
}

// LookupCacher memoizes resolved outcomes across runs. Implementations must
// tolerate duplicate stores.
type LookupCacher interface {
	Lookup(key string) (models.Status, []models.TrackRow, bool)
	Store(key string, status models.Status, rows []models.TrackRow) error
}

// EnhanceResult contains all data from one enhancement run.
type EnhanceResult struct {
	Stats     models.RunStats // Tallies across the whole run, prior runs included when resuming
	Session   models.RunStats // Tallies for entries processed in this run only
	Skipped   int             // Entries skipped because an earlier run already processed them
	Results   []models.Result // Outcomes for entries processed in this run
	Completed bool            // False when the run stopped early on cancellation
}

// EnhanceOpts contains configuration for one enhancement run.
type EnhanceOpts struct {
	InputPath  string // Raw titles CSV (requires a title column)
	OutputPath string // Enhanced CSV, appended to across resumed runs
	Resume     bool   // Skip entries recorded in the checkpoint
}

// EnhanceEngine orchestrates the per-title enhancement pipeline.
// Contains dependencies on the filter, resolver, expander and optional cache.
type EnhanceEngine struct {
	filter   parser.Filter
	resolver Resolver
	expander Expander
	cache    LookupCacher
	logger   *log.Logger
}

// NewEnhanceEngine creates a new EnhanceEngine with the provided stages.
// cache may be nil when memoization is disabled; a nil logger falls back to
// the default stderr logger.
func NewEnhanceEngine(filter parser.Filter, resolver Resolver, expander Expander, cache LookupCacher, logger *log.Logger) *EnhanceEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &EnhanceEngine{
		filter:   filter,
		resolver: resolver,
		expander: expander,
		cache:    cache,
		logger:   logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *EnhanceEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// Run processes every pending input title: filter, parse, resolve, expand,
// append. Each entry's rows are flushed to the output CSV and the
// checkpoint before the next entry starts, so an interrupted run resumes
// where it stopped. Cancellation is honored at entry boundaries and returns
// the partial result with Completed false rather than an error.
func (e *EnhanceEngine) Run(ctx context.Context, progress chan<- ProgressUpdate, opts EnhanceOpts) (*EnhanceResult, error) {
	if e.resolver == nil || e.expander == nil {
		return nil, fmt.Errorf("%w: pipeline stages not initialized", shared.ErrServiceUnavailable)
	}

	entries, err := formatter.ReadTitlesFile(opts.InputPath)
	if err != nil {
		return nil, err
	}

	state, err := e.loadState(opts)
	if err != nil {
		return nil, err
	}

	e.sendProgress(progress, readInputUpdate(len(entries), opts.InputPath))

	pending := make([]models.RawEntry, 0, len(entries))
	for _, entry := range entries {
		if state.Done(entry) {
			continue
		}
		pending = append(pending, entry)
	}

	result := &EnhanceResult{Skipped: len(entries) - len(pending)}
	if result.Skipped > 0 {
		e.sendProgress(progress, resumeUpdate(result.Skipped, len(entries)))
	}

	output, err := formatter.OpenOutput(opts.OutputPath)
	if err != nil {
		return nil, err
	}
	defer output.Close()

	total := len(pending)
	for i, entry := range pending {
		select {
		case <-ctx.Done():
			result.Stats = state.Stats
			return result, nil
		default:
		}

		e.sendProgress(progress, enhanceUpdate(i+1, total, entry.Title))

		outcome, err := e.processEntry(ctx, progress, entry)
		if err != nil {
			// IO failures and cancellation are fatal; per-entry service
			// noise already degraded to an unmatched outcome.
			result.Stats = state.Stats
			return result, err
		}

		if err := output.Append(outcome.Rows...); err != nil {
			result.Stats = state.Stats
			return result, err
		}
		if err := state.Record(outcome); err != nil {
			result.Stats = state.Stats
			return result, err
		}

		result.Results = append(result.Results, outcome)
		result.Session.Tally(outcome.Status, len(outcome.Rows))
		e.sendProgress(progress, entryDoneUpdate(i+1, total, outcome))
	}

	result.Stats = state.Stats
	result.Completed = true
	return result, nil
}

func (e *EnhanceEngine) loadState(opts EnhanceOpts) (*PipelineState, error) {
	if opts.Resume {
		return LoadState(opts.OutputPath, opts.InputPath)
	}
	state := &PipelineState{
		InputPath: opts.InputPath,
		path:      StatePath(opts.OutputPath),
		seen:      make(map[string]bool),
	}
	return state, nil
}

// processEntry runs one title through the pipeline stages. Service errors
// other than cancellation degrade to an unmatched outcome carrying the best
// guess, so one flaky lookup never aborts a long run.
func (e *EnhanceEngine) processEntry(ctx context.Context, progress chan<- ProgressUpdate, entry models.RawEntry) (models.Result, error) {
	if e.filter.Classify(entry.Title) == parser.Drop {
		return models.Result{Entry: entry, Status: models.StatusFiltered}, nil
	}

	parsed := parser.Parse(entry.Title)

	if parsed.LikelyAlbum {
		result, err := e.expandEntry(ctx, progress, entry, parsed)
		if err == nil {
			return result, nil
		}
		if isFatal(err) {
			return models.Result{}, err
		}
		e.logger.Warn("album expansion failed, falling back to track lookup", "title", entry.Title, "error", err)
	}

	key := cacheKey(parsed)
	if e.cache != nil && key != "" {
		if status, rows, ok := e.cache.Lookup(key); ok {
			return models.Result{Entry: entry, Status: status, Rows: rows}, nil
		}
	}

	matched, err := e.resolver.Resolve(ctx, parsed)
	if err != nil {
		if isFatal(err) {
			return models.Result{}, err
		}
		e.logger.Warn("lookup failed, keeping parse guess", "title", entry.Title, "error", err)
		return models.Result{
			Entry:  entry,
			Status: models.StatusUnmatched,
			Rows:   []models.TrackRow{matched.Row},
		}, nil
	}

	status := models.StatusUnmatched
	if matched.Matched {
		status = models.StatusMatched
	}
	result := models.Result{Entry: entry, Status: status, Rows: []models.TrackRow{matched.Row}}

	if e.cache != nil && key != "" {
		if err := e.cache.Store(key, status, result.Rows); err != nil {
			e.logger.Warn("failed to cache lookup", "key", key, "error", err)
		}
	}

	return result, nil
}

// expandEntry resolves a full-album title into one row per album track.
func (e *EnhanceEngine) expandEntry(ctx context.Context, progress chan<- ProgressUpdate, entry models.RawEntry, parsed parser.Parsed) (models.Result, error) {
	if len(parsed.Candidates) == 0 {
		return models.Result{}, fmt.Errorf("%w: no artist/album split for %q", shared.ErrNoMatch, entry.Title)
	}

	top := parsed.Candidates[0]
	e.sendProgress(progress, expandAlbumUpdate(1, 1, top.Artist, top.Track))

	key := shared.NormalizeQueryKey(top.Artist, "album:"+top.Track)
	if e.cache != nil {
		if status, rows, ok := e.cache.Lookup(key); ok && status == models.StatusAlbumExpanded {
			return models.Result{Entry: entry, Status: status, Rows: rows}, nil
		}
	}

	rows, err := e.expander.Expand(ctx, top.Artist, top.Track)
	if err != nil {
		return models.Result{}, err
	}

	result := models.Result{Entry: entry, Status: models.StatusAlbumExpanded, Rows: rows}

	if e.cache != nil {
		if err := e.cache.Store(key, result.Status, rows); err != nil {
			e.logger.Warn("failed to cache expansion", "key", key, "error", err)
		}
	}

	return result, nil
}

// cacheKey derives the memoization key from the top parse hypothesis.
func cacheKey(parsed parser.Parsed) string {
	if len(parsed.Candidates) == 0 {
		if parsed.Cleaned == "" {
			return ""
		}
		return shared.NormalizeQueryKey("", parsed.Cleaned)
	}
	top := parsed.Candidates[0]
	return shared.NormalizeQueryKey(top.Artist, top.Track)
}

// isFatal reports whether an error must abort the run: cancellation and
// durability failures on the output or checkpoint. Service errors, rate-limit
// exhaustion included, degrade to an unmatched outcome so the widened
// throttle interval gets a chance to help the entries that follow.
func isFatal(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, shared.ErrOutputWrite) ||
		errors.Is(err, shared.ErrStateWrite)
}
