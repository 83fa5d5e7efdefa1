package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/tunedex/internal/formatter"
	"github.com/desertthunder/tunedex/internal/match"
	"github.com/desertthunder/tunedex/internal/models"
	"github.com/desertthunder/tunedex/internal/parser"
	"github.com/desertthunder/tunedex/internal/shared"
)

// stubResolver resolves from a fixed artist/track table.
type stubResolver struct {
	matches map[string]models.TrackRow
	err     error
	calls   int
}

func (r *stubResolver) Resolve(ctx context.Context, parsed parser.Parsed) (match.Match, error) {
	r.calls++
	if r.err != nil {
		if len(parsed.Candidates) > 0 {
			top := parsed.Candidates[0]
			return match.Match{Row: models.TrackRow{Track: top.Track, Artist: top.Artist}}, r.err
		}
		return match.Match{Row: models.TrackRow{Track: parsed.Cleaned}}, r.err
	}
	if len(parsed.Candidates) > 0 {
		top := parsed.Candidates[0]
		if row, ok := r.matches[top.Artist+"/"+top.Track]; ok {
			return match.Match{Row: row, Matched: true, Confidence: 1}, nil
		}
		return match.Match{Row: models.TrackRow{Track: top.Track, Artist: top.Artist}}, nil
	}
	return match.Match{Row: models.TrackRow{Track: parsed.Cleaned}}, nil
}

// stubExpander expands from a fixed artist/album table.
type stubExpander struct {
	albums map[string][]models.TrackRow
	calls  int
}

func (e *stubExpander) Expand(ctx context.Context, artist, album string) ([]models.TrackRow, error) {
	e.calls++
	if rows, ok := e.albums[artist+"/"+album]; ok {
		return rows, nil
	}
	return nil, shared.ErrNoMatch
}

// memoryCache is an in-process LookupCacher for engine tests.
type memoryCache struct {
	entries map[string]models.Result
	hits    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]models.Result)}
}

func (c *memoryCache) Lookup(key string) (models.Status, []models.TrackRow, bool) {
	entry, ok := c.entries[key]
	if !ok {
		return models.StatusPending, nil, false
	}
	c.hits++
	return entry.Status, entry.Rows, true
}

func (c *memoryCache) Store(key string, status models.Status, rows []models.TrackRow) error {
	if _, ok := c.entries[key]; ok {
		return nil
	}
	c.entries[key] = models.Result{Status: status, Rows: rows}
	return nil
}

func writeInput(t *testing.T, dir string, titles ...string) string {
	t.Helper()
	path := filepath.Join(dir, "input.csv")
	content := "title\n"
	for _, title := range titles {
		if strings.ContainsAny(title, ",\"") {
			title = `"` + strings.ReplaceAll(title, `"`, `""`) + `"`
		}
		content += title + "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write input: %v", err)
	}
	return path
}

func testEngine(resolver Resolver, expander Expander, cache LookupCacher) *EnhanceEngine {
	filter := parser.Filter{Enabled: true, Threshold: 0.5}
	return NewEnhanceEngine(filter, resolver, expander, cache, nil)
}

func defaultStubs() (*stubResolver, *stubExpander) {
	resolver := &stubResolver{matches: map[string]models.TrackRow{
		"Coldplay/Yellow": {Track: "Yellow", Artist: "Coldplay", Album: "Parachutes"},
	}}

	wall := make([]models.TrackRow, 0, 10)
	for _, track := range []string{
		"In the Flesh?", "The Thin Ice", "Another Brick in the Wall, Part 1",
		"The Happiest Days of Our Lives", "Another Brick in the Wall, Part 2",
		"Mother", "Goodbye Blue Sky", "Empty Spaces", "Young Lust", "One of My Turns",
	} {
		wall = append(wall, models.TrackRow{Track: track, Artist: "Pink Floyd", Album: "The Wall"})
	}
	expander := &stubExpander{albums: map[string][]models.TrackRow{
		"Pink Floyd/The Wall": wall,
	}}

	return resolver, expander
}

func TestEnhanceEngine(t *testing.T) {
	t.Run("Run", func(t *testing.T) {
		t.Run("Matches Single Track", func(t *testing.T) {
			dir := t.TempDir()
			input := writeInput(t, dir, "Coldplay - Yellow (Official Video)")
			output := filepath.Join(dir, "out.csv")

			resolver, expander := defaultStubs()
			engine := testEngine(resolver, expander, nil)

			result, err := engine.Run(context.Background(), nil, EnhanceOpts{InputPath: input, OutputPath: output})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if !result.Completed {
				t.Error("expected completed run")
			}
			if result.Stats.Matched != 1 || result.Stats.Rows != 1 {
				t.Errorf("unexpected stats %+v", result.Stats)
			}

			rows, _ := formatter.ReadRowsFile(output)
			if len(rows) != 1 || rows[0].Album != "Parachutes" {
				t.Errorf("unexpected output %+v", rows)
			}
		})

		t.Run("Expands Full Album", func(t *testing.T) {
			dir := t.TempDir()
			input := writeInput(t, dir, "Pink Floyd - The Wall (Full Album)")
			output := filepath.Join(dir, "out.csv")

			resolver, expander := defaultStubs()
			engine := testEngine(resolver, expander, nil)

			result, err := engine.Run(context.Background(), nil, EnhanceOpts{InputPath: input, OutputPath: output})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if result.Stats.Expanded != 1 {
				t.Errorf("unexpected stats %+v", result.Stats)
			}
			rows, _ := formatter.ReadRowsFile(output)
			if len(rows) != 10 {
				t.Fatalf("expected 10 rows, got %d", len(rows))
			}
			if rows[0].Track != "In the Flesh?" {
				t.Errorf("album order lost: %+v", rows[0])
			}
		})

		t.Run("Album Expansion Falls Back To Track Lookup", func(t *testing.T) {
			dir := t.TempDir()
			input := writeInput(t, dir, "Unknown Band - Obscure Record (Full Album)")
			output := filepath.Join(dir, "out.csv")

			resolver, expander := defaultStubs()
			engine := testEngine(resolver, expander, nil)

			result, err := engine.Run(context.Background(), nil, EnhanceOpts{InputPath: input, OutputPath: output})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if result.Stats.Unmatched != 1 {
				t.Errorf("unexpected stats %+v", result.Stats)
			}
			rows, _ := formatter.ReadRowsFile(output)
			if len(rows) != 1 || rows[0].Artist != "Unknown Band" {
				t.Errorf("expected parse guess row, got %+v", rows)
			}
		})

		t.Run("Filters Non Latin Titles", func(t *testing.T) {
			dir := t.TempDir()
			input := writeInput(t, dir, "米津玄師「感情」", "Coldplay - Yellow")
			output := filepath.Join(dir, "out.csv")

			resolver, expander := defaultStubs()
			engine := testEngine(resolver, expander, nil)

			result, err := engine.Run(context.Background(), nil, EnhanceOpts{InputPath: input, OutputPath: output})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if result.Stats.Filtered != 1 || result.Stats.Matched != 1 {
				t.Errorf("unexpected stats %+v", result.Stats)
			}
			rows, _ := formatter.ReadRowsFile(output)
			if len(rows) != 1 {
				t.Errorf("filtered title leaked into output: %+v", rows)
			}
			if resolver.calls != 1 {
				t.Errorf("filtered title reached the resolver: %d calls", resolver.calls)
			}
		})

		t.Run("Unmatched Keeps Guess", func(t *testing.T) {
			dir := t.TempDir()
			input := writeInput(t, dir, "Nobody - Nothing")
			output := filepath.Join(dir, "out.csv")

			resolver, expander := defaultStubs()
			engine := testEngine(resolver, expander, nil)

			result, err := engine.Run(context.Background(), nil, EnhanceOpts{InputPath: input, OutputPath: output})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if result.Stats.Unmatched != 1 {
				t.Errorf("unexpected stats %+v", result.Stats)
			}
			rows, _ := formatter.ReadRowsFile(output)
			if len(rows) != 1 || rows[0].Track != "Nothing" || rows[0].Album != "" {
				t.Errorf("expected guess row with empty album, got %+v", rows)
			}
		})

		t.Run("Service Failure Degrades To Unmatched", func(t *testing.T) {
			dir := t.TempDir()
			input := writeInput(t, dir, "Coldplay - Yellow")
			output := filepath.Join(dir, "out.csv")

			resolver := &stubResolver{err: shared.ErrServiceRequest}
			_, expander := defaultStubs()
			engine := testEngine(resolver, expander, nil)

			result, err := engine.Run(context.Background(), nil, EnhanceOpts{InputPath: input, OutputPath: output})
			if err != nil {
				t.Fatalf("expected run to survive service error, got %v", err)
			}
			if result.Stats.Unmatched != 1 {
				t.Errorf("unexpected stats %+v", result.Stats)
			}
		})

		t.Run("Rate Limit Exhaustion Degrades To Unmatched", func(t *testing.T) {
			dir := t.TempDir()
			input := writeInput(t, dir, "Coldplay - Yellow", "Oasis - Wonderwall")
			output := filepath.Join(dir, "out.csv")

			resolver := &stubResolver{err: shared.ErrRateLimited}
			_, expander := defaultStubs()
			engine := testEngine(resolver, expander, nil)

			result, err := engine.Run(context.Background(), nil, EnhanceOpts{InputPath: input, OutputPath: output})
			if err != nil {
				t.Fatalf("expected run to continue past exhausted retries, got %v", err)
			}
			if !result.Completed {
				t.Error("run did not complete")
			}
			if result.Stats.Unmatched != 2 {
				t.Errorf("expected 2 unmatched entries, got %+v", result.Stats)
			}

			rows, _ := formatter.ReadRowsFile(output)
			if len(rows) != 2 {
				t.Fatalf("expected guess rows for both entries, got %d", len(rows))
			}
			if rows[0].Artist != "Coldplay" || rows[1].Artist != "Oasis" {
				t.Errorf("expected parse guesses preserved, got %+v", rows)
			}
		})

		t.Run("Missing Input File", func(t *testing.T) {
			dir := t.TempDir()
			resolver, expander := defaultStubs()
			engine := testEngine(resolver, expander, nil)

			_, err := engine.Run(context.Background(), nil, EnhanceOpts{
				InputPath:  filepath.Join(dir, "absent.csv"),
				OutputPath: filepath.Join(dir, "out.csv"),
			})
			if !errors.Is(err, shared.ErrInputRead) {
				t.Errorf("expected ErrInputRead, got %v", err)
			}
		})
	})

	t.Run("Resume", func(t *testing.T) {
		t.Run("Second Run Adds Nothing", func(t *testing.T) {
			dir := t.TempDir()
			input := writeInput(t, dir, "Coldplay - Yellow", "Oasis - Wonderwall")
			output := filepath.Join(dir, "out.csv")

			resolver, expander := defaultStubs()
			engine := testEngine(resolver, expander, nil)
			opts := EnhanceOpts{InputPath: input, OutputPath: output, Resume: true}

			first, err := engine.Run(context.Background(), nil, opts)
			if err != nil {
				t.Fatalf("first run: %v", err)
			}
			if first.Skipped != 0 || len(first.Results) != 2 {
				t.Fatalf("unexpected first run %+v", first)
			}

			second, err := engine.Run(context.Background(), nil, opts)
			if err != nil {
				t.Fatalf("second run: %v", err)
			}
			if second.Skipped != 2 || len(second.Results) != 0 {
				t.Errorf("expected full skip, got skipped=%d results=%d", second.Skipped, len(second.Results))
			}
			if second.Session.Processed != 0 {
				t.Errorf("session counters should only tally this run, got %+v", second.Session)
			}
			if second.Stats.Processed != 2 {
				t.Errorf("cumulative counters should carry across runs, got %+v", second.Stats)
			}

			rows, _ := formatter.ReadRowsFile(output)
			if len(rows) != 2 {
				t.Errorf("resume duplicated rows: %d", len(rows))
			}
		})

		t.Run("Interrupted Run Resumes At Checkpoint", func(t *testing.T) {
			dir := t.TempDir()
			input := writeInput(t, dir, "Coldplay - Yellow", "Nobody - Nothing", "Oasis - Wonderwall")
			output := filepath.Join(dir, "out.csv")

			resolver, expander := defaultStubs()
			engine := testEngine(resolver, expander, nil)
			opts := EnhanceOpts{InputPath: input, OutputPath: output, Resume: true}

			// Cancel after the first entry lands.
			ctx, cancel := context.WithCancel(context.Background())
			partialResolver := &cancellingResolver{inner: resolver, cancel: cancel, after: 1}
			partial := testEngine(partialResolver, expander, nil)

			result, err := partial.Run(ctx, nil, opts)
			if err != nil {
				t.Fatalf("interrupted run: %v", err)
			}
			if result.Completed {
				t.Fatal("cancelled run reported completed")
			}
			if len(result.Results) == 0 || len(result.Results) == 3 {
				t.Fatalf("expected partial progress, got %d results", len(result.Results))
			}

			resumed, err := engine.Run(context.Background(), nil, opts)
			if err != nil {
				t.Fatalf("resumed run: %v", err)
			}
			if !resumed.Completed {
				t.Error("resumed run did not complete")
			}
			if resumed.Skipped != len(result.Results) {
				t.Errorf("expected %d skipped, got %d", len(result.Results), resumed.Skipped)
			}

			rows, _ := formatter.ReadRowsFile(output)
			if len(rows) != 3 {
				t.Errorf("expected 3 rows total, got %d", len(rows))
			}
		})

		t.Run("Checkpoint Without Output Starts Fresh", func(t *testing.T) {
			dir := t.TempDir()
			input := writeInput(t, dir, "Coldplay - Yellow")
			output := filepath.Join(dir, "out.csv")

			// Orphaned checkpoint from a deleted output file.
			state := &PipelineState{InputPath: input, path: StatePath(output), seen: map[string]bool{}}
			state.Processed = []string{"Coldplay - Yellow"}
			if err := state.flush(); err != nil {
				t.Fatalf("seed state: %v", err)
			}

			resolver, expander := defaultStubs()
			engine := testEngine(resolver, expander, nil)

			result, err := engine.Run(context.Background(), nil, EnhanceOpts{InputPath: input, OutputPath: output, Resume: true})
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if result.Skipped != 0 || result.Stats.Processed != 1 {
				t.Errorf("orphaned checkpoint honored: %+v", result)
			}
		})
	})

	t.Run("Cache", func(t *testing.T) {
		t.Run("Repeated Query Hits Cache", func(t *testing.T) {
			dir := t.TempDir()
			input := writeInput(t, dir, "Coldplay - Yellow", "Coldplay - Yellow (Official Video)")
			output := filepath.Join(dir, "out.csv")

			resolver, expander := defaultStubs()
			cache := newMemoryCache()
			engine := testEngine(resolver, expander, cache)

			_, err := engine.Run(context.Background(), nil, EnhanceOpts{InputPath: input, OutputPath: output})
			if err != nil {
				t.Fatalf("run: %v", err)
			}

			if resolver.calls != 1 {
				t.Errorf("expected 1 resolver call, got %d", resolver.calls)
			}
			if cache.hits != 1 {
				t.Errorf("expected 1 cache hit, got %d", cache.hits)
			}
		})
	})
}

// cancellingResolver cancels the run's context after a number of resolutions.
type cancellingResolver struct {
	inner  Resolver
	cancel context.CancelFunc
	after  int
	count  int
}

func (r *cancellingResolver) Resolve(ctx context.Context, parsed parser.Parsed) (match.Match, error) {
	result, err := r.inner.Resolve(ctx, parsed)
	r.count++
	if r.count >= r.after {
		r.cancel()
	}
	return result, err
}
