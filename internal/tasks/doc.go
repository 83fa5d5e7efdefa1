// Package tasks orchestrates the metadata enhancement pipeline with real-time progress reporting.
//
// # Core Operations
//
// The [EnhanceEngine] exposes four operations:
//
//  1. [EnhanceEngine.Run] : Enhance raw titles into track rows
//     - Reads the raw titles CSV and drops non-Latin titles via the filter
//     - Parses each title into ranked artist/track hypotheses
//     - Verifies hypotheses against the metadata service, expanding full-album titles
//     - Appends rows to the output CSV and checkpoints after every entry
//
//  2. [EnhanceEngine.FetchStudioAlbums] : Build a studio discography
//     - Collects the unique artists of the enhanced library
//     - Fetches each artist's studio release groups through a worker pool
//     - Marks albums already in the library and writes the discography CSV
//
//  3. [EnhanceEngine.Sort] : Order an enhanced CSV for browsing
//     - Artist first, then album and track, albumless singles at the bottom of each artist
//
//  4. [EnhanceEngine.Pipeline] : Run enhance, sort and albums in sequence
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Resume
//
// [PipelineState] checkpoints the processed titles next to the output CSV.
// The checkpoint is rewritten after every entry, so an interrupted run
// resumes at the first unprocessed title and never duplicates output rows.
//
// # Lookup Caching
//
// The optional [LookupCacher] interface memoizes resolved queries across runs.
//
// Lookups are cached silently (errors logged, never fatal) to avoid disrupting runs.
//
// # Implementation
//
// [EnhanceEngine] depends on:
//   - [parser.Filter] : Latin-content gate
//   - [Resolver] : hypothesis verification (match.Resolver)
//   - [Expander] : album track listing (match.Expander)
//   - [LookupCacher] : Optional persistence layer (repositories.LookupCacheAdapter)
package tasks
