// Package models defines domain entities and persistence interfaces for the metadata curation pipeline.
//
// The package contains two categories of types:
//
// 1. Pipeline values: lightweight structs that flow through one run
//   - [RawEntry] : one uncurated input record (title plus loose hints)
//   - [TrackRow] : one resolved output row (track, artist, album)
//   - [Result] : terminal outcome for a raw entry with its output rows
//
// 2. Persistent entities: database-backed models with full lifecycle management
//   - [CachedLookup] : memoized metadata lookups keyed by normalized query
//
// Persistent entities implement the [Model] interface providing ID generation, timestamps, validation, and soft delete support.
// The [Repository] interface defines standard CRUD operations for database access.
package models
