// Package repositories implements SQLite persistence for the lookup cache.
//
// The repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// Soft deletes via deleted_at timestamps exclude cleared records from queries by default.
//
// Key Implementations:
//   - [LookupRepository] : Cached lookup persistence with normalized-key queries
//   - [LookupCacheAdapter] : Memoization facade over the repository, tolerant of duplicate keys
//
// Sequence numbers provide stable, human-readable ordering independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
