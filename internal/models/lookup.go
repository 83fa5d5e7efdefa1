package models

import (
	"fmt"
	"time"
)

// CachedLookup is a persisted memo of one resolved metadata lookup.
//
// The cache key is the normalized query text (artist + track, or the album
// query for expansions). Rows holds the resolved output rows so a cache hit
// can bypass the metadata service entirely.
type CachedLookup struct {
	id        string
	sequence  int
	key       string
	status    Status
	rows      []TrackRow
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewCachedLookup creates a cached lookup for the given normalized query key.
func NewCachedLookup(sequence int, key string, status Status, rows []TrackRow) *CachedLookup {
	now := time.Now()
	return &CachedLookup{
		sequence:  sequence,
		key:       key,
		status:    status,
		rows:      rows,
		createdAt: now,
		updatedAt: now,
	}
}

func (c *CachedLookup) ID() string           { return c.id }
func (c *CachedLookup) Sequence() int        { return c.sequence }
func (c *CachedLookup) Key() string          { return c.key }
func (c *CachedLookup) Status() Status       { return c.status }
func (c *CachedLookup) Rows() []TrackRow     { return c.rows }
func (c *CachedLookup) CreatedAt() time.Time { return c.createdAt }
func (c *CachedLookup) UpdatedAt() time.Time { return c.updatedAt }
func (c *CachedLookup) DeletedAt() *time.Time {
	return c.deletedAt
}

func (c *CachedLookup) SetID(id string)           { c.id = id }
func (c *CachedLookup) SetUpdatedAt(t time.Time)  { c.updatedAt = t }
func (c *CachedLookup) SetCreatedAt(t time.Time)  { c.createdAt = t }
func (c *CachedLookup) SetDeletedAt(t *time.Time) { c.deletedAt = t }
func (c *CachedLookup) SetRows(rows []TrackRow)   { c.rows = rows }
func (c *CachedLookup) SetStatus(s Status)        { c.status = s }

// Validate checks that the lookup has a key and a terminal status.
func (c *CachedLookup) Validate() error {
	if c.key == "" {
		return fmt.Errorf("cached lookup requires a query key")
	}
	if c.status == StatusPending {
		return fmt.Errorf("cached lookup requires a terminal status")
	}
	return nil
}
